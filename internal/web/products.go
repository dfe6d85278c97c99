package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"webshop/internal/catalog"
)

const (
	productsPath = "/Admin/Product"
	imageField   = "imageFile"
)

type productHandler struct {
	svc *catalog.Service
	log zerolog.Logger
}

// productForm is the posted product form. Numbers are kept as text so a
// malformed value becomes a field message instead of a bind failure.
type productForm struct {
	ID          string `form:"Id"`
	Name        string `form:"Name"`
	Description string `form:"Description"`
	Price       string `form:"Price"`
	Stock       string `form:"Stock"`
	CategoryID  string `form:"CategoryId"`
	ImageURL    string `form:"ImageUrl"`
}

func (f productForm) input() (catalog.ProductInput, *catalog.ValidationError) {
	verr := &catalog.ValidationError{}
	in := catalog.ProductInput{
		Name:        f.Name,
		Description: f.Description,
		ImageURL:    f.ImageURL,
	}
	if id, err := strconv.ParseUint(strings.TrimSpace(f.ID), 10, 64); err == nil {
		in.ID = uint(id)
	}
	if id, err := strconv.ParseUint(strings.TrimSpace(f.CategoryID), 10, 64); err == nil {
		in.CategoryID = uint(id)
	}

	price := strings.ReplaceAll(strings.TrimSpace(f.Price), ",", ".")
	switch d, err := decimal.NewFromString(price); {
	case price == "":
		verr.Add("price", "is required")
	case err != nil:
		verr.Add("price", "must be a number")
	default:
		in.Price = d
	}

	stock := strings.TrimSpace(f.Stock)
	switch n, err := strconv.Atoi(stock); {
	case stock == "":
		verr.Add("stock", "is required")
	case err != nil:
		verr.Add("stock", "must be a whole number")
	default:
		in.Stock = n
	}

	if len(verr.Fields) == 0 {
		return in, nil
	}
	in.Normalize()
	var more *catalog.ValidationError
	if errors.As(in.Validate(), &more) {
		for k, msg := range more.Fields {
			verr.Add(k, msg)
		}
	}
	return in, verr
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// upload opens the posted image file. A form without a file yields nil.
func upload(c *gin.Context) (*catalog.Upload, func(), error) {
	fh, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	var f multipart.File
	if f, err = fh.Open(); err != nil {
		return nil, func() {}, fmt.Errorf("open upload: %w", err)
	}
	return &catalog.Upload{Name: fh.Filename, Content: f}, func() { _ = f.Close() }, nil
}

func (h *productHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		renderNotFound(c)
		return
	}
	_ = c.Error(err)
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	renderError(c)
}

func (h *productHandler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	render(c, http.StatusOK, "product_list.tmpl", ViewData{
		"Title":    "Products",
		"Products": items,
	})
}

func (h *productHandler) createForm(c *gin.Context) {
	form, err := h.svc.NewForm(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.renderForm(c, http.StatusOK, "create", form)
}

func (h *productHandler) create(c *gin.Context) {
	var f productForm
	if err := c.ShouldBind(&f); err != nil {
		h.fail(c, fmt.Errorf("bind product form: %w", err))
		return
	}
	in, verr := f.input()
	if verr != nil {
		h.invalid(c, "create", f, in, verr)
		return
	}
	up, closeUpload, err := upload(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeUpload()

	if _, err := h.svc.Create(c.Request.Context(), in, up); err != nil {
		h.writeFailed(c, "create", f, in, err)
		return
	}
	flash(c, "Product created.")
	c.Redirect(http.StatusSeeOther, productsPath)
}

func (h *productHandler) editForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		renderNotFound(c)
		return
	}
	form, err := h.svc.EditForm(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.renderForm(c, http.StatusOK, "edit", form)
}

func (h *productHandler) edit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		renderNotFound(c)
		return
	}
	var f productForm
	if err := c.ShouldBind(&f); err != nil {
		h.fail(c, fmt.Errorf("bind product form: %w", err))
		return
	}
	in, verr := f.input()
	if in.ID != id {
		renderNotFound(c)
		return
	}
	if verr != nil {
		h.invalid(c, "edit", f, in, verr)
		return
	}
	up, closeUpload, err := upload(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeUpload()

	if _, err := h.svc.Update(c.Request.Context(), id, in, up); err != nil {
		h.writeFailed(c, "edit", f, in, err)
		return
	}
	flash(c, "Product updated.")
	c.Redirect(http.StatusSeeOther, productsPath)
}

func (h *productHandler) deleteView(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		renderNotFound(c)
		return
	}
	p, err := h.svc.DeleteView(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	render(c, http.StatusOK, "product_delete.tmpl", ViewData{
		"Title":   "Delete product",
		"Product": p,
	})
}

func (h *productHandler) deleteConfirmed(c *gin.Context) {
	if id, ok := pathID(c); ok {
		if err := h.svc.Delete(c.Request.Context(), id); err != nil {
			h.fail(c, err)
			return
		}
	}
	flash(c, "Product deleted.")
	c.Redirect(http.StatusSeeOther, productsPath)
}

// writeFailed re-renders the form for validation failures and hands every
// other error to fail.
func (h *productHandler) writeFailed(c *gin.Context, mode string, f productForm, in catalog.ProductInput, err error) {
	var verr *catalog.ValidationError
	if errors.As(err, &verr) {
		h.invalid(c, mode, f, in, verr)
		return
	}
	h.fail(c, err)
}

// invalid re-renders the form with the text the user typed for price and
// stock, parsed or not.
func (h *productHandler) invalid(c *gin.Context, mode string, f productForm, in catalog.ProductInput, verr *catalog.ValidationError) {
	form, err := h.svc.Form(c.Request.Context(), in, verr)
	if err != nil {
		h.fail(c, err)
		return
	}
	form.PriceText, form.StockText = f.Price, f.Stock
	h.renderForm(c, http.StatusUnprocessableEntity, mode, form)
}

func (h *productHandler) renderForm(c *gin.Context, status int, mode string, form *catalog.Form) {
	title, action := "Create product", productsPath+"/Create"
	if mode == "edit" {
		title = "Edit product"
		action = fmt.Sprintf("%s/Edit/%d", productsPath, form.Input.ID)
	}
	render(c, status, "product_form.tmpl", ViewData{
		"Title":  title,
		"Mode":   mode,
		"Action": action,
		"Form":   form,
	})
}
