// Package catalog implements the admin workflows for products: listing,
// creating, editing and deleting them along with their image files.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"webshop/internal/images"
	"webshop/internal/models"
	"webshop/internal/store"
)

// ProductStore is the persistence the service needs.
type ProductStore interface {
	ListWithCategory(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindWithCategory(ctx context.Context, id uint) (*models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Remove(ctx context.Context, p *models.Product) error
	Exists(ctx context.Context, id uint) (bool, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// ImageStore keeps the image files products point at.
type ImageStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, publicPath string) error
}

// Upload is an image file submitted with a product form.
type Upload struct {
	Name    string
	Content io.Reader
}

// Form is what the create and edit pages render. PriceText and StockText
// are the values shown in the price and stock inputs, which may be text
// that did not parse.
type Form struct {
	Input            ProductInput
	PriceText        string
	StockText        string
	Categories       []models.Category
	SelectedCategory uint
	Errors           map[string]string
}

// IsSelected reports whether category id is the one the form has chosen.
func (f *Form) IsSelected(id uint) bool {
	return f.SelectedCategory == id
}

// Service is the product administration service.
type Service struct {
	products ProductStore
	images   ImageStore
	log      zerolog.Logger
}

// NewService creates a product administration service.
func NewService(products ProductStore, imgs ImageStore, log zerolog.Logger) *Service {
	return &Service{products: products, images: imgs, log: log}
}

// List returns all products with their categories.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	return s.products.ListWithCategory(ctx)
}

// NewForm returns an empty create form.
func (s *Service) NewForm(ctx context.Context) (*Form, error) {
	return s.Form(ctx, ProductInput{}, nil)
}

// Form builds a form around in, with the category list and in's category
// selected. Field messages from a *ValidationError are attached.
func (s *Service) Form(ctx context.Context, in ProductInput, cause error) (*Form, error) {
	cats, err := s.products.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	f := &Form{
		Input:            in,
		PriceText:        in.Price.StringFixed(2),
		StockText:        strconv.Itoa(in.Stock),
		Categories:       cats,
		SelectedCategory: in.CategoryID,
	}
	var verr *ValidationError
	if errors.As(cause, &verr) {
		f.Errors = verr.Fields
	}
	return f, nil
}

// Create validates in and stores it as a new product. The upload, if any,
// becomes the product image; otherwise the default image is used.
func (s *Service) Create(ctx context.Context, in ProductInput, upload *Upload) (*models.Product, error) {
	content, err := s.prepare(&in, upload)
	if err != nil {
		return nil, err
	}

	p := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		ImageURL:    models.DefaultImageURL,
	}
	if content != nil {
		if p.ImageURL, err = s.images.Save(ctx, upload.Name, content); err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		s.log.Debug().Str("image", p.ImageURL).Msg("image saved")
	}

	if err := s.products.Insert(ctx, &p); err != nil {
		s.discard(ctx, p.ImageURL)
		return nil, err
	}
	s.log.Info().Uint("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return &p, nil
}

// EditForm returns the edit form pre-filled with the stored product.
func (s *Service) EditForm(ctx context.Context, id uint) (*Form, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Form(ctx, InputFrom(*p), nil)
}

// Update applies in to product id. pathID and in.ID must agree. The stored
// record is reloaded and merged field by field; the image path changes only
// when a new file is uploaded. The old file is removed once the new path
// is committed. Concurrent edits of the same product are last writer wins.
func (s *Service) Update(ctx context.Context, pathID uint, in ProductInput, upload *Upload) (*models.Product, error) {
	if pathID == 0 || in.ID != pathID {
		return nil, ErrNotFound
	}
	content, err := s.prepare(&in, upload)
	if err != nil {
		return nil, err
	}

	current, err := s.find(ctx, pathID)
	if err != nil {
		return nil, err
	}
	updated := Merge(*current, in)

	if content != nil {
		if updated.ImageURL, err = s.images.Save(ctx, upload.Name, content); err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		s.log.Debug().Str("image", updated.ImageURL).Msg("image saved")
	}

	if err := s.products.Update(ctx, &updated); err != nil {
		if content != nil {
			s.discard(ctx, updated.ImageURL)
		}
		return nil, s.conflict(ctx, pathID, err)
	}
	if content != nil && !current.HasDefaultImage() {
		s.discard(ctx, current.ImageURL)
	}
	if want := current.Revision().Next(); updated.Version != want.Version {
		s.log.Info().Uint("product_id", updated.ID).Uint("loaded_version", current.Version).
			Uint("version", updated.Version).Msg("overwrote a concurrent edit")
	}
	s.log.Info().Uint("product_id", updated.ID).Uint("version", updated.Version).Msg("product updated")
	return &updated, nil
}

// conflict turns a lost race with a delete into ErrNotFound. Any other
// failure is returned as is.
func (s *Service) conflict(ctx context.Context, id uint, err error) error {
	if !errors.Is(err, store.ErrConflict) {
		return err
	}
	exists, xerr := s.products.Exists(ctx, id)
	if xerr != nil {
		return errors.Join(err, xerr)
	}
	if !exists {
		s.log.Info().Uint("product_id", id).Msg("product deleted during update")
		return ErrNotFound
	}
	return fmt.Errorf("update product %d: %w", id, err)
}

// DeleteView returns the product and its category for the confirmation page.
func (s *Service) DeleteView(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.products.FindWithCategory(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

// Delete removes product id and then its image file. A missing product is
// not an error, and neither is an image file that cannot be removed once
// the row is gone.
func (s *Service) Delete(ctx context.Context, id uint) error {
	p, err := s.find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.products.Remove(ctx, p); err != nil {
		return err
	}
	if !p.HasDefaultImage() {
		s.discard(ctx, p.ImageURL)
	}
	s.log.Info().Uint("product_id", id).Msg("product deleted")
	return nil
}

func (s *Service) find(ctx context.Context, id uint) (*models.Product, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

// prepare normalizes and validates in and checks that the upload is an
// image. It returns the upload content to store, or nil when there is none.
func (s *Service) prepare(in *ProductInput, upload *Upload) (io.Reader, error) {
	in.Normalize()
	verr := &ValidationError{}
	if err := in.Validate(); err != nil {
		if !errors.As(err, &verr) {
			return nil, err
		}
	}

	var content io.Reader
	if upload != nil && upload.Content != nil {
		r, err := images.Sniff(upload.Content)
		switch {
		case errors.Is(err, images.ErrNotImage):
			verr.Add("image", "must be a JPEG, PNG, GIF or WebP image")
		case err != nil:
			verr.Add("image", "could not be read")
		default:
			content = r
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return content, nil
}

// discard removes an image file no row points at any more. Failures are
// logged only.
func (s *Service) discard(ctx context.Context, publicPath string) {
	if publicPath == "" || publicPath == models.DefaultImageURL {
		return
	}
	if err := s.images.Delete(ctx, publicPath); err != nil {
		s.log.Warn().Err(err).Str("image", publicPath).Msg("could not remove image file")
	}
}
