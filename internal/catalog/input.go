package catalog

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"webshop/internal/models"
)

var (
	validate = validator.New(validator.WithRequiredStructEnabled())
	strip    = bluemonday.StrictPolicy()
)

// ProductInput is the product data an admin submits. CategoryID and
// ImageURL are deliberately not validated: the category comes from the
// option list and the image path is decided on the server.
type ProductInput struct {
	ID          uint
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=4000"`
	Price       decimal.Decimal
	Stock       int `validate:"min=0"`
	CategoryID  uint
	ImageURL    string
}

// InputFrom copies a stored product into an input, for pre-filled forms.
func InputFrom(p models.Product) ProductInput {
	return ProductInput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		ImageURL:    p.ImageURL,
	}
}

// Normalize trims the text fields and strips any markup from them.
// Templates escape on output, so entities are decoded back to plain text.
func (in *ProductInput) Normalize() {
	in.Name = plain(in.Name)
	in.Description = plain(in.Description)
}

func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(strip.Sanitize(s)))
}

// Validate reports every rejected field at once.
func (in ProductInput) Validate() error {
	verr := &ValidationError{}
	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate product: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.Add(fieldKey(fe.Field()), message(fe))
		}
	}
	if in.Price.IsNegative() {
		verr.Add("price", "must not be negative")
	}
	return verr.orNil()
}

func fieldKey(field string) string {
	switch field {
	case "Name":
		return "name"
	case "Description":
		return "description"
	case "Stock":
		return "stock"
	}
	return strings.ToLower(field)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must not be negative"
	}
	return "is invalid"
}
