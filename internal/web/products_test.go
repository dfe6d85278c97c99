package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductFormInput(t *testing.T) {
	in, verr := productForm{
		ID:         "7",
		Name:       "Sencha",
		Price:      "12,50",
		Stock:      " 4 ",
		CategoryID: "2",
	}.input()
	require.Nil(t, verr)
	assert.Equal(t, uint(7), in.ID)
	assert.Equal(t, uint(2), in.CategoryID)
	assert.Equal(t, "12.5", in.Price.String())
	assert.Equal(t, 4, in.Stock)
}

func TestProductFormInputCollectsErrors(t *testing.T) {
	in, verr := productForm{Name: "", Price: "", Stock: "many", CategoryID: "x"}.input()
	require.NotNil(t, verr)
	assert.Equal(t, "is required", verr.Fields["price"])
	assert.Equal(t, "must be a whole number", verr.Fields["stock"])
	assert.Contains(t, verr.Fields, "name")
	assert.Zero(t, in.CategoryID)
}

func TestLocalURL(t *testing.T) {
	for u, want := range map[string]bool{
		"/Admin/Product":   true,
		"//evil.example":   false,
		"/\\evil.example":  false,
		"https://evil.com": false,
		"":                 false,
	} {
		assert.Equal(t, want, localURL(u), u)
	}
}
