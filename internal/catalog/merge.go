package catalog

import "webshop/internal/models"

// Merge applies the editable fields of a submitted form to the stored record.
// Identity, version, timestamps and the image path always come from
// canonical: the image only changes through an upload.
func Merge(canonical models.Product, in ProductInput) models.Product {
	out := canonical
	out.Name = in.Name
	out.Description = in.Description
	out.Price = in.Price
	out.Stock = in.Stock
	out.CategoryID = in.CategoryID
	if out.Category.ID != in.CategoryID {
		out.Category = models.Category{}
	}
	return out
}
