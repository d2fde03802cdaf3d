// Package products exposes the catalog to the console: filtered listing,
// tag assignment with SPU/SKU family synchronization, and spreadsheet
// export. The catalog row type is the evaluator's own Product so the
// collections plugin can feed repository output straight into
// membership.Evaluate.
package products

import (
	"github.com/keyxmakerx/tagboard/internal/membership"
)

// Product is a catalog item with its tag assignments.
type Product = membership.Product

// filterAll means "no restriction" for the category and seller filters.
const filterAll = "all"

// ListFilter narrows the catalog listing. Price bounds are raw strings;
// unparseable bounds are ignored, as in the collection editor.
type ListFilter struct {
	Search    string `query:"search"`
	ProductID string `query:"productId"`
	Category  string `query:"category"`
	Seller    string `query:"seller"`
	PriceMin  string `query:"priceMin"`
	PriceMax  string `query:"priceMax"`
}

// BulkTagRequest applies one tag operation to many products.
type BulkTagRequest struct {
	ProductIDs []string      `json:"productIds"`
	TagID      string        `json:"tagId"`
	Op         membership.Op `json:"op"`
}

// TagChange reports the outcome of an assignment: every product in the
// synchronized families, after the change, and the ids whose tags
// actually changed.
type TagChange struct {
	TagID    string        `json:"tagId"`
	Op       membership.Op `json:"op"`
	Changed  []string      `json:"changed"`
	Products []Product     `json:"products"`
}

// Facets lists the distinct filter values present in the catalog.
type Facets struct {
	Categories []string `json:"categories"`
	Sellers    []string `json:"sellers"`
}
