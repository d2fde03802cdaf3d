// Package membership computes which catalog products belong to a tag-based
// collection. Everything in this package is a pure function over value
// types: callers pass a catalog snapshot and a rule, and get a new slice
// back. Nothing here touches the database, Redis, or the network, so the
// same functions serve the HTTP preview endpoint, the background refresh
// worker, and the offline CLI.
package membership

import (
	"github.com/shopspring/decimal"
)

// ProductType distinguishes a product family (SPU) from one of its
// variants (SKU).
type ProductType string

const (
	// TypeSPU is a standalone product or the parent of a variant family.
	TypeSPU ProductType = "SPU"

	// TypeSKU is a concrete variant that points at its parent SPU.
	TypeSKU ProductType = "SKU"
)

// TagSource records who attached a tag to a product.
type TagSource string

const (
	SourceMarketer TagSource = "marketer"
	SourceSeller   TagSource = "seller"
	SourceRule     TagSource = "rule"
)

// ProductTag is one tag assignment on a product.
type ProductTag struct {
	TagID   string    `json:"tagId" yaml:"tagId"`
	TagName string    `json:"tagName" yaml:"tagName"`
	Source  TagSource `json:"source" yaml:"source"`
}

// Product is a catalog item as seen by the evaluator. The products plugin
// uses this type directly so catalog rows never need converting.
type Product struct {
	ID          string          `json:"id" yaml:"id"`
	ProductID   string          `json:"productId" yaml:"productId"`
	Name        string          `json:"name" yaml:"name"`
	Seller      string          `json:"seller" yaml:"seller"`
	Category    string          `json:"category" yaml:"category"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Rating      float64         `json:"rating" yaml:"rating"`
	Type        ProductType     `json:"type" yaml:"type"`
	ParentSPUID string          `json:"parentSpuId,omitempty" yaml:"parentSpuId,omitempty"`
	Tags        []ProductTag    `json:"tags" yaml:"tags"`
}

// HasTag reports whether the product carries the given tag id.
func (p Product) HasTag(tagID string) bool {
	for _, t := range p.Tags {
		if t.TagID == tagID {
			return true
		}
	}
	return false
}

// TagIDs returns the ids of all tags assigned to the product, in
// assignment order.
func (p Product) TagIDs() []string {
	ids := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		ids[i] = t.TagID
	}
	return ids
}

// GroupType selects how a condition group combines its own tag ids.
type GroupType string

const (
	// GroupMust requires every listed tag.
	GroupMust GroupType = "MUST"

	// GroupAny requires at least one listed tag.
	GroupAny GroupType = "ANY"
)

// Logic selects how group match-sets combine with each other.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// SortKey orders the evaluated products.
type SortKey string

const (
	SortManual    SortKey = "manual"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"

	// SortPopularity ranks by the number of tags assigned to a product.
	// The catalog has no view or purchase counters, so tag count stands
	// in for popularity until a real signal exists.
	SortPopularity SortKey = "popularity"
)

// ConditionGroup is one clause of a collection rule.
type ConditionGroup struct {
	Type   GroupType `json:"type" yaml:"type"`
	TagIDs []string  `json:"tagIds" yaml:"tagIds"`
}

// TagConditions is the full rule behind a tag-based collection. Price
// bounds are kept as the raw strings the editor submits; an empty or
// unparseable bound means "no bound".
type TagConditions struct {
	Groups   []ConditionGroup `json:"groups" yaml:"groups"`
	Logic    Logic            `json:"logic" yaml:"logic"`
	PriceMin string           `json:"priceMin" yaml:"priceMin"`
	PriceMax string           `json:"priceMax" yaml:"priceMax"`
	Sort     SortKey          `json:"sort" yaml:"sort"`
}

// DefaultConditions returns the rule a new tag-based collection starts with.
func DefaultConditions() TagConditions {
	return TagConditions{
		Groups: []ConditionGroup{},
		Logic:  LogicAnd,
		Sort:   SortPopularity,
	}
}
