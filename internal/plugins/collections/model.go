// Package collections manages product collections: hand-picked lists and
// rule-driven lists whose members are computed by internal/membership.
// The package also owns the preview cache, file import of product ids,
// and the background worker that keeps rule-driven counts current.
package collections

import (
	"time"

	"github.com/keyxmakerx/tagboard/internal/membership"
)

// Type says who curates a collection.
type Type string

const (
	TypeGlobal Type = "global"
	TypeSeller Type = "seller"
)

// Mode selects how members are chosen.
type Mode string

const (
	// ModeManual collections hold an ordered, hand-picked product list.
	ModeManual Mode = "manual"

	// ModeByTags collections hold a rule evaluated against the catalog.
	ModeByTags Mode = "by_tags"
)

// Visibility controls whether shoppers see the collection.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityService Visibility = "service"
)

// Status is the collection lifecycle state. Only active exists today.
type Status string

const StatusActive Status = "active"

// noSeller is shown in the seller column for global collections.
const noSeller = "—"

// Collection is a named product list.
type Collection struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Seller      string     `json:"seller"`
	Type        Type       `json:"type"`
	Mode        Mode       `json:"mode"`
	Visibility  Visibility `json:"visibility"`
	Status      Status     `json:"status"`

	// Conditions is set for by_tags collections only.
	Conditions *membership.TagConditions `json:"conditions,omitempty"`

	// ProductIDs is the ordered member list of a manual collection. Left
	// nil by List.
	ProductIDs []string `json:"productIds,omitempty"`

	ProductsCount int       `json:"productsCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
	UpdatedBy     string    `json:"updatedBy"`
}

// CollectionInput is the editor payload for create and update. An empty
// Slug is generated from Name.
type CollectionInput struct {
	Name        string                    `json:"name"`
	Slug        string                    `json:"slug"`
	Description string                    `json:"description"`
	Seller      string                    `json:"seller"`
	Type        Type                      `json:"type"`
	Mode        Mode                      `json:"mode"`
	Visibility  Visibility                `json:"visibility"`
	Conditions  *membership.TagConditions `json:"conditions"`
	ProductIDs  []string                  `json:"productIds"`
}

// filterAll means "any type" in ListFilter.
const filterAll = "all"

// ListFilter narrows the collections list.
type ListFilter struct {
	Search string `query:"search"`
	Type   string `query:"type"`
}

// PreviewResult is the evaluated member list for an unsaved rule.
type PreviewResult struct {
	Products []membership.Product `json:"products"`
	Total    int                  `json:"total"`
}

// ImportResult reports which ids from an uploaded file exist in the
// catalog. Both lists keep file order.
type ImportResult struct {
	Matched []string `json:"matched"`
	Unknown []string `json:"unknown"`
}

// RefreshStats summarizes one refresh pass.
type RefreshStats struct {
	Evaluated int `json:"evaluated"`
	Changed   int `json:"changed"`
	Failed    int `json:"failed"`
}
