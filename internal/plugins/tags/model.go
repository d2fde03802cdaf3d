// Package tags manages the merchandising tags that marketers and sellers
// attach to products. Tags are never hard-deleted by the console UI; they
// are archived, which keeps them on existing products but blocks new
// assignments.
package tags

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OwnerType says who manages a tag.
type OwnerType string

const (
	OwnerGlobal OwnerType = "global"
	OwnerSeller OwnerType = "seller"
)

// Visibility controls whether shoppers ever see the tag.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityService Visibility = "service"
)

// Status is the tag lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Restrictions narrow which products a tag is meant for. Empty fields mean
// no restriction.
type Restrictions struct {
	Categories []string         `json:"categories,omitempty"`
	Sellers    []string         `json:"sellers,omitempty"`
	PriceMin   *decimal.Decimal `json:"priceMin,omitempty"`
	PriceMax   *decimal.Decimal `json:"priceMax,omitempty"`
}

// Value stores Restrictions in the JSON column.
func (r Restrictions) Value() (driver.Value, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding restrictions: %w", err)
	}
	return string(b), nil
}

// Scan reads the JSON column. NULL yields empty restrictions.
func (r *Restrictions) Scan(src any) error {
	*r = Restrictions{}
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scanning restrictions: unsupported type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, r)
}

// Tag is a merchandising label.
type Tag struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Slug             string       `json:"slug"`
	Description      string       `json:"description,omitempty"`
	OwnerType        OwnerType    `json:"ownerType"`
	Visibility       Visibility   `json:"visibility"`
	Status           Status       `json:"status"`
	Restrictions     Restrictions `json:"restrictions"`
	ProductsCount    int          `json:"productsCount"`
	CollectionsCount int          `json:"collectionsCount"`
	UpdatedAt        time.Time    `json:"updatedAt"`
	UpdatedBy        string       `json:"updatedBy"`
}

// Popularity is the usage score the list sorts by.
func (t Tag) Popularity() int {
	return t.ProductsCount + t.CollectionsCount
}

// IsActive reports whether the tag may be assigned to products.
func (t Tag) IsActive() bool {
	return t.Status == StatusActive
}

// List sort keys.
const (
	SortUpdated    = "updated"
	SortName       = "name"
	SortPopularity = "popularity"
)

// filterAll disables the visibility or status filter.
const filterAll = "all"

// ListFilter narrows the tags list. Zero values select the console
// defaults: any visibility, active tags, most recently updated first.
type ListFilter struct {
	Search     string `query:"search"`
	Visibility string `query:"visibility"`
	Status     string `query:"status"`
	Sort       string `query:"sort"`
}

// TagInput carries the editable fields of a tag for create and update.
type TagInput struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	OwnerType    OwnerType    `json:"ownerType"`
	Visibility   Visibility   `json:"visibility"`
	Restrictions Restrictions `json:"restrictions"`
}
