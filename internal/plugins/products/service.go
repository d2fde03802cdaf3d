package products

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/keyxmakerx/tagboard/internal/apperror"
	"github.com/keyxmakerx/tagboard/internal/membership"
	"github.com/keyxmakerx/tagboard/internal/plugins/tags"
)

// TagLookup is the part of the tags service that assignment needs.
type TagLookup interface {
	GetByID(ctx context.Context, id string) (*tags.Tag, error)
	Assignable(ctx context.Context, id string) (*tags.Tag, error)
}

// ProductService is the business logic contract for the catalog.
type ProductService interface {
	List(ctx context.Context, filter ListFilter) ([]Product, error)

	// Catalog returns every product in catalog order. Collections evaluate
	// their rules against this snapshot.
	Catalog(ctx context.Context) ([]Product, error)

	Get(ctx context.Context, id string) (*Product, error)

	// AddTag assigns an active tag to a product and its SPU/SKU family.
	AddTag(ctx context.Context, productID, tagID string) (*TagChange, error)

	// RemoveTag removes a tag from a product and its SPU/SKU family.
	RemoveTag(ctx context.Context, productID, tagID string) (*TagChange, error)

	// Bulk applies one operation to every selected product and family.
	Bulk(ctx context.Context, req BulkTagRequest) (*TagChange, error)

	Facets(ctx context.Context) (*Facets, error)

	// ExportXLSX writes the filtered products as a spreadsheet.
	ExportXLSX(ctx context.Context, filter ListFilter, w io.Writer) error
}

type productService struct {
	repo ProductRepository
	tags TagLookup
}

// NewProductService creates a ProductService.
func NewProductService(repo ProductRepository, tags TagLookup) ProductService {
	return &productService{repo: repo, tags: tags}
}

func (s *productService) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	return s.repo.List(ctx, normalizeFilter(filter))
}

func (s *productService) Catalog(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx, ListFilter{})
}

func (s *productService) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *productService) AddTag(ctx context.Context, productID, tagID string) (*TagChange, error) {
	return s.apply(ctx, []string{productID}, membership.OpAdd, tagID)
}

func (s *productService) RemoveTag(ctx context.Context, productID, tagID string) (*TagChange, error) {
	return s.apply(ctx, []string{productID}, membership.OpRemove, tagID)
}

func (s *productService) Bulk(ctx context.Context, req BulkTagRequest) (*TagChange, error) {
	return s.apply(ctx, req.ProductIDs, req.Op, req.TagID)
}

// apply runs the variant sync for every target against one catalog
// snapshot and persists only the products whose tags changed.
func (s *productService) apply(ctx context.Context, targets []string, op membership.Op, tagID string) (*TagChange, error) {
	if !op.Valid() {
		return nil, apperror.NewBadRequest("op must be add or remove")
	}
	targets = dedupe(targets)
	if len(targets) == 0 {
		return nil, apperror.NewBadRequest("at least one product id is required")
	}
	tagID = strings.TrimSpace(tagID)
	if tagID == "" {
		return nil, apperror.NewBadRequest("tag id is required")
	}

	var (
		tag *tags.Tag
		err error
	)
	if op == membership.OpAdd {
		tag, err = s.tags.Assignable(ctx, tagID)
	} else {
		tag, err = s.tags.GetByID(ctx, tagID)
	}
	if err != nil {
		return nil, err
	}

	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	working := catalog
	affected := make(map[string]bool)
	for _, id := range targets {
		ids := membership.AffectedIDs(working, id)
		if ids == nil {
			return nil, apperror.NewNotFound(fmt.Sprintf("product %s not found", id))
		}
		for _, a := range ids {
			affected[a] = true
		}
		working = membership.SyncTag(working, id, op, tag.ID, tag.Name)
	}

	before := make(map[string]bool, len(catalog))
	for _, p := range catalog {
		before[p.ID] = p.HasTag(tag.ID)
	}

	change := &TagChange{TagID: tag.ID, Op: op, Changed: []string{}, Products: []Product{}}
	for _, p := range working {
		if !affected[p.ID] {
			continue
		}
		change.Products = append(change.Products, p)
		if before[p.ID] != p.HasTag(tag.ID) {
			change.Changed = append(change.Changed, p.ID)
		}
	}

	assignment := membership.ProductTag{TagID: tag.ID, TagName: tag.Name, Source: membership.SourceMarketer}
	if err := s.repo.ApplyTag(ctx, change.Changed, op, assignment); err != nil {
		return nil, err
	}
	return change, nil
}

func (s *productService) Facets(ctx context.Context) (*Facets, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	sellers, err := s.repo.Sellers(ctx)
	if err != nil {
		return nil, err
	}
	return &Facets{Categories: categories, Sellers: sellers}, nil
}

func (s *productService) ExportXLSX(ctx context.Context, filter ListFilter, w io.Writer) error {
	products, err := s.List(ctx, filter)
	if err != nil {
		return err
	}
	if err := WriteCatalogXLSX(w, products); err != nil {
		return apperror.NewInternal(err)
	}
	return nil
}

func normalizeFilter(f ListFilter) ListFilter {
	f.Search = strings.TrimSpace(f.Search)
	f.ProductID = strings.TrimSpace(f.ProductID)
	f.Category = strings.TrimSpace(f.Category)
	f.Seller = strings.TrimSpace(f.Seller)
	if f.Category == filterAll {
		f.Category = ""
	}
	if f.Seller == filterAll {
		f.Seller = ""
	}
	return f
}

// dedupe trims ids and drops blanks and repeats, keeping order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
