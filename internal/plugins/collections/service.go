package collections

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/keyxmakerx/tagboard/internal/apperror"
	"github.com/keyxmakerx/tagboard/internal/membership"
	"github.com/keyxmakerx/tagboard/internal/plugins/tags"
	"github.com/keyxmakerx/tagboard/internal/sanitize"
)

// maxNameLength is the limit on collection names, in characters.
const maxNameLength = 150

// maxSlugAttempts bounds the numeric suffixes tried for a free slug.
const maxSlugAttempts = 50

// CatalogSource supplies the catalog snapshot rules are evaluated against.
// The products service implements it.
type CatalogSource interface {
	Catalog(ctx context.Context) ([]membership.Product, error)
}

// CollectionService is the business logic contract for collections.
type CollectionService interface {
	List(ctx context.Context, filter ListFilter) ([]Collection, error)
	Get(ctx context.Context, id string) (*Collection, error)
	Create(ctx context.Context, input CollectionInput, actor string) (*Collection, error)
	Update(ctx context.Context, id string, input CollectionInput, actor string) (*Collection, error)
	Delete(ctx context.Context, id string) error

	// Preview evaluates an unsaved rule against the current catalog.
	Preview(ctx context.Context, conditions membership.TagConditions) (*PreviewResult, error)

	// ImportProductIDs reads product ids or articles from the first column
	// of a CSV or XLSX upload and resolves them against the catalog.
	ImportProductIDs(ctx context.Context, filename string, r io.Reader) (*ImportResult, error)

	// MoveProduct reorders one product of a manual collection.
	MoveProduct(ctx context.Context, id string, from, to int, actor string) (*Collection, error)

	// RefreshCounts re-evaluates every by_tags collection and stores the
	// new member counts.
	RefreshCounts(ctx context.Context) (*RefreshStats, error)
}

type collectionService struct {
	repo        CollectionRepository
	catalog     CatalogSource
	cache       PreviewCache
	concurrency int
}

// NewCollectionService creates a CollectionService. cache may be nil.
// concurrency bounds parallel evaluations during RefreshCounts.
func NewCollectionService(repo CollectionRepository, catalog CatalogSource, cache PreviewCache, concurrency int) CollectionService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &collectionService{repo: repo, catalog: catalog, cache: cache, concurrency: concurrency}
}

func (s *collectionService) List(ctx context.Context, filter ListFilter) ([]Collection, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	switch filter.Type {
	case "":
		filter.Type = filterAll
	case filterAll, string(TypeGlobal), string(TypeSeller):
	default:
		return nil, apperror.NewBadRequest("type filter must be all, global or seller")
	}
	return s.repo.List(ctx, filter)
}

func (s *collectionService) Get(ctx context.Context, id string) (*Collection, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *collectionService) Create(ctx context.Context, input CollectionInput, actor string) (*Collection, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	c := &Collection{ID: uuid.NewString(), Status: StatusActive, UpdatedBy: actor}
	if err := s.assign(ctx, c, input, true); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	slog.Info("collection created",
		slog.String("collection_id", c.ID),
		slog.String("mode", string(c.Mode)),
		slog.Int("products_count", c.ProductsCount),
	)
	return s.repo.FindByID(ctx, c.ID)
}

func (s *collectionService) Update(ctx context.Context, id string, input CollectionInput, actor string) (*Collection, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input, err = normalizeInput(input)
	if err != nil {
		return nil, err
	}

	renamed := input.Name != c.Name
	c.UpdatedBy = actor
	if err := s.assign(ctx, c, input, renamed); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// assign copies normalized input onto c, resolves the slug, checks members
// against the catalog, and computes ProductsCount.
func (s *collectionService) assign(ctx context.Context, c *Collection, in CollectionInput, regenerateSlug bool) error {
	switch {
	case in.Slug != "":
		slug := tags.Slugify(in.Slug, "")
		if slug == "" {
			return apperror.NewBadRequest("slug must contain letters or digits")
		}
		taken, err := s.repo.SlugExists(ctx, slug, c.ID)
		if err != nil {
			return err
		}
		if taken {
			return apperror.NewConflict(fmt.Sprintf("slug %q is already used by another collection", slug))
		}
		c.Slug = slug
	case regenerateSlug || c.Slug == "":
		slug, err := s.uniqueSlug(ctx, tags.Slugify(in.Name, "collection"), c.ID)
		if err != nil {
			return err
		}
		c.Slug = slug
	}

	c.Name = in.Name
	c.Description = in.Description
	c.Seller = in.Seller
	c.Type = in.Type
	c.Mode = in.Mode
	c.Visibility = in.Visibility
	c.Conditions = in.Conditions
	c.ProductIDs = in.ProductIDs

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return err
	}

	switch c.Mode {
	case ModeByTags:
		c.ProductsCount = len(membership.Evaluate(catalog, *c.Conditions))
	default:
		if missing := unknownProducts(catalog, c.ProductIDs); len(missing) > 0 {
			return apperror.NewValidation(fmt.Sprintf("unknown products: %s", strings.Join(missing, ", ")))
		}
		c.ProductsCount = len(c.ProductIDs)
	}
	return nil
}

func (s *collectionService) uniqueSlug(ctx context.Context, base, id string) (string, error) {
	slug := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := s.repo.SlugExists(ctx, slug, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return "", apperror.NewConflict("too many collections share this name")
}

func (s *collectionService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *collectionService) Preview(ctx context.Context, conditions membership.TagConditions) (*PreviewResult, error) {
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	products := s.evaluate(ctx, catalog, conditions)
	return &PreviewResult{Products: products, Total: len(products)}, nil
}

// evaluate runs the rule through the preview cache. Cache failures are
// logged and fall back to direct evaluation.
func (s *collectionService) evaluate(ctx context.Context, catalog []membership.Product, conditions membership.TagConditions) []membership.Product {
	if s.cache == nil {
		return membership.Evaluate(catalog, conditions)
	}

	key := membership.Fingerprint(catalog, conditions)
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("preview cache read failed", slog.Any("error", err))
	}
	if ok {
		return cached
	}

	products := membership.Evaluate(catalog, conditions)
	if err == nil {
		if err := s.cache.Set(ctx, key, products); err != nil {
			slog.Warn("preview cache write failed", slog.Any("error", err))
		}
	}
	return products
}

func (s *collectionService) ImportProductIDs(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	values, err := readIDColumn(filename, r)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return matchIDs(catalog, values), nil
}

func (s *collectionService) MoveProduct(ctx context.Context, id string, from, to int, actor string) (*Collection, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Mode != ModeManual {
		return nil, apperror.NewValidation("only manual collections have a product order")
	}
	ids, err := Reorder(c.ProductIDs, from, to)
	if err != nil {
		return nil, apperror.NewBadRequest(err.Error())
	}
	c.ProductIDs = ids
	c.UpdatedBy = actor
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *collectionService) RefreshCounts(ctx context.Context) (*RefreshStats, error) {
	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	var changed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, c := range rules {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			count := len(membership.Evaluate(catalog, *c.Conditions))
			updated, err := s.repo.SetProductsCount(gctx, c.ID, count)
			if err != nil {
				failed.Add(1)
				slog.Warn("refreshing collection count failed",
					slog.String("collection_id", c.ID),
					slog.Any("error", err),
				)
				return nil
			}
			if updated {
				changed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &RefreshStats{
		Evaluated: len(rules),
		Changed:   int(changed.Load()),
		Failed:    int(failed.Load()),
	}, nil
}

// Reorder moves the element at from to position to, shifting the ones in
// between. The input slice is not modified.
func Reorder(ids []string, from, to int) ([]string, error) {
	if from < 0 || from >= len(ids) || to < 0 || to >= len(ids) {
		return nil, fmt.Errorf("positions must be between 0 and %d", len(ids)-1)
	}
	out := make([]string, 0, len(ids))
	out = append(out, ids[:from]...)
	out = append(out, ids[from+1:]...)
	moved := ids[from]
	out = append(out[:to], append([]string{moved}, out[to:]...)...)
	return out, nil
}

func normalizeInput(in CollectionInput) (CollectionInput, error) {
	in.Name = sanitize.Text(in.Name)
	if in.Name == "" {
		return in, apperror.NewBadRequest("collection name is required")
	}
	if utf8.RuneCountInString(in.Name) > maxNameLength {
		return in, apperror.NewBadRequest(fmt.Sprintf("collection name must be at most %d characters", maxNameLength))
	}
	in.Description = sanitize.Text(in.Description)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Seller = sanitize.Text(in.Seller)

	switch in.Type {
	case "":
		in.Type = TypeGlobal
	case TypeGlobal, TypeSeller:
	default:
		return in, apperror.NewBadRequest("type must be global or seller")
	}
	if in.Type == TypeGlobal {
		in.Seller = noSeller
	} else if in.Seller == "" || in.Seller == noSeller {
		return in, apperror.NewBadRequest("seller collections need a seller")
	}

	switch in.Visibility {
	case "":
		in.Visibility = VisibilityPublic
	case VisibilityPublic, VisibilityService:
	default:
		return in, apperror.NewBadRequest("visibility must be public or service")
	}

	switch in.Mode {
	case "", ModeManual:
		in.Mode = ModeManual
		in.Conditions = nil
		in.ProductIDs = dedupe(in.ProductIDs)
	case ModeByTags:
		if in.Conditions == nil {
			return in, apperror.NewValidation("tag conditions are required")
		}
		rule := normalizeConditions(*in.Conditions)
		if err := membership.Validate(rule); err != nil {
			return in, apperror.NewValidation(err.Error())
		}
		in.Conditions = &rule
		in.ProductIDs = nil
	default:
		return in, apperror.NewBadRequest("mode must be manual or by_tags")
	}
	return in, nil
}

// normalizeConditions fills editor defaults and cleans tag id lists.
func normalizeConditions(c membership.TagConditions) membership.TagConditions {
	defaults := membership.DefaultConditions()
	if c.Logic == "" {
		c.Logic = defaults.Logic
	}
	if c.Sort == "" {
		c.Sort = defaults.Sort
	}
	c.PriceMin = strings.TrimSpace(c.PriceMin)
	c.PriceMax = strings.TrimSpace(c.PriceMax)

	groups := make([]membership.ConditionGroup, len(c.Groups))
	for i, g := range c.Groups {
		groups[i] = membership.ConditionGroup{Type: g.Type, TagIDs: dedupe(g.TagIDs)}
	}
	c.Groups = groups
	return c
}

func unknownProducts(catalog []membership.Product, ids []string) []string {
	known := make(map[string]bool, len(catalog))
	for _, p := range catalog {
		known[p.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// dedupe trims ids and drops blanks and repeats, keeping order.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
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
