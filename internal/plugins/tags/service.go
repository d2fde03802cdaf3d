package tags

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/keyxmakerx/tagboard/internal/apperror"
	"github.com/keyxmakerx/tagboard/internal/sanitize"
)

// maxNameLength is the limit on tag names, in characters.
const maxNameLength = 100

// copySuffix marks duplicated tags.
const copySuffix = " (копия)"

// maxSlugLength leaves room for a "-NN" suffix within the slug column.
const maxSlugLength = 110

// maxSlugAttempts bounds the numeric suffixes tried for a free slug.
const maxSlugAttempts = 50

// slugPattern matches runs of characters that are not allowed in a slug.
var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// TagService is the business logic contract for tags. Handlers and other
// plugins call these methods and never touch the repository directly.
type TagService interface {
	Create(ctx context.Context, input TagInput, actor string) (*Tag, error)
	GetByID(ctx context.Context, id string) (*Tag, error)
	List(ctx context.Context, filter ListFilter) ([]Tag, error)
	Update(ctx context.Context, id string, input TagInput, actor string) (*Tag, error)

	// Duplicate copies a tag under a "(копия)" name with a fresh id and slug.
	Duplicate(ctx context.Context, id string, actor string) (*Tag, error)

	Archive(ctx context.Context, id string, actor string) (*Tag, error)
	Restore(ctx context.Context, id string, actor string) (*Tag, error)
	Delete(ctx context.Context, id string) error

	// Assignable returns the tag when it exists and is active. Archived tags
	// yield a 422 so callers can refuse new assignments.
	Assignable(ctx context.Context, id string) (*Tag, error)
}

type tagService struct {
	repo TagRepository
}

// NewTagService creates a TagService backed by the given repository.
func NewTagService(repo TagRepository) TagService {
	return &tagService{repo: repo}
}

func (s *tagService) Create(ctx context.Context, input TagInput, actor string) (*Tag, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	slug, err := s.uniqueSlug(ctx, generateSlug(input.Name), id)
	if err != nil {
		return nil, err
	}

	tag := &Tag{
		ID:           id,
		Name:         input.Name,
		Slug:         slug,
		Description:  input.Description,
		OwnerType:    input.OwnerType,
		Visibility:   input.Visibility,
		Status:       StatusActive,
		Restrictions: input.Restrictions,
		UpdatedBy:    actor,
	}
	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *tagService) GetByID(ctx context.Context, id string) (*Tag, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *tagService) List(ctx context.Context, filter ListFilter) ([]Tag, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

func (s *tagService) Update(ctx context.Context, id string, input TagInput, actor string) (*Tag, error) {
	tag, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input, err = normalizeInput(input)
	if err != nil {
		return nil, err
	}

	if input.Name != tag.Name {
		slug, err := s.uniqueSlug(ctx, generateSlug(input.Name), id)
		if err != nil {
			return nil, err
		}
		tag.Slug = slug
	}
	tag.Name = input.Name
	tag.Description = input.Description
	tag.OwnerType = input.OwnerType
	tag.Visibility = input.Visibility
	tag.Restrictions = input.Restrictions
	tag.UpdatedBy = actor

	if err := s.repo.Update(ctx, tag); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *tagService) Duplicate(ctx context.Context, id string, actor string) (*Tag, error) {
	src, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := truncateRunes(src.Name, maxNameLength-utf8.RuneCountInString(copySuffix)) + copySuffix
	return s.Create(ctx, TagInput{
		Name:         name,
		Description:  src.Description,
		OwnerType:    src.OwnerType,
		Visibility:   src.Visibility,
		Restrictions: src.Restrictions,
	}, actor)
}

func (s *tagService) Archive(ctx context.Context, id string, actor string) (*Tag, error) {
	return s.setStatus(ctx, id, StatusArchived, actor)
}

func (s *tagService) Restore(ctx context.Context, id string, actor string) (*Tag, error) {
	return s.setStatus(ctx, id, StatusActive, actor)
}

func (s *tagService) setStatus(ctx context.Context, id string, status Status, actor string) (*Tag, error) {
	if err := s.repo.SetStatus(ctx, id, status, actor); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *tagService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *tagService) Assignable(ctx context.Context, id string) (*Tag, error) {
	tag, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tag.IsActive() {
		return nil, apperror.NewValidation(fmt.Sprintf("tag %q is archived and cannot be assigned", tag.Name))
	}
	return tag, nil
}

// uniqueSlug returns base, or base-2, base-3... when base is taken by
// another tag.
func (s *tagService) uniqueSlug(ctx context.Context, base, id string) (string, error) {
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
	return "", apperror.NewConflict("too many tags share this name")
}

func normalizeInput(in TagInput) (TagInput, error) {
	in.Name = sanitize.Text(in.Name)
	if in.Name == "" {
		return in, apperror.NewBadRequest("tag name is required")
	}
	if utf8.RuneCountInString(in.Name) > maxNameLength {
		return in, apperror.NewBadRequest(fmt.Sprintf("tag name must be at most %d characters", maxNameLength))
	}
	in.Description = sanitize.Text(in.Description)

	switch in.OwnerType {
	case "":
		in.OwnerType = OwnerGlobal
	case OwnerGlobal, OwnerSeller:
	default:
		return in, apperror.NewBadRequest("ownerType must be global or seller")
	}
	switch in.Visibility {
	case "":
		in.Visibility = VisibilityPublic
	case VisibilityPublic, VisibilityService:
	default:
		return in, apperror.NewBadRequest("visibility must be public or service")
	}

	r := in.Restrictions
	if (r.PriceMin != nil && r.PriceMin.IsNegative()) || (r.PriceMax != nil && r.PriceMax.IsNegative()) {
		return in, apperror.NewValidation("price restrictions must not be negative")
	}
	if r.PriceMin != nil && r.PriceMax != nil && r.PriceMin.GreaterThan(*r.PriceMax) {
		return in, apperror.NewValidation("minimum price must not exceed maximum price")
	}
	in.Restrictions.Categories = compact(r.Categories)
	in.Restrictions.Sellers = compact(r.Sellers)
	return in, nil
}

func normalizeFilter(f ListFilter) (ListFilter, error) {
	f.Search = strings.TrimSpace(f.Search)

	switch f.Visibility {
	case "":
		f.Visibility = filterAll
	case filterAll, string(VisibilityPublic), string(VisibilityService):
	default:
		return f, apperror.NewBadRequest("visibility filter must be all, public or service")
	}
	switch f.Status {
	case "":
		f.Status = string(StatusActive)
	case filterAll, string(StatusActive), string(StatusArchived):
	default:
		return f, apperror.NewBadRequest("status filter must be all, active or archived")
	}
	switch f.Sort {
	case "":
		f.Sort = SortUpdated
	case SortUpdated, SortName, SortPopularity:
	default:
		return f, apperror.NewBadRequest("sort must be updated, name or popularity")
	}
	return f, nil
}

// compact trims entries and drops blanks and repeats, keeping order.
func compact(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// cyrillic maps lowercase Cyrillic letters to their Latin slug spelling.
var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch", 'ъ': "",
	'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// generateSlug returns the slug for a tag name, "tag" when nothing usable
// remains.
func generateSlug(name string) string {
	return Slugify(name, "tag")
}

// Slugify lowercases name, transliterates Cyrillic, collapses everything
// else that is not [a-z0-9] into single hyphens and trims them. Collections
// share this so tag and collection URLs look alike.
func Slugify(name, fallback string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if latin, ok := cyrillic[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}

	slug := strings.Trim(slugPattern.ReplaceAllString(b.String(), "-"), "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		slug = fallback
	}
	return slug
}
