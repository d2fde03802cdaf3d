package tags

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/keyxmakerx/tagboard/internal/apperror"
)

// --- Mock Repository ---

type mockTagRepo struct {
	createFn     func(ctx context.Context, tag *Tag) error
	findByIDFn   func(ctx context.Context, id string) (*Tag, error)
	listFn       func(ctx context.Context, filter ListFilter) ([]Tag, error)
	updateFn     func(ctx context.Context, tag *Tag) error
	setStatusFn  func(ctx context.Context, id string, status Status, actor string) error
	deleteFn     func(ctx context.Context, id string) error
	slugExistsFn func(ctx context.Context, slug, excludeID string) (bool, error)
}

func (m *mockTagRepo) Create(ctx context.Context, tag *Tag) error {
	if m.createFn != nil {
		return m.createFn(ctx, tag)
	}
	return nil
}

func (m *mockTagRepo) FindByID(ctx context.Context, id string) (*Tag, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("tag not found")
}

func (m *mockTagRepo) List(ctx context.Context, filter ListFilter) ([]Tag, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return []Tag{}, nil
}

func (m *mockTagRepo) Update(ctx context.Context, tag *Tag) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, tag)
	}
	return nil
}

func (m *mockTagRepo) SetStatus(ctx context.Context, id string, status Status, actor string) error {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, id, status, actor)
	}
	return nil
}

func (m *mockTagRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockTagRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	if m.slugExistsFn != nil {
		return m.slugExistsFn(ctx, slug, excludeID)
	}
	return false, nil
}

// storingRepo returns a mock whose FindByID serves whatever Create or
// Update last wrote.
func storingRepo(initial ...Tag) *mockTagRepo {
	store := map[string]Tag{}
	for _, t := range initial {
		store[t.ID] = t
	}
	save := func(_ context.Context, tag *Tag) error {
		store[tag.ID] = *tag
		return nil
	}
	return &mockTagRepo{
		createFn: save,
		updateFn: save,
		findByIDFn: func(_ context.Context, id string) (*Tag, error) {
			t, ok := store[id]
			if !ok {
				return nil, apperror.NewNotFound("tag not found")
			}
			return &t, nil
		},
		setStatusFn: func(_ context.Context, id string, status Status, actor string) error {
			t, ok := store[id]
			if !ok {
				return apperror.NewNotFound("tag not found")
			}
			t.Status, t.UpdatedBy = status, actor
			store[id] = t
			return nil
		},
	}
}

// --- Test Helpers ---

func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// --- Slug Tests ---

func TestGenerateSlug(t *testing.T) {
	tests := map[string]string{
		"Новинки":          "novinki",
		"Хит продаж":       "hit-prodazh",
		"Сезон лето":       "sezon-leto",
		"Тестовый":         "testovyj",
		"Эксклюзив":        "eksklyuziv",
		"Уценка":           "utsenka",
		"Архивный тег":     "arhivnyj-teg",
		"Щука & Ёж":        "schuka-yozh",
		"Summer Sale 2026": "summer-sale-2026",
		"  !!! ":           "tag",
		"Подъезд":          "podezd",
	}
	for in, want := range tests {
		if got := generateSlug(in); got != want {
			t.Errorf("generateSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerateSlug_Truncates(t *testing.T) {
	got := generateSlug(strings.Repeat("щ", 100))
	if len(got) > maxSlugLength {
		t.Errorf("slug length %d exceeds %d", len(got), maxSlugLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug %q ends with a hyphen", got)
	}
}

// --- Create Tests ---

func TestCreate_Success(t *testing.T) {
	svc := NewTagService(storingRepo())

	tag, err := svc.Create(context.Background(), TagInput{
		Name:        "  Новинки ",
		Description: "<b>Недавно</b> добавленные",
	}, "Анна М.")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if tag.ID == "" {
		t.Error("expected generated id")
	}
	if tag.Name != "Новинки" || tag.Slug != "novinki" {
		t.Errorf("name/slug = %q/%q", tag.Name, tag.Slug)
	}
	if tag.Description != "Недавно добавленные" {
		t.Errorf("description not sanitized: %q", tag.Description)
	}
	if tag.Status != StatusActive || tag.OwnerType != OwnerGlobal || tag.Visibility != VisibilityPublic {
		t.Errorf("defaults = %s/%s/%s", tag.Status, tag.OwnerType, tag.Visibility)
	}
	if tag.UpdatedBy != "Анна М." {
		t.Errorf("UpdatedBy = %q", tag.UpdatedBy)
	}
}

func TestCreate_SlugTakenGetsSuffix(t *testing.T) {
	repo := storingRepo()
	repo.slugExistsFn = func(_ context.Context, slug, _ string) (bool, error) {
		return slug == "novinki" || slug == "novinki-2", nil
	}

	tag, err := NewTagService(repo).Create(context.Background(), TagInput{Name: "Новинки"}, "system")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tag.Slug != "novinki-3" {
		t.Errorf("Slug = %q, want novinki-3", tag.Slug)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input TagInput
		code  int
	}{
		{"empty name", TagInput{Name: "   "}, http.StatusBadRequest},
		{"markup only", TagInput{Name: "<script>x</script>"}, http.StatusBadRequest},
		{"long name", TagInput{Name: strings.Repeat("а", 101)}, http.StatusBadRequest},
		{"bad owner", TagInput{Name: "Ok", OwnerType: "team"}, http.StatusBadRequest},
		{"bad visibility", TagInput{Name: "Ok", Visibility: "hidden"}, http.StatusBadRequest},
		{"reversed prices", TagInput{Name: "Ok", Restrictions: Restrictions{PriceMin: dec("5000"), PriceMax: dec("100")}}, http.StatusUnprocessableEntity},
		{"negative price", TagInput{Name: "Ok", Restrictions: Restrictions{PriceMin: dec("-1")}}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockTagRepo{
				createFn: func(context.Context, *Tag) error {
					t.Fatal("Create should not reach the repository")
					return nil
				},
			}
			_, err := NewTagService(repo).Create(context.Background(), tt.input, "system")
			assertAppError(t, err, tt.code)
		})
	}
}

func TestCreate_CompactsRestrictionLists(t *testing.T) {
	tag, err := NewTagService(storingRepo()).Create(context.Background(), TagInput{
		Name: "Подарки",
		Restrictions: Restrictions{
			Categories: []string{" Книги", "", "Книги", "Красота"},
			Sellers:    []string{"  "},
		},
	}, "system")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got := strings.Join(tag.Restrictions.Categories, ","); got != "Книги,Красота" {
		t.Errorf("Categories = %q", got)
	}
	if tag.Restrictions.Sellers != nil {
		t.Errorf("Sellers = %v, want nil", tag.Restrictions.Sellers)
	}
}

// --- Update Tests ---

func TestUpdate_KeepsSlugWhenNameUnchanged(t *testing.T) {
	repo := storingRepo(Tag{ID: "1", Name: "Новинки", Slug: "novinki-custom", Status: StatusActive})
	repo.slugExistsFn = func(context.Context, string, string) (bool, error) {
		t.Fatal("slug lookup not expected when the name is unchanged")
		return false, nil
	}

	tag, err := NewTagService(repo).Update(context.Background(), "1", TagInput{Name: "Новинки", Visibility: VisibilityService}, "Иван К.")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if tag.Slug != "novinki-custom" || tag.Visibility != VisibilityService || tag.UpdatedBy != "Иван К." {
		t.Errorf("Update() = %+v", tag)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	_, err := NewTagService(storingRepo()).Update(context.Background(), "missing", TagInput{Name: "x"}, "system")
	assertAppError(t, err, http.StatusNotFound)
}

// --- Duplicate / Archive Tests ---

func TestDuplicate(t *testing.T) {
	src := Tag{
		ID: "7", Name: "Уценка", Slug: "utsenka", Status: StatusArchived,
		OwnerType: OwnerGlobal, Visibility: VisibilityPublic,
		Restrictions: Restrictions{PriceMax: dec("1000")},
	}
	copyTag, err := NewTagService(storingRepo(src)).Duplicate(context.Background(), "7", "Анна М.")
	if err != nil {
		t.Fatalf("Duplicate() error = %v", err)
	}

	if copyTag.ID == src.ID {
		t.Error("duplicate reused the source id")
	}
	if copyTag.Name != "Уценка (копия)" || copyTag.Slug != "utsenka-kopiya" {
		t.Errorf("name/slug = %q/%q", copyTag.Name, copyTag.Slug)
	}
	if copyTag.Status != StatusActive {
		t.Errorf("Status = %s, want active", copyTag.Status)
	}
	if copyTag.Restrictions.PriceMax == nil || !copyTag.Restrictions.PriceMax.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("restrictions not copied: %+v", copyTag.Restrictions)
	}
}

func TestDuplicate_LongNameFits(t *testing.T) {
	src := Tag{ID: "1", Name: strings.Repeat("я", maxNameLength), Status: StatusActive}
	copyTag, err := NewTagService(storingRepo(src)).Duplicate(context.Background(), "1", "system")
	if err != nil {
		t.Fatalf("Duplicate() error = %v", err)
	}
	if !strings.HasSuffix(copyTag.Name, copySuffix) {
		t.Errorf("Name = %q, want copy suffix", copyTag.Name)
	}
}

func TestArchiveRestore(t *testing.T) {
	svc := NewTagService(storingRepo(Tag{ID: "1", Name: "Новинки", Status: StatusActive}))
	ctx := context.Background()

	tag, err := svc.Archive(ctx, "1", "Дмитрий С.")
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if tag.Status != StatusArchived || tag.UpdatedBy != "Дмитрий С." {
		t.Errorf("after archive: %s by %s", tag.Status, tag.UpdatedBy)
	}

	_, err = svc.Assignable(ctx, "1")
	assertAppError(t, err, http.StatusUnprocessableEntity)

	if _, err := svc.Restore(ctx, "1", "Дмитрий С."); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if _, err := svc.Assignable(ctx, "1"); err != nil {
		t.Errorf("Assignable() after restore error = %v", err)
	}
}

func TestAssignable_Unknown(t *testing.T) {
	_, err := NewTagService(storingRepo()).Assignable(context.Background(), "nope")
	assertAppError(t, err, http.StatusNotFound)
}

// --- List Tests ---

func TestList_Defaults(t *testing.T) {
	var got ListFilter
	repo := &mockTagRepo{
		listFn: func(_ context.Context, f ListFilter) ([]Tag, error) {
			got = f
			return []Tag{}, nil
		},
	}

	if _, err := NewTagService(repo).List(context.Background(), ListFilter{Search: "  нов "}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := ListFilter{Search: "нов", Visibility: "all", Status: "active", Sort: SortUpdated}
	if got != want {
		t.Errorf("normalized filter = %+v, want %+v", got, want)
	}
}

func TestList_InvalidFilter(t *testing.T) {
	svc := NewTagService(&mockTagRepo{})
	for _, f := range []ListFilter{
		{Sort: "random"},
		{Status: "deleted"},
		{Visibility: "private"},
	} {
		_, err := svc.List(context.Background(), f)
		assertAppError(t, err, http.StatusBadRequest)
	}
}

func TestPopularity(t *testing.T) {
	tag := Tag{ProductsCount: 342, CollectionsCount: 5}
	if tag.Popularity() != 347 {
		t.Errorf("Popularity() = %d", tag.Popularity())
	}
}
