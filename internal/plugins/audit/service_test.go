package audit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/keyxmakerx/tagboard/internal/apperror"
)

// --- Mocks ---

type mockAuditRepo struct {
	logFn  func(ctx context.Context, entry *Entry) error
	listFn func(ctx context.Context, filter ListFilter, limit, offset int) ([]Entry, int, error)
}

func (m *mockAuditRepo) Log(ctx context.Context, entry *Entry) error {
	if m.logFn != nil {
		return m.logFn(ctx, entry)
	}
	return nil
}

func (m *mockAuditRepo) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Entry, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter, limit, offset)
	}
	return []Entry{}, 0, nil
}

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

// --- Tests ---

func TestLog_FillsDefaults(t *testing.T) {
	var stored *Entry
	repo := &mockAuditRepo{logFn: func(_ context.Context, e *Entry) error {
		stored = e
		return nil
	}}
	svc := NewAuditService(repo).(*auditService)
	fixed := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	err := svc.Log(context.Background(), &Entry{Actor: "Анна М.", Action: ActionTagArchived, ResourceID: "7"})
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if stored.ResourceType != "tag" || !stored.CreatedAt.Equal(fixed) {
		t.Errorf("stored = %+v", stored)
	}
}

func TestLog_Validation(t *testing.T) {
	svc := NewAuditService(&mockAuditRepo{})

	assertAppError(t, svc.Log(context.Background(), &Entry{Action: ActionTagCreated}), http.StatusBadRequest)
	assertAppError(t, svc.Log(context.Background(), &Entry{Actor: "system"}), http.StatusBadRequest)
}

func TestLog_RepoFailureIsInternal(t *testing.T) {
	repo := &mockAuditRepo{logFn: func(context.Context, *Entry) error {
		return errors.New("connection reset")
	}}

	err := NewAuditService(repo).Log(context.Background(), &Entry{Actor: "system", Action: ActionPostCreated})
	assertAppError(t, err, http.StatusInternalServerError)
}

func TestList_Pagination(t *testing.T) {
	var gotFilter ListFilter
	var gotLimit, gotOffset int
	repo := &mockAuditRepo{listFn: func(_ context.Context, f ListFilter, limit, offset int) ([]Entry, int, error) {
		gotFilter, gotLimit, gotOffset = f, limit, offset
		return []Entry{{ID: 1}}, 120, nil
	}}
	svc := NewAuditService(repo)

	page, err := svc.List(context.Background(), ListFilter{ResourceType: " collection ", Page: 3})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if gotLimit != perPage || gotOffset != 2*perPage || gotFilter.ResourceType != "collection" {
		t.Errorf("repo called with %+v limit=%d offset=%d", gotFilter, gotLimit, gotOffset)
	}
	if page.Total != 120 || page.Page != 3 || page.PerPage != perPage {
		t.Errorf("page = %+v", page)
	}

	page, _ = svc.List(context.Background(), ListFilter{Page: -4})
	if page.Page != 1 || gotOffset != 0 {
		t.Errorf("negative page not clamped: page=%d offset=%d", page.Page, gotOffset)
	}
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		method, path string
		want         Action
		ok           bool
	}{
		{http.MethodPost, "/api/v1/tags/:id/archive", ActionTagArchived, true},
		{http.MethodDelete, "/api/v1/products/:id/tags/:tagId", ActionProductTagRemoved, true},
		{http.MethodPost, "/api/v1/collections/:id/reorder", ActionCollectionReordered, true},
		{http.MethodPost, "/api/v1/posts/:id/reactions/:label", ActionPostReactionToggled, true},
		{http.MethodGet, "/api/v1/tags", "", false},
		{http.MethodPost, "/api/v1/collections/preview", "", false},
		{http.MethodPost, "/api/v1/collections/import", "", false},
	}
	for _, tt := range tests {
		got, ok := ActionFor(tt.method, tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ActionFor(%s %s) = %q, %v; want %q, %v", tt.method, tt.path, got, ok, tt.want, tt.ok)
		}
	}

	if got := ActionProductBulkTagged.ResourceType(); got != "product" {
		t.Errorf("ResourceType() = %q, want product", got)
	}
}
