package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/keyxmakerx/tagboard/internal/apperror"
)

// perPage is the number of entries per page of the log.
const perPage = 50

// AuditService records and lists console changes.
type AuditService interface {
	// Log validates and stores an entry. Failures are logged here, so
	// callers may ignore the error.
	Log(ctx context.Context, entry *Entry) error

	List(ctx context.Context, filter ListFilter) (*Page, error)
}

type auditService struct {
	repo AuditRepository
	now  func() time.Time
}

// NewAuditService creates an AuditService backed by the given repository.
func NewAuditService(repo AuditRepository) AuditService {
	return &auditService{repo: repo, now: time.Now}
}

func (s *auditService) Log(ctx context.Context, entry *Entry) error {
	if entry.Actor == "" {
		return apperror.NewBadRequest("actor is required for an audit entry")
	}
	if entry.Action == "" {
		return apperror.NewBadRequest("action is required for an audit entry")
	}
	if entry.ResourceType == "" {
		entry.ResourceType = entry.Action.ResourceType()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}

	if err := s.repo.Log(ctx, entry); err != nil {
		slog.Error("failed to write audit entry",
			slog.String("action", string(entry.Action)),
			slog.String("actor", entry.Actor),
			slog.Any("error", err),
		)
		return apperror.NewInternal(fmt.Errorf("writing audit entry: %w", err))
	}
	return nil
}

// List clamps the page to 1 and trims the filter values.
func (s *auditService) List(ctx context.Context, filter ListFilter) (*Page, error) {
	filter.Actor = strings.TrimSpace(filter.Actor)
	filter.ResourceType = strings.TrimSpace(filter.ResourceType)
	filter.ResourceID = strings.TrimSpace(filter.ResourceID)
	if filter.Page < 1 {
		filter.Page = 1
	}

	entries, total, err := s.repo.List(ctx, filter, perPage, (filter.Page-1)*perPage)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing audit entries: %w", err))
	}
	return &Page{Entries: entries, Total: total, Page: filter.Page, PerPage: perPage}, nil
}
