package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/keyxmakerx/tagboard/internal/apperror"
)

// TagRepository is the data access contract for tags. All SQL lives here.
type TagRepository interface {
	Create(ctx context.Context, tag *Tag) error
	FindByID(ctx context.Context, id string) (*Tag, error)
	List(ctx context.Context, filter ListFilter) ([]Tag, error)
	Update(ctx context.Context, tag *Tag) error
	SetStatus(ctx context.Context, id string, status Status, actor string) error
	Delete(ctx context.Context, id string) error

	// SlugExists reports whether slug is taken by a tag other than excludeID.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

type tagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a MariaDB-backed TagRepository.
func NewTagRepository(db *sql.DB) TagRepository {
	return &tagRepository{db: db}
}

// tagColumns selects a tag with its usage counts. Counts are derived from
// the join tables so they never drift.
const tagColumns = `t.id, t.name, t.slug, COALESCE(t.description, ''), t.owner_type,
	t.visibility, t.status, t.restrictions, t.updated_at, t.updated_by,
	(SELECT COUNT(*) FROM product_tags pt WHERE pt.tag_id = t.id) AS products_count,
	(SELECT COUNT(*) FROM collection_tags ct WHERE ct.tag_id = t.id) AS collections_count`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTag(s rowScanner) (Tag, error) {
	var t Tag
	err := s.Scan(
		&t.ID, &t.Name, &t.Slug, &t.Description, &t.OwnerType,
		&t.Visibility, &t.Status, &t.Restrictions, &t.UpdatedAt, &t.UpdatedBy,
		&t.ProductsCount, &t.CollectionsCount,
	)
	return t, err
}

func (r *tagRepository) Create(ctx context.Context, tag *Tag) error {
	query := `INSERT INTO tags (id, name, slug, description, owner_type, visibility, status, restrictions, updated_by)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		tag.ID, tag.Name, tag.Slug, tag.Description, tag.OwnerType,
		tag.Visibility, tag.Status, tag.Restrictions, tag.UpdatedBy,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperror.NewConflict("a tag with this slug already exists")
		}
		return fmt.Errorf("inserting tag: %w", err)
	}
	return nil
}

func (r *tagRepository) FindByID(ctx context.Context, id string) (*Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags t WHERE t.id = ?`

	t, err := scanTag(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("tag not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying tag by id: %w", err)
	}
	return &t, nil
}

// List applies the filter in SQL. The filter must already be normalized
// by the service.
func (r *tagRepository) List(ctx context.Context, filter ListFilter) ([]Tag, error) {
	var (
		where []string
		args  []any
	)
	if filter.Search != "" {
		where = append(where, `t.name LIKE ? ESCAPE '\\'`)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}
	if filter.Visibility != filterAll {
		where = append(where, "t.visibility = ?")
		args = append(args, filter.Visibility)
	}
	if filter.Status != filterAll {
		where = append(where, "t.status = ?")
		args = append(args, filter.Status)
	}

	inner := `SELECT ` + tagColumns + ` FROM tags t`
	if len(where) > 0 {
		inner += " WHERE " + strings.Join(where, " AND ")
	}
	query := `SELECT * FROM (` + inner + `) AS tl ORDER BY ` + orderBy(filter.Sort)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tag rows: %w", err)
	}
	return tags, nil
}

func orderBy(sort string) string {
	switch sort {
	case SortName:
		return "name ASC, id ASC"
	case SortPopularity:
		return "products_count + collections_count DESC, name ASC"
	default:
		return "updated_at DESC, id ASC"
	}
}

func (r *tagRepository) Update(ctx context.Context, tag *Tag) error {
	query := `UPDATE tags SET name = ?, slug = ?, description = ?, owner_type = ?,
	           visibility = ?, restrictions = ?, updated_by = ?
	           WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		tag.Name, tag.Slug, tag.Description, tag.OwnerType,
		tag.Visibility, tag.Restrictions, tag.UpdatedBy, tag.ID,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperror.NewConflict("a tag with this slug already exists")
		}
		return fmt.Errorf("updating tag: %w", err)
	}
	return requireAffected(result, "tag not found")
}

func (r *tagRepository) SetStatus(ctx context.Context, id string, status Status, actor string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tags SET status = ?, updated_by = ? WHERE id = ?`, status, actor, id)
	if err != nil {
		return fmt.Errorf("updating tag status: %w", err)
	}
	return requireAffected(result, "tag not found")
}

// Delete removes a tag. Foreign keys cascade to product_tags and
// collection_tags.
func (r *tagRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}
	return requireAffected(result, "tag not found")
}

func (r *tagRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tags WHERE slug = ? AND id <> ?)`, slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking tag slug: %w", err)
	}
	return exists, nil
}

// requireAffected turns a zero-row UPDATE/DELETE into a 404. The DSN sets
// clientFoundRows, so an UPDATE that changes nothing still counts its row.
func requireAffected(result sql.Result, notFound string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound(notFound)
	}
	return nil
}

// isDuplicateEntry checks for MariaDB error 1062 (duplicate key).
func isDuplicateEntry(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
