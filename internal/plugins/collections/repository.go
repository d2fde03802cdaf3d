package collections

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/keyxmakerx/tagboard/internal/apperror"
	"github.com/keyxmakerx/tagboard/internal/membership"
)

// CollectionRepository is the data access contract for collections and
// their member and tag join tables.
type CollectionRepository interface {
	// Create inserts the collection with its product list and tag index in
	// one transaction.
	Create(ctx context.Context, c *Collection) error

	// Update rewrites the collection, its product list and tag index in
	// one transaction.
	Update(ctx context.Context, c *Collection) error

	// FindByID returns the collection with ProductIDs loaded.
	FindByID(ctx context.Context, id string) (*Collection, error)

	List(ctx context.Context, filter ListFilter) ([]Collection, error)
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	// ListRules returns every by_tags collection with its conditions.
	ListRules(ctx context.Context) ([]Collection, error)

	// SetProductsCount stores a recomputed count without touching
	// updated_at. Reports whether the stored value changed.
	SetProductsCount(ctx context.Context, id string, count int) (bool, error)
}

type collectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a MariaDB-backed CollectionRepository.
func NewCollectionRepository(db *sql.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

const collectionColumns = `c.id, c.name, c.slug, COALESCE(c.description, ''), c.seller, c.type,
	c.mode, c.visibility, c.status, c.conditions, c.products_count, c.updated_at, c.updated_by`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(s rowScanner) (Collection, error) {
	var (
		c    Collection
		rule sql.NullString
	)
	err := s.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Seller, &c.Type,
		&c.Mode, &c.Visibility, &c.Status, &rule, &c.ProductsCount, &c.UpdatedAt, &c.UpdatedBy)
	if err != nil {
		return c, err
	}
	if rule.Valid && rule.String != "" {
		var conditions membership.TagConditions
		if err := json.Unmarshal([]byte(rule.String), &conditions); err != nil {
			return c, fmt.Errorf("decoding conditions of collection %s: %w", c.ID, err)
		}
		c.Conditions = &conditions
	}
	return c, nil
}

// encodeConditions returns the JSON column value, NULL for manual
// collections.
func encodeConditions(c *Collection) (any, error) {
	if c.Conditions == nil {
		return nil, nil
	}
	b, err := json.Marshal(c.Conditions)
	if err != nil {
		return nil, fmt.Errorf("encoding conditions: %w", err)
	}
	return string(b), nil
}

func (r *collectionRepository) Create(ctx context.Context, c *Collection) error {
	rule, err := encodeConditions(c)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning collection transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO collections (id, name, slug, description, seller, type, mode, visibility, status,
		                          conditions, products_count, updated_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.Description, c.Seller, c.Type, c.Mode, c.Visibility, c.Status,
		rule, c.ProductsCount, c.UpdatedBy,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperror.NewConflict("a collection with this slug already exists")
		}
		return fmt.Errorf("inserting collection: %w", err)
	}

	if err := writeMembers(ctx, tx, c); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing collection: %w", err)
	}
	return nil
}

func (r *collectionRepository) Update(ctx context.Context, c *Collection) error {
	rule, err := encodeConditions(c)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning collection transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE collections SET name = ?, slug = ?, description = ?, seller = ?, type = ?, mode = ?,
		        visibility = ?, conditions = ?, products_count = ?, updated_by = ?
		 WHERE id = ?`,
		c.Name, c.Slug, c.Description, c.Seller, c.Type, c.Mode,
		c.Visibility, rule, c.ProductsCount, c.UpdatedBy, c.ID,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperror.NewConflict("a collection with this slug already exists")
		}
		return fmt.Errorf("updating collection: %w", err)
	}
	if err := requireAffected(result, "collection not found"); err != nil {
		return err
	}

	for _, table := range []string{"collection_products", "collection_tags"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE collection_id = ?`, c.ID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	if err := writeMembers(ctx, tx, c); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing collection: %w", err)
	}
	return nil
}

// writeMembers stores the manual product order and the tag index used for
// tag usage counts. Tag ids that no longer exist are skipped.
func writeMembers(ctx context.Context, tx *sql.Tx, c *Collection) error {
	if len(c.ProductIDs) > 0 {
		values := make([]string, len(c.ProductIDs))
		args := make([]any, 0, len(c.ProductIDs)*3)
		for i, id := range c.ProductIDs {
			values[i] = "(?, ?, ?)"
			args = append(args, c.ID, id, i)
		}
		query := `INSERT INTO collection_products (collection_id, product_id, position) VALUES ` +
			strings.Join(values, ", ")
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting collection products: %w", err)
		}
	}

	tagIDs := ruleTagIDs(c.Conditions)
	if len(tagIDs) > 0 {
		args := make([]any, 0, len(tagIDs)+1)
		args = append(args, c.ID)
		for _, id := range tagIDs {
			args = append(args, id)
		}
		query := `INSERT IGNORE INTO collection_tags (collection_id, tag_id)
		          SELECT ?, t.id FROM tags t WHERE t.id IN (` + placeholders(len(tagIDs)) + `)`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("indexing collection tags: %w", err)
		}
	}
	return nil
}

// ruleTagIDs returns the distinct tag ids referenced by a rule, in first
// appearance order.
func ruleTagIDs(conditions *membership.TagConditions) []string {
	if conditions == nil {
		return nil
	}
	seen := make(map[string]bool)
	var ids []string
	for _, g := range conditions.Groups {
		for _, id := range g.TagIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (r *collectionRepository) FindByID(ctx context.Context, id string) (*Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections c WHERE c.id = ?`

	c, err := scanCollection(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("collection not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying collection by id: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id FROM collection_products WHERE collection_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("loading collection products: %w", err)
	}
	defer rows.Close()

	c.ProductIDs = []string{}
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			return nil, fmt.Errorf("scanning collection product: %w", err)
		}
		c.ProductIDs = append(c.ProductIDs, pid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collection products: %w", err)
	}
	return &c, nil
}

// List applies a normalized filter, newest first.
func (r *collectionRepository) List(ctx context.Context, filter ListFilter) ([]Collection, error) {
	var (
		where []string
		args  []any
	)
	if filter.Search != "" {
		where = append(where, `c.name LIKE ? ESCAPE '\\'`)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}
	if filter.Type != filterAll {
		where = append(where, "c.type = ?")
		args = append(args, filter.Type)
	}

	query := `SELECT ` + collectionColumns + ` FROM collections c`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.updated_at DESC, c.id ASC"

	return r.query(ctx, query, args...)
}

func (r *collectionRepository) ListRules(ctx context.Context) ([]Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections c
	          WHERE c.mode = ? AND c.conditions IS NOT NULL ORDER BY c.id`
	return r.query(ctx, query, ModeByTags)
}

func (r *collectionRepository) query(ctx context.Context, query string, args ...any) ([]Collection, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	collections := []Collection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning collection row: %w", err)
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collection rows: %w", err)
	}
	return collections, nil
}

// Delete removes a collection. Foreign keys cascade to the join tables.
func (r *collectionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return requireAffected(result, "collection not found")
}

func (r *collectionRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM collections WHERE slug = ? AND id <> ?)`, slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking collection slug: %w", err)
	}
	return exists, nil
}

// SetProductsCount matches only when the count differs, so with
// clientFoundRows an unchanged count reports zero rows.
func (r *collectionRepository) SetProductsCount(ctx context.Context, id string, count int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE collections SET products_count = ?, updated_at = updated_at
		 WHERE id = ? AND products_count <> ?`, count, id, count)
	if err != nil {
		return false, fmt.Errorf("updating products count: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return n > 0, nil
}

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

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
