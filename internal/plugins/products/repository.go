package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/keyxmakerx/tagboard/internal/apperror"
	"github.com/keyxmakerx/tagboard/internal/membership"
)

// ProductRepository is the data access contract for products and their
// tag assignments.
type ProductRepository interface {
	// List returns products matching the normalized filter, ordered by
	// catalog position, with their tags loaded.
	List(ctx context.Context, filter ListFilter) ([]Product, error)

	FindByID(ctx context.Context, id string) (*Product, error)

	// ApplyTag adds or removes one tag on the given products in a single
	// transaction. Added tags are appended after existing ones.
	ApplyTag(ctx context.Context, productIDs []string, op membership.Op, tag membership.ProductTag) error

	Categories(ctx context.Context) ([]string, error)
	Sellers(ctx context.Context) ([]string, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a MariaDB-backed ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.product_id, p.name, p.seller, p.category, p.price,
	p.rating, p.type, COALESCE(p.parent_spu_id, '')`

// catalogOrder is the canonical catalog order every listing uses. Seed
// ids are "p1".."p15", so length first keeps p2 ahead of p10.
const catalogOrder = `ORDER BY p.created_at ASC, CHAR_LENGTH(p.id) ASC, p.id ASC`

func (r *productRepository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	var (
		where []string
		args  []any
	)
	if filter.Search != "" {
		where = append(where, `p.name LIKE ? ESCAPE '\\'`)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}
	if filter.ProductID != "" {
		where = append(where, `p.product_id LIKE ? ESCAPE '\\'`)
		args = append(args, "%"+escapeLike(filter.ProductID)+"%")
	}
	if filter.Category != "" {
		where = append(where, "p.category = ?")
		args = append(args, filter.Category)
	}
	if filter.Seller != "" {
		where = append(where, "p.seller = ?")
		args = append(args, filter.Seller)
	}
	if bound, ok := membership.ParseBound(filter.PriceMin); ok {
		where = append(where, "p.price >= ?")
		args = append(args, bound.String())
	}
	if bound, ok := membership.ParseBound(filter.PriceMax); ok {
		where = append(where, "p.price <= ?")
		args = append(args, bound.String())
	}

	query := `SELECT ` + productColumns + ` FROM products p`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " " + catalogOrder

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	if err := r.loadTags(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = ?`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	one := []Product{p}
	if err := r.loadTags(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (Product, error) {
	var p Product
	err := s.Scan(&p.ID, &p.ProductID, &p.Name, &p.Seller, &p.Category, &p.Price,
		&p.Rating, &p.Type, &p.ParentSPUID)
	p.Tags = []membership.ProductTag{}
	return p, err
}

// loadTags fills Tags for the given products with one query.
func (r *productRepository) loadTags(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}

	index := make(map[string]int, len(products))
	args := make([]any, len(products))
	for i, p := range products {
		index[p.ID] = i
		args[i] = p.ID
	}

	query := `SELECT pt.product_id, pt.tag_id, t.name, pt.source
	           FROM product_tags pt
	           JOIN tags t ON t.id = pt.tag_id
	           WHERE pt.product_id IN (` + placeholders(len(args)) + `)
	           ORDER BY pt.product_id, pt.position, pt.created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("loading product tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID string
			tag       membership.ProductTag
		)
		if err := rows.Scan(&productID, &tag.TagID, &tag.TagName, &tag.Source); err != nil {
			return fmt.Errorf("scanning product tag row: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Tags = append(products[i].Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating product tag rows: %w", err)
	}
	return nil
}

func (r *productRepository) ApplyTag(ctx context.Context, productIDs []string, op membership.Op, tag membership.ProductTag) error {
	if len(productIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tag transaction: %w", err)
	}
	defer tx.Rollback()

	switch op {
	case membership.OpAdd:
		insert := `INSERT IGNORE INTO product_tags (product_id, tag_id, source, position)
		            SELECT ?, ?, ?, COALESCE(MAX(position) + 1, 0)
		            FROM product_tags WHERE product_id = ?`
		for _, id := range productIDs {
			if _, err := tx.ExecContext(ctx, insert, id, tag.TagID, tag.Source, id); err != nil {
				return fmt.Errorf("adding tag %s to product %s: %w", tag.TagID, id, err)
			}
		}
	case membership.OpRemove:
		args := make([]any, 0, len(productIDs)+1)
		args = append(args, tag.TagID)
		for _, id := range productIDs {
			args = append(args, id)
		}
		query := `DELETE FROM product_tags WHERE tag_id = ? AND product_id IN (` + placeholders(len(productIDs)) + `)`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("removing tag %s: %w", tag.TagID, err)
		}
	default:
		return fmt.Errorf("unknown tag operation %q", op)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tag transaction: %w", err)
	}
	return nil
}

func (r *productRepository) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

func (r *productRepository) Sellers(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "seller")
}

// distinct lists the distinct values of a trusted column name.
func (r *productRepository) distinct(ctx context.Context, column string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT `+column+` FROM products WHERE `+column+` <> '' ORDER BY `+column)
	if err != nil {
		return nil, fmt.Errorf("listing distinct %s: %w", column, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", column, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", column, err)
	}
	return values, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
