package posts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/keyxmakerx/tagboard/internal/apperror"
)

// PostRepository is the data access contract for posts, their reactions
// and comments.
type PostRepository interface {
	Count(ctx context.Context) (int, error)

	// Create inserts a post with its reactions and comments.
	Create(ctx context.Context, p *Post) error

	// Update rewrites a post and replaces its reactions. Comments are
	// managed separately.
	Update(ctx context.Context, p *Post) error

	FindByID(ctx context.Context, id string) (*Post, error)

	// List returns every post, newest first, fully loaded.
	List(ctx context.Context) ([]Post, error)

	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status Status) error

	AddComment(ctx context.Context, postID string, c *Comment) error
	DeleteComment(ctx context.Context, postID, commentID string) error

	// ToggleReaction flips IsActive on one reaction and moves its count
	// by one in the matching direction.
	ToggleReaction(ctx context.Context, postID, label string) error
}

type postRepository struct {
	db *sql.DB
}

// NewPostRepository creates a MariaDB-backed PostRepository.
func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `p.id, p.author_name, p.author_avatar, p.text, p.images, p.status, p.posted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(s rowScanner) (Post, error) {
	var (
		p      Post
		images sql.NullString
	)
	err := s.Scan(&p.ID, &p.Author.Name, &p.Author.Avatar, &p.Text, &images, &p.Status, &p.Date)
	if err != nil {
		return p, err
	}
	p.Images = []string{}
	if images.Valid && images.String != "" {
		if err := json.Unmarshal([]byte(images.String), &p.Images); err != nil {
			return p, fmt.Errorf("decoding images of post %s: %w", p.ID, err)
		}
	}
	p.Reactions = []Reaction{}
	p.Comments = []Comment{}
	return p, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encoding images: %w", err)
	}
	return string(b), nil
}

func (r *postRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return n, nil
}

func (r *postRepository) Create(ctx context.Context, p *Post) error {
	images, err := encodeImages(p.Images)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning post transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO posts (id, author_name, author_avatar, text, images, status, posted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Author.Name, p.Author.Avatar, p.Text, images, p.Status, p.Date,
	)
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}
	if err := insertReactions(ctx, tx, p.ID, p.Reactions); err != nil {
		return err
	}
	for i := range p.Comments {
		if err := insertComment(ctx, tx, p.ID, &p.Comments[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing post: %w", err)
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, p *Post) error {
	images, err := encodeImages(p.Images)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning post transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE posts SET author_name = ?, author_avatar = ?, text = ?, images = ?, status = ?, posted_at = ?
		 WHERE id = ?`,
		p.Author.Name, p.Author.Avatar, p.Text, images, p.Status, p.Date, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	if err := requireAffected(result, "post not found"); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_reactions WHERE post_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clearing reactions: %w", err)
	}
	if err := insertReactions(ctx, tx, p.ID, p.Reactions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing post: %w", err)
	}
	return nil
}

func insertReactions(ctx context.Context, tx *sql.Tx, postID string, reactions []Reaction) error {
	if len(reactions) == 0 {
		return nil
	}
	values := make([]string, len(reactions))
	args := make([]any, 0, len(reactions)*6)
	for i, re := range reactions {
		values[i] = "(?, ?, ?, ?, ?, ?)"
		args = append(args, postID, re.Label, re.Emoji, re.Count, re.IsActive, i)
	}
	query := `INSERT INTO post_reactions (post_id, label, emoji, count, is_active, position) VALUES ` +
		strings.Join(values, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting reactions: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertComment(ctx context.Context, db execer, postID string, c *Comment) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO post_comments (id, post_id, author_name, author_avatar, text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, postID, c.Author.Name, c.Author.Avatar, c.Text, c.Date,
	)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying post by id: %w", err)
	}

	one := []Post{p}
	if err := r.loadChildren(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *postRepository) List(ctx context.Context) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts p ORDER BY p.posted_at DESC, p.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating post rows: %w", err)
	}

	if err := r.loadChildren(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// loadChildren fills reactions and comments with one query each.
func (r *postRepository) loadChildren(ctx context.Context, posts []Post) error {
	if len(posts) == 0 {
		return nil
	}
	index := make(map[string]int, len(posts))
	args := make([]any, len(posts))
	for i, p := range posts {
		index[p.ID] = i
		args[i] = p.ID
	}
	if err := r.loadReactions(ctx, posts, index, args); err != nil {
		return err
	}
	return r.loadComments(ctx, posts, index, args)
}

func (r *postRepository) loadReactions(ctx context.Context, posts []Post, index map[string]int, args []any) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT post_id, emoji, label, count, is_active FROM post_reactions
		 WHERE post_id IN (`+placeholders(len(args))+`) ORDER BY post_id, position`, args...)
	if err != nil {
		return fmt.Errorf("loading reactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID string
			re     Reaction
		)
		if err := rows.Scan(&postID, &re.Emoji, &re.Label, &re.Count, &re.IsActive); err != nil {
			return fmt.Errorf("scanning reaction: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Reactions = append(posts[i].Reactions, re)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating reactions: %w", err)
	}
	return nil
}

func (r *postRepository) loadComments(ctx context.Context, posts []Post, index map[string]int, args []any) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT post_id, id, author_name, author_avatar, text, created_at FROM post_comments
		 WHERE post_id IN (`+placeholders(len(args))+`) ORDER BY post_id, created_at, id`, args...)
	if err != nil {
		return fmt.Errorf("loading comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID string
			c      Comment
		)
		if err := rows.Scan(&postID, &c.ID, &c.Author.Name, &c.Author.Avatar, &c.Text, &c.Date); err != nil {
			return fmt.Errorf("scanning comment: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Comments = append(posts[i].Comments, c)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating comments: %w", err)
	}
	return nil
}

// Delete removes a post. Foreign keys cascade to reactions and comments.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return requireAffected(result, "post not found")
}

func (r *postRepository) SetStatus(ctx context.Context, id string, status Status) error {
	result, err := r.db.ExecContext(ctx, `UPDATE posts SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating post status: %w", err)
	}
	return requireAffected(result, "post not found")
}

func (r *postRepository) AddComment(ctx context.Context, postID string, c *Comment) error {
	if err := insertComment(ctx, r.db, postID, c); err != nil {
		if strings.Contains(err.Error(), "foreign key constraint fails") {
			return apperror.NewNotFound("post not found")
		}
		return err
	}
	return nil
}

func (r *postRepository) DeleteComment(ctx context.Context, postID, commentID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM post_comments WHERE id = ? AND post_id = ?`, commentID, postID)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return requireAffected(result, "comment not found")
}

// ToggleReaction relies on MariaDB evaluating single-table SET clauses
// left to right: count reads the old is_active.
func (r *postRepository) ToggleReaction(ctx context.Context, postID, label string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE post_reactions
		 SET count = IF(is_active, GREATEST(count - 1, 0), count + 1), is_active = NOT is_active
		 WHERE post_id = ? AND label = ?`, postID, label)
	if err != nil {
		return fmt.Errorf("toggling reaction: %w", err)
	}
	return requireAffected(result, "reaction not found")
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

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
