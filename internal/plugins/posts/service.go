package posts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/keyxmakerx/tagboard/internal/apperror"
	"github.com/keyxmakerx/tagboard/internal/sanitize"
)

const (
	maxAuthorLength = 100
	maxLabelLength  = 32
	maxEmojiLength  = 16
)

// adminAuthor signs comments posted without an explicit author.
const adminAuthor = "Администратор"

// PostService is the business logic contract for the feed.
type PostService interface {
	// List returns all posts, newest first.
	List(ctx context.Context) ([]Post, error)
	Get(ctx context.Context, id string) (*Post, error)

	// Create stores a new post with a fresh id. Posts without reactions
	// get DefaultReactions.
	Create(ctx context.Context, input PostInput) (*Post, error)

	// Update replaces a post's content. Comments are kept.
	Update(ctx context.Context, id string, input PostInput) (*Post, error)

	Delete(ctx context.Context, id string) error

	AddComment(ctx context.Context, postID string, input CommentInput) (*Post, error)
	DeleteComment(ctx context.Context, postID, commentID string) (*Post, error)
	ToggleReaction(ctx context.Context, postID, label string) (*Post, error)
	Publish(ctx context.Context, id string) (*Post, error)
	Unpublish(ctx context.Context, id string) (*Post, error)

	// SeedDemo inserts the demo feed when no posts exist. Returns the
	// number of posts created.
	SeedDemo(ctx context.Context) (int, error)
}

type postService struct {
	repo PostRepository
	now  func() time.Time
}

// NewPostService creates a PostService backed by the given repository.
func NewPostService(repo PostRepository) PostService {
	return &postService{repo: repo, now: time.Now}
}

func (s *postService) List(ctx context.Context) ([]Post, error) {
	return s.repo.List(ctx)
}

func (s *postService) Get(ctx context.Context, id string) (*Post, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *postService) Create(ctx context.Context, input PostInput) (*Post, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	p := &Post{
		ID:        uuid.NewString(),
		Author:    input.Author,
		Date:      s.dateOrNow(input.Date),
		Text:      input.Text,
		Images:    input.Images,
		Reactions: input.Reactions,
		Comments:  []Comment{},
		Status:    input.Status,
	}
	if p.Reactions == nil {
		p.Reactions = DefaultReactions()
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, p.ID)
}

func (s *postService) Update(ctx context.Context, id string, input PostInput) (*Post, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input, err = normalizeInput(input)
	if err != nil {
		return nil, err
	}

	p.Author = input.Author
	if input.Date != nil {
		p.Date = input.Date.UTC()
	}
	p.Text = input.Text
	p.Images = input.Images
	p.Status = input.Status
	if input.Reactions != nil {
		p.Reactions = input.Reactions
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *postService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *postService) AddComment(ctx context.Context, postID string, input CommentInput) (*Post, error) {
	text := sanitize.Text(input.Text)
	if text == "" {
		return nil, apperror.NewBadRequest("comment text is required")
	}
	author, err := normalizeAuthor(input.Author)
	if err != nil {
		return nil, err
	}
	if author.Name == "" {
		author.Name = adminAuthor
	}

	c := &Comment{ID: uuid.NewString(), Author: author, Date: s.now().UTC(), Text: text}
	if err := s.repo.AddComment(ctx, postID, c); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, postID)
}

func (s *postService) DeleteComment(ctx context.Context, postID, commentID string) (*Post, error) {
	if err := s.repo.DeleteComment(ctx, postID, commentID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, postID)
}

func (s *postService) ToggleReaction(ctx context.Context, postID, label string) (*Post, error) {
	if err := s.repo.ToggleReaction(ctx, postID, strings.TrimSpace(label)); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, postID)
}

func (s *postService) Publish(ctx context.Context, id string) (*Post, error) {
	return s.setStatus(ctx, id, StatusPublished)
}

func (s *postService) Unpublish(ctx context.Context, id string) (*Post, error) {
	return s.setStatus(ctx, id, StatusDraft)
}

func (s *postService) setStatus(ctx context.Context, id string, status Status) (*Post, error) {
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *postService) SeedDemo(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	seed := demoPosts()
	for i := range seed {
		if err := s.repo.Create(ctx, &seed[i]); err != nil {
			return i, fmt.Errorf("seeding post %d: %w", i+1, err)
		}
	}
	slog.Info("seeded demo posts", slog.Int("count", len(seed)))
	return len(seed), nil
}

func (s *postService) dateOrNow(d *time.Time) time.Time {
	if d == nil {
		return s.now().UTC()
	}
	return d.UTC()
}

func normalizeInput(in PostInput) (PostInput, error) {
	author, err := normalizeAuthor(in.Author)
	if err != nil {
		return in, err
	}
	if author.Name == "" {
		return in, apperror.NewBadRequest("author name is required")
	}
	in.Author = author

	in.Text = sanitize.HTML(in.Text)
	if in.Text == "" {
		return in, apperror.NewBadRequest("post text is required")
	}

	if len(in.Images) > maxImages {
		return in, apperror.NewValidation(fmt.Sprintf("a post may have at most %d images", maxImages))
	}
	images := make([]string, 0, len(in.Images))
	for _, raw := range in.Images {
		u := sanitize.URL(raw)
		if u == "" {
			return in, apperror.NewBadRequest(fmt.Sprintf("image %q is not an http(s) URL", raw))
		}
		images = append(images, u)
	}
	in.Images = images

	switch in.Status {
	case "":
		in.Status = StatusDraft
	case StatusDraft, StatusPublished:
	default:
		return in, apperror.NewBadRequest("status must be draft or published")
	}

	if in.Reactions != nil {
		reactions, err := normalizeReactions(in.Reactions)
		if err != nil {
			return in, err
		}
		in.Reactions = reactions
	}
	return in, nil
}

func normalizeAuthor(a Author) (Author, error) {
	a.Name = sanitize.Text(a.Name)
	if utf8.RuneCountInString(a.Name) > maxAuthorLength {
		return a, apperror.NewBadRequest(fmt.Sprintf("author name must be at most %d characters", maxAuthorLength))
	}
	raw := strings.TrimSpace(a.Avatar)
	a.Avatar = sanitize.URL(raw)
	if raw != "" && a.Avatar == "" {
		return a, apperror.NewBadRequest("avatar must be an http(s) URL")
	}
	return a, nil
}

func normalizeReactions(reactions []Reaction) ([]Reaction, error) {
	out := make([]Reaction, 0, len(reactions))
	seen := make(map[string]bool, len(reactions))
	for _, re := range reactions {
		re.Label = strings.TrimSpace(re.Label)
		re.Emoji = strings.TrimSpace(re.Emoji)
		switch {
		case re.Label == "" || re.Emoji == "":
			return nil, apperror.NewBadRequest("reactions need an emoji and a label")
		case utf8.RuneCountInString(re.Label) > maxLabelLength:
			return nil, apperror.NewBadRequest(fmt.Sprintf("reaction label must be at most %d characters", maxLabelLength))
		case utf8.RuneCountInString(re.Emoji) > maxEmojiLength:
			return nil, apperror.NewBadRequest("reaction emoji is too long")
		case re.Count < 0:
			return nil, apperror.NewBadRequest("reaction count must not be negative")
		case seen[re.Label]:
			return nil, apperror.NewBadRequest(fmt.Sprintf("duplicate reaction %q", re.Label))
		}
		seen[re.Label] = true
		out = append(out, re)
	}
	return out, nil
}
