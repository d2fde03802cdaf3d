package posts

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/keyxmakerx/tagboard/internal/apperror"
)

// --- Mocks ---

type mockPostRepo struct {
	countFn          func(ctx context.Context) (int, error)
	createFn         func(ctx context.Context, p *Post) error
	updateFn         func(ctx context.Context, p *Post) error
	findByIDFn       func(ctx context.Context, id string) (*Post, error)
	listFn           func(ctx context.Context) ([]Post, error)
	deleteFn         func(ctx context.Context, id string) error
	setStatusFn      func(ctx context.Context, id string, status Status) error
	addCommentFn     func(ctx context.Context, postID string, c *Comment) error
	deleteCommentFn  func(ctx context.Context, postID, commentID string) error
	toggleReactionFn func(ctx context.Context, postID, label string) error
}

func (m *mockPostRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockPostRepo) Create(ctx context.Context, p *Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockPostRepo) Update(ctx context.Context, p *Post) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, p)
	}
	return nil
}

func (m *mockPostRepo) FindByID(ctx context.Context, id string) (*Post, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("post not found")
}

func (m *mockPostRepo) List(ctx context.Context) ([]Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []Post{}, nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPostRepo) SetStatus(ctx context.Context, id string, status Status) error {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockPostRepo) AddComment(ctx context.Context, postID string, c *Comment) error {
	if m.addCommentFn != nil {
		return m.addCommentFn(ctx, postID, c)
	}
	return nil
}

func (m *mockPostRepo) DeleteComment(ctx context.Context, postID, commentID string) error {
	if m.deleteCommentFn != nil {
		return m.deleteCommentFn(ctx, postID, commentID)
	}
	return nil
}

func (m *mockPostRepo) ToggleReaction(ctx context.Context, postID, label string) error {
	if m.toggleReactionFn != nil {
		return m.toggleReactionFn(ctx, postID, label)
	}
	return nil
}

// storingRepo keeps posts in memory so read-after-write works.
func storingRepo() (*mockPostRepo, map[string]*Post) {
	saved := map[string]*Post{}
	store := func(_ context.Context, p *Post) error {
		cp := *p
		saved[p.ID] = &cp
		return nil
	}
	return &mockPostRepo{
		countFn:  func(context.Context) (int, error) { return len(saved), nil },
		createFn: store,
		updateFn: store,
		findByIDFn: func(_ context.Context, id string) (*Post, error) {
			p, ok := saved[id]
			if !ok {
				return nil, apperror.NewNotFound("post not found")
			}
			cp := *p
			return &cp, nil
		},
	}, saved
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

func validInput() PostInput {
	return PostInput{
		Author: Author{Name: "Анна Иванова", Avatar: "https://i.pravatar.cc/150?u=anna"},
		Text:   "Скидки до 50%",
	}
}

// --- Create / Update Tests ---

func TestCreate_Defaults(t *testing.T) {
	repo, _ := storingRepo()
	svc := NewPostService(repo).(*postService)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	p, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if p.ID == "" || p.Status != StatusDraft || !p.Date.Equal(fixed) {
		t.Errorf("defaults not applied: %+v", p)
	}
	if len(p.Reactions) != 5 || p.Reactions[1].Label != "heart" || p.Reactions[1].Count != 0 {
		t.Errorf("Reactions = %+v, want the five defaults", p.Reactions)
	}
	if p.Images == nil || p.Comments == nil {
		t.Error("Images and Comments should be empty, not nil")
	}
}

func TestCreate_SanitizesText(t *testing.T) {
	repo, _ := storingRepo()
	svc := NewPostService(repo)

	in := validInput()
	in.Text = `<p onclick="steal()">Весна</p><script>alert(1)</script><a href="javascript:x()">ссылка</a>`
	p, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for _, bad := range []string{"script", "onclick", "javascript:"} {
		if strings.Contains(p.Text, bad) {
			t.Errorf("sanitized text still contains %q: %s", bad, p.Text)
		}
	}
	if !strings.Contains(p.Text, "<p>Весна</p>") {
		t.Errorf("safe markup lost: %s", p.Text)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PostInput)
		code   int
	}{
		{"no author", func(in *PostInput) { in.Author.Name = " " }, http.StatusBadRequest},
		{"no text", func(in *PostInput) { in.Text = "<script>x</script>" }, http.StatusBadRequest},
		{"bad avatar", func(in *PostInput) { in.Author.Avatar = "javascript:alert(1)" }, http.StatusBadRequest},
		{"bad image", func(in *PostInput) { in.Images = []string{"ftp://files/x.png"} }, http.StatusBadRequest},
		{"too many images", func(in *PostInput) {
			in.Images = []string{"/a.png", "/b.png", "/c.png", "/d.png", "/e.png"}
		}, http.StatusUnprocessableEntity},
		{"bad status", func(in *PostInput) { in.Status = "scheduled" }, http.StatusBadRequest},
		{"duplicate reaction", func(in *PostInput) {
			in.Reactions = []Reaction{{Emoji: "👍", Label: "like"}, {Emoji: "👌", Label: "like"}}
		}, http.StatusBadRequest},
		{"reaction without emoji", func(in *PostInput) { in.Reactions = []Reaction{{Label: "like"}} }, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, saved := storingRepo()
			in := validInput()
			tt.mutate(&in)
			_, err := NewPostService(repo).Create(context.Background(), in)
			assertAppError(t, err, tt.code)
			if len(saved) != 0 {
				t.Error("invalid post reached the repository")
			}
		})
	}
}

func TestUpdate_KeepsCommentsAndReactions(t *testing.T) {
	repo, saved := storingRepo()
	svc := NewPostService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	saved[p.ID].Comments = []Comment{{ID: "c1", Text: "Ждём!"}}
	saved[p.ID].Reactions[0].Count = 7

	date := time.Date(2026, 2, 23, 9, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	in := validInput()
	in.Text = "Обновлённый текст"
	in.Date = &date
	in.Status = StatusPublished

	updated, err := svc.Update(ctx, p.ID, in)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Text != "Обновлённый текст" || updated.Status != StatusPublished {
		t.Errorf("content not updated: %+v", updated)
	}
	if !updated.Date.Equal(date) || updated.Date.Location() != time.UTC {
		t.Errorf("Date = %v, want %v in UTC", updated.Date, date)
	}
	if len(updated.Comments) != 1 || updated.Reactions[0].Count != 7 {
		t.Errorf("comments or reactions lost: %+v %+v", updated.Comments, updated.Reactions)
	}

	_, err = svc.Update(ctx, "missing", validInput())
	assertAppError(t, err, http.StatusNotFound)
}

// --- Comment / Reaction Tests ---

func TestAddComment(t *testing.T) {
	repo, saved := storingRepo()
	repo.addCommentFn = func(_ context.Context, postID string, c *Comment) error {
		p, ok := saved[postID]
		if !ok {
			return apperror.NewNotFound("post not found")
		}
		p.Comments = append(p.Comments, *c)
		return nil
	}
	svc := NewPostService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	p, err = svc.AddComment(ctx, p.ID, CommentInput{Text: "  <b>Когда</b> старт?  "})
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	c := p.Comments[len(p.Comments)-1]
	if c.Text != "Когда старт?" || c.Author.Name != adminAuthor || c.ID == "" {
		t.Errorf("comment = %+v", c)
	}

	_, err = svc.AddComment(ctx, p.ID, CommentInput{Text: "   "})
	assertAppError(t, err, http.StatusBadRequest)

	_, err = svc.AddComment(ctx, "missing", CommentInput{Text: "Привет"})
	assertAppError(t, err, http.StatusNotFound)
}

func TestToggleReaction_PassesTrimmedLabel(t *testing.T) {
	repo, _ := storingRepo()
	var gotLabel string
	repo.toggleReactionFn = func(_ context.Context, _, label string) error {
		gotLabel = label
		return apperror.NewNotFound("reaction not found")
	}

	_, err := NewPostService(repo).ToggleReaction(context.Background(), "p1", " fire ")
	assertAppError(t, err, http.StatusNotFound)
	if gotLabel != "fire" {
		t.Errorf("label = %q, want fire", gotLabel)
	}
}

func TestPublishUnpublish(t *testing.T) {
	repo, saved := storingRepo()
	repo.setStatusFn = func(_ context.Context, id string, status Status) error {
		p, ok := saved[id]
		if !ok {
			return apperror.NewNotFound("post not found")
		}
		p.Status = status
		return nil
	}
	svc := NewPostService(repo)
	ctx := context.Background()

	p, _ := svc.Create(ctx, validInput())
	if p, _ = svc.Publish(ctx, p.ID); p.Status != StatusPublished {
		t.Errorf("Publish status = %s", p.Status)
	}
	if p, _ = svc.Unpublish(ctx, p.ID); p.Status != StatusDraft {
		t.Errorf("Unpublish status = %s", p.Status)
	}
	_, err := svc.Publish(ctx, "missing")
	assertAppError(t, err, http.StatusNotFound)
}

// --- Seed Tests ---

func TestSeedDemo(t *testing.T) {
	repo, saved := storingRepo()
	svc := NewPostService(repo)

	n, err := svc.SeedDemo(context.Background())
	if err != nil {
		t.Fatalf("SeedDemo() error = %v", err)
	}
	if n != 3 || len(saved) != 3 {
		t.Fatalf("seeded %d posts, stored %d", n, len(saved))
	}

	var drafts, comments int
	for _, p := range saved {
		if p.Status == StatusDraft {
			drafts++
		}
		comments += len(p.Comments)
	}
	if drafts != 1 || comments != 2 {
		t.Errorf("drafts = %d, comments = %d", drafts, comments)
	}

	again, err := svc.SeedDemo(context.Background())
	if err != nil || again != 0 {
		t.Errorf("second SeedDemo() = %d, %v; want 0, nil", again, err)
	}
}
