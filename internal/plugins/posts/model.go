// Package posts is the marketing feed shown to sellers: rich-text posts
// with images, emoji reactions, and an admin-moderated comment thread.
package posts

import (
	"time"
)

// Status is the post lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// maxImages is the number of images a post may carry.
const maxImages = 4

// Author identifies who wrote a post or comment.
type Author struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Reaction is one emoji counter on a post. IsActive records whether the
// console user has reacted.
type Reaction struct {
	Emoji    string `json:"emoji"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
	IsActive bool   `json:"isActive"`
}

// Comment is a reply under a post, oldest first.
type Comment struct {
	ID     string    `json:"id"`
	Author Author    `json:"author"`
	Date   time.Time `json:"date"`
	Text   string    `json:"text"`
}

// Post is a feed entry.
type Post struct {
	ID        string     `json:"id"`
	Author    Author     `json:"author"`
	Date      time.Time  `json:"date"`
	Text      string     `json:"text"`
	Images    []string   `json:"images"`
	Reactions []Reaction `json:"reactions"`
	Comments  []Comment  `json:"comments"`
	Status    Status     `json:"status"`
}

// DefaultReactions returns the counters every new post starts with.
func DefaultReactions() []Reaction {
	return []Reaction{
		{Emoji: "👍", Label: "like"},
		{Emoji: "❤️", Label: "heart"},
		{Emoji: "🔥", Label: "fire"},
		{Emoji: "😂", Label: "laugh"},
		{Emoji: "😮", Label: "wow"},
	}
}

// PostInput is the editor payload for create and update. A nil Date means
// now; nil Reactions keeps the existing set, or the defaults for a new post.
type PostInput struct {
	Author    Author     `json:"author"`
	Date      *time.Time `json:"date"`
	Text      string     `json:"text"`
	Images    []string   `json:"images"`
	Reactions []Reaction `json:"reactions"`
	Status    Status     `json:"status"`
}

// CommentInput is the payload for a new comment. An empty author name
// posts as the console administrator.
type CommentInput struct {
	Author Author `json:"author"`
	Text   string `json:"text"`
}
