// Package audit records which admin changed what in the console. Every
// successful mutating API call that maps to a known action is written to
// the audit_log table by the Record middleware; GET /api/v1/audit reads
// the log back, newest first.
//
// The log only observes. A failed write is logged and never fails the
// request that triggered it.
package audit

import "time"

// Action names follow "resource.verb".
type Action string

const (
	ActionTagCreated    Action = "tag.created"
	ActionTagUpdated    Action = "tag.updated"
	ActionTagDeleted    Action = "tag.deleted"
	ActionTagDuplicated Action = "tag.duplicated"
	ActionTagArchived   Action = "tag.archived"
	ActionTagRestored   Action = "tag.restored"

	ActionProductTagAdded   Action = "product.tag_added"
	ActionProductTagRemoved Action = "product.tag_removed"
	ActionProductBulkTagged Action = "product.bulk_tagged"

	ActionCollectionCreated   Action = "collection.created"
	ActionCollectionUpdated   Action = "collection.updated"
	ActionCollectionDeleted   Action = "collection.deleted"
	ActionCollectionReordered Action = "collection.reordered"

	ActionPostCreated         Action = "post.created"
	ActionPostUpdated         Action = "post.updated"
	ActionPostDeleted         Action = "post.deleted"
	ActionPostPublished       Action = "post.published"
	ActionPostUnpublished     Action = "post.unpublished"
	ActionPostCommentAdded    Action = "post.comment_added"
	ActionPostCommentDeleted  Action = "post.comment_deleted"
	ActionPostReactionToggled Action = "post.reaction_toggled"
)

// Entry is one recorded change.
type Entry struct {
	ID           int64             `json:"id"`
	Actor        string            `json:"actor"`
	Action       Action            `json:"action"`
	ResourceType string            `json:"resourceType"`
	ResourceID   string            `json:"resourceId,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// ListFilter narrows the log. Empty fields match everything; Page is
// 1-based.
type ListFilter struct {
	Actor        string `query:"actor"`
	ResourceType string `query:"resourceType"`
	ResourceID   string `query:"resourceId"`
	Page         int    `query:"page"`
}

// Page is one page of the log.
type Page struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"perPage"`
}
