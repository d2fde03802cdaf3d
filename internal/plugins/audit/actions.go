package audit

import "strings"

// ActionFor returns the action recorded for a registered /api/v1 route
// pattern. Routes that change nothing (listing, preview, import parsing)
// have no action.
func ActionFor(method, routePath string) (Action, bool) {
	switch method + " " + strings.TrimPrefix(routePath, "/api/v1") {
	case "POST /tags":
		return ActionTagCreated, true
	case "PUT /tags/:id":
		return ActionTagUpdated, true
	case "DELETE /tags/:id":
		return ActionTagDeleted, true
	case "POST /tags/:id/duplicate":
		return ActionTagDuplicated, true
	case "POST /tags/:id/archive":
		return ActionTagArchived, true
	case "POST /tags/:id/restore":
		return ActionTagRestored, true

	case "POST /products/:id/tags/:tagId":
		return ActionProductTagAdded, true
	case "DELETE /products/:id/tags/:tagId":
		return ActionProductTagRemoved, true
	case "POST /products/bulk/tags":
		return ActionProductBulkTagged, true

	case "POST /collections":
		return ActionCollectionCreated, true
	case "PUT /collections/:id":
		return ActionCollectionUpdated, true
	case "DELETE /collections/:id":
		return ActionCollectionDeleted, true
	case "POST /collections/:id/reorder":
		return ActionCollectionReordered, true

	case "POST /posts":
		return ActionPostCreated, true
	case "PUT /posts/:id":
		return ActionPostUpdated, true
	case "DELETE /posts/:id":
		return ActionPostDeleted, true
	case "POST /posts/:id/publish":
		return ActionPostPublished, true
	case "POST /posts/:id/unpublish":
		return ActionPostUnpublished, true
	case "POST /posts/:id/comments":
		return ActionPostCommentAdded, true
	case "DELETE /posts/:id/comments/:commentId":
		return ActionPostCommentDeleted, true
	case "POST /posts/:id/reactions/:label":
		return ActionPostReactionToggled, true
	}
	return "", false
}

// ResourceType is the part of an action before the dot.
func (a Action) ResourceType() string {
	resource, _, _ := strings.Cut(string(a), ".")
	return resource
}
