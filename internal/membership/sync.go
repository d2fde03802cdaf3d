package membership

// Op is a tag assignment operation.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Valid reports whether op is a known operation.
func (op Op) Valid() bool {
	return op == OpAdd || op == OpRemove
}

// AffectedIDs returns the ids whose tags change together with targetID,
// in catalog order:
//   - the target itself;
//   - for an SPU, every SKU that names it as parent;
//   - for an SKU with a parent, the parent SPU and every sibling SKU.
//
// Returns nil when targetID is not in the catalog.
func AffectedIDs(catalog []Product, targetID string) []string {
	var target *Product
	for i := range catalog {
		if catalog[i].ID == targetID {
			target = &catalog[i]
			break
		}
	}
	if target == nil {
		return nil
	}

	family := ""
	switch {
	case target.Type == TypeSPU:
		family = target.ID
	case target.Type == TypeSKU && target.ParentSPUID != "":
		family = target.ParentSPUID
	}

	var ids []string
	for _, p := range catalog {
		switch {
		case p.ID == targetID:
		case family != "" && p.ID == family:
		case family != "" && p.Type == TypeSKU && p.ParentSPUID == family:
		default:
			continue
		}
		ids = append(ids, p.ID)
	}
	return ids
}

// SyncTag applies op for tagID to targetID and every product in its
// variant family (see AffectedIDs), returning a new catalog. Added tags
// are attributed to the marketer; products that already carry the tag are
// left alone. An unknown target returns the catalog unchanged. The input
// slice and its products are never modified.
func SyncTag(catalog []Product, targetID string, op Op, tagID, tagName string) []Product {
	affected := AffectedIDs(catalog, targetID)
	out := make([]Product, len(catalog))
	copy(out, catalog)
	if len(affected) == 0 || !op.Valid() {
		return out
	}

	touch := make(idSet, len(affected))
	for _, id := range affected {
		touch[id] = struct{}{}
	}

	for i, p := range out {
		if _, ok := touch[p.ID]; !ok {
			continue
		}
		out[i].Tags = applyOp(p.Tags, op, tagID, tagName)
	}
	return out
}

// applyOp returns a fresh tag slice with op applied; tags is not modified.
func applyOp(tags []ProductTag, op Op, tagID, tagName string) []ProductTag {
	switch op {
	case OpAdd:
		for _, t := range tags {
			if t.TagID == tagID {
				return tags
			}
		}
		next := make([]ProductTag, 0, len(tags)+1)
		next = append(next, tags...)
		return append(next, ProductTag{TagID: tagID, TagName: tagName, Source: SourceMarketer})
	case OpRemove:
		next := make([]ProductTag, 0, len(tags))
		for _, t := range tags {
			if t.TagID != tagID {
				next = append(next, t)
			}
		}
		return next
	}
	return tags
}
