package membership

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

/*
 * Collection membership evaluation.
 *
 * Evaluation flow:
 *   1. No groups -> no products. An empty rule never means "everything".
 *   2. Each group yields a match-set of product ids:
 *        MUST: product tags are a superset of the group's tags
 *        ANY:  product tags intersect the group's tags
 *      A group without tag ids yields an empty set for either type.
 *   3. Sets combine across groups: AND intersects every set (an empty
 *      set empties the result), OR takes the union.
 *   4. Matching products are emitted in catalog order.
 *   5. Inclusive price bounds drop products outside [min, max].
 *   6. Stable sort by the requested key; ties keep catalog order.
 */

type idSet map[string]struct{}

// Evaluate returns the products from catalog that satisfy conditions, in
// the order conditions.Sort asks for. Neither argument is modified.
func Evaluate(catalog []Product, conditions TagConditions) []Product {
	if len(conditions.Groups) == 0 {
		return []Product{}
	}

	sets := make([]idSet, len(conditions.Groups))
	for i, group := range conditions.Groups {
		sets[i] = matchGroup(catalog, group)
	}
	matched := combine(sets, conditions.Logic)

	result := make([]Product, 0, len(matched))
	for _, p := range catalog {
		if _, ok := matched[p.ID]; ok {
			result = append(result, p)
		}
	}

	result = filterPrice(result, conditions.PriceMin, conditions.PriceMax)
	sortProducts(result, conditions.Sort)
	return result
}

// matchGroup computes the ids of products satisfying a single group.
// Unknown group types are treated like an incomplete group: no matches.
func matchGroup(catalog []Product, group ConditionGroup) idSet {
	set := make(idSet)
	if len(group.TagIDs) == 0 {
		return set
	}

	for _, p := range catalog {
		var ok bool
		switch group.Type {
		case GroupMust:
			ok = hasAll(p, group.TagIDs)
		case GroupAny:
			ok = hasAny(p, group.TagIDs)
		}
		if ok {
			set[p.ID] = struct{}{}
		}
	}
	return set
}

func hasAll(p Product, tagIDs []string) bool {
	for _, id := range tagIDs {
		if !p.HasTag(id) {
			return false
		}
	}
	return true
}

func hasAny(p Product, tagIDs []string) bool {
	for _, id := range tagIDs {
		if p.HasTag(id) {
			return true
		}
	}
	return false
}

// combine merges group match-sets. Anything other than OR is treated as
// AND, which is also what the editor defaults to.
func combine(sets []idSet, logic Logic) idSet {
	out := make(idSet)
	if logic == LogicOr {
		for _, s := range sets {
			for id := range s {
				out[id] = struct{}{}
			}
		}
		return out
	}

	for id := range sets[0] {
		out[id] = struct{}{}
	}
	for _, s := range sets[1:] {
		for id := range out {
			if _, ok := s[id]; !ok {
				delete(out, id)
			}
		}
	}
	return out
}

// ParseBound parses a price bound typed into the rule editor. Empty,
// malformed, and negative values report ok=false and must be ignored.
func ParseBound(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// filterPrice drops products outside the inclusive [min, max] range. The
// input slice is filtered in place; callers pass a slice they own.
func filterPrice(products []Product, rawMin, rawMax string) []Product {
	lo, hasMin := ParseBound(rawMin)
	hi, hasMax := ParseBound(rawMax)
	if !hasMin && !hasMax {
		return products
	}

	kept := products[:0]
	for _, p := range products {
		if hasMin && p.Price.LessThan(lo) {
			continue
		}
		if hasMax && p.Price.GreaterThan(hi) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// sortProducts applies key with a stable sort. Unknown keys leave the
// slice untouched, same as SortManual.
func sortProducts(products []Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		slices.SortStableFunc(products, func(a, b Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(products, func(a, b Product) int {
			return b.Price.Cmp(a.Price)
		})
	case SortPopularity:
		slices.SortStableFunc(products, func(a, b Product) int {
			return len(b.Tags) - len(a.Tags)
		})
	}
}
