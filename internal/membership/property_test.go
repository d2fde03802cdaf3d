package membership

import (
	"fmt"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// universe is the tag vocabulary used by generated catalogs. Bit i of a
// product mask means the product carries universe[i].
var universe = []string{"t0", "t1", "t2", "t3"}

// catalogFromMasks builds a catalog with one product per mask. Prices
// repeat so that sort ties are common.
func catalogFromMasks(masks []uint8) []Product {
	catalog := make([]Product, len(masks))
	for i, m := range masks {
		var tags []ProductTag
		for bit, tag := range universe {
			if m&(1<<bit) != 0 {
				tags = append(tags, ProductTag{TagID: tag, Source: SourceRule})
			}
		}
		catalog[i] = Product{
			ID:    fmt.Sprintf("p%d", i),
			Price: decimal.NewFromInt(int64((i * 37) % 5 * 10)),
			Tags:  tags,
		}
	}
	return catalog
}

func properties(t *testing.T, minSuccessful int) *gopter.Properties {
	t.Helper()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = minSuccessful
	return gopter.NewProperties(parameters)
}

// Property: an empty ruleset matches nothing, whatever the catalog.
func TestEvaluate_PropertyEmptyRuleset(t *testing.T) {
	props := properties(t, 100)

	props.Property("no groups yields no products", prop.ForAll(
		func(masks []uint8, or bool) bool {
			logic := LogicAnd
			if or {
				logic = LogicOr
			}
			return len(Evaluate(catalogFromMasks(masks), TagConditions{Logic: logic})) == 0
		},
		gen.SliceOf(gen.UInt8()),
		gen.Bool(),
	))

	props.TestingRun(t)
}

// Property: MUST {t0,t1} is exactly the superset products; ANY {t0,t1} is
// exactly the intersecting products.
func TestEvaluate_PropertyGroupSemantics(t *testing.T) {
	props := properties(t, 200)
	pair := []string{"t0", "t1"}

	props.Property("MUST matches supersets", prop.ForAll(
		func(masks []uint8) bool {
			catalog := catalogFromMasks(masks)
			got := Evaluate(catalog, TagConditions{
				Groups: []ConditionGroup{{Type: GroupMust, TagIDs: pair}},
			})
			var want []string
			for i, m := range masks {
				if m&0b11 == 0b11 {
					want = append(want, catalog[i].ID)
				}
			}
			return slices.Equal(want, ids(got)) || (len(want) == 0 && len(got) == 0)
		},
		gen.SliceOf(gen.UInt8()),
	))

	props.Property("ANY matches intersections", prop.ForAll(
		func(masks []uint8) bool {
			catalog := catalogFromMasks(masks)
			got := Evaluate(catalog, TagConditions{
				Groups: []ConditionGroup{{Type: GroupAny, TagIDs: pair}},
			})
			var want []string
			for i, m := range masks {
				if m&0b11 != 0 {
					want = append(want, catalog[i].ID)
				}
			}
			return slices.Equal(want, ids(got)) || (len(want) == 0 && len(got) == 0)
		},
		gen.SliceOf(gen.UInt8()),
	))

	props.TestingRun(t)
}

// Property: AND of two groups is the intersection of their individual
// results; OR is the union, both in catalog order.
func TestEvaluate_PropertyCombination(t *testing.T) {
	props := properties(t, 200)

	props.Property("AND intersects, OR unions", prop.ForAll(
		func(masks []uint8, a, b int) bool {
			catalog := catalogFromMasks(masks)
			ga := ConditionGroup{Type: GroupAny, TagIDs: []string{universe[a]}}
			gb := ConditionGroup{Type: GroupMust, TagIDs: []string{universe[b], universe[(b+1)%len(universe)]}}

			inA := make(map[string]bool)
			for _, p := range Evaluate(catalog, TagConditions{Groups: []ConditionGroup{ga}}) {
				inA[p.ID] = true
			}
			inB := make(map[string]bool)
			for _, p := range Evaluate(catalog, TagConditions{Groups: []ConditionGroup{gb}}) {
				inB[p.ID] = true
			}

			var wantAnd, wantOr []string
			for _, p := range catalog {
				if inA[p.ID] && inB[p.ID] {
					wantAnd = append(wantAnd, p.ID)
				}
				if inA[p.ID] || inB[p.ID] {
					wantOr = append(wantOr, p.ID)
				}
			}

			both := []ConditionGroup{ga, gb}
			gotAnd := ids(Evaluate(catalog, TagConditions{Groups: both, Logic: LogicAnd}))
			gotOr := ids(Evaluate(catalog, TagConditions{Groups: both, Logic: LogicOr}))
			return equalIDs(wantAnd, gotAnd) && equalIDs(wantOr, gotOr)
		},
		gen.SliceOf(gen.UInt8()),
		gen.IntRange(0, len(universe)-1),
		gen.IntRange(0, len(universe)-1),
	))

	props.TestingRun(t)
}

// Property: empty groups never match, regardless of type or catalog.
func TestEvaluate_PropertyEmptyGroup(t *testing.T) {
	props := properties(t, 100)

	props.Property("empty group contributes nothing", prop.ForAll(
		func(masks []uint8, must bool) bool {
			typ := GroupAny
			if must {
				typ = GroupMust
			}
			got := Evaluate(catalogFromMasks(masks), TagConditions{
				Groups: []ConditionGroup{{Type: typ}},
				Logic:  LogicOr,
			})
			return len(got) == 0
		},
		gen.SliceOf(gen.UInt8()),
		gen.Bool(),
	))

	props.TestingRun(t)
}

// Property: price and popularity sorts are stable with respect to
// catalog order, and evaluation is repeatable.
func TestEvaluate_PropertyStableSort(t *testing.T) {
	props := properties(t, 200)

	position := func(catalog []Product) map[string]int {
		pos := make(map[string]int, len(catalog))
		for i, p := range catalog {
			pos[p.ID] = i
		}
		return pos
	}

	props.Property("ties keep catalog order", prop.ForAll(
		func(masks []uint8, popularity bool) bool {
			catalog := catalogFromMasks(masks)
			pos := position(catalog)
			key := SortPriceAsc
			if popularity {
				key = SortPopularity
			}
			cond := TagConditions{
				Groups: []ConditionGroup{{Type: GroupAny, TagIDs: universe}},
				Logic:  LogicAnd,
				Sort:   key,
			}
			got := Evaluate(catalog, cond)
			for i := 1; i < len(got); i++ {
				prev, cur := got[i-1], got[i]
				var tie bool
				if popularity {
					if len(prev.Tags) < len(cur.Tags) {
						return false
					}
					tie = len(prev.Tags) == len(cur.Tags)
				} else {
					if prev.Price.GreaterThan(cur.Price) {
						return false
					}
					tie = prev.Price.Equal(cur.Price)
				}
				if tie && pos[prev.ID] > pos[cur.ID] {
					return false
				}
			}
			return equalIDs(ids(got), ids(Evaluate(catalog, cond)))
		},
		gen.SliceOf(gen.UInt8()),
		gen.Bool(),
	))

	props.TestingRun(t)
}

func equalIDs(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return slices.Equal(a, b)
}
