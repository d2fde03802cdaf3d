package membership

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors returned by Validate. Evaluate never returns these; it
// degrades gracefully instead. Validate is for the moment a rule is saved.
var (
	ErrNoGroups       = errors.New("at least one condition group is required")
	ErrEmptyGroup     = errors.New("condition group has no tags")
	ErrUnknownGroup   = errors.New("unknown condition group type")
	ErrUnknownLogic   = errors.New("unknown group logic")
	ErrUnknownSort    = errors.New("unknown sort order")
	ErrInvalidBound   = errors.New("price bound is not a non-negative number")
	ErrBoundsReversed = errors.New("minimum price is greater than maximum price")
)

// Validate checks a rule before it is persisted on a collection.
func Validate(c TagConditions) error {
	if len(c.Groups) == 0 {
		return ErrNoGroups
	}
	for i, g := range c.Groups {
		if g.Type != GroupMust && g.Type != GroupAny {
			return fmt.Errorf("group %d: %w %q", i+1, ErrUnknownGroup, g.Type)
		}
		if len(g.TagIDs) == 0 {
			return fmt.Errorf("group %d: %w", i+1, ErrEmptyGroup)
		}
	}

	switch c.Logic {
	case LogicAnd, LogicOr:
	default:
		return fmt.Errorf("%w %q", ErrUnknownLogic, c.Logic)
	}

	switch c.Sort {
	case SortManual, SortPopularity, SortPriceAsc, SortPriceDesc:
	default:
		return fmt.Errorf("%w %q", ErrUnknownSort, c.Sort)
	}

	lo, hasMin := ParseBound(c.PriceMin)
	if strings.TrimSpace(c.PriceMin) != "" && !hasMin {
		return fmt.Errorf("priceMin: %w", ErrInvalidBound)
	}
	hi, hasMax := ParseBound(c.PriceMax)
	if strings.TrimSpace(c.PriceMax) != "" && !hasMax {
		return fmt.Errorf("priceMax: %w", ErrInvalidBound)
	}
	if hasMin && hasMax && lo.GreaterThan(hi) {
		return ErrBoundsReversed
	}
	return nil
}
