package selection

import (
	"github.com/matst80/slask-catalog/pkg/types"
)

type Chip struct {
	Field  types.Field
	Label  string
	Remove func() types.FilterCriteria
}

func ActiveCount(c types.FilterCriteria) int {
	count := 0
	for _, f := range types.Fields {
		if !c.IsDefault(f) {
			count++
		}
	}
	return count
}

func chipLabel(c types.FilterCriteria, field types.Field) string {
	switch field {
	case types.CategoryField:
		return c.Category
	case types.PriceField:
		return c.PriceRange.Label()
	case types.RatingField:
		return c.MinRating.Label()
	}
	return ""
}

// Describe returns one chip per non-default field, in category, price,
// rating order.
func Describe(c types.FilterCriteria) []Chip {
	chips := make([]Chip, 0, len(types.Fields))
	for _, f := range types.Fields {
		if c.IsDefault(f) {
			continue
		}
		field := f
		chips = append(chips, Chip{
			Field: field,
			Label: chipLabel(c, field),
			Remove: func() types.FilterCriteria {
				return c.Without(field)
			},
		})
	}
	return chips
}
