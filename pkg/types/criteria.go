package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// the catalog source sends prices as plain numbers, keep them that way
	decimal.MarshalJSONWithoutQuotes = true
}

const AllCategories = "All"

type PriceRange string

const (
	AllPrices     PriceRange = "All"
	PriceUnder50  PriceRange = "0-50"
	Price50To100  PriceRange = "50-100"
	Price100To200 PriceRange = "100-200"
	Price200To500 PriceRange = "200-500"
	PriceAbove500 PriceRange = "500+"

	legacyAbove500 = "500-99999"
)

type MinRating int

const (
	AnyRating MinRating = 0
	Rating2   MinRating = 2
	Rating3   MinRating = 3
	Rating4   MinRating = 4
)

// Field identifies one of the three filterable properties.
type Field string

const (
	CategoryField Field = "category"
	PriceField    Field = "price"
	RatingField   Field = "rating"
)

var Fields = []Field{CategoryField, PriceField, RatingField}

type PriceBucket struct {
	Value PriceRange       `json:"value"`
	Label string           `json:"label"`
	Min   decimal.Decimal  `json:"min"`
	Max   *decimal.Decimal `json:"max,omitempty"`
}

// Contains uses inclusive bounds on both sides, a nil Max is unbounded.
func (b *PriceBucket) Contains(price decimal.Decimal) bool {
	if price.LessThan(b.Min) {
		return false
	}
	return b.Max == nil || price.LessThanOrEqual(*b.Max)
}

func bound(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

var PriceBuckets = []PriceBucket{
	{Value: PriceUnder50, Label: "Under ₹50", Min: decimal.Zero, Max: bound(50)},
	{Value: Price50To100, Label: "₹50 - ₹100", Min: decimal.NewFromInt(50), Max: bound(100)},
	{Value: Price100To200, Label: "₹100 - ₹200", Min: decimal.NewFromInt(100), Max: bound(200)},
	{Value: Price200To500, Label: "₹200 - ₹500", Min: decimal.NewFromInt(200), Max: bound(500)},
	{Value: PriceAbove500, Label: "Above ₹500", Min: decimal.NewFromInt(500)},
}

// Bucket returns the bucket for a concrete range. AllPrices and unknown
// values report false.
func (r PriceRange) Bucket() (*PriceBucket, bool) {
	for i := range PriceBuckets {
		if PriceBuckets[i].Value == r {
			return &PriceBuckets[i], true
		}
	}
	return nil, false
}

func (r PriceRange) Label() string {
	if r == AllPrices {
		return "All Prices"
	}
	if b, ok := r.Bucket(); ok {
		return b.Label
	}
	return string(r)
}

func (r PriceRange) IsValid() bool {
	if r == AllPrices {
		return true
	}
	_, ok := r.Bucket()
	return ok
}

// ParsePriceRange accepts the canonical keys, the legacy "500-99999" key and
// the empty string for All. Unknown keys are returned as-is so they can match
// nothing downstream.
func ParsePriceRange(s string) PriceRange {
	switch s {
	case "", "all", string(AllPrices):
		return AllPrices
	case legacyAbove500:
		return PriceAbove500
	}
	return PriceRange(s)
}

type RatingOption struct {
	Value MinRating `json:"value"`
	Label string    `json:"label"`
}

var RatingOptions = []RatingOption{
	{Value: AnyRating, Label: "All Ratings"},
	{Value: Rating4, Label: Rating4.Label()},
	{Value: Rating3, Label: Rating3.Label()},
	{Value: Rating2, Label: Rating2.Label()},
}

func (r MinRating) Label() string {
	if r == AnyRating {
		return "All Ratings"
	}
	return fmt.Sprintf("%d★ & above", int(r))
}

func (r MinRating) IsValid() bool {
	switch r {
	case AnyRating, Rating2, Rating3, Rating4:
		return true
	}
	return false
}

type FilterCriteria struct {
	Category   string     `json:"category"`
	PriceRange PriceRange `json:"priceRange"`
	MinRating  MinRating  `json:"minRating"`
}

func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		Category:   AllCategories,
		PriceRange: AllPrices,
		MinRating:  AnyRating,
	}
}

func (c FilterCriteria) IsDefault(field Field) bool {
	switch field {
	case CategoryField:
		return c.Category == AllCategories
	case PriceField:
		return c.PriceRange == AllPrices
	case RatingField:
		return c.MinRating == AnyRating
	}
	return true
}

// Without returns a copy with one field reset to its default.
func (c FilterCriteria) Without(field Field) FilterCriteria {
	switch field {
	case CategoryField:
		c.Category = AllCategories
	case PriceField:
		c.PriceRange = AllPrices
	case RatingField:
		c.MinRating = AnyRating
	}
	return c
}

func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter field %q", s)
}
