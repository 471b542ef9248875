package types

import (
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPriceBucketEdges(t *testing.T) {
	cases := []struct {
		rng   PriceRange
		price string
		want  bool
	}{
		{PriceUnder50, "0", true},
		{PriceUnder50, "50", true},
		{PriceUnder50, "50.01", false},
		{Price50To100, "49.99", false},
		{Price50To100, "50", true},
		{Price50To100, "100", true},
		{Price50To100, "100.01", false},
		{Price100To200, "99.99", false},
		{Price100To200, "100", true},
		{Price100To200, "200", true},
		{Price100To200, "200.01", false},
		{Price200To500, "199.99", false},
		{Price200To500, "200", true},
		{Price200To500, "500", true},
		{Price200To500, "500.01", false},
		{PriceAbove500, "499.99", false},
		{PriceAbove500, "500", true},
		{PriceAbove500, "99999", true},
		{PriceAbove500, "100000.5", true},
	}
	for _, c := range cases {
		b, ok := c.rng.Bucket()
		if !ok {
			t.Fatalf("missing bucket for %s", c.rng)
		}
		if got := b.Contains(decimal.RequireFromString(c.price)); got != c.want {
			t.Errorf("%s contains %s: expected %v got %v", c.rng, c.price, c.want, got)
		}
	}
}

func TestParsePriceRange(t *testing.T) {
	assert.Equal(t, AllPrices, ParsePriceRange(""))
	assert.Equal(t, AllPrices, ParsePriceRange("All"))
	assert.Equal(t, PriceAbove500, ParsePriceRange("500-99999"))
	assert.Equal(t, Price50To100, ParsePriceRange("50-100"))
	assert.False(t, ParsePriceRange("10-20").IsValid())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "All Prices", AllPrices.Label())
	assert.Equal(t, "₹50 - ₹100", Price50To100.Label())
	assert.Equal(t, "Above ₹500", PriceAbove500.Label())
	assert.Equal(t, "4★ & above", Rating4.Label())
	assert.Equal(t, "Customer Rating", SortRating.Label())
	assert.Equal(t, "bogus", SortKey("bogus").Label())
}

func TestCriteriaWithout(t *testing.T) {
	c := FilterCriteria{Category: "A", PriceRange: Price50To100, MinRating: Rating3}
	got := c.Without(CategoryField)
	assert.Equal(t, FilterCriteria{Category: AllCategories, PriceRange: Price50To100, MinRating: Rating3}, got)
	assert.Equal(t, "A", c.Category, "receiver must not change")
	assert.True(t, c.Without(RatingField).IsDefault(RatingField))
	assert.False(t, c.Without(RatingField).IsDefault(PriceField))
}

func TestCriteriaFromQuery(t *testing.T) {
	query := url.Values{
		"category": []string{"jewelery"},
		"price":    []string{"500-99999"},
		"rating":   []string{"4"},
		"sort":     []string{"price-high"},
		"other":    []string{"x"},
	}
	cr, err := criteriaFromQuery(query)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got := cr.ApplyTo(DefaultCriteria())
	if got.Category != "jewelery" || got.PriceRange != PriceAbove500 || got.MinRating != Rating4 {
		t.Errorf("unexpected criteria %+v", got)
	}
	sort, ok := cr.SortKey()
	if !ok || sort != SortPriceHigh {
		t.Errorf("Expected sort price-high, got %v", sort)
	}
}

func TestCriteriaFromQueryPartial(t *testing.T) {
	cr, err := criteriaFromQuery(url.Values{"rating": []string{"2"}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	base := FilterCriteria{Category: "A", PriceRange: Price100To200, MinRating: Rating4}
	got := cr.ApplyTo(base)
	assert.Equal(t, FilterCriteria{Category: "A", PriceRange: Price100To200, MinRating: Rating2}, got)
	_, ok := cr.SortKey()
	assert.False(t, ok)
	assert.True(t, cr.HasFilter())
}

func TestCriteriaFromQueryBadRating(t *testing.T) {
	_, err := criteriaFromQuery(url.Values{"rating": []string{"four"}})
	assert.Error(t, err)
}
