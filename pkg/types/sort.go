package types

type SortKey string

const (
	SortRelevance  SortKey = "relevance"
	SortPriceLow   SortKey = "price-low"
	SortPriceHigh  SortKey = "price-high"
	SortRating     SortKey = "rating"
	SortPopularity SortKey = "popularity"
)

type SortOption struct {
	Value SortKey `json:"value"`
	Label string  `json:"label"`
}

var SortOptions = []SortOption{
	{Value: SortRelevance, Label: "Relevance"},
	{Value: SortPriceLow, Label: "Price: Low to High"},
	{Value: SortPriceHigh, Label: "Price: High to Low"},
	{Value: SortRating, Label: "Customer Rating"},
	{Value: SortPopularity, Label: "Popularity"},
}

func (s SortKey) Label() string {
	for _, o := range SortOptions {
		if o.Value == s {
			return o.Label
		}
	}
	return string(s)
}

func (s SortKey) IsValid() bool {
	for _, o := range SortOptions {
		if o.Value == s {
			return true
		}
	}
	return false
}
