package sorting

import (
	"github.com/matst80/slask-catalog/pkg/types"
)

var sorters = map[types.SortKey]Sorter{}

func register(s Sorter) {
	sorters[s.Name()] = s
}

func init() {
	register(relevanceSorter{})
	register(&priceSorter{name: types.SortPriceLow})
	register(&priceSorter{name: types.SortPriceHigh, isReversed: true})
	register(NewBaseSorter(types.SortRating, func(p *types.Product) float64 {
		return p.Rating.Rate
	}, true))
	register(NewBaseSorter(types.SortPopularity, func(p *types.Product) int {
		return p.Rating.Count
	}, true))
}

// GetSorter returns the sorter for key, unknown keys fall back to relevance.
func GetSorter(key types.SortKey) Sorter {
	if s, ok := sorters[key]; ok {
		return s
	}
	return sorters[types.SortRelevance]
}

// Sort orders products in place.
func Sort(products []types.Product, key types.SortKey) {
	GetSorter(key).Sort(products)
}
