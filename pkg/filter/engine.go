package filter

import (
	"github.com/matst80/slask-catalog/pkg/sorting"
	"github.com/matst80/slask-catalog/pkg/types"
)

type predicate func(p *types.Product) bool

func matchNothing(*types.Product) bool { return false }

// predicates builds the active predicates in evaluation order: category,
// price range, minimum rating. Default fields add nothing and values outside
// the known sets match no product.
func predicates(c types.FilterCriteria) []predicate {
	ret := make([]predicate, 0, 3)
	if c.Category != types.AllCategories {
		category := c.Category
		ret = append(ret, func(p *types.Product) bool {
			return p.Category == category
		})
	}
	if c.PriceRange != types.AllPrices {
		bucket, ok := c.PriceRange.Bucket()
		if !ok {
			return []predicate{matchNothing}
		}
		ret = append(ret, func(p *types.Product) bool {
			return bucket.Contains(p.Price)
		})
	}
	if c.MinRating != types.AnyRating {
		if !c.MinRating.IsValid() {
			return []predicate{matchNothing}
		}
		minRate := float64(c.MinRating)
		ret = append(ret, func(p *types.Product) bool {
			return p.Rating.Rate >= minRate
		})
	}
	return ret
}

func matchAll(p *types.Product, preds []predicate) bool {
	for _, fn := range preds {
		if !fn(p) {
			return false
		}
	}
	return true
}

// Matches reports whether the product satisfies every active criterion.
func Matches(p types.Product, c types.FilterCriteria) bool {
	return matchAll(&p, predicates(c))
}

// Derive returns the products satisfying c, ordered by sort. The input is
// never modified and the result is never nil.
func Derive(products []types.Product, c types.FilterCriteria, sort types.SortKey) []types.Product {
	preds := predicates(c)
	result := make([]types.Product, 0, len(products))
	for i := range products {
		if matchAll(&products[i], preds) {
			result = append(result, products[i])
		}
	}
	sorting.Sort(result, sort)
	return result
}
