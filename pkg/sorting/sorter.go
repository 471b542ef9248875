package sorting

import (
	"cmp"
	"slices"

	"github.com/matst80/slask-catalog/pkg/types"
)

type Sorter interface {
	Name() types.SortKey
	Sort(products []types.Product)
}

// BaseSorter orders products by a single comparable score. Ordering is
// always stable so equal scores keep their catalog order.
type BaseSorter[V cmp.Ordered] struct {
	name       types.SortKey
	isReversed bool
	fn         func(p *types.Product) V
}

func NewBaseSorter[V cmp.Ordered](name types.SortKey, fn func(p *types.Product) V, isReversed bool) Sorter {
	return &BaseSorter[V]{
		name:       name,
		isReversed: isReversed,
		fn:         fn,
	}
}

func (s *BaseSorter[V]) Name() types.SortKey {
	return s.name
}

func (s *BaseSorter[V]) Sort(products []types.Product) {
	slices.SortStableFunc(products, func(a, b types.Product) int {
		if s.isReversed {
			return cmp.Compare(s.fn(&b), s.fn(&a))
		}
		return cmp.Compare(s.fn(&a), s.fn(&b))
	})
}

// priceSorter compares decimals directly instead of going through a float
// score.
type priceSorter struct {
	name       types.SortKey
	isReversed bool
}

func (s *priceSorter) Name() types.SortKey {
	return s.name
}

func (s *priceSorter) Sort(products []types.Product) {
	slices.SortStableFunc(products, func(a, b types.Product) int {
		if s.isReversed {
			return b.Price.Cmp(a.Price)
		}
		return a.Price.Cmp(b.Price)
	})
}

type relevanceSorter struct{}

func (relevanceSorter) Name() types.SortKey {
	return types.SortRelevance
}

func (relevanceSorter) Sort([]types.Product) {}
