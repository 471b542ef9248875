package catalog

import (
	"slices"

	"github.com/matst80/slask-catalog/pkg/types"
)

// Store keeps the product collection from the last fetch together with the
// category universe derived from it. A Load replaces both.
type Store struct {
	products   []types.Product
	byId       map[types.ProductId]int
	categories []string
}

func NewStore() *Store {
	return &Store{
		products:   []types.Product{},
		byId:       map[types.ProductId]int{},
		categories: []string{types.AllCategories},
	}
}

func (s *Store) Load(products []types.Product) {
	s.products = slices.Clone(products)
	if s.products == nil {
		s.products = []types.Product{}
	}
	s.byId = make(map[types.ProductId]int, len(s.products))
	for i := range s.products {
		s.byId[s.products[i].Id] = i
	}
	s.categories = categoryUniverse(s.products)
}

func categoryUniverse(products []types.Product) []string {
	seen := make(map[string]struct{})
	result := []string{types.AllCategories}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		result = append(result, p.Category)
	}
	return result
}

// Products returns the stored catalog in fetch order. Callers must not
// modify the returned slice.
func (s *Store) Products() []types.Product {
	return s.products
}

func (s *Store) Categories() []string {
	return slices.Clone(s.categories)
}

func (s *Store) Len() int {
	return len(s.products)
}

func (s *Store) Get(id types.ProductId) (types.Product, bool) {
	idx, ok := s.byId[id]
	if !ok {
		return types.Product{}, false
	}
	return s.products[idx], true
}
