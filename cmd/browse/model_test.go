package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matst80/slask-catalog/pkg/source"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []types.Product{
	{Id: 1, Title: "Laptop", Price: decimal.NewFromInt(30), Category: "electronics", Rating: types.Rating{Rate: 4.5, Count: 10}},
	{Id: 2, Title: "Headphones", Price: decimal.NewFromInt(75), Category: "electronics", Rating: types.Rating{Rate: 3.0, Count: 20}},
	{Id: 3, Title: "Ring", Price: decimal.NewFromInt(600), Category: "jewelery", Rating: types.Rating{Rate: 4.8, Count: 1234}},
	{Id: 4, Title: "Chain", Price: decimal.NewFromInt(120), Category: "jewelery", Rating: types.Rating{Rate: 2.5, Count: 5}},
}

type fakeSource struct {
	err error
}

func (f *fakeSource) ListProducts(ctx context.Context) ([]types.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return catalog, nil
}

func (f *fakeSource) GetProduct(ctx context.Context, id types.ProductId) (types.Product, error) {
	if f.err != nil {
		return types.Product{}, f.err
	}
	for _, p := range catalog {
		if p.Id == id {
			return p, nil
		}
	}
	return types.Product{}, source.ErrNotFound
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyPress(k))
		m = next.(model)
	}
	return m
}

func loadedModel(t *testing.T, src *fakeSource) model {
	t.Helper()
	m := newModel(source.NewLoader(src, 0, time.Millisecond), src)
	msg := loadCatalog(m.loader)()
	next, _ := m.Update(msg)
	return next.(model)
}

// moveTo places the filter cursor on the row with the given label.
func moveTo(t *testing.T, m model, label string) model {
	t.Helper()
	for i, row := range m.filterRows() {
		if row.label == label {
			m.filterCursor = i
			return m
		}
	}
	t.Fatalf("no filter row %q", label)
	return m
}

func TestInitialLoad(t *testing.T) {
	m := loadedModel(t, &fakeSource{})
	assert.True(t, m.screen.Loaded())
	assert.Len(t, m.screen.View(), 4)
	assert.Contains(t, m.View(), "4 Products")
}

func TestLoadFailureAndRetry(t *testing.T) {
	src := &fakeSource{err: errors.New("offline")}
	m := loadedModel(t, src)
	require.Error(t, m.loadErr)
	assert.Contains(t, m.View(), "try again")

	src.err = nil
	next, cmd := m.Update(keyPress("r"))
	m = next.(model)
	require.NotNil(t, cmd)
	assert.Nil(t, m.loadErr)
	next, _ = m.Update(loadCatalog(m.loader)())
	m = next.(model)
	assert.Len(t, m.screen.View(), 4)
}

func TestFilterEditorStagesUntilApply(t *testing.T) {
	m := loadedModel(t, &fakeSource{})
	m = press(t, m, "f")
	assert.Equal(t, modeFilter, m.mode)

	m = moveTo(t, m, "jewelery")
	m = press(t, m, "enter")
	m = moveTo(t, m, "Above ₹500")
	m = press(t, m, "enter")
	assert.Len(t, m.screen.View(), 4, "draft selections must not filter the list")

	m = press(t, m, "a")
	assert.Equal(t, modeList, m.mode)
	require.Len(t, m.screen.View(), 1)
	assert.Equal(t, types.ProductId(3), m.screen.View()[0].Id)
	assert.Contains(t, m.View(), "1 Product")
	assert.Contains(t, m.View(), "Above ₹500")
}

func TestFilterEditorCancel(t *testing.T) {
	m := loadedModel(t, &fakeSource{})
	m = press(t, m, "f")
	m = moveTo(t, m, "electronics")
	m = press(t, m, "enter", "esc")
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, types.AllCategories, m.screen.Applied().Category)
	assert.Len(t, m.screen.View(), 4)
}

func TestClearAllAndChipRemoval(t *testing.T) {
	m := loadedModel(t, &fakeSource{})
	m = press(t, m, "f")
	m = moveTo(t, m, "electronics")
	m = press(t, m, "enter")
	m = moveTo(t, m, types.Rating4.Label())
	m = press(t, m, "enter")
	m = moveTo(t, m, "Apply Filters")
	m = press(t, m, "enter")
	require.Len(t, m.screen.View(), 1)
	assert.Equal(t, 2, m.screen.ActiveCount())

	m = press(t, m, "x")
	assert.Equal(t, 1, m.screen.ActiveCount())
	assert.Len(t, m.screen.View(), 2)

	m = press(t, m, "c")
	assert.Equal(t, 0, m.screen.ActiveCount())
	assert.Len(t, m.screen.View(), 4)
}

func TestRemoveFocusedChip(t *testing.T) {
	m := loadedModel(t, &fakeSource{})
	m = press(t, m, "f")
	m = moveTo(t, m, "jewelery")
	m = press(t, m, "enter")
	m = moveTo(t, m, "Above ₹500")
	m = press(t, m, "enter")
	m = moveTo(t, m, types.Rating4.Label())
	m = press(t, m, "enter", "a")
	require.Len(t, m.screen.Chips(), 3)

	// drop only the price chip
	m = press(t, m, "right", "x")
	applied := m.screen.Applied()
	assert.Equal(t, "jewelery", applied.Category)
	assert.Equal(t, types.AllPrices, applied.PriceRange)
	assert.Equal(t, types.Rating4, applied.MinRating)
	require.Len(t, m.screen.View(), 1)
	assert.Equal(t, types.ProductId(3), m.screen.View()[0].Id)

	// focus stays in range, then drop the category chip
	m = press(t, m, "right", "right", "left", "x")
	applied = m.screen.Applied()
	assert.Equal(t, types.AllCategories, applied.Category)
	assert.Equal(t, types.Rating4, applied.MinRating)
	assert.Len(t, m.screen.View(), 2)
	assert.Equal(t, 1, m.screen.ActiveCount())
}

func TestEmptyState(t *testing.T) {
	m := loadedModel(t, &fakeSource{})
	m = press(t, m, "f")
	m = moveTo(t, m, "electronics")
	m = press(t, m, "enter")
	m = moveTo(t, m, "Above ₹500")
	m = press(t, m, "enter", "a")
	assert.Empty(t, m.screen.View())
	assert.Contains(t, m.View(), "No products match your filters")
	// selecting in an empty list is a no-op
	m = press(t, m, "enter")
	assert.Equal(t, modeList, m.mode)
}

func TestSortModal(t *testing.T) {
	m := loadedModel(t, &fakeSource{})
	m = press(t, m, "s")
	assert.Equal(t, modeSort, m.mode)
	m = press(t, m, "down", "down", "enter")
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, types.SortPriceHigh, m.screen.Sort())
	assert.Equal(t, types.ProductId(3), m.screen.View()[0].Id)

	m = press(t, m, "s", "up", "esc")
	assert.Equal(t, types.SortPriceHigh, m.screen.Sort())
}

func TestDetailView(t *testing.T) {
	src := &fakeSource{}
	m := loadedModel(t, src)
	m = press(t, m, "down", "down")
	next, cmd := m.Update(keyPress("enter"))
	m = next.(model)
	require.NotNil(t, cmd)
	assert.Equal(t, modeDetail, m.mode)
	assert.True(t, m.detailLoading)

	next, _ = m.Update(fetchDetail(src, m.detailId)())
	m = next.(model)
	require.NotNil(t, m.detail)
	view := m.View()
	assert.Contains(t, view, "Ring")
	assert.Contains(t, view, "₹600.00")
	assert.Contains(t, view, "1,234 reviews")

	m = press(t, m, "esc")
	assert.Equal(t, modeList, m.mode)
}

func TestDetailRetry(t *testing.T) {
	src := &fakeSource{err: errors.New("timeout")}
	m := newModel(source.NewLoader(src, 0, time.Millisecond), src)
	m.screen.Load(catalog)

	next, _ := m.Update(keyPress("enter"))
	m = next.(model)
	next, _ = m.Update(fetchDetail(src, m.detailId)())
	m = next.(model)
	require.Error(t, m.detailErr)
	assert.True(t, strings.Contains(m.View(), "try again"))

	src.err = nil
	next, cmd := m.Update(keyPress("r"))
	m = next.(model)
	require.NotNil(t, cmd)
	next, _ = m.Update(fetchDetail(src, m.detailId)())
	m = next.(model)
	require.NotNil(t, m.detail)
	assert.Equal(t, types.ProductId(1), m.detail.Id)
}

func TestStaleDetailIgnored(t *testing.T) {
	m := loadedModel(t, &fakeSource{})
	m = press(t, m, "enter", "esc")
	next, _ := m.Update(detailLoadedMsg{product: catalog[0]})
	m = next.(model)
	assert.Nil(t, m.detail)
}
