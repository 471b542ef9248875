package main

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matst80/slask-catalog/pkg/browse"
	"github.com/matst80/slask-catalog/pkg/source"
	"github.com/matst80/slask-catalog/pkg/types"
)

type mode int

const (
	modeList mode = iota
	modeFilter
	modeSort
	modeDetail
)

const fetchTimeout = 15 * time.Second

type catalogLoadedMsg struct{ products []types.Product }

type catalogErrMsg struct{ err error }

type detailLoadedMsg struct{ product types.Product }

type detailErrMsg struct {
	id  types.ProductId
	err error
}

type rowKind int

const (
	rowOption rowKind = iota
	rowApply
	rowClear
)

// filterRow is one selectable line of the filter editor.
type filterRow struct {
	kind     rowKind
	field    types.Field
	label    string
	category string
	price    types.PriceRange
	rating   types.MinRating
}

func (r filterRow) selected(d types.FilterCriteria) bool {
	if r.kind != rowOption {
		return false
	}
	switch r.field {
	case types.CategoryField:
		return d.Category == r.category
	case types.PriceField:
		return d.PriceRange == r.price
	case types.RatingField:
		return d.MinRating == r.rating
	}
	return false
}

type model struct {
	screen  *browse.Screen
	loader  *source.Loader
	details source.DetailSource

	mode         mode
	cursor       int
	filterCursor int
	sortCursor   int
	chipCursor   int

	loadErr       error
	detailId      types.ProductId
	detail        *types.Product
	detailErr     error
	detailLoading bool

	spinner spinner.Model
	help    help.Model
	keys    keyMap
	width   int
	height  int
}

func newModel(loader *source.Loader, details source.DetailSource) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return model{
		screen:  browse.NewScreen(),
		loader:  loader,
		details: details,
		spinner: s,
		help:    help.New(),
		keys:    defaultKeys(),
		height:  24,
		width:   80,
	}
}

func loadCatalog(loader *source.Loader) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout*time.Duration(loader.Retries+1))
		defer cancel()
		products, err := loader.Fetch(ctx)
		if err != nil {
			return catalogErrMsg{err: err}
		}
		return catalogLoadedMsg{products: products}
	}
}

func fetchDetail(details source.DetailSource, id types.ProductId) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		p, err := details.GetProduct(ctx, id)
		if err != nil {
			return detailErrMsg{id: id, err: err}
		}
		return detailLoadedMsg{product: p}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(loadCatalog(m.loader), m.spinner.Tick)
}

func (m model) loading() bool {
	return (!m.screen.Loaded() && m.loadErr == nil) || m.detailLoading
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case catalogLoadedMsg:
		m.loadErr = nil
		m.screen.Load(msg.products)
		m.clampCursor()
		return m, nil
	case catalogErrMsg:
		m.loadErr = msg.err
		return m, nil
	case detailLoadedMsg:
		if m.mode == modeDetail && msg.product.Id == m.detailId {
			p := msg.product
			m.detail = &p
			m.detailErr = nil
			m.detailLoading = false
		}
		return m, nil
	case detailErrMsg:
		if m.mode == modeDetail && msg.id == m.detailId {
			m.detailErr = msg.err
			m.detailLoading = false
		}
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		switch m.mode {
		case modeFilter:
			return m.updateFilter(msg)
		case modeSort:
			return m.updateSort(msg)
		case modeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *model) clampCursor() {
	n := len(m.screen.View())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if chips := len(m.screen.Chips()); m.chipCursor >= chips {
		m.chipCursor = max(chips-1, 0)
	}
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.screen.View()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(view)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		if len(view) == 0 {
			return m, nil
		}
		return m.openDetail(view[m.cursor].Id)
	case key.Matches(msg, m.keys.Filter):
		m.screen.OpenFilterEditor()
		m.mode = modeFilter
		m.filterCursor = 0
	case key.Matches(msg, m.keys.Sort):
		m.mode = modeSort
		m.sortCursor = 0
		for i, o := range types.SortOptions {
			if o.Value == m.screen.Sort() {
				m.sortCursor = i
			}
		}
	case key.Matches(msg, m.keys.PrevChip):
		if m.chipCursor > 0 {
			m.chipCursor--
		}
	case key.Matches(msg, m.keys.NextChip):
		if m.chipCursor < len(m.screen.Chips())-1 {
			m.chipCursor++
		}
	case key.Matches(msg, m.keys.Unchip):
		if chips := m.screen.Chips(); m.chipCursor < len(chips) {
			m.screen.RemoveChip(chips[m.chipCursor].Field)
			m.clampCursor()
		}
	case key.Matches(msg, m.keys.ClearAll):
		m.screen.ClearAll()
		m.clampCursor()
	case key.Matches(msg, m.keys.Retry):
		if m.loadErr != nil {
			m.loadErr = nil
			return m, tea.Batch(loadCatalog(m.loader), m.spinner.Tick)
		}
	}
	return m, nil
}

func (m model) openDetail(id types.ProductId) (tea.Model, tea.Cmd) {
	m.mode = modeDetail
	m.detailId = id
	m.detail = nil
	m.detailErr = nil
	if m.details == nil {
		if p, ok := m.screen.Product(id); ok {
			m.detail = &p
		} else {
			m.detailErr = source.ErrNotFound
		}
		return m, nil
	}
	m.detailLoading = true
	return m, tea.Batch(fetchDetail(m.details, id), m.spinner.Tick)
}

func (m model) filterRows() []filterRow {
	rows := make([]filterRow, 0, 16)
	for _, c := range m.screen.Categories() {
		rows = append(rows, filterRow{kind: rowOption, field: types.CategoryField, label: c, category: c})
	}
	rows = append(rows, filterRow{kind: rowOption, field: types.PriceField, label: types.AllPrices.Label(), price: types.AllPrices})
	for _, b := range types.PriceBuckets {
		rows = append(rows, filterRow{kind: rowOption, field: types.PriceField, label: b.Label, price: b.Value})
	}
	for _, o := range types.RatingOptions {
		rows = append(rows, filterRow{kind: rowOption, field: types.RatingField, label: o.Label, rating: o.Value})
	}
	rows = append(rows,
		filterRow{kind: rowApply, label: "Apply Filters"},
		filterRow{kind: rowClear, label: "Clear All"},
	)
	return rows
}

func (m model) closeEditor() model {
	m.mode = modeList
	m.clampCursor()
	return m
}

func (m model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.filterRows()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.filterCursor > 0 {
			m.filterCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.filterCursor < len(rows)-1 {
			m.filterCursor++
		}
	case key.Matches(msg, m.keys.Select):
		row := rows[m.filterCursor]
		switch row.kind {
		case rowApply:
			m.screen.Commit()
			return m.closeEditor(), nil
		case rowClear:
			m.screen.ClearAll()
			return m.closeEditor(), nil
		}
		switch row.field {
		case types.CategoryField:
			m.screen.SetDraftCategory(row.category)
		case types.PriceField:
			m.screen.SetDraftPriceRange(row.price)
		case types.RatingField:
			m.screen.SetDraftRating(row.rating)
		}
	case key.Matches(msg, m.keys.Apply):
		m.screen.Commit()
		return m.closeEditor(), nil
	case key.Matches(msg, m.keys.ClearAll):
		m.screen.ClearAll()
		return m.closeEditor(), nil
	case key.Matches(msg, m.keys.Close):
		m.screen.Cancel()
		return m.closeEditor(), nil
	}
	return m, nil
}

func (m model) updateSort(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.sortCursor > 0 {
			m.sortCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.sortCursor < len(types.SortOptions)-1 {
			m.sortCursor++
		}
	case key.Matches(msg, m.keys.Select):
		m.screen.SetSort(types.SortOptions[m.sortCursor].Value)
		m.cursor = 0
		m.mode = modeList
	case key.Matches(msg, m.keys.Close):
		m.mode = modeList
	}
	return m, nil
}

func (m model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.mode = modeList
		m.detail = nil
		m.detailErr = nil
		m.detailLoading = false
	case key.Matches(msg, m.keys.Retry):
		if m.detailErr != nil && !m.detailLoading {
			return m.openDetail(m.detailId)
		}
	}
	return m, nil
}
