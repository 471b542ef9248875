package browse

import (
	"time"

	"github.com/matst80/slask-catalog/pkg/catalog"
	"github.com/matst80/slask-catalog/pkg/display"
	"github.com/matst80/slask-catalog/pkg/filter"
	"github.com/matst80/slask-catalog/pkg/selection"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noDerivations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskcatalog_derivations_total",
		Help: "The total number of derived view recomputations",
	})
	deriveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slaskcatalog_derive_seconds",
		Help:    "Time spent filtering and sorting the catalog",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})
	noCommits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskcatalog_filter_commits_total",
		Help: "The total number of committed filter edits",
	})
)

type Listener func(Snapshot)

// Screen owns the catalog, the filter selection and the sort key of one
// browsing session and keeps the derived view in step with them. Every
// operation that can change the view recomputes it before returning.
// A Screen is not safe for concurrent use.
type Screen struct {
	store          *catalog.Store
	selection      *selection.Controller
	sort           types.SortKey
	view           []types.Product
	loaded         bool
	recomputations int
	listeners      []Listener
}

func NewScreen() *Screen {
	s := &Screen{
		store:     catalog.NewStore(),
		selection: selection.NewController(),
		sort:      types.SortRelevance,
	}
	s.view = filter.Derive(s.store.Products(), s.selection.Applied(), s.sort)
	return s
}

// Subscribe registers fn to receive a snapshot after each recompute.
func (s *Screen) Subscribe(fn Listener) {
	s.listeners = append(s.listeners, fn)
}

func (s *Screen) recompute() {
	start := time.Now()
	s.view = filter.Derive(s.store.Products(), s.selection.Applied(), s.sort)
	deriveDuration.Observe(time.Since(start).Seconds())
	noDerivations.Inc()
	s.recomputations++
	if len(s.listeners) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.listeners {
		fn(snap)
	}
}

// Load replaces the catalog and recomputes.
func (s *Screen) Load(products []types.Product) {
	s.store.Load(products)
	s.loaded = true
	s.recompute()
}

func (s *Screen) OpenFilterEditor() {
	s.selection.Open()
}

func (s *Screen) SetDraftCategory(category string) bool {
	return s.selection.SetDraftCategory(category)
}

func (s *Screen) SetDraftPriceRange(r types.PriceRange) bool {
	return s.selection.SetDraftPriceRange(r)
}

func (s *Screen) SetDraftRating(r types.MinRating) bool {
	return s.selection.SetDraftRating(r)
}

// Commit applies the draft. Returns false if the editor was not open.
func (s *Screen) Commit() bool {
	if !s.selection.Commit() {
		return false
	}
	noCommits.Inc()
	s.recompute()
	return true
}

func (s *Screen) Cancel() bool {
	return s.selection.Cancel()
}

func (s *Screen) ClearAll() {
	s.selection.ClearAll()
	s.recompute()
}

// RemoveChip resets a single applied criterion, as the chip row does.
func (s *Screen) RemoveChip(field types.Field) bool {
	if !s.selection.Remove(field) {
		return false
	}
	s.recompute()
	return true
}

func (s *Screen) SetSort(key types.SortKey) bool {
	if key == s.sort {
		return false
	}
	s.sort = key
	s.recompute()
	return true
}

func (s *Screen) View() []types.Product {
	return s.view
}

func (s *Screen) Sort() types.SortKey {
	return s.sort
}

func (s *Screen) Applied() types.FilterCriteria {
	return s.selection.Applied()
}

func (s *Screen) Draft() (types.FilterCriteria, bool) {
	return s.selection.Draft()
}

func (s *Screen) EditorState() selection.State {
	return s.selection.State()
}

func (s *Screen) Categories() []string {
	return s.store.Categories()
}

func (s *Screen) Product(id types.ProductId) (types.Product, bool) {
	return s.store.Get(id)
}

func (s *Screen) ActiveCount() int {
	return selection.ActiveCount(s.selection.Applied())
}

func (s *Screen) Chips() []selection.Chip {
	return selection.Describe(s.selection.Applied())
}

func (s *Screen) Loaded() bool {
	return s.loaded
}

// Recomputations reports how many times the view has been derived since the
// screen was created, not counting the initial empty view.
func (s *Screen) Recomputations() int {
	return s.recomputations
}

type ChipView struct {
	Field types.Field `json:"field"`
	Label string      `json:"label"`
}

// Snapshot is what the presentation layer reads after a change.
type Snapshot struct {
	Products    []types.Product       `json:"products"`
	Count       int                   `json:"count"`
	CountLabel  string                `json:"countLabel"`
	Categories  []string              `json:"categories"`
	Sort        types.SortKey         `json:"sort"`
	Applied     types.FilterCriteria  `json:"applied"`
	Draft       *types.FilterCriteria `json:"draft,omitempty"`
	Editing     bool                  `json:"editing"`
	ActiveCount int                   `json:"activeCount"`
	Chips       []ChipView            `json:"chips"`
	Loading     bool                  `json:"loading"`
	Empty       bool                  `json:"empty"`
}

func (s *Screen) Snapshot() Snapshot {
	chips := s.Chips()
	chipViews := make([]ChipView, 0, len(chips))
	for _, c := range chips {
		chipViews = append(chipViews, ChipView{Field: c.Field, Label: c.Label})
	}
	snap := Snapshot{
		Products:    s.view,
		Count:       len(s.view),
		CountLabel:  display.ResultCount(len(s.view)),
		Categories:  s.store.Categories(),
		Sort:        s.sort,
		Applied:     s.selection.Applied(),
		ActiveCount: len(chips),
		Chips:       chipViews,
		Loading:     !s.loaded,
		Empty:       s.loaded && len(s.view) == 0,
	}
	if draft, ok := s.selection.Draft(); ok {
		snap.Draft = &draft
		snap.Editing = true
	}
	return snap
}
