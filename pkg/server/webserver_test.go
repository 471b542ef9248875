package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/matst80/slask-catalog/pkg/browse"
	"github.com/matst80/slask-catalog/pkg/common/jsoncompat"
	"github.com/matst80/slask-catalog/pkg/source"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int, category string, price int64, rate float64, count int) types.Product {
	return types.Product{
		Id:       types.ProductId(id),
		Title:    category + " item",
		Price:    decimal.NewFromInt(price),
		Category: category,
		Rating:   types.Rating{Rate: rate, Count: count},
	}
}

var testCatalog = []types.Product{
	product(1, "electronics", 30, 4.5, 10),
	product(2, "electronics", 75, 3.0, 20),
	product(3, "jewelery", 600, 4.8, 1234),
	product(4, "jewelery", 120, 2.5, 5),
	product(5, "men's clothing", 45, 3.9, 120),
}

type staticSource struct {
	products []types.Product
	detail   map[types.ProductId]types.Product
	err      error
}

func (s *staticSource) ListProducts(ctx context.Context) ([]types.Product, error) {
	return s.products, nil
}

func (s *staticSource) GetProduct(ctx context.Context, id types.ProductId) (types.Product, error) {
	if s.err != nil {
		return types.Product{}, s.err
	}
	p, ok := s.detail[id]
	if !ok {
		return types.Product{}, source.ErrNotFound
	}
	return p, nil
}

type trackedFilter struct {
	criteria types.FilterCriteria
	sort     types.SortKey
	results  int
}

type memoryTracking struct {
	mu      sync.Mutex
	filters []trackedFilter
	views   []types.ProductId
}

func (m *memoryTracking) TrackSession(sessionId string, r *http.Request) {}

func (m *memoryTracking) TrackFilter(sessionId string, criteria types.FilterCriteria, sort types.SortKey, resultLen int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, trackedFilter{criteria, sort, resultLen})
}

func (m *memoryTracking) TrackProductView(sessionId string, id types.ProductId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views = append(m.views, id)
}

func (m *memoryTracking) Close() error { return nil }

type testEnv struct {
	ws       *WebServer
	src      *staticSource
	tracking *memoryTracking
	srv      *httptest.Server
	client   *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	src := &staticSource{
		products: testCatalog,
		detail:   map[types.ProductId]types.Product{3: testCatalog[2]},
	}
	trk := &memoryTracking{}
	ws := NewWebServer(NewSessionStore(time.Hour), source.NewLoader(src, 0, time.Millisecond), src, trk)
	require.NoError(t, ws.ReloadCatalog(context.Background()))
	srv := httptest.NewServer(ws.Handler())
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{ws: ws, src: src, tracking: trk, srv: srv, client: &http.Client{Jar: jar}}
}

func (e *testEnv) do(t *testing.T, method, path string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, nil)
	require.NoError(t, err)
	res, err := e.client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, body
}

func (e *testEnv) snapshot(t *testing.T, method, path string) browse.Snapshot {
	t.Helper()
	status, body := e.do(t, method, path)
	require.Equal(t, http.StatusOK, status, string(body))
	var snap browse.Snapshot
	require.NoError(t, jsoncompat.Unmarshal(body, &snap))
	return snap
}

func ids(products []types.Product) []types.ProductId {
	ret := make([]types.ProductId, 0, len(products))
	for _, p := range products {
		ret = append(ret, p.Id)
	}
	return ret
}

func TestProductsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	snap := env.snapshot(t, http.MethodGet, "/api/products")
	assert.Equal(t, 5, snap.Count)
	assert.Equal(t, "5 Products", snap.CountLabel)
	assert.Equal(t, []types.ProductId{1, 2, 3, 4, 5}, ids(snap.Products))
	assert.Equal(t, []string{"All", "electronics", "jewelery", "men's clothing"}, snap.Categories)
	assert.False(t, snap.Loading)
	assert.False(t, snap.Editing)
}

func TestStagedFilterFlow(t *testing.T) {
	env := newTestEnv(t)

	snap := env.snapshot(t, http.MethodPost, "/api/filter/open")
	assert.True(t, snap.Editing)
	require.NotNil(t, snap.Draft)

	snap = env.snapshot(t, http.MethodPut, "/api/filter/draft?category=jewelery&price=500%2B&rating=4")
	assert.Equal(t, 5, snap.Count, "draft edits must not change the list")
	require.NotNil(t, snap.Draft)
	assert.Equal(t, "jewelery", snap.Draft.Category)
	assert.Equal(t, types.PriceAbove500, snap.Draft.PriceRange)
	assert.Equal(t, types.Rating4, snap.Draft.MinRating)

	snap = env.snapshot(t, http.MethodPost, "/api/filter/commit")
	assert.False(t, snap.Editing)
	assert.Equal(t, []types.ProductId{3}, ids(snap.Products))
	assert.Equal(t, "1 Product", snap.CountLabel)
	assert.Equal(t, 3, snap.ActiveCount)

	snap = env.snapshot(t, http.MethodDelete, "/api/filter/price")
	assert.Equal(t, 2, snap.ActiveCount)
	assert.Equal(t, []types.ProductId{3}, ids(snap.Products))

	snap = env.snapshot(t, http.MethodPost, "/api/filter/clear")
	assert.Equal(t, 0, snap.ActiveCount)
	assert.Equal(t, 5, snap.Count)

	env.tracking.mu.Lock()
	defer env.tracking.mu.Unlock()
	require.Len(t, env.tracking.filters, 3)
	assert.Equal(t, 1, env.tracking.filters[0].results)
	assert.Equal(t, types.AllCategories, env.tracking.filters[2].criteria.Category)
}

func TestCancelDiscardsDraft(t *testing.T) {
	env := newTestEnv(t)
	env.snapshot(t, http.MethodPost, "/api/filter/open")
	env.snapshot(t, http.MethodPut, "/api/filter/draft?category=electronics")
	snap := env.snapshot(t, http.MethodPost, "/api/filter/cancel")
	assert.False(t, snap.Editing)
	assert.Nil(t, snap.Draft)
	assert.Equal(t, types.AllCategories, snap.Applied.Category)
	assert.Equal(t, 5, snap.Count)

	snap = env.snapshot(t, http.MethodPost, "/api/filter/open")
	assert.Equal(t, types.AllCategories, snap.Draft.Category, "reopening seeds from applied")
}

func TestDraftRequiresOpenEditor(t *testing.T) {
	env := newTestEnv(t)
	status, _ := env.do(t, http.MethodPut, "/api/filter/draft?category=electronics")
	assert.Equal(t, http.StatusConflict, status)
	status, _ = env.do(t, http.MethodPost, "/api/filter/commit")
	assert.Equal(t, http.StatusConflict, status)
}

func TestBadRequests(t *testing.T) {
	env := newTestEnv(t)
	status, _ := env.do(t, http.MethodDelete, "/api/filter/colour")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodPut, "/api/sort")
	assert.Equal(t, http.StatusBadRequest, status)
	env.snapshot(t, http.MethodPost, "/api/filter/open")
	status, _ = env.do(t, http.MethodPut, "/api/filter/draft?rating=four")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodGet, "/api/product/abc")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSortIsImmediate(t *testing.T) {
	env := newTestEnv(t)
	snap := env.snapshot(t, http.MethodPut, "/api/sort?sort=price-high")
	assert.Equal(t, types.SortPriceHigh, snap.Sort)
	assert.Equal(t, []types.ProductId{3, 4, 2, 5, 1}, ids(snap.Products))

	snap = env.snapshot(t, http.MethodPut, "/api/sort?sort=popularity")
	assert.Equal(t, []types.ProductId{3, 5, 2, 1, 4}, ids(snap.Products))

	snap = env.snapshot(t, http.MethodPut, "/api/sort?sort=cheapest")
	assert.Equal(t, types.SortRelevance, snap.Sort)
	assert.Equal(t, []types.ProductId{1, 2, 3, 4, 5}, ids(snap.Products))
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	env.snapshot(t, http.MethodPut, "/api/sort?sort=price-low")

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	other := &testEnv{srv: env.srv, client: &http.Client{Jar: jar}}
	snap := other.snapshot(t, http.MethodGet, "/api/products")
	assert.Equal(t, types.SortRelevance, snap.Sort)
	assert.Equal(t, 2, env.ws.Sessions.Len())
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, http.MethodGet, "/api/product/3")
	require.Equal(t, http.StatusOK, status)
	var detail ProductDetail
	require.NoError(t, jsoncompat.Unmarshal(body, &detail))
	assert.Equal(t, types.ProductId(3), detail.Id)
	assert.Equal(t, "₹600.00", detail.PriceLabel)
	assert.Equal(t, "⭐ ⭐ ⭐ ⭐ ⭐", detail.Stars)
	assert.Equal(t, "4.8", detail.RateLabel)
	assert.Equal(t, "1,234 reviews", detail.ReviewLabel)

	status, _ = env.do(t, http.MethodGet, "/api/product/42")
	assert.Equal(t, http.StatusNotFound, status)

	env.src.err = errors.New("connection reset")
	status, _ = env.do(t, http.MethodGet, "/api/product/3")
	assert.Equal(t, http.StatusBadGateway, status)

	env.tracking.mu.Lock()
	defer env.tracking.mu.Unlock()
	assert.Equal(t, []types.ProductId{3}, env.tracking.views)
}

func TestGetProductFromCatalog(t *testing.T) {
	env := newTestEnv(t)
	env.ws.Details = nil
	status, _ := env.do(t, http.MethodGet, "/api/product/5")
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodGet, "/api/product/42")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOptionsAndCategories(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, http.MethodGet, "/api/options")
	require.Equal(t, http.StatusOK, status)
	var opts OptionsResponse
	require.NoError(t, jsoncompat.Unmarshal(body, &opts))
	assert.Len(t, opts.PriceRanges, len(types.PriceBuckets))
	assert.Len(t, opts.Sorts, len(types.SortOptions))

	status, body = env.do(t, http.MethodGet, "/api/categories")
	require.Equal(t, http.StatusOK, status)
	var categories []string
	require.NoError(t, jsoncompat.Unmarshal(body, &categories))
	assert.Equal(t, "All", categories[0])
}

func TestReloadKeepsSelection(t *testing.T) {
	env := newTestEnv(t)
	env.snapshot(t, http.MethodPost, "/api/filter/open")
	env.snapshot(t, http.MethodPut, "/api/filter/draft?category=jewelery")
	env.snapshot(t, http.MethodPost, "/api/filter/commit")

	env.src.products = append(testCatalog[:5:5], product(6, "jewelery", 10, 1, 1))
	require.NoError(t, env.ws.ReloadCatalog(context.Background()))

	snap := env.snapshot(t, http.MethodGet, "/api/products")
	assert.Equal(t, "jewelery", snap.Applied.Category)
	assert.Equal(t, []types.ProductId{3, 4, 6}, ids(snap.Products))
}

func TestHealth(t *testing.T) {
	ws := NewWebServer(NewSessionStore(time.Hour), nil, nil, nil)
	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ws.Sessions.Load(testCatalog)
	rec = httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
