package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/matst80/slask-catalog/pkg/browse"
	"github.com/matst80/slask-catalog/pkg/common"
	"github.com/matst80/slask-catalog/pkg/common/jsoncompat"
	"github.com/matst80/slask-catalog/pkg/display"
	"github.com/matst80/slask-catalog/pkg/source"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskcatalog_requests_total",
		Help: "The total number of handled api requests",
	}, []string{"handler"})
	noDetailErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskcatalog_detail_errors_total",
		Help: "The total number of failed product detail lookups",
	})
)

type WebServer struct {
	Sessions *SessionStore
	Loader   *source.Loader
	Details  source.DetailSource
	Tracking types.Tracking
}

func NewWebServer(sessions *SessionStore, loader *source.Loader, details source.DetailSource, tracking types.Tracking) *WebServer {
	return &WebServer{
		Sessions: sessions,
		Loader:   loader,
		Details:  details,
		Tracking: tracking,
	}
}

// ReloadCatalog fetches the catalog and loads it into every session. A failed
// fetch leaves the current catalog in place.
func (ws *WebServer) ReloadCatalog(ctx context.Context) error {
	return ws.Loader.LoadInto(ctx, ws.Sessions)
}

func (ws *WebServer) trackFilter(sessionId string, screen *browse.Screen) {
	if ws.Tracking == nil {
		return
	}
	ws.Tracking.TrackFilter(sessionId, screen.Applied(), screen.Sort(), len(screen.View()))
}

// screenHandler runs fn against the caller's screen and answers with the
// resulting snapshot.
func (ws *WebServer) screenHandler(name string, fn func(r *http.Request, sessionId string, screen *browse.Screen) error) http.HandlerFunc {
	return common.JsonHandler(ws.Tracking, func(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
		noRequests.WithLabelValues(name).Inc()
		return ws.Sessions.With(sessionId, func(screen *browse.Screen) error {
			if fn != nil {
				if err := fn(r, sessionId, screen); err != nil {
					return err
				}
			}
			w.Header().Set("Cache-Control", "private, no-store")
			return enc.Encode(screen.Snapshot())
		})
	})
}

func (ws *WebServer) Categories(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	noRequests.WithLabelValues("categories").Inc()
	return ws.Sessions.With(sessionId, func(screen *browse.Screen) error {
		return enc.Encode(screen.Categories())
	})
}

type OptionsResponse struct {
	PriceRanges []types.PriceBucket  `json:"priceRanges"`
	Ratings     []types.RatingOption `json:"ratings"`
	Sorts       []types.SortOption   `json:"sorts"`
}

func (ws *WebServer) Options(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	noRequests.WithLabelValues("options").Inc()
	w.Header().Set("Cache-Control", "public, max-age=3600")
	return enc.Encode(OptionsResponse{
		PriceRanges: types.PriceBuckets,
		Ratings:     types.RatingOptions,
		Sorts:       types.SortOptions,
	})
}

func openEditor(r *http.Request, sessionId string, screen *browse.Screen) error {
	screen.OpenFilterEditor()
	return nil
}

func setDraft(r *http.Request, sessionId string, screen *browse.Screen) error {
	draft, editing := screen.Draft()
	if !editing {
		return common.NewHttpError(http.StatusConflict, "filter editor is not open", nil)
	}
	cr, err := types.GetCriteriaFromRequest(r)
	if err != nil {
		return common.NewHttpError(http.StatusBadRequest, "invalid filter query", err)
	}
	next := cr.ApplyTo(draft)
	screen.SetDraftCategory(next.Category)
	screen.SetDraftPriceRange(next.PriceRange)
	screen.SetDraftRating(next.MinRating)
	return nil
}

func (ws *WebServer) commit(r *http.Request, sessionId string, screen *browse.Screen) error {
	if !screen.Commit() {
		return common.NewHttpError(http.StatusConflict, "filter editor is not open", nil)
	}
	ws.trackFilter(sessionId, screen)
	return nil
}

func cancelEditor(r *http.Request, sessionId string, screen *browse.Screen) error {
	screen.Cancel()
	return nil
}

func (ws *WebServer) clearAll(r *http.Request, sessionId string, screen *browse.Screen) error {
	screen.ClearAll()
	ws.trackFilter(sessionId, screen)
	return nil
}

func (ws *WebServer) removeChip(r *http.Request, sessionId string, screen *browse.Screen) error {
	field, err := types.ParseField(r.PathValue("field"))
	if err != nil {
		return common.NewHttpError(http.StatusBadRequest, err.Error(), err)
	}
	if screen.RemoveChip(field) {
		ws.trackFilter(sessionId, screen)
	}
	return nil
}

func (ws *WebServer) setSort(r *http.Request, sessionId string, screen *browse.Screen) error {
	cr, err := types.GetCriteriaFromRequest(r)
	if err != nil {
		return common.NewHttpError(http.StatusBadRequest, "invalid sort query", err)
	}
	key, ok := cr.SortKey()
	if !ok {
		return common.NewHttpError(http.StatusBadRequest, "missing sort", nil)
	}
	if !key.IsValid() {
		key = types.SortRelevance
	}
	if screen.SetSort(key) {
		ws.trackFilter(sessionId, screen)
	}
	return nil
}

// ProductDetail is a product together with its display strings.
type ProductDetail struct {
	types.Product
	PriceLabel  string `json:"priceLabel"`
	Stars       string `json:"stars"`
	RateLabel   string `json:"rateLabel"`
	ReviewLabel string `json:"reviewLabel"`
}

func NewProductDetail(p types.Product) ProductDetail {
	return ProductDetail{
		Product:     p,
		PriceLabel:  display.Price(p.Price),
		Stars:       display.Stars(p.Rating.Rate),
		RateLabel:   display.Rate(p.Rating.Rate),
		ReviewLabel: display.ReviewCount(p.Rating.Count),
	}
}

func (ws *WebServer) GetProduct(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	noRequests.WithLabelValues("product").Inc()
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return common.NewHttpError(http.StatusBadRequest, "invalid product id", err)
	}
	product, err := ws.lookupProduct(r.Context(), sessionId, types.ProductId(id))
	if err != nil {
		noDetailErrors.Inc()
		if errors.Is(err, source.ErrNotFound) {
			return common.NewHttpError(http.StatusNotFound, "product not found", err)
		}
		return common.NewHttpError(http.StatusBadGateway, "could not load product", err)
	}
	if ws.Tracking != nil {
		ws.Tracking.TrackProductView(sessionId, product.Id)
	}
	w.Header().Set("Cache-Control", "public, max-age=120")
	return enc.Encode(NewProductDetail(product))
}

func (ws *WebServer) lookupProduct(ctx context.Context, sessionId string, id types.ProductId) (types.Product, error) {
	if ws.Details != nil {
		return ws.Details.GetProduct(ctx, id)
	}
	var product types.Product
	err := ws.Sessions.With(sessionId, func(screen *browse.Screen) error {
		p, ok := screen.Product(id)
		if !ok {
			return fmt.Errorf("product %d: %w", id, source.ErrNotFound)
		}
		product = p
		return nil
	})
	return product, err
}

func (ws *WebServer) Handler() *http.ServeMux {
	srv := http.NewServeMux()

	srv.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !ws.Sessions.Loaded() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("loading"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	srv.HandleFunc("GET /api/products", ws.screenHandler("products", nil))
	srv.HandleFunc("GET /api/categories", common.JsonHandler(ws.Tracking, ws.Categories))
	srv.HandleFunc("GET /api/options", common.JsonHandler(ws.Tracking, ws.Options))
	srv.HandleFunc("POST /api/filter/open", ws.screenHandler("open", openEditor))
	srv.HandleFunc("PUT /api/filter/draft", ws.screenHandler("draft", setDraft))
	srv.HandleFunc("POST /api/filter/commit", ws.screenHandler("commit", ws.commit))
	srv.HandleFunc("POST /api/filter/cancel", ws.screenHandler("cancel", cancelEditor))
	srv.HandleFunc("POST /api/filter/clear", ws.screenHandler("clear", ws.clearAll))
	srv.HandleFunc("DELETE /api/filter/{field}", ws.screenHandler("remove", ws.removeChip))
	srv.HandleFunc("PUT /api/sort", ws.screenHandler("sort", ws.setSort))
	srv.HandleFunc("GET /api/product/{id}", common.JsonHandler(ws.Tracking, ws.GetProduct))

	return srv
}
