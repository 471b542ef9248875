package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/matst80/slask-catalog/pkg/cache"
	"github.com/matst80/slask-catalog/pkg/common/jsoncompat"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseUrl  = "https://fakestoreapi.com"
	listCacheKey    = "catalog:products"
	itemCachePrefix = "catalog:product:"
)

func itemCacheKey(id types.ProductId) string {
	return fmt.Sprintf("%s%d", itemCachePrefix, id)
}

var ErrNotFound = errors.New("product not found")

var (
	noFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskcatalog_source_fetches_total",
		Help: "The total number of catalog source requests",
	}, []string{"endpoint", "result"})
	tracer = otel.Tracer("github.com/matst80/slask-catalog/pkg/source")
)

// StatusError is returned when the catalog source answers with an
// unexpected status code.
type StatusError struct {
	Url        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received non-OK response from %s: %d", e.Url, e.StatusCode)
}

// Client reads products from a fakestore compatible api.
type Client struct {
	BaseUrl    string
	HttpClient *http.Client
	listCache  *cache.CacheHelper[[]types.Product]
	itemCache  *cache.CacheHelper[types.Product]
}

func NewClient(baseUrl string) *Client {
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	return &Client{
		BaseUrl:    strings.TrimSuffix(baseUrl, "/"),
		HttpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithCache caches list and detail responses for ttl.
func (c *Client) WithCache(rc *cache.Cache, ttl time.Duration) *Client {
	c.listCache = cache.NewCacheHelper[[]types.Product](rc, ttl)
	c.itemCache = cache.NewCacheHelper[types.Product](rc, ttl)
	return c
}

func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	url := c.BaseUrl + path
	ctx, span := tracer.Start(ctx, "source."+endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		noFetches.WithLabelValues(endpoint, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, fmt.Errorf("error sending request to catalog source: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusNotFound {
		noFetches.WithLabelValues(endpoint, "not_found").Inc()
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		noFetches.WithLabelValues(endpoint, "error").Inc()
		span.SetStatus(codes.Error, "status")
		return nil, &StatusError{Url: url, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		noFetches.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("error reading response from catalog source: %w", err)
	}
	noFetches.WithLabelValues(endpoint, "ok").Inc()
	return body, nil
}

func (c *Client) fetchProducts(ctx context.Context) ([]types.Product, error) {
	body, err := c.get(ctx, "list", "/products")
	if err != nil {
		return nil, err
	}
	var products []types.Product
	if err := jsoncompat.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("error decoding product list: %w", err)
	}
	if products == nil {
		products = []types.Product{}
	}
	return products, nil
}

func (c *Client) fetchProduct(ctx context.Context, id types.ProductId) (types.Product, error) {
	body, err := c.get(ctx, "detail", fmt.Sprintf("/products/%d", id))
	if err != nil {
		return types.Product{}, err
	}
	// unknown ids come back as 200 with an empty body
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		noFetches.WithLabelValues("detail", "not_found").Inc()
		return types.Product{}, ErrNotFound
	}
	var product types.Product
	if err := jsoncompat.Unmarshal(trimmed, &product); err != nil {
		return types.Product{}, fmt.Errorf("error decoding product %d: %w", id, err)
	}
	return product, nil
}

// ListProducts fetches the whole catalog in source order.
func (c *Client) ListProducts(ctx context.Context) ([]types.Product, error) {
	return c.listCache.Handle(ctx, listCacheKey, c.fetchProducts)
}

// GetProduct fetches a single product, ErrNotFound when the id is unknown.
func (c *Client) GetProduct(ctx context.Context, id types.ProductId) (types.Product, error) {
	return c.itemCache.Handle(ctx, itemCacheKey(id), func(ctx context.Context) (types.Product, error) {
		return c.fetchProduct(ctx, id)
	})
}

// Invalidate drops the cached list and the cached details of ids.
func (c *Client) Invalidate(ctx context.Context, ids ...types.ProductId) error {
	if c.listCache == nil || c.listCache.Cache == nil {
		return nil
	}
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, listCacheKey)
	for _, id := range ids {
		keys = append(keys, itemCacheKey(id))
	}
	return c.listCache.Cache.Delete(ctx, keys...)
}

// InvalidateAll drops the cached list and every cached product detail.
func (c *Client) InvalidateAll(ctx context.Context) error {
	if c.listCache == nil || c.listCache.Cache == nil {
		return nil
	}
	if err := c.listCache.Cache.Delete(ctx, listCacheKey); err != nil {
		return err
	}
	n, err := c.listCache.Cache.DeletePrefix(ctx, itemCachePrefix)
	if err != nil {
		return fmt.Errorf("error dropping cached details: %w", err)
	}
	log.Printf("dropped %d cached product details", n)
	return nil
}
