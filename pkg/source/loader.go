package source

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/matst80/slask-catalog/pkg/types"
)

type CatalogSource interface {
	ListProducts(ctx context.Context) ([]types.Product, error)
}

type DetailSource interface {
	GetProduct(ctx context.Context, id types.ProductId) (types.Product, error)
}

// Sink receives a freshly fetched catalog.
type Sink interface {
	Load(products []types.Product)
}

type SinkFunc func(products []types.Product)

func (f SinkFunc) Load(products []types.Product) {
	f(products)
}

// linearBackOff waits step, 2*step, 3*step... between attempts.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

// Loader fetches the catalog and hands it to a sink, retrying failed fetches
// with a linear backoff. Not found is never retried.
type Loader struct {
	Source  CatalogSource
	Retries int
	Backoff time.Duration
}

func NewLoader(src CatalogSource, retries int, backoff time.Duration) *Loader {
	return &Loader{Source: src, Retries: retries, Backoff: backoff}
}

func (l *Loader) Fetch(ctx context.Context) ([]types.Product, error) {
	attempt := 0
	return backoff.Retry(ctx, func() ([]types.Product, error) {
		attempt++
		products, err := l.Source.ListProducts(ctx)
		if errors.Is(err, ErrNotFound) {
			return nil, backoff.Permanent(err)
		}
		return products, err
	},
		backoff.WithBackOff(&linearBackOff{step: l.Backoff}),
		backoff.WithMaxTries(uint(max(l.Retries, 0)+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Printf("catalog fetch attempt %d failed: %v, retrying in %v", attempt, err, wait)
		}),
	)
}

// LoadInto fetches and loads the catalog. On failure the sink is left
// untouched.
func (l *Loader) LoadInto(ctx context.Context, sink Sink) error {
	products, err := l.Fetch(ctx)
	if err != nil {
		return err
	}
	log.Printf("loaded %d products", len(products))
	sink.Load(products)
	return nil
}
