package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"reflect"
	"strconv"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
)

// ShutdownHook runs once the HTTP server has drained its in-flight requests.
// A failing hook is logged and shutdown continues.
type ShutdownHook func(ctx context.Context) error

// RunServerWithShutdown serves until ctx is cancelled or SIGINT/SIGTERM is
// received, then shuts the server down within cfg.Shutdown and runs the hooks
// in order. Listen errors other than ErrServerClosed are returned.
func RunServerWithShutdown(ctx context.Context, server *http.Server, name string, cfg TimeoutConfig, hooks ...ShutdownHook) error {
	hookTimeout := cfg.Hook
	if hookTimeout <= 0 {
		hookTimeout = 5 * time.Second
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("starting %s on %s", name, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	select {
	case err, ok := <-listenErr:
		if ok {
			return fmt.Errorf("%s listen: %w", name, err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Printf("shutdown signal received for %s", name)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
	defer cancel()
	shutdownErr := server.Shutdown(shutdownCtx)

	for i, h := range hooks {
		if h == nil {
			continue
		}
		hCtx, hCancel := context.WithTimeout(context.Background(), hookTimeout)
		if err := h(hCtx); err != nil {
			log.Printf("shutdown hook %d failed: %v", i, err)
		}
		if errors.Is(hCtx.Err(), context.DeadlineExceeded) {
			log.Printf("shutdown hook %d timed out", i)
		}
		hCancel()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown of %s: %w", name, shutdownErr)
	}
	log.Printf("%s shutdown complete", name)
	return nil
}

// TimeoutConfig holds server and shutdown timeouts.
type TimeoutConfig struct {
	ReadHeader time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	Read       time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	Write      time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	Idle       time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	Shutdown   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	Hook       time.Duration `env:"HOOK_TIMEOUT" envDefault:"5s"`
}

func DefaultTimeouts() TimeoutConfig {
	return TimeoutConfig{
		ReadHeader: 5 * time.Second,
		Read:       10 * time.Second,
		Write:      30 * time.Second,
		Idle:       60 * time.Second,
		Shutdown:   15 * time.Second,
		Hook:       5 * time.Second,
	}
}

// LoadTimeoutConfig reads the timeout environment variables. Values use Go
// duration syntax ("5s", "1m"); a bare integer is taken as seconds. Values
// that are not positive keep the default, and any malformed value falls
// back to DefaultTimeouts entirely.
func LoadTimeoutConfig() TimeoutConfig {
	defaults := DefaultTimeouts()
	parsed := TimeoutConfig{}
	if err := env.ParseWithOptions(&parsed, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(time.Duration(0)): parseSeconds,
		},
	}); err != nil {
		log.Printf("invalid timeout configuration, using defaults: %v", err)
		return defaults
	}
	keep := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}
	keep(&parsed.ReadHeader, defaults.ReadHeader)
	keep(&parsed.Read, defaults.Read)
	keep(&parsed.Write, defaults.Write)
	keep(&parsed.Idle, defaults.Idle)
	keep(&parsed.Shutdown, defaults.Shutdown)
	keep(&parsed.Hook, defaults.Hook)
	return parsed
}

func parseSeconds(v string) (any, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// NewServerWithTimeouts applies cfg to base, creating a server when base is nil.
func NewServerWithTimeouts(base *http.Server, cfg TimeoutConfig) *http.Server {
	if base == nil {
		base = &http.Server{}
	}
	base.ReadHeaderTimeout = cfg.ReadHeader
	base.ReadTimeout = cfg.Read
	base.WriteTimeout = cfg.Write
	base.IdleTimeout = cfg.Idle
	return base
}
