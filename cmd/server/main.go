package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/matst80/slask-catalog/pkg/cache"
	"github.com/matst80/slask-catalog/pkg/common"
	"github.com/matst80/slask-catalog/pkg/config"
	"github.com/matst80/slask-catalog/pkg/messaging"
	"github.com/matst80/slask-catalog/pkg/server"
	"github.com/matst80/slask-catalog/pkg/source"
	"github.com/matst80/slask-catalog/pkg/telemetry"
	"github.com/matst80/slask-catalog/pkg/tracking"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
)

type app struct {
	cfg     config.Config
	conn    *amqp.Connection
	client  *source.Client
	web     *server.WebServer
	tracker types.Tracking
}

func (a *app) connectAmqp() error {
	conn, err := messaging.Connect(a.cfg.RabbitUrl)
	if err != nil {
		return err
	}
	a.conn = conn
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err = messaging.DefineTopic(ch, a.cfg.Country, messaging.CatalogChanged); err != nil {
		return err
	}
	err = messaging.ListenToTopic(ch, a.cfg.Country, messaging.CatalogChanged, func(change messaging.CatalogChange) error {
		log.Printf("Got catalog change (%s), %d ids", change.Reason, len(change.Ids))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		var err error
		if change.IsFullReload() {
			err = a.client.InvalidateAll(ctx)
		} else {
			err = a.client.Invalidate(ctx, change.Ids...)
		}
		if err != nil {
			log.Printf("Failed to invalidate catalog cache: %v", err)
		}
		return a.web.ReloadCatalog(ctx)
	})
	if err != nil {
		return err
	}
	log.Printf("Listening for catalog changes")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "slask-catalog", cfg.OtelEndpoint)
	if err != nil {
		log.Printf("Failed to set up tracing: %v", err)
	}

	client := source.NewClient(cfg.CatalogUrl)
	var redisCache *cache.Cache
	if cfg.CacheEnabled() {
		redisCache = cache.NewCache(cfg.RedisUrl, cfg.RedisPassword, cfg.RedisDb)
		client = client.WithCache(redisCache, cfg.CacheTtl)
	}

	sessions := server.NewSessionStore(cfg.SessionTtl)
	loader := source.NewLoader(client, cfg.FetchRetries, cfg.FetchBackoff)

	a := &app{cfg: cfg, client: client}

	if cfg.MessagingEnabled() {
		rt, err := tracking.NewRabbitTracking(cfg.RabbitUrl, cfg.Country)
		if err != nil {
			log.Printf("Failed to connect to rabbitmq for tracking: %v", err)
		} else {
			a.tracker = rt
		}
	}

	a.web = server.NewWebServer(sessions, loader, client, a.tracker)

	go func() {
		if err := a.web.ReloadCatalog(ctx); err != nil {
			log.Printf("Failed to load catalog: %v", err)
		}
	}()
	if cfg.SessionTtl > 0 {
		go sessions.RunReaper(ctx, time.Minute)
	}

	if cfg.MessagingEnabled() {
		if err := a.connectAmqp(); err != nil {
			log.Printf("Failed to listen for catalog changes: %v", err)
		}
	}

	mux := a.web.Handler()
	mux.Handle("/metrics", promhttp.Handler())

	timeouts := common.LoadTimeoutConfig()
	srv := common.NewServerWithTimeouts(&http.Server{Addr: cfg.ListenAddress, Handler: mux}, timeouts)

	err = common.RunServerWithShutdown(ctx, srv, "catalog server", timeouts,
		func(ctx context.Context) error {
			cancel()
			if a.tracker == nil {
				return nil
			}
			return a.tracker.Close()
		},
		func(ctx context.Context) error {
			if a.conn == nil {
				return nil
			}
			return a.conn.Close()
		},
		func(ctx context.Context) error {
			if redisCache == nil {
				return nil
			}
			return redisCache.Close()
		},
		shutdownTracing,
	)
	if err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
