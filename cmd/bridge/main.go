package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/marketbridge/pkg/config"
	"github.com/dmitrymomot/marketbridge/pkg/email"
	"github.com/dmitrymomot/marketbridge/pkg/events"
	"github.com/dmitrymomot/marketbridge/pkg/fulfillment"
	"github.com/dmitrymomot/marketbridge/pkg/httpserver"
	"github.com/dmitrymomot/marketbridge/pkg/logger"
	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
	"github.com/dmitrymomot/marketbridge/pkg/mongo"
	"github.com/dmitrymomot/marketbridge/pkg/pg"
	"github.com/dmitrymomot/marketbridge/pkg/publisher"
	"github.com/dmitrymomot/marketbridge/pkg/redis"
	"github.com/dmitrymomot/marketbridge/pkg/staging"
	"github.com/dmitrymomot/marketbridge/pkg/storage"
	svcfulfillment "github.com/dmitrymomot/marketbridge/svc/fulfillment"
)

// bridgeConfig selects the deployment mode and backing services.
type bridgeConfig struct {
	// Mode is "live" or "simulation". Simulation synthesizes subscriptions
	// and bypasses notification verification; never point it at the real
	// marketplace.
	Mode string `env:"BRIDGE_MODE" envDefault:"live"`

	// Store is "postgres", "mongo" or "memory".
	Store string `env:"BRIDGE_STORE" envDefault:"postgres"`

	// Publisher is "webhook" or "log".
	Publisher string `env:"BRIDGE_EVENT_PUBLISHER" envDefault:"webhook"`

	// EventSchema is the deployment-wide event schema version.
	EventSchema events.SchemaVersion `env:"BRIDGE_EVENT_SCHEMA" envDefault:"v2"`

	// Notifications enables purchaser email notifications.
	Notifications bool `env:"BRIDGE_NOTIFICATIONS" envDefault:"false"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg bridgeConfig
	config.MustLoad(&cfg)

	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.NewFromConfig(logCfg, "marketbridge")
	slog.SetDefault(log)

	composer, err := events.NewComposer(cfg.EventSchema)
	if err != nil {
		return err
	}

	healthchecks := []func(context.Context) error{}

	// Durable subscription store.
	var store storage.SubscriptionStore
	switch cfg.Store {
	case "postgres":
		var pgCfg pg.Config
		config.MustLoad(&pgCfg)
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		pgStore := storage.NewPostgresStore(pool)
		if err := pgStore.Migrate(ctx); err != nil {
			return err
		}
		store = pgStore
		healthchecks = append(healthchecks, pg.Healthcheck(pool))
	case "mongo":
		var mongoCfg mongo.Config
		config.MustLoad(&mongoCfg)
		db, err := mongo.ConnectDatabase(ctx, mongoCfg)
		if err != nil {
			return err
		}
		defer func() { _ = db.Client().Disconnect(ctx) }()
		store = storage.NewMongoStore(db)
		healthchecks = append(healthchecks, mongo.Healthcheck(db.Client()))
	case "memory":
		store = storage.NewMemoryStore()
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store)
	}

	// Staging cache: Redis in live deployments, in-memory in simulation.
	var stage staging.Cache
	if cfg.Mode == "simulation" {
		stage = staging.NewMemoryCache(time.Hour)
	} else {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		var stagingCfg staging.RedisConfig
		config.MustLoad(&stagingCfg)
		stage = staging.NewRedisCache(client, stagingCfg)
		healthchecks = append(healthchecks, redis.Healthcheck(client))
	}

	// Event publisher.
	var pub events.Publisher
	switch cfg.Publisher {
	case "webhook":
		var senderCfg events.SenderConfig
		config.MustLoad(&senderCfg)
		pub, err = events.NewWebhookSender(senderCfg)
		if err != nil {
			return err
		}
	case "log":
		pub = events.NewLogPublisher(log)
	default:
		return fmt.Errorf("unknown event publisher %q", cfg.Publisher)
	}

	var fileCfg publisher.FileStoreConfig
	config.MustLoad(&fileCfg)
	configStore := publisher.NewFileStore(fileCfg)

	opts := []fulfillment.Option{fulfillment.WithLogger(log)}

	if cfg.Notifications {
		var emailCfg email.Config
		config.MustLoad(&emailCfg)
		sender, err := email.NewPostmarkSender(emailCfg)
		if err != nil {
			return err
		}
		opts = append(opts, fulfillment.WithNotifier(svcfulfillment.NewEmailNotifier(sender)))
	}

	// Marketplace client: live HTTP or simulation.
	var market marketplace.Client
	if cfg.Mode == "simulation" {
		var simCfg marketplace.SimulationConfig
		config.MustLoad(&simCfg)
		sim := marketplace.NewSimulationClient(simCfg)
		market = sim
		opts = append(opts, fulfillment.WithSimulationMode(sim))
	} else {
		var marketCfg marketplace.Config
		config.MustLoad(&marketCfg)
		market, err = marketplace.NewHTTPClient(marketCfg)
		if err != nil {
			return err
		}
	}

	svc := fulfillment.NewService(market, store, stage, configStore, composer, pub, opts...)

	router := svcfulfillment.Router(svcfulfillment.RouterOptions{
		Service:      svc,
		Stage:        stage,
		Logger:       log,
		Healthchecks: healthchecks,
	})

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	srv := httpserver.New(httpCfg, log)

	log.InfoContext(ctx, "marketbridge starting",
		slog.String("mode", cfg.Mode),
		slog.String("store", cfg.Store),
		slog.String("event_schema", string(cfg.EventSchema)),
	)
	return srv.Run(ctx, router)
}
