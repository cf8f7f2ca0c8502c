package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sirpyerre/incident-tracker/internal/api"
	"github.com/sirpyerre/incident-tracker/internal/api/handler"
	"github.com/sirpyerre/incident-tracker/internal/core/ports"
	"github.com/sirpyerre/incident-tracker/internal/core/service"
	"github.com/sirpyerre/incident-tracker/internal/infrastructure/config"
	"github.com/sirpyerre/incident-tracker/internal/infrastructure/db/mongo"
	"github.com/sirpyerre/incident-tracker/internal/infrastructure/db/postgres"
	"github.com/sirpyerre/incident-tracker/internal/infrastructure/db/redis"
	"github.com/sirpyerre/incident-tracker/internal/infrastructure/notify"
	"github.com/sirpyerre/incident-tracker/internal/infrastructure/queue"
	"github.com/sirpyerre/incident-tracker/internal/infrastructure/security"
	"github.com/sirpyerre/incident-tracker/pkg/logger"
)

const serviceName = "incident-tracker"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.New(logger.Options{})
		l.Fatal().Err(err).Msg("load config")
	}

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg); err != nil {
		l := logger.Get()
		l.Fatal().Err(err).Msg("server exited")
	}
}

type stores struct {
	users     ports.UserRepository
	incidents ports.IncidentRepository
	checks    map[string]handler.DependencyCheck
	close     func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:     postgres.NewUserRepository(pool),
			incidents: postgres.NewIncidentRepository(pool),
			checks:    map[string]handler.DependencyCheck{"postgres": postgres.Ping(pool)},
			close:     pool.Close,
		}, nil
	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &stores{
			users:     mongo.NewUserRepository(db),
			incidents: mongo.NewIncidentRepository(db),
			checks:    map[string]handler.DependencyCheck{"mongo": mongo.Ping(db)},
			close:     func() { _ = client.Disconnect(context.Background()) },
		}, nil
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()
	log.Info().Str("driver", cfg.StoreDriver).Msg("store connected")

	var rdb *goredis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		st.checks["redis"] = redis.Ping(rdb)
	}

	var sender ports.NotificationSender
	switch cfg.Notify.Driver {
	case config.NotifySMTP:
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.Notify.SMTP.Host,
			Port:     cfg.Notify.SMTP.Port,
			Username: cfg.Notify.SMTP.Username,
			Password: cfg.Notify.SMTP.Password,
			From:     cfg.Notify.SMTP.From,
		})
	case config.NotifyRedis:
		// Config validation guarantees rdb is connected here.
		sender = redis.NewPublisher(rdb, cfg.Notify.Channel)
	default:
		sender = notify.NewLogSender(log.With().Str("component", "notifier").Logger())
	}

	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens, err := security.NewJWTIssuer(cfg.JWTSecret)
	if err != nil {
		return err
	}
	authService := service.NewAuthService(st.users, hasher, tokens, log)

	dispatcher := queue.NewDispatcher(sender, queue.Options{
		Workers:    cfg.Notify.Workers,
		Buffer:     cfg.Notify.Buffer,
		Timeout:    cfg.Notify.Timeout,
		Recipients: cfg.Notify.Recipients,
		SenderName: cfg.Notify.Driver,
	}, log.With().Str("component", "notifier").Logger())
	dispatcher.Start(context.Background())

	incidentService := service.NewIncidentService(st.incidents, dispatcher, log)

	if cfg.ShouldSeed() {
		if _, err := service.Seed(ctx, st.users, authService, service.DefaultSeedAccounts, log); err != nil {
			return err
		}
	}

	e := api.NewRouter(api.Deps{
		AuthService:     authService,
		IncidentService: incidentService,
		Checks:          st.checks,
		Logger:          log,
	})

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddress()).Msg("incident tracker listening")
		if err := e.Start(cfg.HTTPAddress()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("pending notifications abandoned")
	}
	return nil
}
