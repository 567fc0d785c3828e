package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lbricard/stockdesk-backend/api/routes"
	"github.com/lbricard/stockdesk-backend/internal/cart"
	"github.com/lbricard/stockdesk-backend/internal/listing"
	"github.com/lbricard/stockdesk-backend/internal/realtime"
	"github.com/lbricard/stockdesk-backend/internal/reference"
	"github.com/lbricard/stockdesk-backend/internal/reservations"
	"github.com/lbricard/stockdesk-backend/pkg/config"
	"github.com/lbricard/stockdesk-backend/pkg/db"
	"github.com/lbricard/stockdesk-backend/pkg/logger"
	"github.com/lbricard/stockdesk-backend/pkg/metrics"
	"github.com/lbricard/stockdesk-backend/pkg/migrate"
	"github.com/lbricard/stockdesk-backend/pkg/redis"
	"github.com/lbricard/stockdesk-backend/pkg/remote"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap the cart store", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing the cart store", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	reservationMetrics := metrics.NewReservationMetrics(registry)

	remoteClient, err := remote.NewClient(cfg.Remote, reservationMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build the reservation server client", err)
		os.Exit(1)
	}

	referenceService, err := reference.NewService(remoteClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create the reference service", err)
		os.Exit(1)
	}
	// Best effort: a failed first load leaves the empty snapshot in place
	// and the refresh endpoint can retry.
	_ = referenceService.Load(context.Background())

	cartService, err := cart.NewService(
		cart.NewRepository(dbClient.DB()),
		dbClient,
		referenceService,
		cfg.Reservations.NotesMaxLength,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create the cart service", err)
		os.Exit(1)
	}

	guard := reservations.NewSubmitGuard(redisClient, cfg.Reservations.SubmitGuardTTL)
	reservationService, err := reservations.NewService(
		cartService,
		remoteClient,
		guard,
		reservationMetrics,
		logg,
		cfg.Reservations.NotesMaxLength,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create the reservation service", err)
		os.Exit(1)
	}

	listingService, err := listing.NewService(remoteClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create the listing service", err)
		os.Exit(1)
	}

	bridge, err := realtime.NewBridge(redisClient, listingService, cfg.Realtime, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create the realtime bridge", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := bridge.Run(runCtx); err != nil && runCtx.Err() == nil {
			logg.Error(runCtx, "realtime bridge stopped unexpectedly", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Reference:    referenceService,
			Cart:         cartService,
			Reservations: reservationService,
			Listing:      listingService,
			Registry:     registry,
		}),
	}

	go func() {
		<-runCtx.Done()
		_ = server.Shutdown(context.Background())
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
