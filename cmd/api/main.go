package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/tradeyard/tradeyard-backend/api/routes"
	"github.com/tradeyard/tradeyard-backend/internal/analytics"
	"github.com/tradeyard/tradeyard-backend/internal/balance"
	"github.com/tradeyard/tradeyard-backend/internal/commission"
	"github.com/tradeyard/tradeyard-backend/internal/orders"
	"github.com/tradeyard/tradeyard-backend/internal/refunds"
	"github.com/tradeyard/tradeyard-backend/internal/shops"
	"github.com/tradeyard/tradeyard-backend/internal/wallet"
	"github.com/tradeyard/tradeyard-backend/internal/withdraws"
	"github.com/tradeyard/tradeyard-backend/pkg/config"
	"github.com/tradeyard/tradeyard-backend/pkg/db"
	"github.com/tradeyard/tradeyard-backend/pkg/logger"
	"github.com/tradeyard/tradeyard-backend/pkg/migrate"
	"github.com/tradeyard/tradeyard-backend/pkg/outbox"
	"github.com/tradeyard/tradeyard-backend/pkg/redis"
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
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)
	engine := commission.NewEngine(cfg.Settlement.DefaultRate())

	shopsRepo := shops.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	walletRepo := wallet.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	refundsRepo := refunds.NewRepository(gormDB)
	withdrawsRepo := withdraws.NewRepository(gormDB)
	analyticsRepo := analytics.NewRepository(gormDB)

	shopService, err := shops.NewService(shopsRepo, balanceRepo, engine, cfg.Settlement.DefaultRate(), dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create shop service", err)
		os.Exit(1)
	}
	orderService, err := orders.NewService(ordersRepo, balanceRepo, engine, cfg.Settlement.DefaultRate(), dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}
	refundService, err := refunds.NewService(refundsRepo, ordersRepo, balanceRepo, walletRepo, cfg.Settlement.PointsPerUnit(), dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create refund service", err)
		os.Exit(1)
	}
	withdrawService, err := withdraws.NewService(withdrawsRepo, balanceRepo, dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create withdraw service", err)
		os.Exit(1)
	}
	walletService, err := wallet.NewService(walletRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}
	balanceService, err := balance.NewService(balanceRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create balance service", err)
		os.Exit(1)
	}
	analyticsService, err := analytics.NewService(analyticsRepo, balanceRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			shopService,
			orderService,
			refundService,
			withdrawService,
			walletService,
			balanceService,
			analyticsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
