package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/adegadigital/adega-backend/api/routes"
	"github.com/adegadigital/adega-backend/internal/cart"
	"github.com/adegadigital/adega-backend/internal/coupons"
	"github.com/adegadigital/adega-backend/internal/loyalty"
	"github.com/adegadigital/adega-backend/internal/marketing"
	"github.com/adegadigital/adega-backend/internal/notifications"
	"github.com/adegadigital/adega-backend/internal/orders"
	"github.com/adegadigital/adega-backend/internal/products"
	"github.com/adegadigital/adega-backend/internal/settings"
	"github.com/adegadigital/adega-backend/internal/users"
	"github.com/adegadigital/adega-backend/pkg/config"
	"github.com/adegadigital/adega-backend/pkg/db"
	"github.com/adegadigital/adega-backend/pkg/logger"
	"github.com/adegadigital/adega-backend/pkg/migrate"
	"github.com/adegadigital/adega-backend/pkg/redis"
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

	conn := dbClient.DB()

	userService, err := users.NewService(users.NewRepository(conn), cfg.JWT, cfg.Password, logg)
	requireResource(logg, "user service", err)

	productService, err := products.NewService(products.NewRepository(conn))
	requireResource(logg, "product service", err)

	couponService, err := coupons.NewService(coupons.NewRepository(conn), dbClient)
	requireResource(logg, "coupon service", err)

	settingsRepo := settings.NewRepository(conn)
	settingsCache := settings.NewCache(settingsRepo, cfg.Settings.CacheTTL)
	settingsService, err := settings.NewService(settingsRepo, settingsCache)
	requireResource(logg, "settings service", err)

	loyaltyService, err := loyalty.NewService(loyalty.NewRepository(conn), dbClient)
	requireResource(logg, "loyalty service", err)

	notificationsService, err := notifications.NewService(notifications.NewRepository(conn), redisClient, logg)
	requireResource(logg, "notifications service", err)

	statusConsumer, err := notifications.NewConsumer(redisClient, logg)
	requireResource(logg, "status consumer", err)

	cartService, err := cart.NewService(productService, couponService)
	requireResource(logg, "cart service", err)

	marketingService, err := marketing.NewService(marketing.NewRepository(conn))
	requireResource(logg, "marketing service", err)

	orderService, err := orders.NewService(
		orders.NewRepository(conn),
		dbClient,
		cartService,
		couponService,
		settingsService,
		loyaltyService,
		notificationsService,
		logg,
		cfg.Checkout,
	)
	requireResource(logg, "order service", err)

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
			userService,
			productService,
			cartService,
			couponService,
			orderService,
			loyaltyService,
			marketingService,
			settingsService,
			notificationsService,
			statusConsumer,
		),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}()

	<-shutdown
	logg.Info(ctx, "shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "resource not working: "+resource, err)
	os.Exit(1)
}
