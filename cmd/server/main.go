package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appsync "github.com/storesync/backend/internal/application/sync"
	appwebhook "github.com/storesync/backend/internal/application/webhook"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/erp"
	"github.com/storesync/backend/internal/infrastructure/fxrate"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/infrastructure/ratelimit"
	"github.com/storesync/backend/internal/infrastructure/shopify"
	"github.com/storesync/backend/internal/interfaces/http/handler"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
	"github.com/storesync/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront sync bridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// ERP client, shared by catalog sync and order forwarding
	erpClient, err := erp.NewClient(&erp.Config{
		BaseURL:         cfg.ERP.BaseURL,
		ClientID:        cfg.ERP.ClientID,
		Username:        cfg.ERP.Username,
		Password:        cfg.ERP.Password,
		OrderCreatePath: cfg.ERP.OrderCreatePath,
		Timeout:         cfg.ERP.Timeout,
		TokenTTL:        cfg.ERP.TokenTTL,
	}, log)
	if err != nil {
		log.Fatal("Failed to configure ERP client", zap.Error(err))
	}

	// Storefront client with outbound pacing
	limiter := ratelimit.Limiter(ratelimit.Unlimited())
	if cfg.Sync.RequestsPerSecond > 0 {
		limiter = ratelimit.NewTokenBucket(cfg.Sync.RequestsPerSecond, cfg.Sync.Burst)
	}
	shopifyClient, err := shopify.NewClient(&shopify.Config{
		Domain:      cfg.Shopify.Domain,
		AccessToken: cfg.Shopify.AccessToken,
		LocationID:  cfg.Shopify.LocationID,
		APIVersion:  cfg.Shopify.APIVersion,
		Timeout:     cfg.Shopify.Timeout,
	}, limiter, log)
	if err != nil {
		log.Fatal("Failed to configure storefront client", zap.Error(err))
	}

	fixedRate := decimal.Zero
	if cfg.Currency.FixedRate != "" {
		fixedRate, err = decimal.NewFromString(cfg.Currency.FixedRate)
		if err != nil {
			log.Fatal("Invalid currency.fixed_rate", zap.Error(err))
		}
	}
	rates := fxrate.NewResolver(fxrate.Config{
		FixedRate:   fixedRate,
		LiveRateURL: cfg.Currency.LiveRateURL,
		Timeout:     cfg.Currency.Timeout,
	}, log)

	syncService := appsync.NewCatalogSyncService(
		erpClient,
		shopifyClient,
		rates,
		cfg.Sync.WarehousePriority,
		log,
	)
	forwardingService := appwebhook.NewOrderForwardingService(cfg.Webhook.Secret, erpClient, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.MaxBodySize(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))

	router.NewRouter(engine).
		Register(handler.NewSystemHandler(cfg.App.Name)).
		Register(handler.NewERPHandler(erpClient.Token)).
		Register(handler.NewSyncHandler(syncService)).
		Register(handler.NewWebhookHandler(forwardingService)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
