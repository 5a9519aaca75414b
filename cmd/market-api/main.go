// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/config"
	transport "github.com/Ahmedtarekmekled/AboHommos-sub000/internal/http"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/infra"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/logging"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/checkout"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/order"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/settings"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/shop"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/routing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("postgres init: %v", err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	matrixClient, err := routing.NewClient(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}

	settingsSvc := settings.NewService(settings.NewPGStore(dbPool))
	shopStore := shop.NewStore(dbPool, redisClient, logger)
	checkoutSvc := checkout.NewService(settingsSvc, shopStore, matrixClient, logger)
	orderSvc := order.NewService(order.NewPGStore(dbPool), checkoutSvc, logger)

	router := transport.NewRouter(transport.RouterDeps{
		Checkout: checkoutSvc,
		Orders:   orderSvc,
		Settings: settingsSvc,
		Log:      logger,
	})
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("server starting", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	logger.Info("server stopped")
}
