package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/staybook/staybook-go/internal/apitest"
	"github.com/staybook/staybook-go/internal/config"
	"github.com/staybook/staybook-go/internal/logger"
	"github.com/staybook/staybook-go/internal/model"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateStub(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	stub := apitest.New(apitest.Options{
		Secret:        cfg.JWTSecret,
		AccessExpiry:  cfg.JWTExpiry,
		RefreshExpiry: cfg.RefreshExpiry,
		AuthRPS:       5,
		AuthBurst:     10,
		Logger:        log,
	})
	if err := seed(stub); err != nil {
		log.Error("seeding stub data failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           stub.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("dev api starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// seed loads a demo user and two listings, one of them with reservations in
// each of the field spellings the API is known to use.
func seed(stub *apitest.Server) error {
	if _, err := stub.AddUser("demo@staybook.test", "demo-password", "Demo Guest"); err != nil {
		return err
	}

	stub.AddListing(model.Listing{ID: "loft-centro", Title: "Loft en el centro", City: "Madrid", PricePerNight: 85})
	stub.AddListing(model.Listing{ID: "casa-playa", Title: "Casa de playa", City: "Valencia", PricePerNight: 140})

	today := time.Now().UTC().Truncate(24 * time.Hour)
	day := func(offset int) string { return today.AddDate(0, 0, offset).Format("2006-01-02") }

	stub.AddReservation("loft-centro", model.RawReservation{StartDate: day(3), EndDate: day(6)})
	stub.AddReservation("loft-centro", model.RawReservation{CheckIn: day(12), CheckOut: day(15)})
	stub.AddReservation("casa-playa", model.RawReservation{FechaDesde: day(1), FechaHasta: day(8)})
	return nil
}
