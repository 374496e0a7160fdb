package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	adapterHTTP "github.com/comitanigiacomo/kanso-growth-tracker/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/config"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/services"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/workers"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg)
		},
	}
}

func serve(cfg config.Application) error {
	startTime := time.Now()

	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret is required (set KANSO_JWT_SECRET)")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	st, closeStores, err := openStores(cfg)
	if err != nil {
		return fmt.Errorf("critical: failed to open store: %w", err)
	}
	defer closeStores()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	a := newApp(cfg, st, loc, startTime)

	ctx, stopWorker := context.WithCancel(context.Background())
	a.Persist.Start(ctx)
	a.Tracker.StartEviction(ctx, cfg.Session.SweepInterval)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      a.Router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("Kanso growth tracker running on http://localhost:%d", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Forced shutdown error: %v", err)
	}

	stopWorker()
	a.Persist.Wait()

	log.Info("Server stopped gracefully.")
	return nil
}

// app is the wired process minus its listener, so tests can drive it through httptest.
type app struct {
	Router  *gin.Engine
	Persist *workers.PersistWorker
	Tracker *services.TrackerService
}

func newApp(cfg config.Application, st *stores, loc *time.Location, startTime time.Time) *app {
	persist := workers.NewPersistWorker(st.History, cfg.Persist.QueueSize, nil)

	tracker := services.NewTrackerService(st.History, persist,
		services.WithNotifier(st.Notifier),
		services.WithUsers(st.Users),
		services.WithLocation(loc),
		services.WithIdleTimeout(cfg.Session.IdleTimeout),
	)

	authService := services.NewAuthService(st.Users)
	tokenService := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Duration, st.Users)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:     adapterHTTP.NewAuthHandler(authService, tokenService, tracker),
		TrackerHandler:  adapterHTTP.NewTrackerHandler(tracker),
		AnalysisHandler: adapterHTTP.NewAnalysisHandler(tracker),
		TokenService:    tokenService,
		DB:              st.DB,
		Redis:           st.Redis,
		RateLimit:       cfg.HTTP.RateLimit,
		AuthRateLimit:   cfg.HTTP.AuthRateLimit,
		RateWindow:      cfg.HTTP.RateWindow,
		StartTime:       startTime,
	})

	return &app{Router: router, Persist: persist, Tracker: tracker}
}
