package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/imagedit/internal/api"
	"github.com/inamate/imagedit/internal/asset"
	"github.com/inamate/imagedit/internal/auth"
	"github.com/inamate/imagedit/internal/config"
	mw "github.com/inamate/imagedit/internal/middleware"
	"github.com/inamate/imagedit/internal/session"
	"github.com/inamate/imagedit/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assets, err := asset.NewStore(cfg.AssetDir)
	if err != nil {
		slog.Error("open asset store", "error", err)
		os.Exit(1)
	}

	persister, closeStore, err := openPersister(ctx, cfg)
	if err != nil {
		slog.Error("open snapshot store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	hubOpts := []session.Option{
		session.WithImageSource(assets),
		session.WithPersister(persister),
		session.WithSaveInterval(cfg.SaveInterval),
		session.WithIdleTimeout(cfg.RoomIdleTimeout),
	}

	hub := session.NewHub(hubOpts...)
	go hub.Run()

	authService := auth.NewService(cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)
	assetHandler := asset.NewHandler(assets)
	sessionHandler := api.NewHandler(hub, authService, cfg.Origins())

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/auth/guest", authHandler.Guest).Methods("POST", "OPTIONS")

	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.Handle("/assets/{assetId}", authService.AuthMiddleware(http.HandlerFunc(assetHandler.Delete))).Methods("DELETE")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Protected API routes
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(authService.AuthMiddleware)
	apiRouter.HandleFunc("/me", authHandler.Me).Methods("GET")

	sessionHandler.Routes(r, apiRouter)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so every changed session is saved
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openPersister connects to Postgres when DATABASE_URL is set and falls back to an in-memory
// store otherwise. The returned func releases the connection pool.
func openPersister(ctx context.Context, cfg *config.Config) (session.Persister, func(), error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, sessions are kept in memory only")
		return store.NewMemory(), func() {}, nil
	}
	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	snapshots := store.NewPostgres(pool)
	if err := snapshots.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return snapshots, pool.Close, nil
}
