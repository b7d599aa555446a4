package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/drivenest/service/internal/blob"
	"github.com/drivenest/service/internal/config"
	"github.com/drivenest/service/internal/db"
	appMiddleware "github.com/drivenest/service/internal/middleware"
	"github.com/drivenest/service/internal/thumbnail"
	"github.com/drivenest/service/internal/ws"
)

func main() {
	cfg := config.Load()

	// Metadata store: postgres by default, sqlite for single-node setups.
	var (
		store   thumbnail.Store
		cleanup func()
	)
	if cfg.UseSQLite() {
		sq, err := thumbnail.OpenSQLite(cfg.SQLitePath())
		if err != nil {
			log.Fatalf("sqlite open failed: %v", err)
		}
		store = sq
		cleanup = func() { _ = sq.Close() }
		log.Printf("using sqlite metadata store at %s", cfg.SQLitePath())
	} else {
		pool, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		store = thumbnail.NewRepository(pool)
		cleanup = pool.Close
	}
	defer cleanup()

	// Blob store: local media directory by default, S3-compatible when configured.
	var blobs blob.Store
	var local *blob.LocalStore
	switch cfg.StorageBackend {
	case "s3":
		s3, err := blob.NewMinioStore(
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StoragePublicBase,
			cfg.StorageUseSSL,
		)
		if err != nil {
			log.Fatalf("object storage init failed: %v", err)
		}
		blobs = s3
	default:
		var err error
		local, err = blob.NewLocalStore(cfg.MediaDir, cfg.BaseURL)
		if err != nil {
			log.Fatalf("media dir init failed: %v", err)
		}
		blobs = local
	}

	// Wire dependencies: store → service → handler, hub for realtime pushes.
	hub := ws.NewHub()
	svc := thumbnail.NewService(store, blobs, hub)
	handler := thumbnail.NewHandler(svc, cfg.MaxUploadBytes)
	wsHandler := ws.NewHandler(hub)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", handler.Root)
	r.Post("/reverse/", handler.Reverse)
	r.Post("/upload/", handler.Upload)
	r.Get("/thumbnails/", handler.List)
	r.Delete("/thumbnails/{id}", handler.Delete)
	r.Get("/ws", wsHandler.Serve)

	// Uploaded blobs are served read-only from the media directory.
	if local != nil {
		fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(local.Root())))
		r.Get("/media/*", fileServer.ServeHTTP)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
