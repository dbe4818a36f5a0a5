package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/practice-coach/backend/internal/config"
	"github.com/practice-coach/backend/internal/database"
	"github.com/practice-coach/backend/internal/middleware"
	"github.com/practice-coach/backend/internal/platform/logger"
	"github.com/practice-coach/backend/internal/skills"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logg.Sync()

	// Initialize database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Fatal("Failed to connect to database", "driver", cfg.Database.Driver, "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.Driver); err != nil {
		logg.Fatal("Failed to run migrations", "error", err)
	}

	// Initialize services
	store := skills.NewStore(db)
	skillsService := skills.NewServiceFromConfig(store, cfg.Scoring, logg)
	skillsHandler := skills.NewHandler(skillsService, store, logg, cfg.DefaultK)
	skillsHandler.SetHistoryService(skills.NewHistoryService(store, logg))

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover(logg), middleware.AccessLog(logg))

	skillsHandler.RegisterRoutes(r)
	skillsHandler.RegisterHistoryRoutes(r)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logg.Info("Shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logg.Error("Server forced to shutdown", "error", err)
		}
	}()

	logg.Info("Server starting", "port", cfg.Port, "driver", cfg.Database.Driver)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal("Server failed", "error", err)
	}
}
