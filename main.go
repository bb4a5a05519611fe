package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"cinebase/api"
	"cinebase/config"
	"cinebase/handlers"
	"cinebase/internal/database"
	"cinebase/services/catalog"
	"cinebase/services/favorites"
	"cinebase/services/tmdb"
	"cinebase/utils"
)

func main() {
	cfg := config.Load()

	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    20, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}))
	}

	var store catalog.Store
	if cfg.DatabasePath != "" {
		db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
		if err != nil {
			log.Fatalf("[main] failed to open database: %v", err)
		}
		defer db.Close()
		store = database.NewMediaRepository(db.Connection())
		log.Printf("[main] catalog store: sqlite at %s", cfg.DatabasePath)
	} else {
		store = catalog.NewMemoryStore()
		log.Printf("[main] catalog store: in-memory")
	}

	if cfg.TMDBAPIKey == "" {
		log.Printf("[main] WARNING: TMDB_API_KEY not set, upstream fetches will fail")
	}

	upstream := tmdb.NewClient(cfg.TMDBAPIKey, cfg.TMDBBaseURL, nil)
	catalogSvc := catalog.NewService(store, upstream, cfg.EmbedBaseURL)

	favoritesSvc, err := favorites.NewService(cfg.DataDir, store)
	if err != nil {
		log.Fatalf("[main] failed to initialize favorites: %v", err)
	}

	catalogHandler := handlers.NewCatalogHandler(catalogSvc)
	favoritesHandler := handlers.NewFavoritesHandler(favoritesSvc)

	r := utils.NewRouter()
	r.Use(api.RequestLogger())

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/movies", catalogHandler.Movies).Methods(http.MethodGet)
	apiRouter.HandleFunc("/search", catalogHandler.Search).Methods(http.MethodGet)
	apiRouter.HandleFunc("/media/{id}", catalogHandler.Media).Methods(http.MethodGet)
	apiRouter.HandleFunc("/stream/{tmdbId}", catalogHandler.Stream).Methods(http.MethodGet)
	apiRouter.HandleFunc("/favorites", favoritesHandler.List).Methods(http.MethodGet)
	apiRouter.HandleFunc("/favorites", favoritesHandler.Add).Methods(http.MethodPost)
	apiRouter.HandleFunc("/favorites/{id}", favoritesHandler.Remove).Methods(http.MethodDelete)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Printf("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}
