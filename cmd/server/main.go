package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Koodattu/fyralath-data-tracker/internal/api"
	"github.com/Koodattu/fyralath-data-tracker/internal/config"
	"github.com/Koodattu/fyralath-data-tracker/internal/database"
	"github.com/Koodattu/fyralath-data-tracker/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	store := database.NewStore(db)

	recipe, err := services.LoadRecipe(cfg.RecipePath)
	if err != nil {
		log.Fatalf("Failed to load recipe: %v", err)
	}
	log.Printf("Loaded recipe for %s (%d items)", recipe.Name, len(recipe.ItemIDs()))

	// Response cache: shared redis when configured, in-process LRU otherwise
	var cache services.ResponseCache
	var redisCache *services.RedisCache
	if cfg.RedisAddr != "" {
		redisCache, err = services.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
		if err != nil {
			log.Fatalf("Failed to initialize redis cache: %v", err)
		}
		cache = redisCache
		log.Printf("Using redis response cache at %s", cfg.RedisAddr)
	} else {
		memoryCache, err := services.NewMemoryCache(cfg.CacheSize)
		if err != nil {
			log.Fatalf("Failed to initialize response cache: %v", err)
		}
		cache = memoryCache
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		log.Println("WARNING: CLIENT_ID or CLIENT_SECRET not set, auction fetches will fail")
	}
	blizzardService := services.NewBlizzardService(services.BlizzardConfig{
		ClientID:          cfg.ClientID,
		ClientSecret:      cfg.ClientSecret,
		APIURL:            cfg.BlizzardAPIURL,
		OAuthURL:          cfg.BlizzardOAuthURL,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})

	historyService := services.NewHistoryService(store, cache, cfg.Regions)
	auctionWorker := services.NewAuctionWorker(blizzardService, store, recipe, cfg.Regions, historyService, cfg.RunInterval)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start auction worker in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in auction worker: %v - restarting in 30 seconds", r)
					}
				}()
				auctionWorker.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				log.Println("Auction worker restarting after panic recovery...")
			}
		}
	}()

	// Setup router
	router := api.SetupRouter(historyService, auctionWorker, store, cfg.CORSAllowedOrigins)

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the auction worker
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.Printf("Failed to close redis: %v", err)
		}
	}
	if err := database.Close(db); err != nil {
		log.Printf("Failed to close database: %v", err)
	}

	log.Println("Server exited")
}
