package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bidding-engine/internal/api/handlers"
	"bidding-engine/internal/api/middleware"
	"bidding-engine/internal/config"
	"bidding-engine/internal/infrastructure/mysql"
	"bidding-engine/internal/infrastructure/redis"
	"bidding-engine/internal/infrastructure/websocket"
	"bidding-engine/internal/services"
	"bidding-engine/pkg/logger"
	"bidding-engine/pkg/utils"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	log := logger.New()

	// Load configuration
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	log.Info("Configuration loaded", "config", cfg.GetConfigString())

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := utils.InitializeMySQL(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	auctionRepo := mysql.NewAuctionRepository(db)
	historyRepo := mysql.NewBidHistoryRepository(db)

	// Initialize Redis services
	priceCache := redis.NewPriceCache(rdb, cfg.Cache.PriceTTL, cfg.Cache.CASTimeout)
	statusCache := redis.NewStatusCache(rdb)
	eventSubscriber := redis.NewEventSubscriber(rdb, log)

	// Initialize write-back worker
	writeBack := services.NewWriteBackWorker(auctionRepo, historyRepo, cfg.WriteBack.QueueSize, log)
	writeBack.Start()

	// Initialize bid service
	policy := services.NewIncrementPolicy()
	bidService := services.NewBidService(
		priceCache,
		statusCache,
		auctionRepo,
		policy,
		writeBack,
		cfg.Cache.PriceTTL,
		log,
	)

	// Initialize connection manager and broadcaster
	connManager := websocket.NewConnectionManager(log)
	broadcaster := websocket.NewNotifier(connManager)

	// Initialize event listener
	eventListener := services.NewEventListener(connManager, broadcaster, log)

	// Initialize handlers
	bidHandler := handlers.NewBidHandler(bidService, log)
	wsHandler := handlers.NewWebSocketHandler(bidService, connManager, log)

	// Setup routes
	router := mux.NewRouter()
	router.Use(middleware.CORS)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auctions/{auctionID}/bid", bidHandler.PlaceBid).Methods("POST", "OPTIONS")
	api.HandleFunc("/auctions/{auctionID}/price", bidHandler.GetCurrentPrice).Methods("GET")

	// WebSocket routes
	router.HandleFunc("/ws/auction/{auctionID}", wsHandler.HandleConnection)

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start event listener
	listenerCtx, listenerCancel := context.WithCancel(context.Background())
	defer listenerCancel()
	go func() {
		if err := eventListener.Start(listenerCtx, eventSubscriber); err != nil && listenerCtx.Err() == nil {
			log.Error("Event listener stopped", "error", err)
		}
	}()

	// Start HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Starting bidding service", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down bidding service...")

	// Graceful shutdown
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	listenerCancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	// Drain pending write-backs after the server stops accepting bids
	writeBack.Stop()

	log.Info("Bidding service stopped")
}
