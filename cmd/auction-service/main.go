package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bidding-engine/internal/api/handlers"
	"bidding-engine/internal/config"
	"bidding-engine/internal/infrastructure/leader"
	"bidding-engine/internal/infrastructure/mysql"
	"bidding-engine/internal/infrastructure/redis"
	"bidding-engine/internal/services"
	"bidding-engine/pkg/logger"
	"bidding-engine/pkg/utils"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	log := logger.New()
	log.Info("Starting auction service")

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
	participantRepo := mysql.NewParticipantRepository(db)
	historyRepo := mysql.NewBidHistoryRepository(db)
	schedulerRepo := mysql.NewSchedulerRepository(db)

	// Initialize Redis based components
	priceCache := redis.NewPriceCache(rdb, cfg.Cache.PriceTTL, cfg.Cache.CASTimeout)
	statusCache := redis.NewStatusCache(rdb)
	eventPublisher := redis.NewEventPublisher(rdb)
	registrationSubscriber := redis.NewRegistrationSubscriber(rdb, log)

	// Initialize leader election
	leaderElection := leader.NewRedisLeaderElection(rdb, cfg.Leader.TTL)

	// Initialize auction manager
	auctionManager := services.NewAuctionManager(
		auctionRepo,
		statusCache,
		priceCache,
		eventPublisher,
		nil, // scheduler will be set below
		leaderElection,
		cfg.Cache.PriceTTL,
		cfg.Instance.ID,
		log,
	)

	// Initialize scheduler
	scheduler := services.NewCronAuctionScheduler(schedulerRepo, auctionManager, log)
	auctionManager.SetScheduler(scheduler)

	// Initialize registration listener
	registrationListener := services.NewRegistrationListener(auctionRepo, participantRepo, log)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
	}))

	// Initialize handlers
	auctionHandler := handlers.NewAuctionHandler(auctionManager, auctionRepo, participantRepo, historyRepo, log)

	// API routes
	api := e.Group("/api/v1")
	api.POST("/auctions", auctionHandler.CreateAuction)
	api.GET("/auctions", auctionHandler.ListAuctions)
	api.GET("/auctions/:id", auctionHandler.GetAuction)
	api.GET("/auctions/:id/participants", auctionHandler.GetParticipants)
	api.GET("/auctions/:id/bids", auctionHandler.GetBidHistory)

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "auction-service",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Start background services
	go func() {
		if err := scheduler.Start(context.Background()); err != nil {
			log.Error("Failed to start scheduler", "error", err)
		}
	}()

	listenerCtx, listenerCancel := context.WithCancel(context.Background())
	defer listenerCancel()
	go func() {
		if err := registrationListener.Start(listenerCtx, registrationSubscriber); err != nil && listenerCtx.Err() == nil {
			log.Error("Registration listener stopped", "error", err)
		}
	}()

	// Try to become leader
	go func() {
		for {
			became, err := leaderElection.BecomeLeader(context.Background(), cfg.Instance.ID)
			if err != nil {
				log.Error("Failed to attempt leadership", "error", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if became {
				log.Info("Became auction leader", "instance_id", cfg.Instance.ID)
			}
			time.Sleep(10 * time.Second)
		}
	}()

	// Start server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		log.Info("Starting auction service server", "address", serverAddr)
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down auction service...")

	// Graceful shutdown
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	listenerCancel()

	if err := scheduler.Stop(); err != nil {
		log.Error("Failed to stop scheduler", "error", err)
	}
	if err := leaderElection.ReleaseLeadership(ctx, cfg.Instance.ID); err != nil {
		log.Error("Failed to release leadership", "error", err)
	}

	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Auction service stopped")
}
