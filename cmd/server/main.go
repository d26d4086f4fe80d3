package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/hotelmanager/hotel-booking/internal/config"
	"github.com/hotelmanager/hotel-booking/internal/database"
	"github.com/hotelmanager/hotel-booking/internal/handler"
	"github.com/hotelmanager/hotel-booking/internal/logger"
	"github.com/hotelmanager/hotel-booking/internal/middleware"
	"github.com/hotelmanager/hotel-booking/internal/queue"
	"github.com/hotelmanager/hotel-booking/internal/repository"
	"github.com/hotelmanager/hotel-booking/internal/router"
	"github.com/hotelmanager/hotel-booking/internal/service"
	"github.com/hotelmanager/hotel-booking/internal/storage"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine; the environment wins
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogEncoding(), "hotel-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("migrate database", zap.Error(err))
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable; cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)

	ledger := service.NewBookingLedger(rooms, users, bookings,
		service.WithLogger(log.Named("ledger")),
		service.WithEventPublisher(service.NewQueuePublisher(cfg.RabbitURL, log.Named("publisher"))),
	)
	roomSvc := service.NewRoomService(rooms, bookings, storage.NewLocalImageStore(cfg.UploadDir), log.Named("rooms"))

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(middleware.RequestLogger(log.Named("http")))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, cfg.JWTSecret))

	router.RegisterRoutes(e, &handler.HealthHandler{DB: db, Redis: rdb}, cfg.UploadDir)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens))
	router.RegisterRooms(e, handler.NewRoomHandler(roomSvc, rdb, cacheCfg.Prefix, log.Named("rooms")), cfg.JWTSecret, middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterBookings(e, handler.NewBookingHandler(ledger), cfg.JWTSecret)
	router.RegisterUsers(e, handler.NewUserHandler(users, ledger), cfg.JWTSecret)

	go func() {
		if err := queue.StartBookingConsumer(ctx, cfg.RabbitURL, log.Named("consumer")); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("booking consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
