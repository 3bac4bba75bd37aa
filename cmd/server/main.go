package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/arjaysison/library-room-reservation/internal/booking"
	"github.com/arjaysison/library-room-reservation/internal/config"
	"github.com/arjaysison/library-room-reservation/internal/database"
	"github.com/arjaysison/library-room-reservation/internal/handler"
	mw "github.com/arjaysison/library-room-reservation/internal/middleware"
	"github.com/arjaysison/library-room-reservation/internal/policy"
	"github.com/arjaysison/library-room-reservation/internal/queue"
	"github.com/arjaysison/library-room-reservation/internal/repository"
	"github.com/arjaysison/library-room-reservation/internal/router"
	queue_publisher "github.com/arjaysison/library-room-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: with no client, rate limiting and the response
	// cache disable themselves.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	reservations := repository.NewReservationRepo(db)

	svc := booking.NewService(
		reservations,
		users,
		rooms,
		policy.FloorAccess{},
		policy.NewQuota(reservations),
		queue_publisher.PublishReservationEvent,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background workers: the periodic expiry sweep and the event
	// consumer that feeds the notification log.
	go booking.NewSweeper(svc, cfg.SweepInterval).Run(ctx)
	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(mw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterRooms(e, handler.NewRoomHandler(rooms), mw.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterReservations(e, handler.NewReservationHandler(svc), cfg.JWTSecret)
	router.RegisterStaff(e, handler.NewStaffReservationHandler(svc, users), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
