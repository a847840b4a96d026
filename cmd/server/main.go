package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-rsvp/internal/config"
	"github.com/iliyamo/event-rsvp/internal/database"
	"github.com/iliyamo/event-rsvp/internal/handler"
	"github.com/iliyamo/event-rsvp/internal/mailer"
	"github.com/iliyamo/event-rsvp/internal/middleware"
	"github.com/iliyamo/event-rsvp/internal/queue"
	"github.com/iliyamo/event-rsvp/internal/repository"
	"github.com/iliyamo/event-rsvp/internal/router"
	"github.com/iliyamo/event-rsvp/internal/seat"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	rdb := config.NewRedisClient() // nil disables cache, rate limit, denylist
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting, caching and logout denylist disabled")
	}

	repo := repository.NewReservationRepo(db)
	mail := mailer.New()
	alloc := seat.Allocator{Total: cfg.TotalSeats}

	pub := handler.NewPublicHandler(repo, alloc, mail, cfg.AdminNotifyEmail)
	adm := handler.NewAdminHandler(cfg, repo, mail, rdb)

	e := echo.New()
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	router.RegisterPublic(e, pub, rateLimit, cache)
	router.RegisterAdmin(e, adm, cfg.JWTSecret, rdb)

	// Background consumer mirrors reservation events into logs/reservation.log.
	go queue.StartReservationConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, seats=%d)", addr, cfg.Env, cfg.TotalSeats)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
