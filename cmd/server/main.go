package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/campushub/venue-booking/internal/config"
	"github.com/campushub/venue-booking/internal/database"
	"github.com/campushub/venue-booking/internal/handler"
	"github.com/campushub/venue-booking/internal/queue"
	"github.com/campushub/venue-booking/internal/repository"
	"github.com/campushub/venue-booking/internal/router"
	"github.com/campushub/venue-booking/internal/schedule"
	queue_publisher "github.com/campushub/venue-booking/internal/service"
)

func main() {
	// .env is a development convenience; in production the variables
	// come from the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment directly")
	}

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	venueRepo := repository.NewVenueRepo(db)
	auditRepo := repository.NewBookingEventRepo(db)

	// The scheduling engine holds all booking state in memory; the
	// venue catalog and the lifecycle emitters are its only external
	// dependencies.
	store := schedule.New(venueRepo,
		queue_publisher.NewLifecyclePublisher(),
		auditRepo,
	)

	// Consume lifecycle events for notification delivery. The consumer
	// reconnects on its own; a missing broker only disables
	// notifications.
	go func() {
		if err := queue.StartLifecycleConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	// Redis is optional: nil disables rate limiting and response
	// caching but the API stays up.
	rdb := config.NewRedisClient()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	router.Register(e, router.Deps{
		Cfg:     cfg,
		Auth:    handler.NewAuthHandler(cfg, userRepo, tokenRepo),
		Venues:  handler.NewVenueHandler(venueRepo, store),
		Booking: handler.NewBookingHandler(store),
		Admin:   handler.NewAdminHandler(store, venueRepo),
		Rdb:     rdb,
	})

	addr := ":" + cfg.Port
	log.Printf("venue-booking listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
