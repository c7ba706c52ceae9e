// Package main is the entry point for the homestay booking server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homestay-booking/backend/internal/api"
	"github.com/homestay-booking/backend/internal/booking"
	"github.com/homestay-booking/backend/internal/config"
	"github.com/homestay-booking/backend/internal/jobs"
	"github.com/homestay-booking/backend/internal/notify"
	"github.com/homestay-booking/backend/internal/rating"
	"github.com/homestay-booking/backend/internal/storage"
	"github.com/homestay-booking/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.HTTPAddr); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	log.Printf("Starting homestay booking server (version: %s)...", version)

	// Initialize database
	dbPath := cfg.DataDir + "/homestay-booking.db"
	db, err := storage.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	bookingRepo := storage.NewBookingRepository(db)
	availabilityRepo := storage.NewAvailabilityRepository(db)
	placeRepo := storage.NewPlaceRepository(db)
	voucherRepo := storage.NewVoucherRepository(db)
	notificationRepo := storage.NewNotificationRepository(db)
	ratingRepo := storage.NewRatingRepository(db)

	// Notification delivery channels: always the live hub, AMQP if configured
	senders := []notify.Sender{notify.NewHubSender(hub)}
	if cfg.AMQPURL != "" {
		publisher, err := notify.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("Failed to connect notification publisher: %v", err)
		}
		defer publisher.Close()
		senders = append(senders, publisher)
	}
	dispatcher := notify.NewDispatcher(notificationRepo, cfg.NotifyMaxAttempts, senders...)

	// Initialize services
	bookingSvc := booking.NewService(
		db,
		bookingRepo,
		availabilityRepo,
		placeRepo,
		voucherRepo,
		notificationRepo,
		dispatcher,
		hub,
		cfg.ExtraGuestRate,
		cfg.CommissionRate,
	)
	reconciler := booking.NewReconciler(db, bookingRepo, cfg.RetentionDays)
	ratingSvc := rating.NewService(ratingRepo, cfg.TopRatedLimit)

	// Register background jobs on their configured cadences
	scheduler := jobs.NewScheduler(hub, 3)
	mustRegister(scheduler, jobs.Job{Name: "auto-complete", Every: cfg.AutoCompleteEvery, Run: reconciler.AutoComplete})
	mustRegister(scheduler, jobs.Job{Name: "cleanup", Every: cfg.CleanupEvery, Run: reconciler.Cleanup})
	mustRegister(scheduler, jobs.Job{Name: "notification-retry", Every: cfg.NotifyRetryEvery, Run: dispatcher.Retry})
	mustRegister(scheduler, jobs.Job{Name: "top-rated-refresh", Every: cfg.TopRatedEvery, Run: ratingSvc.RefreshTopRated})
	scheduler.Start()

	// Initialize HTTP router
	router := api.NewRouter(db, hub, bookingSvc, ratingSvc, notificationRepo)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	scheduler.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

func mustRegister(s *jobs.Scheduler, job jobs.Job) {
	if err := s.Register(job); err != nil {
		log.Fatalf("Failed to register job %s: %v", job.Name, err)
	}
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
