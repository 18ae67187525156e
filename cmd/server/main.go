package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/chaitanyak175/TicketBoss/internal/adapter/handler"
	"github.com/chaitanyak175/TicketBoss/internal/adapter/storage"
	"github.com/chaitanyak175/TicketBoss/internal/config"
	"github.com/chaitanyak175/TicketBoss/internal/core/domain"
	"github.com/chaitanyak175/TicketBoss/internal/core/service"
	"github.com/chaitanyak175/TicketBoss/internal/port"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	ledger := storage.NewMySQLAdapter(db)

	// Schema and seed run once, before the server accepts traffic; there is
	// no lazy per-request initialization.
	if err := ledger.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}
	now := time.Now().UTC()
	seed := domain.Event{
		EventID:        cfg.SeedEventID,
		Name:           cfg.SeedEventName,
		TotalSeats:     cfg.SeedTotalSeats,
		AvailableSeats: cfg.SeedTotalSeats,
		Version:        0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := ledger.SeedEvent(ctx, seed); err != nil {
		log.Fatalf("failed to seed event: %v", err)
	}
	log.Printf("seeded event %s (%d seats)", cfg.SeedEventID, cfg.SeedTotalSeats)

	// Initialize Redis; the summary cache is optional, so a missing Redis
	// only costs cache hits.
	var cache port.SummaryCache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable, summary cache disabled: %v", err)
		rdb.Close()
		rdb = nil
	} else {
		log.Println("connected to redis")
		cache = storage.NewRedisAdapter(rdb, cfg.SummaryCacheTTL)
	}

	// Initialize core
	engine := service.NewInventoryEngine(ledger)
	reservations := service.NewReservationService(ledger, engine, cache, cfg.MaxSeatsPerReq)

	// Start the reconciliation sweep
	reconciler := service.NewReconciler(ledger, engine, cfg.ReconcileInterval)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		reconciler.Run(ctx)
	}()
	log.Printf("reconciler running every %s", cfg.ReconcileInterval)

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(reservations)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpHandler.Routes(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	cancel()
	wg.Wait()
	log.Println("reconciler stopped")

	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	log.Println("connections closed")
}
