package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omnichat/orchestrator/internal/agent"
	"github.com/omnichat/orchestrator/internal/cache"
	"github.com/omnichat/orchestrator/internal/config"
	"github.com/omnichat/orchestrator/internal/conversation"
	"github.com/omnichat/orchestrator/internal/hub"
	"github.com/omnichat/orchestrator/internal/nlg"
	"github.com/omnichat/orchestrator/internal/service"
	"github.com/omnichat/orchestrator/internal/session"
	"github.com/omnichat/orchestrator/internal/store"
	transport "github.com/omnichat/orchestrator/internal/transport/http"
	"github.com/omnichat/orchestrator/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting orchestrator...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if cfg.SeedDemoData {
		if err := store.SeedDemoData(ctx, db); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		log.Printf("Demo data seeded")
	}

	// Initialize session cache. A cache failure degrades to store-only
	// operation instead of refusing to start.
	var sessionCache cache.Cache
	if badgerCache, err := cache.NewBadgerCache(cfg.CacheDir); err != nil {
		log.Printf("WARN: session cache unavailable, running store-only: %v", err)
		sessionCache = cache.Noop{}
	} else {
		sessionCache = badgerCache
		defer badgerCache.Close()
	}

	// Initialize policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize managers
	sessions := session.NewManager(db, sessionCache, cfg.SessionTTL)
	conversations := conversation.NewManager(db, sessions)

	// Initialize capability handlers
	gateway := agent.NewRandomGateway(cfg.PaymentSuccessRate)
	agents := service.Agents{
		Recommendation: agent.NewRecommendationAgent(db),
		Inventory:      agent.NewInventoryAgent(db),
		Payment:        agent.NewPaymentAgent(db, gateway, policyEngine, cfg.PaymentMaxAttempts, cfg.PaymentBackoff),
		Fulfillment:    agent.NewFulfillmentAgent(db),
		Loyalty:        agent.NewLoyaltyAgent(db),
		PostPurchase:   agent.NewPostPurchaseAgent(db),
	}

	// Initialize fan-out hub
	h := hub.New()
	go h.Run()

	// Initialize service
	generator := nlg.NewGenerator(cfg.ModelBaseURL, cfg.ModelAPIKey, cfg.ModelName, cfg.ModelTimeout)
	svc := service.New(db, sessions, conversations, agents, generator, h)

	// Expired-session sweeper
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				n, err := svc.SweepExpiredSessions(sweepCtx)
				if err != nil {
					log.Printf("ERROR: session sweep failed: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("Swept %d expired sessions", n)
				}
			}
		}
	}()

	// Create HTTP server
	server := transport.NewServer(svc, h)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down orchestrator...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Orchestrator stopped")
}
