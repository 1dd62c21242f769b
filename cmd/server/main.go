package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/bookmark-sync/internal/api"
	"github.com/ignite/bookmark-sync/internal/archive"
	"github.com/ignite/bookmark-sync/internal/broadcast"
	"github.com/ignite/bookmark-sync/internal/cache"
	"github.com/ignite/bookmark-sync/internal/categorize"
	"github.com/ignite/bookmark-sync/internal/config"
	"github.com/ignite/bookmark-sync/internal/importer"
	"github.com/ignite/bookmark-sync/internal/pkg/runguard"
	"github.com/ignite/bookmark-sync/internal/repository/postgres"
	"github.com/ignite/bookmark-sync/internal/safety"
	"github.com/ignite/bookmark-sync/internal/workspace"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Bookmark Sync server (cmd/server/main.go)")

	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Durable tier: PostgreSQL
	if !cfg.Database.Enabled || cfg.Database.URL == "" {
		log.Fatal("database is required: set database.url in config or DATABASE_URL")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}

	repo := postgres.NewWorkspaceRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	log.Println("[db] connected, schema ready")

	// Warm tier + cross-instance broadcast: Redis (optional)
	var redisClient *redis.Client
	var warm *cache.WarmStore
	broadcasters := broadcast.Multi{broadcast.NewHub()}
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("[redis] unreachable, warm tier disabled: %v", err)
			redisClient = nil
		} else {
			warm = cache.NewWarmStore(redisClient, cfg.Redis.WarmTTL())
			broadcasters = append(broadcasters, broadcast.NewRedisBroadcaster(redisClient))
			log.Printf("[redis] connected: %s", cfg.Redis.Addr)
		}
	}

	tiers := cache.NewTiers(cache.NewSeedStore(), warm)
	registry := workspace.NewRegistry(repo, tiers)

	// Categorization: remote service behind retry and a breaker, or the
	// deterministic stub when no remote is configured.
	var categorizer categorize.Service
	if cfg.Categorizer.Enabled && cfg.Categorizer.Endpoint != "" {
		client := categorize.NewClient(cfg.Categorizer.Endpoint, cfg.Categorizer.APIKey)
		categorizer = categorize.NewPolicy(client, categorize.PolicyOptions{
			SmallInputThreshold: cfg.Categorizer.SmallInputThreshold,
			MaxBatchSize:        cfg.Categorizer.MaxBatchSize,
			CallTimeout:         cfg.Categorizer.Timeout(),
		})
		log.Printf("[categorize] remote: %s", cfg.Categorizer.Endpoint)
	} else {
		categorizer = categorize.Stub{}
		log.Println("[categorize] remote disabled, using offline stub")
	}

	// Run-report archival (optional)
	var archiver importer.Archiver
	if cfg.Archive.Enabled && cfg.Archive.S3Bucket != "" {
		a, err := archive.NewS3Archiver(ctx, archive.S3Config{
			Bucket: cfg.Archive.S3Bucket,
			Prefix: cfg.Archive.S3Prefix,
			Region: cfg.Archive.S3Region,
		})
		if err != nil {
			log.Printf("[archive] disabled: %v", err)
		} else {
			archiver = a
			log.Printf("[archive] run reports -> s3://%s/%s", cfg.Archive.S3Bucket, cfg.Archive.S3Prefix)
		}
	}

	guardTTL := cfg.Import.RunGuardTTL()
	newGuard := func(userID string) runguard.Guard {
		return runguard.New(redisClient, db, userID, guardTTL)
	}

	handlers := api.NewHandlers(
		registry,
		safety.NewBlocklistFilter(cfg.Safety.Blocklist),
		categorizer,
		broadcasters,
		archiver,
		cfg.Import,
		newGuard,
	)
	server := api.NewServer(cfg.Server, handlers)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized — server is ready")

	<-done
	log.Println("Shutting down...")

	// Cancel background tasks
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}

	log.Println("Server stopped")
}
