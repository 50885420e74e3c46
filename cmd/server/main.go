package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Sri-Rahul/linkanalysis/internal/analytics"
	"github.com/Sri-Rahul/linkanalysis/internal/cache"
	"github.com/Sri-Rahul/linkanalysis/internal/cache/memory"
	rediscache "github.com/Sri-Rahul/linkanalysis/internal/cache/redis"
	"github.com/Sri-Rahul/linkanalysis/internal/config"
	"github.com/Sri-Rahul/linkanalysis/internal/repository/sqlite"
	"github.com/Sri-Rahul/linkanalysis/internal/service"
	"github.com/Sri-Rahul/linkanalysis/internal/shortener"
	"github.com/Sri-Rahul/linkanalysis/internal/transport/client"
	httpTransport "github.com/Sri-Rahul/linkanalysis/internal/transport/http"
)

var rootCmd = &cobra.Command{
	Use:   "linkanalysis",
	Short: "A link shortening and analytics service written in Go",
	Long:  "A link shortening service with per-visit analytics, SQLite backend, and configurable link caching (memory or Redis)",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the link service",
	RunE:  runServer,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for interacting with the server",
}

var createCmd = &cobra.Command{
	Use:   "create [URL]",
	Short: "Create a short link",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateLink,
}

var getCmd = &cobra.Command{
	Use:   "get [CODE]",
	Short: "Get information about a short link",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetLink,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [CODE]",
	Short: "Delete a short link",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteLink,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all short links for the owner",
	RunE:  runListLinks,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the analytics summary for the owner",
	RunE:  runStats,
}

// envOr reads an environment variable with a fallback default
func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func init() {
	// Environment variables from .env provide flag defaults
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] Failed to load .env file: %v", err)
	}

	// Server command flags
	serverCmd.Flags().StringP("port", "p", envOr("PORT", "8080"), "Server port")
	serverCmd.Flags().String("server-url", envOr("SERVER_URL", "http://localhost:8080"), "Server URL (used in short links and QR codes)")
	serverCmd.Flags().String("db-path", envOr("DB_PATH", "links.db"), "Database file path")

	// Cache configuration flags
	serverCmd.Flags().String("cache-backend", envOr("CACHE_BACKEND", config.CacheBackendMemory), "Link cache backend (memory or redis)")
	serverCmd.Flags().String("redis-url", envOr("REDIS_URL", ""), "Redis URL for the redis cache backend")
	serverCmd.Flags().Duration("cache-ttl", 5*time.Minute, "Link cache entry TTL")

	// Recorder configuration flags
	serverCmd.Flags().Int("recorder-queue-size", 1024, "Visit event queue capacity")
	serverCmd.Flags().Int("recorder-workers", 2, "Visit event writer goroutines")

	// Allocator configuration flags
	serverCmd.Flags().Int("code-length", 6, "Generated short code length")
	serverCmd.Flags().Int("code-max-attempts", 10, "Allocation attempts before giving up")

	// Logging configuration flags
	serverCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging (HTTP requests/responses and error details)")

	// Client command flags
	clientCmd.PersistentFlags().StringP("server-url", "u", envOr("SERVER_URL", "http://localhost:8080"), "Server URL")
	clientCmd.PersistentFlags().StringP("owner", "o", envOr("OWNER_ID", ""), "Owner identity sent with requests")
	createCmd.Flags().StringP("alias", "a", "", "Custom alias for the short link")
	createCmd.Flags().String("expires", "", "Expiry time in RFC3339 format")

	// Add subcommands
	clientCmd.AddCommand(createCmd, getCmd, deleteCmd, listCmd, statsCmd)
	rootCmd.AddCommand(serverCmd, clientCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	// Get configuration from CLI flags
	port, _ := cmd.Flags().GetString("port")
	serverURL, _ := cmd.Flags().GetString("server-url")
	dbPath, _ := cmd.Flags().GetString("db-path")
	cacheBackend, _ := cmd.Flags().GetString("cache-backend")
	redisURL, _ := cmd.Flags().GetString("redis-url")
	cacheTTL, _ := cmd.Flags().GetDuration("cache-ttl")
	queueSize, _ := cmd.Flags().GetInt("recorder-queue-size")
	workers, _ := cmd.Flags().GetInt("recorder-workers")
	codeLength, _ := cmd.Flags().GetInt("code-length")
	maxAttempts, _ := cmd.Flags().GetInt("code-max-attempts")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.New(
		config.ServerConfig{Port: port, ServerURL: serverURL},
		config.DatabaseConfig{Path: dbPath},
		config.CacheConfig{Backend: cacheBackend, RedisURL: redisURL, TTL: cacheTTL},
		config.RecorderConfig{QueueSize: queueSize, Workers: workers},
		config.LoggingConfig{Verbose: verbose},
		shortener.Config{CodeLength: codeLength, MaxAttempts: maxAttempts},
	)
	if err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}

	log.Printf("Starting link service with config: port=%s cache=%s", cfg.Server.Port, cfg.Cache.Backend)

	// Initialize database
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize allocator
	allocator, err := shortener.NewRandomAllocator(repo, cfg.Allocator)
	if err != nil {
		return fmt.Errorf("failed to create code allocator: %w", err)
	}

	// Initialize link cache
	var linkCache cache.LinkCache
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		linkCache, err = rediscache.New(cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Printf("Using redis link cache")
	default:
		linkCache = memory.New(cfg.Cache.TTL)
		log.Printf("Using in-memory link cache")
	}

	// Initialize event recorder and services
	recorder := analytics.NewRecorder(repo, cfg.Recorder.QueueSize, cfg.Recorder.Workers)
	links := service.NewLinkService(repo, linkCache, allocator, recorder)
	engine := analytics.NewEngine(repo, repo, cfg.Server.ServerURL)

	defer func() {
		// Flush queued visit events before closing the store
		recorder.Close()
		if err := links.Close(); err != nil {
			log.Printf("Error closing link service: %v", err)
		}
	}()

	// Create and start HTTP server
	server := httpTransport.NewServer(links, engine, cfg.Server.Port, cfg.Server.ServerURL, cfg.Logging.Verbose)

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during server shutdown: %v", err)
		}
	}

	log.Println("Server stopped")
	return nil
}

func newCommands(cmd *cobra.Command) *client.Commands {
	serverURL, _ := cmd.Flags().GetString("server-url")
	owner, _ := cmd.Flags().GetString("owner")
	return client.NewCommands(client.NewClient(serverURL, owner))
}

func runCreateLink(cmd *cobra.Command, args []string) error {
	commands := newCommands(cmd)

	alias, _ := cmd.Flags().GetString("alias")
	rawExpiry, _ := cmd.Flags().GetString("expires")

	var expiresAt *time.Time
	if rawExpiry != "" {
		parsed, err := time.Parse(time.RFC3339, rawExpiry)
		if err != nil {
			return fmt.Errorf("invalid expiry time %q: %w", rawExpiry, err)
		}
		expiresAt = &parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return commands.Create(ctx, args[0], alias, expiresAt)
}

func runGetLink(cmd *cobra.Command, args []string) error {
	commands := newCommands(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return commands.Get(ctx, args[0])
}

func runDeleteLink(cmd *cobra.Command, args []string) error {
	commands := newCommands(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return commands.Delete(ctx, args[0])
}

func runListLinks(cmd *cobra.Command, args []string) error {
	commands := newCommands(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return commands.List(ctx)
}

func runStats(cmd *cobra.Command, args []string) error {
	commands := newCommands(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return commands.Stats(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
