package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clearhaven/lore/internal/api/handlers"
	"github.com/clearhaven/lore/internal/config"
	"github.com/clearhaven/lore/internal/database"
	"github.com/clearhaven/lore/internal/index"
	"github.com/clearhaven/lore/internal/jobs"
	"github.com/clearhaven/lore/internal/openai"
	"github.com/clearhaven/lore/internal/parser"
	"github.com/clearhaven/lore/internal/profile"
	"github.com/clearhaven/lore/internal/server"
	"github.com/clearhaven/lore/internal/service"
	"github.com/clearhaven/lore/internal/storage"
	"github.com/clearhaven/lore/internal/telemetry"
	"github.com/clearhaven/lore/internal/websearch"
)

// maxOutboundCalls bounds concurrent index, completion and web calls.
const maxOutboundCalls = 8

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the lore API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Println("migrations applied")
	}

	var store service.ContentStore
	if cfg.HasS3() {
		s3Store, err := storage.NewS3Store(ctx, storage.S3StoreConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 store: %w", err)
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		store = s3Store
	} else {
		store = storage.NewFileStore(cfg.DataDir)
	}

	embedder := openai.NewEmbeddingClient(openai.Config{
		APIKey:  cfg.EmbeddingAPIKey,
		BaseURL: cfg.EmbeddingBaseURL,
		Model:   cfg.EmbeddingModel,
	})
	semanticIndex := index.NewPgVector(pool, embedder)

	chatClient := openai.NewChatClient(openai.Config{
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		Provider:    cfg.LLMProvider,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})

	// Without an LLM key, metadata generation is skipped; ask still routes
	// to the completion endpoint and surfaces its error.
	var metadataCompleter service.Completer
	if cfg.HasLLM() {
		metadataCompleter = chatClient
	}

	gate := jobs.NewGate(maxOutboundCalls)
	webClient := websearch.NewClient()
	parsers := parser.DefaultRegistry(webClient)
	profileStore := profile.NewStore(cfg.DataDir)

	knowledgeSvc := service.NewKnowledgeService(
		semanticIndex,
		store,
		metadataCompleter,
		parsers,
		gate,
		service.ChunkingConfig{
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
			UpsertBatch:  cfg.UpsertBatch,
		},
	)
	searchSvc := service.NewSearchService(semanticIndex, gate)
	ragSvc := service.NewRAGService(
		searchSvc,
		webClient,
		chatClient,
		profileStore,
		gate,
		service.RAGPolicy{
			TopK:               cfg.TopK,
			HighThreshold:      cfg.HighThreshold,
			WebFallbackEnabled: cfg.WebFallbackEnabled,
			MinLocalResults:    cfg.MinLocalResults,
			WebResults:         cfg.WebResults,
			AIAnswerEnabled:    cfg.AIAnswerEnabled,
		},
	)

	router := server.NewRouter(server.RouterConfig{
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc),
		AskHandler:       handlers.NewAskHandler(ragSvc, searchSvc),
		ProfileHandler:   handlers.NewProfileHandler(profileStore),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
