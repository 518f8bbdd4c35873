package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"proposalforge/internal/auth"
	"proposalforge/internal/config"
	"proposalforge/internal/handler"
	"proposalforge/internal/metrics"
	"proposalforge/internal/middleware"
	"proposalforge/internal/oracle"
	anthropicOracle "proposalforge/internal/oracle/anthropic"
	loremOracle "proposalforge/internal/oracle/lorem"
	"proposalforge/internal/repository/postgres"
	redisRepo "proposalforge/internal/repository/redis"
	"proposalforge/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if dir := os.Getenv("LOG_DIR"); dir != "" {
		logFile, err := config.SetupLogFile(dir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// JWT verification is mandatory outside dev; in dev a missing JWKS URL
	// runs the server unauthenticated.
	var jwtVerifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		v, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer v.Close()
		jwtVerifier = v
	} else if cfg.Environment != "dev" {
		log.Fatal("JWKS_URL is required outside dev")
	} else {
		logger.Warn("running without JWT verification (dev only)")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if err := postgres.Migrate(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	logger.Info("database connected")

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	sectionRepo := postgres.NewSectionRepository(repoConfig)
	versionRepo := postgres.NewVersionRepository(repoConfig)
	suggestionRepo := postgres.NewSuggestionRepository(repoConfig)
	proposalRepo := postgres.NewProposalRepository(repoConfig)
	knowledgeRepo := postgres.NewKnowledgeRepository(repoConfig)

	bufferStore, err := redisRepo.NewBufferStore(cfg.RedisURL, logger)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	// Oracle provider selection
	var (
		generator oracle.TextGenerator
		judge     oracle.Judge
	)
	switch cfg.OracleProvider {
	case "anthropic":
		provider, err := anthropicOracle.NewProvider(cfg.AnthropicAPIKey, cfg.OracleModel)
		if err != nil {
			log.Fatalf("Failed to create anthropic oracle: %v", err)
		}
		generator, judge = provider, provider
	case "lorem":
		if cfg.Environment == "prod" {
			log.Fatal("lorem oracle is not allowed in prod")
		}
		provider := loremOracle.NewProvider()
		generator, judge = provider, provider
	default:
		log.Fatalf("Unknown oracle provider: %q", cfg.OracleProvider)
	}
	logger.Info("oracle provider initialized", "provider", generator.Name())

	m := metrics.New()

	// Services
	notifier := service.NewLogNotifier(logger)
	versionService := service.NewVersionService(versionRepo, sectionRepo, m, logger)
	sectionService := service.NewSectionService(sectionRepo, proposalRepo, versionService, notifier, m, logger)
	assembler := service.NewContextAssembler(sectionRepo, proposalRepo, knowledgeRepo, logger)
	generationService := service.NewGenerationService(assembler, sectionService, versionService, generator, m, logger)
	reuseService := service.NewReuseService(sectionRepo, proposalRepo, suggestionRepo, sectionService, judge, m, logger)

	// Auto-save reconciler runs for the lifetime of the process
	reconciler := service.NewReconciler(bufferStore, sectionService, sectionRepo, cfg.AutoSaveInterval, m, logger)
	reconcilerCtx, stopReconciler := context.WithCancel(ctx)
	defer stopReconciler()
	go reconciler.Run(reconcilerCtx)
	logger.Info("auto-save reconciler started", "interval", cfg.AutoSaveInterval)

	// Handlers
	sectionHandler := handler.NewSectionHandler(sectionService, logger)
	versionHandler := handler.NewVersionHandler(versionService, logger)
	generationHandler := handler.NewGenerationHandler(generationService, logger)
	suggestionHandler := handler.NewSuggestionHandler(reuseService, logger)
	bufferHandler := handler.NewBufferHandler(bufferStore, logger)

	logger.Info("services initialized")

	// HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Section store routes
	mux.HandleFunc("GET /api/proposals/{id}/sections", sectionHandler.ListSections)
	mux.HandleFunc("GET /api/proposals/{id}/sections/{key}", sectionHandler.GetSection)
	mux.HandleFunc("PUT /api/proposals/{id}/sections/{key}", sectionHandler.SaveSection)
	mux.HandleFunc("POST /api/proposals/{id}/sections/{key}/review", sectionHandler.MarkForReview)

	// Version ledger routes
	mux.HandleFunc("GET /api/sections/{id}/versions", versionHandler.ListVersions)
	mux.HandleFunc("POST /api/sections/{id}/versions/{number}/restore", versionHandler.RestoreVersion)

	// Generation routes
	mux.HandleFunc("POST /api/proposals/{id}/sections/{key}/generate", generationHandler.Generate)

	// Reuse suggestion routes
	mux.HandleFunc("POST /api/proposals/{id}/sections/{key}/suggestions", suggestionHandler.RankSuggestions)
	mux.HandleFunc("GET /api/proposals/{id}/sections/{key}/suggestions", suggestionHandler.ListSuggestions)
	mux.HandleFunc("POST /api/suggestions/{id}/accept", suggestionHandler.AcceptSuggestion)
	mux.HandleFunc("POST /api/suggestions/{id}/reject", suggestionHandler.RejectSuggestion)

	// Draft buffer routes
	mux.HandleFunc("PUT /api/proposals/{id}/buffer/{key}", bufferHandler.PutBuffer)
	mux.HandleFunc("GET /api/proposals/{id}/buffer", bufferHandler.GetBuffer)

	// Middleware chain: CORS -> Recovery -> Auth -> Routes
	var h http.Handler = mux
	h = middleware.Auth(jwtVerifier)(h)
	h = middleware.Recovery(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls are slow
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
