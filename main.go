package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/learnaistudio/course-engine/pkg/config"
	"github.com/learnaistudio/course-engine/pkg/database"
	"github.com/learnaistudio/course-engine/pkg/generation"
	"github.com/learnaistudio/course-engine/pkg/handlers"
	"github.com/learnaistudio/course-engine/pkg/llm"
	"github.com/learnaistudio/course-engine/pkg/middleware"
	"github.com/learnaistudio/course-engine/pkg/moderation"
	"github.com/learnaistudio/course-engine/pkg/repositories"
	"github.com/learnaistudio/course-engine/pkg/services"
	"github.com/learnaistudio/course-engine/pkg/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Strings("generator_endpoints", cfg.Generator.Endpoints),
		zap.Bool("database_configured", cfg.Database.IsConfigured()),
		zap.Bool("moderation_enabled", cfg.Moderation.IsConfigured()))

	ctx := context.Background()

	// The database is optional: without it the persistence cascade starts at
	// the file fallback and the read endpoints serve an in-memory store.
	var courseRepo repositories.CourseRepository
	var userRepo repositories.UserRepository
	if cfg.Database.IsConfigured() {
		db, err := database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
		})
		if err != nil {
			logger.Warn("Database unreachable, continuing with file storage only", zap.Error(err))
		} else {
			defer db.Close()
			if err := runMigrations(cfg, logger); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
			courseRepo = repositories.NewCourseRepository(db.Pool)
			userRepo = repositories.NewUserRepository(db.Pool)
		}
	}

	fileStore := storage.NewFileStore(cfg.Storage.FallbackDir, logger)

	var checker services.TopicChecker
	if cfg.Moderation.IsConfigured() {
		llmClient, err := llm.NewOpenAIClient(&llm.Config{
			Endpoint: cfg.Moderation.LLMBaseURL,
			Model:    cfg.Moderation.LLMModel,
			APIKey:   cfg.Moderation.LLMAPIKey,
		}, logger)
		if err != nil {
			log.Fatalf("Failed to create moderation client: %v", err)
		}
		checker = moderation.NewChecker(llmClient, logger)
	}

	broker := generation.NewBroker(
		cfg.Generator.Endpoints,
		cfg.Generator.ProbeTimeout(),
		cfg.Generator.RequestTimeout(),
		logger,
	)

	cascade := services.NewPersistenceCascade(courseRepo, userRepo, fileStore, logger)
	outlineService := services.NewOutlineService(broker, cascade, checker, logger)

	// The read endpoints need concrete repositories even without a database.
	if courseRepo == nil {
		courseRepo = repositories.NewMemoryCourseRepository()
		userRepo = repositories.NewMemoryUserRepository()
	}
	courseService := services.NewCourseService(courseRepo, userRepo, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewGenerateHandler(outlineService, logger).RegisterRoutes(mux)
	handlers.NewCourseHandler(courseService, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting course-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// runMigrations applies pending schema migrations through database/sql,
// which golang-migrate requires.
func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return database.RunMigrations(sqlDB, cfg.MigrationsPath, logger)
}
