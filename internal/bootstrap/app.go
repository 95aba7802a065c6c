package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/analyses"
	"resume-ats/internal/extract"
	"resume-ats/internal/layout"
	"resume-ats/internal/llm"
	"resume-ats/internal/llm/gemini"
	"resume-ats/internal/llm/openai"
	"resume-ats/internal/ocr"
	"resume-ats/internal/services/health"
	"resume-ats/internal/shared/config"
	"resume-ats/internal/shared/server"
	"resume-ats/internal/shared/storage/db"
	"resume-ats/internal/shared/storage/object"
	localstore "resume-ats/internal/shared/storage/object/local"
	s3store "resume-ats/internal/shared/storage/object/s3"
	"resume-ats/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	AnalysesRepo    analyses.Repo
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
}

// Build prepares dependencies and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	telemetry.Init(cfg.LogLevel, cfg.JSONLogs())

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := BuildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ocrClient, err := BuildOCR(cfg)
	if err != nil {
		return nil, err
	}

	var repo analyses.Repo
	if sqlDB != nil {
		repo = &analyses.PGRepo{DB: sqlDB}
	} else {
		repo = analyses.NewMemoryRepo()
	}

	svc := &analyses.Service{
		Repo:  repo,
		Store: store,
		Extractor: extract.New(layout.Options{
			LineTolerance: cfg.LayoutLineTolerance,
			ColumnSpread:  cfg.LayoutColumnSpread,
		}),
		OCR:            ocrClient,
		LLM:            llmClient,
		Timeout:        cfg.AnalysisTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	handler := analyses.NewHandler(svc)

	app := &App{
		Config:          cfg,
		DB:              sqlDB,
		Store:           store,
		AnalysesRepo:    repo,
		AnalysesService: svc,
		AnalysisHandler: handler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: handler,
		Health:          health.NewService(pingerOrNil(sqlDB)),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"object_store": cfg.ObjectStoreType,
		"repo":         repoKind(sqlDB),
		"llm_provider": cfg.LLMProvider,
		"ocr_enabled":  cfg.OCRServiceURL != "",
	})
	return app, nil
}

// Close releases the database pool and flushes logs.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
	telemetry.Sync()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repo", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "database unavailable", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// BuildLLM selects the feedback model client for cfg. A missing API key
// yields the placeholder client.
func BuildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"provider": "gemini"})
			return llm.PlaceholderClient{}, nil
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMFallbackModels)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"provider": "openai"})
			return llm.PlaceholderClient{}, nil
		}
		return openai.NewClient(openai.Options{
			APIKey:              cfg.OpenAIAPIKey,
			Model:               cfg.LLMModel,
			NoTemperatureModels: cfg.OpenAINoTempModel,
		})
	default:
		return llm.PlaceholderClient{}, nil
	}
}

// BuildOCR returns the HTTP OCR client when OCR_SERVICE_URL is set.
func BuildOCR(cfg config.Config) (ocr.Client, error) {
	if strings.TrimSpace(cfg.OCRServiceURL) == "" {
		return ocr.Placeholder{}, nil
	}
	return ocr.NewHTTPClient(cfg.OCRServiceURL, cfg.OCRAPIKey, cfg.OCRTimeout)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}

func pingerOrNil(sqlDB *sql.DB) health.Pinger {
	if sqlDB == nil {
		return nil
	}
	return sqlDB
}

func repoKind(sqlDB *sql.DB) string {
	if sqlDB == nil {
		return "memory"
	}
	return "postgres"
}
