package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"cvmanager-backend/internal/cvs"
	"cvmanager-backend/internal/services/health"
	"cvmanager-backend/internal/shared/config"
	"cvmanager-backend/internal/shared/server"
	"cvmanager-backend/internal/shared/storage/db"
)

// App holds shared dependencies wired for a running process.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     cvs.Store
	CVService *cvs.Service
	CVHandler *cvs.Handler
	Health    *health.Service
}

// Build prepares shared dependencies and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var store cvs.Store
	if sqlDB != nil {
		store = cvs.NewPGStore(sqlDB)
	} else {
		store = cvs.NewMemoryStore()
	}

	svc := cvs.NewService(store)

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		CVService: svc,
		CVHandler: cvs.NewHandler(svc),
		Health:    health.NewService(sqlDB),
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:    app.Config,
		CVHandler: app.CVHandler,
		Health:    app.Health,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory store")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory store: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory store: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
