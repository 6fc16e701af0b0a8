package processor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/palemoky/philosophy-catalog-api/internal/config"
	"github.com/palemoky/philosophy-catalog-api/internal/database"
	"github.com/palemoky/philosophy-catalog-api/internal/docstore"
	"github.com/palemoky/philosophy-catalog-api/internal/logger"
)

// OpenStore opens the catalog store selected by cfg.Driver. The relational
// store is migrated before it is returned.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (database.Store, error) {
	switch cfg.Driver {
	case "redis":
		client, err := docstore.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("Catalog store opened", zap.String("driver", cfg.Driver))
		return docstore.New(client), nil

	case "sqlite", "":
		db, err := database.Open(cfg.Path, cfg.MaxOpenConns, cfg.MaxIdleConns)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("Catalog store opened",
			zap.String("driver", "sqlite"),
			zap.String("path", cfg.Path),
			zap.Int("max_open_conns", cfg.MaxOpenConns),
		)
		return database.NewRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
