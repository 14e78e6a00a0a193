package sqlite

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
)

// SeedDefaultCategories inserts model.DefaultCategories into an empty category table.
func SeedDefaultCategories(ctx context.Context, db *DB, logger *slog.Logger) error {
	seeded, err := NewCategoryRepo(db).SeedDefaults(ctx, model.DefaultCategories)
	if err != nil {
		return err
	}
	if seeded {
		logger.Info("seeded default categories", "count", len(model.DefaultCategories))
	}
	return nil
}
