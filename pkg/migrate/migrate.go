package migrate

import (
	"context"
	"fmt"

	"github.com/farmlog-app/farmlog-backend/pkg/config"
	"github.com/farmlog-app/farmlog-backend/pkg/db"
	"github.com/farmlog-app/farmlog-backend/pkg/db/models"
	"github.com/farmlog-app/farmlog-backend/pkg/logger"
)

// MaybeRunDev syncs the schema from the model structs when the app is running
// in dev mode and the feature flag is enabled. Production schemas are managed
// outside the service.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "running schema auto-migration (dev auto-run)")

	if err := client.DB().WithContext(ctx).AutoMigrate(
		&models.Account{},
		&models.Farm{},
		&models.CropLog{},
	); err != nil {
		return fmt.Errorf("auto-migrating schema: %w", err)
	}

	logg.Info(ctx, "schema auto-migration completed")
	return nil
}
