package migrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shipfee-backend/pkg/config"
	"github.com/angelmondragon/shipfee-backend/pkg/db"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
)

func TestMaybeRunDevAppliesSQLiteSchema(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvDev},
		DB:           config.DBConfig{Driver: config.DriverSQLite, DSN: "file:autorun?mode=memory&cache=shared"},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true},
	}
	client, err := db.New(ctx, cfg.DB, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, MaybeRunDev(ctx, cfg, logger.Nop(), client))
	require.NoError(t, MaybeRunDev(ctx, cfg, logger.Nop(), client), "schema apply is repeatable")

	for _, table := range []string{"vendors", "products", "shipping_zones", "orders", "outbox_events", "outbox_dlq"} {
		assert.True(t, client.DB().Migrator().HasTable(table), table)
	}
}

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvProd},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true},
	}
	assert.NoError(t, MaybeRunDev(context.Background(), cfg, logger.Nop(), nil))
}
