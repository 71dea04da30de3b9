package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ".html", cfg.Catalog.CategoryURLSuffix)
	assert.Equal(t, ".html", cfg.Catalog.ProductURLSuffix)
	assert.True(t, cfg.Catalog.ProductUseCategories)
	assert.Equal(t, 10, cfg.Catalog.MaxDepth)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Notify.Enabled)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("CATALOG_CATEGORY_URL_SUFFIX", "/")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("REDIS_LOCK_ENABLED", "true")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "/", cfg.Catalog.CategoryURLSuffix)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.True(t, cfg.Redis.LockEnabled)
}
