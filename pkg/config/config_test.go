package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EngineDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Engine.AutoApplyThreshold)
	assert.Equal(t, 15*time.Minute, cfg.Engine.ClusterRadius)
	assert.Equal(t, 30*time.Minute, cfg.Engine.DuplicateIntentWindow)
	assert.Equal(t, time.Hour, cfg.Engine.IntentGrace)
	assert.Equal(t, 30*time.Second, cfg.Engine.TimelineRefresh)
	assert.Equal(t, "courtside", cfg.Database.Database)
}

func TestLoad_EngineOverrides(t *testing.T) {
	t.Setenv("ENGINE_AUTO_APPLY_THRESHOLD", "3.5")
	t.Setenv("ENGINE_CLUSTER_RADIUS", "20m")
	t.Setenv("ENGINE_TIMELINE_REFRESH", "10s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3.5, cfg.Engine.AutoApplyThreshold)
	assert.Equal(t, 20*time.Minute, cfg.Engine.ClusterRadius)
	assert.Equal(t, 10*time.Second, cfg.Engine.TimelineRefresh)
}

func TestLoad_IgnoresMalformedDuration(t *testing.T) {
	t.Setenv("ENGINE_INTENT_GRACE", "an hour")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.Engine.IntentGrace)
}

func TestLoad_RejectsThresholdBelowFloor(t *testing.T) {
	t.Setenv("ENGINE_AUTO_APPLY_THRESHOLD", "0.5")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "courtside", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=courtside sslmode=disable", db.DatabaseDSN())
}

func TestLoad_ServerListeners(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.InternalHost)
	assert.Equal(t, 8081, cfg.Server.InternalPort)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)

	t.Setenv("ALLOWED_ORIGINS", " https://app.example , ,https://admin.example")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example", "https://admin.example"}, cfg.Server.AllowedOrigins)
}
