package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"MODE", "PORT", "ENVIRONMENT", "LOT_AREA", "SPOT_LENGTH", "SPOT_WIDTH",
	"VEHICLE_PLATES", "VEHICLE_COUNT", "RANDOM_SEED", "EXPORT_FILE",
	"S3_BUCKET", "S3_KEY", "AWS_REGION", "S3_ENDPOINT", "S3_PATH_STYLE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_KEY",
	"OTEL_SERVICE_NAME", "OTEL_EXPORTER_OTLP_ENDPOINT",
}

// cleanEnv unsets every variable Load reads and restores them after the test.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadDefaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "run", cfg.Mode)
	assert.Equal(t, "8080", cfg.Port)
	assert.InDelta(t, 2000, cfg.LotArea, 0.001)
	assert.InDelta(t, 8, cfg.SpotLength, 0.001)
	assert.InDelta(t, 12, cfg.SpotWidth, 0.001)
	assert.Zero(t, cfg.VehicleCount)
	assert.Empty(t, cfg.Plates)
	assert.False(t, cfg.Seeded)
	assert.Equal(t, "vehicle_spot_mapping.json", cfg.ExportFile)
	assert.Equal(t, "vehicle_spot_mapping.json", cfg.S3Key)
	assert.False(t, cfg.S3Enabled())
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, "parking:mapping", cfg.RedisKey)
	assert.Equal(t, "random-parking-lot", cfg.OTelServiceName)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnv(t *testing.T) {
	cleanEnv(t)
	t.Setenv("MODE", "server")
	t.Setenv("LOT_AREA", "2000")
	t.Setenv("SPOT_LENGTH", "10")
	t.Setenv("SPOT_WIDTH", "12.5")
	t.Setenv("VEHICLE_PLATES", "QWE7890, DBC1234,,WYZ5678")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("S3_BUCKET", "parking-runs")
	t.Setenv("S3_KEY", "runs/latest.json")
	t.Setenv("S3_PATH_STYLE", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "server", cfg.Mode)
	assert.InDelta(t, 12.5, cfg.SpotWidth, 0.001)
	assert.Equal(t, []string{"QWE7890", "DBC1234", "WYZ5678"}, cfg.Plates)
	assert.True(t, cfg.Seeded)
	assert.Equal(t, uint64(42), cfg.RandomSeed)
	assert.True(t, cfg.S3Enabled())
	assert.Equal(t, "runs/latest.json", cfg.S3Key)
	assert.True(t, cfg.S3PathStyle)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestLoadReportsEveryInvalidNumber(t *testing.T) {
	cleanEnv(t)
	t.Setenv("LOT_AREA", "big")
	t.Setenv("VEHICLE_COUNT", "many")
	t.Setenv("RANDOM_SEED", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOT_AREA")
	assert.Contains(t, err.Error(), "VEHICLE_COUNT")
	assert.Contains(t, err.Error(), "RANDOM_SEED")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown mode", map[string]string{"MODE": "daemon"}, "invalid MODE"},
		{"negative count", map[string]string{"VEHICLE_COUNT": "-3"}, "VEHICLE_COUNT"},
		{"endpoint without bucket", map[string]string{"S3_ENDPOINT": "http://minio:9000"}, "S3_BUCKET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	cleanEnv(t)

	path := filepath.Join(t.TempDir(), "parking.env")
	require.NoError(t, os.WriteFile(path, []byte("LOT_AREA=3000\nSPOT_LENGTH=10\nPORT=9999\n"), 0o644))
	t.Setenv("ENV_FILE", path)
	t.Setenv("PORT", "7000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 3000, cfg.LotArea, 0.001)
	assert.InDelta(t, 10, cfg.SpotLength, 0.001)
	assert.Equal(t, "7000", cfg.Port)
}
