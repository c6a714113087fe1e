package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Mode        string
	Port        string
	Environment string

	LotArea    float64
	SpotLength float64
	SpotWidth  float64

	// Plates wins over VehicleCount when both are set. A zero VehicleCount
	// means one random vehicle per spot.
	Plates       []string
	VehicleCount int
	RandomSeed   uint64
	Seeded       bool

	ExportFile  string
	S3Bucket    string
	S3Key       string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string

	OTelServiceName string
	OTelEndpoint    string
}

// Load reads the optional .env file named by ENV_FILE (default ".env") and
// then the process environment. Variables already set are not overridden.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		Mode:            getEnv("MODE", "run"),
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		Plates:          getEnvList("VEHICLE_PLATES"),
		ExportFile:      getEnv("EXPORT_FILE", "vehicle_spot_mapping.json"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Key:           getEnv("S3_KEY", ""),
		S3Region:        getEnv("AWS_REGION", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisKey:        getEnv("REDIS_KEY", "parking:mapping"),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "random-parking-lot"),
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
	}

	var errs []error
	cfg.LotArea = parseFloat("LOT_AREA", 2000, &errs)
	cfg.SpotLength = parseFloat("SPOT_LENGTH", 8, &errs)
	cfg.SpotWidth = parseFloat("SPOT_WIDTH", 12, &errs)
	cfg.VehicleCount = parseInt("VEHICLE_COUNT", 0, &errs)
	cfg.RedisDB = parseInt("REDIS_DB", 0, &errs)
	cfg.S3PathStyle = parseBool("S3_PATH_STYLE", false, &errs)

	if raw, ok := os.LookupEnv("RANDOM_SEED"); ok && raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid RANDOM_SEED: %w", err))
		}
		cfg.RandomSeed = seed
		cfg.Seeded = true
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if cfg.S3Key == "" {
		cfg.S3Key = cfg.ExportFile
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case "run", "cli", "server", "both":
	default:
		return fmt.Errorf("invalid MODE %q: must be run, cli, server, or both", c.Mode)
	}
	if c.VehicleCount < 0 {
		return fmt.Errorf("VEHICLE_COUNT must not be negative, got %d", c.VehicleCount)
	}
	if c.S3Endpoint != "" && c.S3Bucket == "" {
		return errors.New("S3_ENDPOINT is set but S3_BUCKET is empty")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFloat(key string, fallback float64, errs *[]error) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func parseInt(key string, fallback int, errs *[]error) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func parseBool(key string, fallback bool, errs *[]error) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}
