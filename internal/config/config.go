package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// NASA / JPL API access.
	NASAAPIKey      string
	NeoWsBaseURL    string
	SBDBBaseURL     string
	HorizonsBaseURL string
	FireballBaseURL string
	SocrataBaseURL  string
	SocrataAppToken string
	APITimeout      time.Duration

	// Assessment window: the NeoWs feed is paged over [WindowStart, WindowStop]
	// in chunks of at most ChunkDays (the feed rejects ranges over 7 days).
	WindowStart time.Time
	WindowStop  time.Time
	ChunkDays   int

	// Physical assumptions.
	MOIDThresholdAU   float64
	DensityKgM3       float64
	TargetDensityKgM3 float64

	BatchSize       int
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Sinks.
	HazardCSVPath string
	KafkaEnabled  bool
	KafkaBrokers  []string
	KafkaTopic    string

	// SBDB MOID enrichment.
	SBDBEnabled   bool
	SBDBCacheSize int

	// Optional side jobs after the main run.
	FireballEnabled     bool
	FireballLimit       int
	FireballGeoJSONPath string
	MeteoriteEnabled    bool
	MeteoriteLimit      int
	MeteoriteCSVPath    string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	apiTimeout, err := envDuration("API_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	windowStop, err := envDate("WINDOW_STOP", time.Now().UTC())
	if err != nil {
		return nil, err
	}
	windowStart, err := envDate("WINDOW_START", windowStop.AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	threshold, err := envFloat("MOID_THRESHOLD_AU", 0.001)
	if err != nil {
		return nil, err
	}
	density, err := envFloat("IMPACTOR_DENSITY_KG_M3", 3000)
	if err != nil {
		return nil, err
	}
	targetDensity, err := envFloat("TARGET_DENSITY_KG_M3", 2700)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		NASAAPIKey:      envOrDefault("NASA_API_KEY", "DEMO_KEY"),
		NeoWsBaseURL:    envOrDefault("NEOWS_BASE_URL", "https://api.nasa.gov/neo/rest/v1"),
		SBDBBaseURL:     envOrDefault("SBDB_BASE_URL", "https://ssd-api.jpl.nasa.gov/sbdb.api"),
		HorizonsBaseURL: envOrDefault("HORIZONS_BASE_URL", "https://ssd.jpl.nasa.gov/api/horizons.api"),
		FireballBaseURL: envOrDefault("FIREBALL_BASE_URL", "https://ssd-api.jpl.nasa.gov/fireball.api"),
		SocrataBaseURL:  envOrDefault("SOCRATA_BASE_URL", "https://data.nasa.gov/resource/gh4g-9sfh.json"),
		SocrataAppToken: os.Getenv("SOCRATA_APP_TOKEN"),
		APITimeout:      apiTimeout,

		WindowStart: windowStart,
		WindowStop:  windowStop,
		ChunkDays:   envIntOrDefault("CHUNK_DAYS", 7),

		MOIDThresholdAU:   threshold,
		DensityKgM3:       density,
		TargetDensityKgM3: targetDensity,

		BatchSize:       envIntOrDefault("BATCH_SIZE", 50),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		HazardCSVPath: envOrDefault("HAZARD_CSV_PATH", "data/hazard_assessments.csv"),
		KafkaEnabled:  os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:  splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:    envOrDefault("KAFKA_TOPIC", "neo-hazard-assessments"),

		SBDBEnabled:   os.Getenv("SBDB_ENABLED") != "false",
		SBDBCacheSize: envIntOrDefault("SBDB_CACHE_SIZE", 1000),

		FireballEnabled:     os.Getenv("FIREBALL_ENABLED") == "true",
		FireballLimit:       envIntOrDefault("FIREBALL_LIMIT", 100),
		FireballGeoJSONPath: envOrDefault("FIREBALL_GEOJSON_PATH", "data/fireball_events.geojson"),
		MeteoriteEnabled:    os.Getenv("METEORITE_ENABLED") == "true",
		MeteoriteLimit:      envIntOrDefault("METEORITE_LIMIT", 500),
		MeteoriteCSVPath:    envOrDefault("METEORITE_CSV_PATH", "data/meteorite_landings.csv"),
	}

	if cfg.NASAAPIKey == "" {
		return nil, errors.New("NASA_API_KEY must not be empty")
	}
	if cfg.WindowStop.Before(cfg.WindowStart) {
		return nil, errors.New("WINDOW_STOP must not precede WINDOW_START")
	}
	if cfg.ChunkDays < 1 || cfg.ChunkDays > 7 {
		return nil, errors.New("CHUNK_DAYS must be between 1 and 7 (NeoWs feed limit)")
	}
	if cfg.MOIDThresholdAU <= 0 {
		return nil, errors.New("MOID_THRESHOLD_AU must be positive")
	}
	if cfg.DensityKgM3 <= 0 || cfg.TargetDensityKgM3 <= 0 {
		return nil, errors.New("densities must be positive")
	}
	if cfg.BatchSize < 1 {
		return nil, errors.New("BATCH_SIZE must be at least 1")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.HazardCSVPath == "" {
		return nil, errors.New("HAZARD_CSV_PATH must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func envDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

// envDate parses a YYYY-MM-DD environment variable, truncating the fallback
// to midnight UTC when unset.
func envDate(key string, fallback time.Time) (time.Time, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback.Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q", key, s)
	}
	return t, nil
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
