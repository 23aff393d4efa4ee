package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all environment-driven settings.
type Config struct {
	Port          string
	Environment   string
	DataDir       string
	DBPath        string
	RegionsFile   string
	DefaultRegion string
	NominatimURL  string
	TickInterval  time.Duration
	EnableWatcher bool
}

// Region is one entry of the datasets manifest.
type Region struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	CSV   string `yaml:"csv"`
}

// Load reads configuration from environment and optional .env file.
func Load() Config {
	_ = godotenv.Load()

	tickSeconds := clampInt(getenvInt("TICK_SECONDS", 60), 1, 3600)

	return Config{
		Port:          getenv("PORT", "8080"),
		Environment:   getenv("ENVIRONMENT", "development"),
		DataDir:       getenv("DATA_DIR", "./data"),
		DBPath:        getenv("DB_PATH", "./data/foodbank-finder.db"),
		RegionsFile:   getenv("REGIONS_FILE", "./data/regions.yaml"),
		DefaultRegion: getenv("DEFAULT_REGION", "greater_manchester"),
		NominatimURL:  getenv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		TickInterval:  time.Duration(tickSeconds) * time.Second,
		EnableWatcher: getenvBool("ENABLE_WATCHER", true),
	}
}

// LoadRegions parses the YAML datasets manifest. A missing file falls
// back to the built-in two-region manifest.
func LoadRegions(path string) ([]Region, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultRegions(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read regions manifest: %w", err)
	}

	var manifest struct {
		Regions []Region `yaml:"regions"`
	}
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse regions manifest: %w", err)
	}
	if len(manifest.Regions) == 0 {
		return nil, fmt.Errorf("regions manifest %s lists no regions", path)
	}
	for _, r := range manifest.Regions {
		if r.ID == "" || r.CSV == "" {
			return nil, fmt.Errorf("regions manifest %s has an entry without id or csv", path)
		}
	}
	return manifest.Regions, nil
}

func defaultRegions() []Region {
	return []Region{
		{ID: "greater_manchester", Label: "Greater Manchester", CSV: "greater_manchester_foodbanks.csv"},
		{ID: "liverpool", Label: "Liverpool", CSV: "liverpool_foodbanks.csv"},
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
