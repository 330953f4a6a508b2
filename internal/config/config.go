package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Addr string

	// Controller connection
	ControllerURL      string
	ControllerAPIKey   string
	ControllerSite     string
	ControllerTimeout  time.Duration
	InsecureSkipVerify bool
	MockMode           bool

	// Vendor lookup
	LookupAPIKey  string
	LookupTimeout time.Duration
	OUIDBPath     string

	// Scene cache and workflow
	CacheTTL          time.Duration
	EnrichConcurrency int
	ConnectRetries    int

	// Persistence
	SnapshotDBPath string
	Persist        bool

	// Assets
	VisualCatalogPath string

	Debug bool
}

// Load parses command line flags and environment variables to populate
// Config. Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	cfg.Addr = getEnv("NETSCENE_ADDR", ":8080")
	cfg.ControllerURL = getEnv("NETSCENE_CONTROLLER_URL", "https://192.168.1.1")
	cfg.ControllerAPIKey = getEnv("NETSCENE_CONTROLLER_KEY", "")
	cfg.ControllerSite = getEnv("NETSCENE_SITE", "")
	cfg.ControllerTimeout = getEnvDuration("NETSCENE_CONTROLLER_TIMEOUT", 15*time.Second)
	cfg.InsecureSkipVerify = getEnvBool("NETSCENE_INSECURE", true)
	cfg.MockMode = getEnvBool("NETSCENE_MOCK", false)
	cfg.LookupAPIKey = getEnv("NETSCENE_LOOKUP_KEY", "")
	cfg.LookupTimeout = getEnvDuration("NETSCENE_LOOKUP_TIMEOUT", 5*time.Second)
	cfg.OUIDBPath = getEnv("NETSCENE_OUI_DB", defaultDataPath("oui.db"))
	cfg.CacheTTL = getEnvDuration("NETSCENE_CACHE_TTL", 60*time.Second)
	cfg.EnrichConcurrency = getEnvInt("NETSCENE_CONCURRENCY", 8)
	cfg.ConnectRetries = getEnvInt("NETSCENE_CONNECT_RETRIES", 3)
	cfg.SnapshotDBPath = getEnv("NETSCENE_DB", defaultDataPath("netscene.db"))
	cfg.Persist = getEnvBool("NETSCENE_PERSIST", true)
	cfg.VisualCatalogPath = getEnv("NETSCENE_VISUALS", "")

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.StringVar(&cfg.ControllerURL, "controller", cfg.ControllerURL, "Controller base URL")
	flag.StringVar(&cfg.ControllerAPIKey, "api-key", cfg.ControllerAPIKey, "Controller API key")
	flag.StringVar(&cfg.ControllerSite, "site", cfg.ControllerSite, "Controller site name or ID (empty for first)")
	flag.DurationVar(&cfg.ControllerTimeout, "controller-timeout", cfg.ControllerTimeout, "Controller request timeout")
	flag.BoolVar(&cfg.InsecureSkipVerify, "insecure", cfg.InsecureSkipVerify, "Skip TLS verification for the controller")
	flag.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "Run against a synthetic topology instead of a controller")
	flag.StringVar(&cfg.LookupAPIKey, "lookup-key", cfg.LookupAPIKey, "API key for the paid vendor lookup tier")
	flag.DurationVar(&cfg.LookupTimeout, "lookup-timeout", cfg.LookupTimeout, "Per-tier vendor lookup timeout")
	flag.StringVar(&cfg.OUIDBPath, "oui-db", cfg.OUIDBPath, "Path to the local OUI registry database")
	flag.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "Scene cache TTL")
	flag.IntVar(&cfg.EnrichConcurrency, "concurrency", cfg.EnrichConcurrency, "Concurrent device enrichment lookups")
	flag.IntVar(&cfg.ConnectRetries, "connect-retries", cfg.ConnectRetries, "Controller connect attempts before a run fails")
	flag.StringVar(&cfg.SnapshotDBPath, "db", cfg.SnapshotDBPath, "Path to the snapshot SQLite database")
	flag.BoolVar(&cfg.Persist, "persist", cfg.Persist, "Store completed runs in the snapshot database")
	flag.StringVar(&cfg.VisualCatalogPath, "visuals", cfg.VisualCatalogPath, "Path to a JSON visual catalog overlay (empty for builtin)")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")

	flag.Parse()

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// defaultDataPath places data files under ~/.netscene, falling back to the
// working directory when the home directory is unavailable.
func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: could not resolve home directory, using current dir: %v", err)
		return name
	}
	dir := filepath.Join(home, ".netscene")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Warning: could not create %s, using current dir: %v", dir, err)
		return name
	}
	return filepath.Join(dir, name)
}
