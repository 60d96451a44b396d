package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Prefix is the environment variable prefix, e.g. CHEATSHEETS_MODE
const Prefix = "CHEATSHEETS"

// Catalog modes
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Config holds application configuration
type Config struct {
	// Mode selects local durable storage or the remote catalog API
	Mode string `envconfig:"MODE" default:"local"`

	// Remote catalog API
	APIURL      string        `envconfig:"API_URL" default:"http://localhost:8080/api"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	MaxRetries  uint64        `envconfig:"MAX_RETRIES" default:"3"`

	// Durable store
	DataDir     string `envconfig:"DATA_DIR"`
	Storage     string `envconfig:"STORAGE" default:"file"`
	SQLitePath  string `envconfig:"SQLITE_PATH"`
	RedisURL    string `envconfig:"REDIS_URL"`
	RedisPrefix string `envconfig:"REDIS_PREFIX" default:"cheatsheets"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`

	// Reference API server
	ListenAddr  string        `envconfig:"LISTEN_ADDR" default:":8080"`
	JWTSecret   string        `envconfig:"JWT_SECRET" default:"change-me"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
}

// GetDefaultDataPath returns the default directory for local catalog data
func GetDefaultDataPath() string {
	currentUser, err := user.Current()
	if err != nil {
		return "./data"
	}

	// Use .config/cheatsheets directory for all platforms
	return filepath.Join(currentUser.HomeDir, ".config", "cheatsheets")
}

// Load reads an optional .env file and then the CHEATSHEETS_ environment
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return New()
}

// New parses the environment into a Config and validates it
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("mode", cfg.Mode).
		Str("api_url", cfg.APIURL).
		Str("storage", cfg.Storage).
		Str("data_dir", cfg.DataDir).
		Dur("http_timeout", cfg.HTTPTimeout).
		Uint64("max_retries", cfg.MaxRetries).
		Msg("Configuration loaded")

	return &cfg, nil
}

// ResolveDefaults fills derived paths and checks enumerated fields
func (c *Config) ResolveDefaults() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	switch c.Mode {
	case ModeLocal, ModeRemote:
	default:
		return fmt.Errorf("unsupported MODE: %s", c.Mode)
	}

	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case "file", "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unsupported STORAGE: %s", c.Storage)
	}
	if c.Storage == "redis" && c.RedisURL == "" {
		return fmt.Errorf("STORAGE=redis requires REDIS_URL")
	}

	if c.DataDir == "" {
		c.DataDir = GetDefaultDataPath()
	}
	if c.SQLitePath == "" {
		c.SQLitePath = filepath.Join(c.DataDir, "cheatsheets.db")
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	return nil
}

// EnsureDataDir creates the data directory if it does not exist
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}

// NewForTesting returns a local, in-memory configuration
func NewForTesting() *Config {
	return &Config{
		Mode:        ModeLocal,
		APIURL:      "http://localhost:8080/api",
		HTTPTimeout: 5 * time.Second,
		MaxRetries:  0,
		DataDir:     os.TempDir(),
		Storage:     "memory",
		RedisPrefix: "cheatsheets-test",
		LogLevel:    "debug",
		ListenAddr:  "127.0.0.1:0",
		JWTSecret:   "test-secret",
		TokenTTL:    time.Hour,
	}
}
