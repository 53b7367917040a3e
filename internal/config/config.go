// Package config resolves settings from defaults, todo.toml, .env, TODO_*
// environment variables and root flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/idilsaglam/todolist/internal/store"
	"github.com/idilsaglam/todolist/internal/store/jsonstore"
	"github.com/idilsaglam/todolist/internal/store/sqlitestore"
)

const (
	DefaultConfigFile  = "todo.toml"
	DefaultEnvFile     = ".env"
	DefaultStore       = StoreJSON
	DefaultSeedURL     = "https://jsonplaceholder.typicode.com/todos?_limit=10"
	DefaultSeedTimeout = 10 * time.Second
	DefaultTheme       = "classic"
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
)

// Store backends.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

var ErrUnknownStore = errors.New("unknown store")

type Config struct {
	Store      string `toml:"store"`
	DataFile   string `toml:"data_file"`
	StorageKey string `toml:"storage_key"`

	// SeedURL is fetched when nothing is persisted yet. Empty starts empty.
	SeedURL string `toml:"seed_url"`
	// SeedTimeout bounds the seed fetch, written as "10s" in TOML.
	SeedTimeout time.Duration `toml:"seed_timeout"`

	Theme     string `toml:"theme"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

func setDefaults(cfg *Config) {
	cfg.Store = DefaultStore
	cfg.StorageKey = store.DefaultKey
	cfg.SeedURL = DefaultSeedURL
	cfg.SeedTimeout = DefaultSeedTimeout
	cfg.Theme = DefaultTheme
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// Load parses the root flags in args and resolves the configuration. It
// stops at the first non-flag argument and returns the rest (the
// subcommand and its arguments).
func Load(args []string) (*Config, []string, error) {
	fs := pflag.NewFlagSet("todo", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.Usage = func() {}

	configFile := fs.String("config", "", "path to a TOML config file (default ./todo.toml if present)")
	envFile := fs.String("env-file", DefaultEnvFile, "dotenv file read before TODO_* variables")
	storeFlag := fs.String("store", "", "storage backend: json, sqlite or memory")
	dataFile := fs.String("data-file", "", "file used by the json and sqlite stores")
	storageKey := fs.String("storage-key", "", "key the list is persisted under")
	seedURL := fs.String("seed-url", "", "URL fetched when nothing is persisted (\"\" disables)")
	seedTimeout := fs.Duration("seed-timeout", 0, "time limit for the seed fetch, e.g. 5s")
	theme := fs.String("theme", "", "output theme: classic, neon or mono")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	logFormat := fs.String("log-format", "", "text, json or logfmt")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parsing flags: %w", err)
	}

	cfg := &Config{}
	setDefaults(cfg)

	path := *configFile
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if *envFile != "" {
		if _, err := os.Stat(*envFile); err == nil {
			// existing environment wins over the file
			if err := godotenv.Load(*envFile); err != nil {
				return nil, nil, fmt.Errorf("loading env file %s: %w", *envFile, err)
			}
		}
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, nil, err
	}

	// flags override everything, even when set to ""
	overrides := []struct {
		name string
		dst  *string
		val  string
	}{
		{"store", &cfg.Store, *storeFlag},
		{"data-file", &cfg.DataFile, *dataFile},
		{"storage-key", &cfg.StorageKey, *storageKey},
		{"seed-url", &cfg.SeedURL, *seedURL},
		{"theme", &cfg.Theme, *theme},
		{"log-level", &cfg.LogLevel, *logLevel},
		{"log-format", &cfg.LogFormat, *logFormat},
	}
	for _, o := range overrides {
		if fs.Changed(o.name) {
			*o.dst = o.val
		}
	}
	if fs.Changed("seed-timeout") {
		cfg.SeedTimeout = *seedTimeout
	}

	if err := finalize(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, fs.Args(), nil
}

func loadFromEnv(cfg *Config) error {
	strs := map[string]*string{
		"TODO_STORE":       &cfg.Store,
		"TODO_DATA_FILE":   &cfg.DataFile,
		"TODO_STORAGE_KEY": &cfg.StorageKey,
		"TODO_THEME":       &cfg.Theme,
		"TODO_LOG_LEVEL":   &cfg.LogLevel,
		"TODO_LOG_FORMAT":  &cfg.LogFormat,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	// an explicitly empty TODO_SEED_URL disables the fetch
	if v, ok := os.LookupEnv("TODO_SEED_URL"); ok {
		cfg.SeedURL = v
	}
	if v := os.Getenv("TODO_SEED_TIMEOUT"); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("TODO_SEED_TIMEOUT: %w", err)
		}
		cfg.SeedTimeout = d
	}
	return nil
}

// parseTimeout accepts a Go duration ("5s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func finalize(cfg *Config) error {
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	switch cfg.Store {
	case StoreJSON:
		if cfg.DataFile == "" {
			cfg.DataFile = jsonstore.DefaultFileName
		}
	case StoreSQLite:
		if cfg.DataFile == "" {
			cfg.DataFile = sqlitestore.DefaultFileName
		}
	case StoreMemory:
	default:
		return fmt.Errorf("%w %q (want json, sqlite or memory)", ErrUnknownStore, cfg.Store)
	}
	if strings.TrimSpace(cfg.StorageKey) == "" {
		cfg.StorageKey = store.DefaultKey
	}
	if cfg.SeedTimeout <= 0 {
		cfg.SeedTimeout = DefaultSeedTimeout
	}
	return nil
}
