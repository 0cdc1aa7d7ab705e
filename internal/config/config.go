package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"resumechat/internal/retrieval"
)

// Index backend types.
const (
	IndexMemory   = "memory"
	IndexPostgres = "postgres"
	IndexSQLite   = "sqlite"
)

// DefaultDSNEnv is the environment variable read for the Postgres DSN.
const DefaultDSNEnv = "RESUMECHAT_PG_DSN"

// PostgresConfig holds connection details for the Postgres index.
type PostgresConfig struct {
	DSN    string `yaml:"dsn"`
	DSNEnv string `yaml:"dsn_env"`
}

// ResolveDSN returns the literal DSN, or the value of DSNEnv when it is empty.
func (c PostgresConfig) ResolveDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return os.Getenv(c.DSNEnv)
}

// SQLiteConfig locates the SQLite index file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// IndexConfig selects and configures the search index backend.
type IndexConfig struct {
	Type     string         `yaml:"type"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// IngestConfig locates the résumé inputs.
type IngestConfig struct {
	ResumePath  string `yaml:"resume_path"`
	ProfilePath string `yaml:"profile_path"`
	OnStart     bool   `yaml:"on_start"`
}

// RetrievalConfig tunes tiered retrieval.
type RetrievalConfig struct {
	Limit            int     `yaml:"limit"`
	PrimaryThreshold float64 `yaml:"primary_threshold"`
	FuzzyThreshold   float64 `yaml:"fuzzy_threshold"`
	SalvageThreshold float64 `yaml:"salvage_threshold"`
}

// Thresholds converts the config to engine cut-offs.
func (c RetrievalConfig) Thresholds() retrieval.Thresholds {
	return retrieval.Thresholds{
		Primary: c.PrimaryThreshold,
		Fuzzy:   c.FuzzyThreshold,
		Salvage: c.SalvageThreshold,
	}
}

// ExpanderConfig adds query aliases on top of the built-in table.
type ExpanderConfig struct {
	Aliases map[string]string `yaml:"aliases,omitempty"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Index     IndexConfig     `yaml:"index"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Expander  ExpanderConfig  `yaml:"expander"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// Validate reports settings no component can run with.
func (c *AppConfig) Validate() error {
	switch c.Index.Type {
	case IndexMemory, IndexSQLite:
	case IndexPostgres:
		if c.Index.Postgres.ResolveDSN() == "" {
			return fmt.Errorf("index.postgres: no dsn and %s is unset", c.Index.Postgres.DSNEnv)
		}
	default:
		return fmt.Errorf("index.type: unknown backend %q", c.Index.Type)
	}
	if c.Index.Type == IndexMemory && !c.Ingest.OnStart {
		return errors.New("ingest.on_start must be true for the memory index")
	}
	return nil
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/resumechat/config.yaml.
// If neither exists, it writes defaults to ~/.config/resumechat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "resumechat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Index: IndexConfig{
			Type:     IndexMemory,
			Postgres: PostgresConfig{DSNEnv: DefaultDSNEnv},
		},
		Ingest: IngestConfig{
			ResumePath:  "data/resume.txt",
			ProfilePath: "data/profile.json",
			OnStart:     true,
		},
		Retrieval: RetrievalConfig{
			Limit:            retrieval.DefaultLimit,
			PrimaryThreshold: retrieval.DefaultPrimaryThreshold,
			FuzzyThreshold:   retrieval.DefaultFuzzyThreshold,
			SalvageThreshold: retrieval.DefaultSalvageThreshold,
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	cfg.Index.Type = strings.ToLower(strings.TrimSpace(cfg.Index.Type))
	if cfg.Index.Type == "" {
		cfg.Index.Type = IndexMemory
	}
	if cfg.Index.Postgres.DSNEnv == "" {
		cfg.Index.Postgres.DSNEnv = DefaultDSNEnv
	}
	if cfg.Ingest.ResumePath == "" {
		cfg.Ingest.ResumePath = "data/resume.txt"
	}
	if cfg.Ingest.ProfilePath == "" {
		cfg.Ingest.ProfilePath = "data/profile.json"
	}
	if cfg.Retrieval.Limit <= 0 {
		cfg.Retrieval.Limit = retrieval.DefaultLimit
	}
	if cfg.Retrieval.PrimaryThreshold <= 0 {
		cfg.Retrieval.PrimaryThreshold = retrieval.DefaultPrimaryThreshold
	}
	if cfg.Retrieval.FuzzyThreshold <= 0 {
		cfg.Retrieval.FuzzyThreshold = retrieval.DefaultFuzzyThreshold
	}
	if cfg.Retrieval.SalvageThreshold <= 0 {
		cfg.Retrieval.SalvageThreshold = retrieval.DefaultSalvageThreshold
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
