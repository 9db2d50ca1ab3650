package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/georoute/importer"
	"github.com/hupe1980/georoute/profile"
	"github.com/hupe1980/georoute/resource"
	"github.com/hupe1980/georoute/routedb"
)

// Config is the YAML configuration of the command line tool.
type Config struct {
	Databases []DatabaseConfig    `yaml:"databases"`
	Profile   profile.Config      `yaml:"profile"`
	Cache     routedb.FilesConfig `yaml:"cache"`
	Resources ResourceConfig      `yaml:"resources"`
	Matcher   MatcherConfig       `yaml:"matcher"`
	Log       LogConfig           `yaml:"log"`
	Output    OutputConfig        `yaml:"output"`
	Importer  importer.Parameter  `yaml:"importer"`
}

// DatabaseConfig registers one database directory.
type DatabaseConfig struct {
	Path string `yaml:"path"`
	MMap bool   `yaml:"mmap"`
}

// ResourceConfig mirrors resource.Config.
type ResourceConfig struct {
	MemoryLimitBytes     int64 `yaml:"memory_limit_bytes"`
	MaxConcurrentMatches int64 `yaml:"max_concurrent_matches"`
	ScanBytesPerSec      int64 `yaml:"scan_bytes_per_sec"`
}

// MatcherConfig configures cross-database matching.
type MatcherConfig struct {
	CellCache bool `yaml:"cell_cache"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OutputConfig selects the output codec.
type OutputConfig struct {
	Codec  string `yaml:"codec"`
	Indent string `yaml:"indent"`
}

var errNoDatabases = errors.New("config: no databases")

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		Profile:  profile.DefaultConfig(),
		Cache:    routedb.DefaultFilesConfig(),
		Log:      LogConfig{Level: "warn", Format: "text"},
		Output:   OutputConfig{Codec: "go-json", Indent: "  "},
		Importer: importer.DefaultParameter(),
	}
}

// LoadConfig reads path over the defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration before any database is opened.
func (c Config) Validate() error {
	if len(c.Databases) == 0 {
		return errNoDatabases
	}
	for i, db := range c.Databases {
		if db.Path == "" {
			return fmt.Errorf("config: database %d: empty path", i)
		}
	}
	if _, err := profile.New(c.Profile); err != nil {
		return fmt.Errorf("config: profile: %w", err)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return c.Importer.Validate()
}

// RouterDatabases returns the configured databases in registry order.
func (c Config) RouterDatabases() []routedb.Database {
	out := make([]routedb.Database, len(c.Databases))
	for i, db := range c.Databases {
		out[i] = routedb.Database{Path: db.Path, RouterDataMMap: db.MMap}
	}
	return out
}

// ResourceController returns nil when no limit is configured.
func (c Config) ResourceController() *resource.Controller {
	if c.Resources == (ResourceConfig{}) {
		return nil
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:     c.Resources.MemoryLimitBytes,
		MaxConcurrentMatches: c.Resources.MaxConcurrentMatches,
		ScanBytesPerSec:      c.Resources.ScanBytesPerSec,
	})
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelWarn, nil
	}
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", s, err)
	}
	return l, nil
}
