// Package config loads application configuration from file and environment
// and owns global logger setup.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Scrapers  ScrapersConfig  `yaml:"scrapers" mapstructure:"scrapers"`
	Keys      KeysConfig      `yaml:"keys" mapstructure:"keys"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ScrapersConfig configures the scraper subprocesses.
type ScrapersConfig struct {
	WebSearch        ScraperConfig `yaml:"websearch" mapstructure:"websearch"`
	Pronet           ScraperConfig `yaml:"pronet" mapstructure:"pronet"`
	MapSearch        ScraperConfig `yaml:"mapsearch" mapstructure:"mapsearch"`
	ArtifactDir      string        `yaml:"artifact_dir" mapstructure:"artifact_dir"`
	GraceSecs        int           `yaml:"grace_secs" mapstructure:"grace_secs"`
	PauseSecs        int           `yaml:"pause_secs" mapstructure:"pause_secs"`
	MapSearchWorkers int           `yaml:"mapsearch_workers" mapstructure:"mapsearch_workers"`
}

// ScraperConfig locates one scraper executable.
type ScraperConfig struct {
	Command string   `yaml:"command" mapstructure:"command"`
	Args    []string `yaml:"args" mapstructure:"args"`
}

// KeysConfig holds the per-source scraper credentials.
type KeysConfig struct {
	SearchAPIKey string `yaml:"search_api_key" mapstructure:"search_api_key"`
	MapsAPIKey   string `yaml:"maps_api_key" mapstructure:"maps_api_key"`
}

// Map returns credentials keyed the way run options carry them.
func (k KeysConfig) Map() map[string]string {
	return map[string]string{
		"search_api_key": k.SearchAPIKey,
		"maps_api_key":   k.MapsAPIKey,
	}
}

// ExportConfig configures the exporter defaults.
type ExportConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
}

// StoreConfig configures the run-ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// NotionConfig holds the optional Notion delivery settings.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// AnthropicConfig holds the optional query-expansion settings.
type AnthropicConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// GracePeriod returns the scraper interruption grace as a duration.
func (s ScrapersConfig) GracePeriod() time.Duration {
	return time.Duration(s.GraceSecs) * time.Second
}

// InterSourcePause returns the combined-mode pause as a duration.
func (s ScrapersConfig) InterSourcePause() time.Duration {
	return time.Duration(s.PauseSecs) * time.Second
}

// Scraper returns the subprocess config for one source.
func (s ScrapersConfig) Scraper(src model.Source) ScraperConfig {
	switch src {
	case model.SourceWebSearch:
		return s.WebSearch
	case model.SourcePronet:
		return s.Pronet
	case model.SourceMapSearch:
		return s.MapSearch
	}
	return ScraperConfig{}
}

// Validate checks cross-field constraints that viper cannot express.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required for the postgres driver")
	}
	if (c.Notion.Token == "") != (c.Notion.LeadDB == "") {
		problems = append(problems, "notion.token and notion.lead_db must be set together")
	}
	if c.Scrapers.GraceSecs <= 0 {
		problems = append(problems, "scrapers.grace_secs must be > 0")
	}
	if c.Scrapers.PauseSecs < 0 {
		problems = append(problems, "scrapers.pause_secs must be >= 0")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADHARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("scrapers.websearch.command", "scrapers/websearch")
	v.SetDefault("scrapers.pronet.command", "scrapers/pronet")
	v.SetDefault("scrapers.mapsearch.command", "scrapers/mapsearch")
	v.SetDefault("scrapers.artifact_dir", ".leadharvest/autosave")
	v.SetDefault("scrapers.grace_secs", 9)
	v.SetDefault("scrapers.pause_secs", 5)
	v.SetDefault("scrapers.mapsearch_workers", 0)
	v.SetDefault("export.format", "xlsx")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", ".leadharvest/runs.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
