package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Cron    CronConfig    `mapstructure:"cron"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Import  ImportConfig  `mapstructure:"import"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	FeedRefresh     string `mapstructure:"feed_refresh"`
	KnownIDRefresh  string `mapstructure:"known_id_refresh"`
	SnapshotCleanup string `mapstructure:"snapshot_cleanup"`
}

type FeedConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Regions    string        `mapstructure:"regions"`
	Markets    string        `mapstructure:"markets"`
	OddsFormat string        `mapstructure:"odds_format"`
}

type CatalogConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Token         string        `mapstructure:"token"`
	Timeout       time.Duration `mapstructure:"timeout"`
	KnownIDsLimit int           `mapstructure:"known_ids_limit"`
}

type ImportConfig struct {
	SnapshotRetention time.Duration `mapstructure:"snapshot_retention"`
	HistoryPageLimit  int           `mapstructure:"history_page_limit"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.feed_refresh", "@every 5m")
	v.SetDefault("cron.known_id_refresh", "@every 2m")
	v.SetDefault("cron.snapshot_cleanup", "@every 6h")
	v.SetDefault("feed.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("feed.timeout", "15s")
	v.SetDefault("feed.regions", "us")
	v.SetDefault("feed.markets", "h2h,spreads,totals")
	v.SetDefault("feed.odds_format", "decimal")
	v.SetDefault("catalog.timeout", "10s")
	v.SetDefault("catalog.known_ids_limit", 500)
	v.SetDefault("import.snapshot_retention", "168h")
	v.SetDefault("import.history_page_limit", 50)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
