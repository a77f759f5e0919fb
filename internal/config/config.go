package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Store      StoreConfig      `mapstructure:"store"`
	Directus   DirectusConfig   `mapstructure:"directus"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Production ProductionConfig `mapstructure:"production"`
	Velocity   VelocityConfig   `mapstructure:"velocity"`
	Sitemap    SitemapConfig    `mapstructure:"sitemap"`
	Quality    QualityConfig    `mapstructure:"quality"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

// DSN returns the driver specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return c.Path
}

// StoreConfig selects the item store backend: "gorm" (local database) or "directus".
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
	Prefix    string `mapstructure:"prefix"`

	CacheControl string `mapstructure:"cache_control"`
}

type ProductionConfig struct {
	ChunkSize           int `mapstructure:"chunk_size"`
	MaxChunkSize        int `mapstructure:"max_chunk_size"`
	DefaultBackdateDays int `mapstructure:"default_backdate_days"`
	TestBatchSize       int `mapstructure:"test_batch_size"`
	MaxTestBatchSize    int `mapstructure:"max_test_batch_size"`
	MaxArticles         int `mapstructure:"max_articles"`
}

type VelocityConfig struct {
	Mode              string `mapstructure:"mode"`
	WeekendThrottle   bool   `mapstructure:"weekend_throttle"`
	JitterMinutes     int    `mapstructure:"jitter_minutes"`
	BusinessHoursOnly bool   `mapstructure:"business_hours_only"`
}

type SitemapConfig struct {
	DripRate     int  `mapstructure:"drip_rate"`
	HubDripLimit int  `mapstructure:"hub_drip_limit"`
	Publish      bool `mapstructure:"publish"`
}

type QualityConfig struct {
	NgramSize       int `mapstructure:"ngram_size"`
	Threshold       int `mapstructure:"threshold"`
	MaxScanArticles int `mapstructure:"max_scan_articles"`
}

// LogConfig controls log level, format and the optional rotating file.
// An empty File keeps logs on stdout only.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	FileOnly   bool   `mapstructure:"file_only"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("directus.url", "DIRECTUS_URL")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Directus.ResolveEnvVars()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/contentfactory.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "contentfactory")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.log_queries", false)

	v.SetDefault("store.driver", StoreDriverGorm)
	v.SetDefault("directus.token_env", "DIRECTUS_TOKEN")
	v.SetDefault("directus.timeout", 30*time.Second)

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.prefix", "sitemaps")
	v.SetDefault("storage.cache_control", "public, max-age=3600")

	v.SetDefault("production.chunk_size", 50)
	v.SetDefault("production.max_chunk_size", 100)
	v.SetDefault("production.default_backdate_days", 365)
	v.SetDefault("production.test_batch_size", 5)
	v.SetDefault("production.max_test_batch_size", 50)
	v.SetDefault("production.max_articles", 100000)

	v.SetDefault("velocity.mode", "STEADY")
	v.SetDefault("velocity.weekend_throttle", true)
	v.SetDefault("velocity.jitter_minutes", 15)
	v.SetDefault("velocity.business_hours_only", true)

	v.SetDefault("sitemap.drip_rate", 50)
	v.SetDefault("sitemap.hub_drip_limit", 10)
	v.SetDefault("sitemap.publish", false)

	v.SetDefault("quality.ngram_size", 7)
	v.SetDefault("quality.threshold", 3)
	v.SetDefault("quality.max_scan_articles", 500)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.file_only", false)
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)
}

// Validate checks cross-section settings.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverGorm:
	case StoreDriverDirectus:
		if err := c.Directus.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("store: unknown driver %q", c.Store.Driver)
	}
	if c.Production.ChunkSize <= 0 || c.Production.MaxChunkSize < c.Production.ChunkSize {
		return fmt.Errorf("production: chunk_size must be positive and not exceed max_chunk_size")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage: bucket is required when enabled")
	}
	return nil
}
