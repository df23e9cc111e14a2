package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Driver string
		URL    string
	}
	Server struct {
		Port int
	}
	Sitemap struct {
		BaseURL        string
		OutputDir      string
		ShardCount     int
		ShardSource    string
		URLsPerSitemap int
		BatchSize      int
		Interval       string
	}
	Log struct {
		Level string
		Dir   string
	}
}

const (
	ShardSourceStatic   = "static"
	ShardSourceDatabase = "database"
)

func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("sitemap.baseurl", "https://mycompanydirectory.net")
	v.SetDefault("sitemap.outputdir", "public")
	v.SetDefault("sitemap.shardcount", 52)
	v.SetDefault("sitemap.shardsource", ShardSourceStatic)
	v.SetDefault("sitemap.urlspersitemap", 50000)
	v.SetDefault("sitemap.batchsize", 10000)
	v.SetDefault("sitemap.interval", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "logs")
}

// LoadConfig reads configuration into v from defaults, an optional YAML file,
// a .env file and the environment (SITEMAP_BASEURL for sitemap.baseurl).
// When cfgFile is empty, config.yaml is looked up in . and ./config and may
// be absent.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Sitemap.BaseURL == "" {
		return errors.New("sitemap.baseurl must not be empty")
	}
	if c.Sitemap.OutputDir == "" {
		return errors.New("sitemap.outputdir must not be empty")
	}
	if c.Sitemap.ShardCount < 0 {
		return fmt.Errorf("sitemap.shardcount must not be negative, got %d", c.Sitemap.ShardCount)
	}
	switch c.Sitemap.ShardSource {
	case ShardSourceStatic, ShardSourceDatabase:
	default:
		return fmt.Errorf("sitemap.shardsource must be %q or %q, got %q",
			ShardSourceStatic, ShardSourceDatabase, c.Sitemap.ShardSource)
	}
	return nil
}

// HasDatabase reports whether a database connection is configured.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

func (c *Config) GetRegenerateInterval() time.Duration {
	duration, err := time.ParseDuration(c.Sitemap.Interval)
	if err != nil || duration <= 0 {
		return 24 * time.Hour
	}
	return duration
}
