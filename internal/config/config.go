package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "10s" or "24h" parse
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the application configuration, loaded from a per-environment
// YAML file and overridable by environment variables.
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	JWT struct {
		Secret   string   `yaml:"secret"`
		Issuer   string   `yaml:"issuer"`
		TokenTTL Duration `yaml:"token_ttl"`
	} `yaml:"jwt"`

	Moderation struct {
		// OpenAI-compatible moderation endpoint; classifier runs in
		// degraded pattern-only mode when APIKey is empty.
		APIBase string   `yaml:"api_base"`
		APIKey  string   `yaml:"api_key"`
		Timeout Duration `yaml:"timeout"`
		// Blocklist file for the profanity filter (one term per line)
		BlocklistPath string `yaml:"blocklist_path"`
	} `yaml:"moderation"`

	RateLimit struct {
		RequestsPerMinute int `yaml:"requests_per_minute"`
		CommentsPerDay    int `yaml:"comments_per_day"`
		OTPPerHour        int `yaml:"otp_per_hour"`
		RecsPerWeek       int `yaml:"recs_per_week"`
	} `yaml:"rate_limit"`
}

// Load reads the YAML config at path and applies env var overrides
func Load(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		// Missing file is fine: env vars + defaults only
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.Server.Port = 8080
	cfg.Server.Env = "local"
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 3306
	cfg.Database.Name = "civicvoice"
	cfg.Redis.Host = "127.0.0.1"
	cfg.Redis.Port = 6379
	cfg.Redis.PoolSize = 10
	cfg.JWT.Issuer = "civicvoice-backend"
	cfg.JWT.TokenTTL = Duration(24 * time.Hour)
	cfg.Moderation.APIBase = "https://api.openai.com/v1"
	cfg.Moderation.Timeout = Duration(10 * time.Second)
	cfg.RateLimit.RequestsPerMinute = 120
	cfg.RateLimit.CommentsPerDay = 10
	cfg.RateLimit.OTPPerHour = 5
	cfg.RateLimit.RecsPerWeek = 5
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Env, "APP_ENV")
	setInt(&cfg.Server.Port, "PORT")
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Moderation.APIBase, "MODERATION_API_BASE")
	setString(&cfg.Moderation.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Moderation.BlocklistPath, "PROFANITY_BLOCKLIST")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// DSN builds the MySQL connection string through the driver's own
// config type, so credentials with special characters stay valid
func (c *Config) DSN() string {
	mc := mysqldriver.NewConfig()
	mc.User = c.Database.User
	mc.Passwd = c.Database.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
	mc.DBName = c.Database.Name
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}
