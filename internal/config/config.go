package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/local.yaml"

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Minio    MinioConfig    `yaml:"minio"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
	Admin    AdminConfig    `yaml:"admin"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Secrets  SecretsConfig  `yaml:"secrets"`
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"min=1,max=65535"`
}

type DatabaseConfig struct {
	URL                string        `yaml:"url" validate:"required"`
	MaxConns           int           `yaml:"max_conns" validate:"min=0"`
	MinConns           int           `yaml:"min_conns" validate:"min=0"`
	MaxConnLifetimeRaw string        `yaml:"max_conn_lifetime"`
	MaxConnLifetime    time.Duration `yaml:"-"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"required"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"min=0"`
}

type MinioConfig struct {
	Endpoint         string        `yaml:"endpoint" validate:"required"`
	AccessKey        string        `yaml:"access_key" validate:"required"`
	SecretKey        string        `yaml:"secret_key" validate:"required"`
	UseSSL           bool          `yaml:"use_ssl"`
	Bucket           string        `yaml:"bucket" validate:"required"`
	PresignExpiryRaw string        `yaml:"presign_expiry"`
	PresignExpiry    time.Duration `yaml:"-"`
}

// WhatsAppConfig configures the Cloud API. AccessToken may be sealed ("enc:..."), in
// which case it is opened with the secrets master key at startup.
type WhatsAppConfig struct {
	APIBaseURL    string        `yaml:"api_base_url" validate:"required,url"`
	PhoneNumberID string        `yaml:"phone_number_id"`
	AccessToken   string        `yaml:"access_token"`
	AppSecret     string        `yaml:"app_secret"`
	VerifyToken   string        `yaml:"verify_token"`
	TimeoutRaw    string        `yaml:"timeout"`
	Timeout       time.Duration `yaml:"-"`
}

type AdminConfig struct {
	JWTSecret string `yaml:"jwt_secret" validate:"required,min=16"`
}

type JobsConfig struct {
	MorningNudgeCron string        `yaml:"morning_nudge_cron" validate:"required"`
	GhostSessionCron string        `yaml:"ghost_session_cron" validate:"required"`
	TickIntervalRaw  string        `yaml:"tick_interval"`
	TickInterval     time.Duration `yaml:"-"`
	GhostCooldownRaw string        `yaml:"ghost_cooldown"`
	GhostCooldown    time.Duration `yaml:"-"`
	TurnLockTTLRaw   string        `yaml:"turn_lock_ttl"`
	TurnLockTTL      time.Duration `yaml:"-"`
}

type SecretsConfig struct {
	MasterKey string `yaml:"master_key"` // base64, 32 bytes
}

// Load reads .env (if present), the YAML file at path (if present), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path resolves the config path from CONFIG_PATH, falling back to DefaultPath.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

func (c *Config) applyEnv() {
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")
	setString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Minio.Bucket, "MINIO_BUCKET")
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		c.Minio.UseSSL = v == "true"
	}
	setString(&c.WhatsApp.PhoneNumberID, "WHATSAPP_PHONE_NUMBER_ID")
	setString(&c.WhatsApp.AccessToken, "WHATSAPP_TOKEN")
	setString(&c.WhatsApp.AppSecret, "WHATSAPP_APP_SECRET")
	setString(&c.WhatsApp.VerifyToken, "WHATSAPP_VERIFY_TOKEN")
	setString(&c.Admin.JWTSecret, "JWT_SECRET")
	setString(&c.Secrets.MasterKey, "SECRETS_MASTER_KEY")
	setInt(&c.Server.Port, "PORT")
}

func (c *Config) validateAndNormalize() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Minio.Bucket == "" {
		c.Minio.Bucket = "pointeuse"
	}
	if c.WhatsApp.APIBaseURL == "" {
		c.WhatsApp.APIBaseURL = "https://graph.facebook.com/v20.0"
	}
	if c.Jobs.MorningNudgeCron == "" {
		c.Jobs.MorningNudgeCron = "*/30 * * * *"
	}
	if c.Jobs.GhostSessionCron == "" {
		c.Jobs.GhostSessionCron = "0 * * * *"
	}

	durations := []struct {
		name string
		raw  string
		def  time.Duration
		dst  *time.Duration
	}{
		{"database.max_conn_lifetime", c.Database.MaxConnLifetimeRaw, 0, &c.Database.MaxConnLifetime},
		{"minio.presign_expiry", c.Minio.PresignExpiryRaw, 24 * time.Hour, &c.Minio.PresignExpiry},
		{"whatsapp.timeout", c.WhatsApp.TimeoutRaw, 15 * time.Second, &c.WhatsApp.Timeout},
		{"jobs.tick_interval", c.Jobs.TickIntervalRaw, time.Minute, &c.Jobs.TickInterval},
		{"jobs.ghost_cooldown", c.Jobs.GhostCooldownRaw, 24 * time.Hour, &c.Jobs.GhostCooldown},
		{"jobs.turn_lock_ttl", c.Jobs.TurnLockTTLRaw, 30 * time.Second, &c.Jobs.TurnLockTTL},
	}
	for _, d := range durations {
		v, err := parseDurationDefault(d.raw, d.def)
		if err != nil {
			return fmt.Errorf("config: %s: %w", d.name, err)
		}
		*d.dst = v
	}

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func parseDurationDefault(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	return time.ParseDuration(raw)
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
