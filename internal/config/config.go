package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all the configuration for the application.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Google       GoogleConfig       `mapstructure:"google"`
	App          AppConfig          `mapstructure:"app"`
	Verification VerificationConfig `mapstructure:"verification"`
	Mail         MailConfig         `mapstructure:"mail"`
	SMTP         SMTPConfig         `mapstructure:"smtp"`
	SES          SESConfig          `mapstructure:"ses"`
	Resend       ResendConfig       `mapstructure:"resend"`
	Gmail        GmailConfig        `mapstructure:"gmail"`
	Storage      StorageConfig      `mapstructure:"storage"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Env         string   `mapstructure:"env"`
	CORSOrigins []string `mapstructure:"corsorigins"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the Redis configuration.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// AuthConfig configures bearer token issuance.
type AuthConfig struct {
	SecretKey                string `mapstructure:"secretkey"`
	Algorithm                string `mapstructure:"algorithm"`
	AccessTokenExpireMinutes int    `mapstructure:"accesstokenexpireminutes"`
}

// AccessTokenTTL returns the configured token lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpireMinutes) * time.Minute
}

type GoogleConfig struct {
	ClientID string `mapstructure:"clientid"`
}

type AppConfig struct {
	FrontendURL string `mapstructure:"frontendurl"`
}

// VerificationConfig holds the lifetimes of one-time codes and links.
type VerificationConfig struct {
	OTPTTLMinutes int           `mapstructure:"otpttlminutes"`
	ReplayWindow  time.Duration `mapstructure:"replaywindow"`
}

func (v VerificationConfig) OTPTTL() time.Duration {
	return time.Duration(v.OTPTTLMinutes) * time.Minute
}

// MailConfig selects the outbound provider and the queue worker settings.
type MailConfig struct {
	Provider    string `mapstructure:"provider"` // smtp | ses | resend | gmail | log
	From        string `mapstructure:"from"`
	SupportFrom string `mapstructure:"supportfrom"`
	ContactTo   string `mapstructure:"contactto"`
	Workers     int    `mapstructure:"workers"`
	MaxRetries  uint64 `mapstructure:"maxretries"`
	// TemplateDir overrides the embedded email templates; empty uses the embedded set.
	TemplateDir string `mapstructure:"templatedir"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type SESConfig struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"accesskeyid"`
	SecretAccessKey string `mapstructure:"secretaccesskey"`
}

type ResendConfig struct {
	APIKey string `mapstructure:"apikey"`
}

type GmailConfig struct {
	ClientID     string `mapstructure:"clientid"`
	ClientSecret string `mapstructure:"clientsecret"`
	RefreshToken string `mapstructure:"refreshtoken"`
}

// StorageConfig points at the S3-compatible bucket that hosts uploaded images.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accesskey"`
	SecretKey string `mapstructure:"secretkey"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"usessl"`
	PublicURL string `mapstructure:"publicurl"`
	MaxWidth  int    `mapstructure:"maxwidth"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requestsperminute"`
	Burst             int `mapstructure:"burst"`
}

var bindings = map[string]string{
	"server.port":                   "SERVER_PORT",
	"server.env":                    "SERVER_ENV",
	"server.corsorigins":            "SERVER_CORS_ORIGINS",
	"database.url":                  "DATABASE_URL",
	"redis.url":                     "REDIS_URL",
	"auth.secretkey":                "AUTH_SECRET_KEY",
	"auth.algorithm":                "AUTH_ALGORITHM",
	"auth.accesstokenexpireminutes": "AUTH_ACCESS_TOKEN_EXPIRE_MINUTES",
	"google.clientid":               "GOOGLE_CLIENT_ID",
	"app.frontendurl":               "APP_FRONTEND_URL",
	"verification.otpttlminutes":    "VERIFICATION_OTP_TTL_MINUTES",
	"verification.replaywindow":     "VERIFICATION_REPLAY_WINDOW",
	"mail.provider":                 "MAIL_PROVIDER",
	"mail.from":                     "MAIL_FROM",
	"mail.supportfrom":              "MAIL_SUPPORT_FROM",
	"mail.contactto":                "MAIL_CONTACT_TO",
	"mail.workers":                  "MAIL_WORKERS",
	"mail.maxretries":               "MAIL_MAX_RETRIES",
	"mail.templatedir":              "MAIL_TEMPLATE_DIR",
	"smtp.host":                     "SMTP_HOST",
	"smtp.port":                     "SMTP_PORT",
	"smtp.username":                 "SMTP_USERNAME",
	"smtp.password":                 "SMTP_PASSWORD",
	"ses.region":                    "SES_REGION",
	"ses.accesskeyid":               "SES_ACCESS_KEY_ID",
	"ses.secretaccesskey":           "SES_SECRET_ACCESS_KEY",
	"resend.apikey":                 "RESEND_API_KEY",
	"gmail.clientid":                "GMAIL_CLIENT_ID",
	"gmail.clientsecret":            "GMAIL_CLIENT_SECRET",
	"gmail.refreshtoken":            "GMAIL_REFRESH_TOKEN",
	"storage.endpoint":              "STORAGE_ENDPOINT",
	"storage.accesskey":             "STORAGE_ACCESS_KEY",
	"storage.secretkey":             "STORAGE_SECRET_KEY",
	"storage.bucket":                "STORAGE_BUCKET",
	"storage.usessl":                "STORAGE_USE_SSL",
	"storage.publicurl":             "STORAGE_PUBLIC_URL",
	"storage.maxwidth":              "STORAGE_MAX_WIDTH",
	"ratelimit.requestsperminute":   "RATE_LIMIT_REQUESTS_PER_MINUTE",
	"ratelimit.burst":               "RATE_LIMIT_BURST",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.corsorigins", []string{"http://localhost:5173"})
	v.SetDefault("auth.algorithm", "HS256")
	v.SetDefault("auth.accesstokenexpireminutes", 60)
	v.SetDefault("app.frontendurl", "http://localhost:5173")
	v.SetDefault("verification.otpttlminutes", 15)
	v.SetDefault("verification.replaywindow", 24*time.Hour)
	v.SetDefault("mail.provider", "log")
	v.SetDefault("mail.from", "no-reply@localhost")
	v.SetDefault("mail.supportfrom", "support@localhost")
	v.SetDefault("mail.contactto", "contact@localhost")
	v.SetDefault("mail.workers", 2)
	v.SetDefault("mail.maxretries", 5)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("ses.region", "us-east-1")
	v.SetDefault("storage.bucket", "portfolio")
	v.SetDefault("storage.maxwidth", 1920)
	v.SetDefault("ratelimit.requestsperminute", 30)
	v.SetDefault("ratelimit.burst", 10)
}

// Load reads configuration from the process environment and an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ godotenv could not load .env: %v", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		log.Printf("ℹ️ Using config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// Comma separated origins arrive as one element from the environment.
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first missing or unsupported setting.
func (c *Config) Validate() error {
	switch {
	case c.Database.URL == "":
		return errors.New("DATABASE_URL is required")
	case c.Redis.URL == "":
		return errors.New("REDIS_URL is required")
	case c.Auth.SecretKey == "":
		return errors.New("AUTH_SECRET_KEY is required")
	case c.Auth.AccessTokenExpireMinutes <= 0:
		return errors.New("AUTH_ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported AUTH_ALGORITHM %q", c.Auth.Algorithm)
	}
	switch c.Mail.Provider {
	case "smtp", "ses", "resend", "gmail", "log":
	default:
		return fmt.Errorf("unsupported MAIL_PROVIDER %q", c.Mail.Provider)
	}
	if c.Mail.Workers < 1 {
		return errors.New("MAIL_WORKERS must be at least 1")
	}
	return nil
}

// IsProduction reports whether the server runs with SERVER_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
