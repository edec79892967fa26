package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/durga1023/ContactUsRepository/internal/captcha"
	"github.com/durga1023/ContactUsRepository/pkg/mail"
)

// Config represents the runtime configuration for the contact form service.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Captcha    CaptchaConfig    `mapstructure:"captcha"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Email      EmailConfig      `mapstructure:"email"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`

	// DSNSecretKey names a key inside the configured secret whose value is
	// used as the DSN, e.g. "CONNECTION_STRING". It overrides DSN when set.
	DSNSecretKey string `mapstructure:"dsn_secret_key"`

	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CaptchaConfig controls CAPTCHA verification.
type CaptchaConfig struct {
	VerifyURL  string        `mapstructure:"verify_url"`
	SiteKey    string        `mapstructure:"site_key"`
	SecretName string        `mapstructure:"secret_name"`
	SecretKey  string        `mapstructure:"secret_key"`
	MinScore   float64       `mapstructure:"min_score"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// VerifierConfig converts the section into the captcha package's config.
func (c CaptchaConfig) VerifierConfig() captcha.Config {
	return captcha.Config{
		VerifyURL:  c.VerifyURL,
		SecretName: c.SecretName,
		SecretKey:  c.SecretKey,
		MinScore:   c.MinScore,
		Timeout:    c.Timeout,
	}
}

// SecretsConfig selects the secret source implementation.
type SecretsConfig struct {
	// Provider is "static" or "aws".
	Provider string `mapstructure:"provider"`
	// Region is the AWS region used by the aws provider.
	Region string `mapstructure:"region"`
	// Values backs the static provider, keyed "name" or "name/KEY".
	Values map[string]string `mapstructure:"values"`
}

// RateLimitConfig bounds submissions per client address.
type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
	Redis       RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds Redis connection options for the shared rate limiter.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// EmailConfig captures outbound notification settings.
type EmailConfig struct {
	NotifyTo string     `mapstructure:"notify_to"`
	SMTP     SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig defines SMTP dialer settings for sending email.
type SMTPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SMTPSettings converts the section into the mail package's settings.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles the metrics endpoint.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("CONTACTFORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Secrets.Provider)) {
	case "", "static", "aws":
	default:
		return fmt.Errorf("config: unknown secrets provider %q", c.Secrets.Provider)
	}

	if c.Captcha.MinScore < 0 || c.Captcha.MinScore > 1 {
		return fmt.Errorf("config: captcha.min_score %v out of range [0,1]", c.Captcha.MinScore)
	}

	if c.RateLimit.MaxRequests < 0 {
		return errors.New("config: rate_limit.max_requests cannot be negative")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/contactform.sqlite")

	v.SetDefault("captcha.verify_url", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("captcha.secret_name", "contactformcredentials")
	v.SetDefault("captcha.secret_key", "SECRET_KEY")
	v.SetDefault("captcha.min_score", 0.5)
	v.SetDefault("captcha.timeout", "5s")

	v.SetDefault("secrets.provider", "static")
	v.SetDefault("secrets.region", "us-east-2")

	v.SetDefault("rate_limit.max_requests", 3)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.redis.enabled", false)
	v.SetDefault("rate_limit.redis.address", "127.0.0.1:6379")
	v.SetDefault("rate_limit.redis.timeout", "5s")

	v.SetDefault("email.smtp.enabled", false)
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.use_tls", true)
	v.SetDefault("email.smtp.timeout", "10s")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
