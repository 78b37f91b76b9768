package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	OIDC     OIDCConfig
	Admin    AdminConfig
	Company  CompanyConfig
	Logger   LoggerConfig
	SMS      SMSConfig
	SMTP     SMTPConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port        string
	Mode        string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Driver string
	URL    string
	Debug  bool
}

type AuthConfig struct {
	JWTSecret     string
	JWTExpiration time.Duration
	Issuer        string
}

type OIDCConfig struct {
	ProviderURL  string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

func (o OIDCConfig) Enabled() bool {
	return o.ProviderURL != "" && o.ClientID != "" && o.ClientSecret != "" && o.RedirectURI != ""
}

type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

type CompanyConfig struct {
	Name          string
	PublicBaseURL string
}

type LoggerConfig struct {
	Level      string
	Mode       string
	FileEnable bool
	Filename   string
}

type SMSConfig struct {
	Username    string
	APIKey      string
	SenderID    string
	BaseURL     string
	CountryCode string
}

func (s SMSConfig) Enabled() bool {
	return s.Username != "" && s.APIKey != ""
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type JobsConfig struct {
	Location       string
	QuarterlyCron  string
	ReminderCron   string
	NotifyWorkers  int
	SnowflakeNode  int64
	DisableCronJob bool
}

// TimeLocation resolves TIMEZONE, falling back to UTC when it is empty.
func (j JobsConfig) TimeLocation() (*time.Location, error) {
	if j.Location == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(j.Location)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid TIMEZONE %q", j.Location)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "host=localhost user=purifier password=purifier dbname=purifier port=5432 sslmode=disable")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("JWT_ISSUER", "waterpurifier-api")
	v.SetDefault("ADMIN_NAME", "Administrator")
	v.SetDefault("COMPANY_NAME", "Water Purifier Services")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("LOG_FILE", "logs/waterpurifier.log")
	v.SetDefault("AFRICASTALKING_BASE_URL", "https://api.sandbox.africastalking.com/version1/messaging")
	v.SetDefault("AFRICASTALKING_COUNTRY_CODE", "+91")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("TIMEZONE", "Asia/Kolkata")
	v.SetDefault("QUARTERLY_CRON", "0 30 1 * * *")
	v.SetDefault("REMINDER_CRON", "0 0 18 * * *")
	v.SetDefault("NOTIFY_WORKERS", 8)
	v.SetDefault("SNOWFLAKE_NODE", 1)
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetString("PORT"),
			Mode:        v.GetString("GIN_MODE"),
			CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			URL:    v.GetString("DATABASE_URL"),
			Debug:  v.GetBool("DATABASE_DEBUG"),
		},
		Auth: AuthConfig{
			JWTSecret:     v.GetString("JWT_SECRET"),
			JWTExpiration: time.Duration(v.GetInt("JWT_EXPIRATION_HOURS")) * time.Hour,
			Issuer:        v.GetString("JWT_ISSUER"),
		},
		OIDC: OIDCConfig{
			ProviderURL:  v.GetString("OIDC_PROVIDER_URL"),
			ClientID:     v.GetString("OIDC_CLIENT_ID"),
			ClientSecret: v.GetString("OIDC_CLIENT_SECRET"),
			RedirectURI:  v.GetString("OIDC_REDIRECT_URI"),
		},
		Admin: AdminConfig{
			Name:     v.GetString("ADMIN_NAME"),
			Email:    strings.ToLower(strings.TrimSpace(v.GetString("ADMIN_EMAIL"))),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
		Company: CompanyConfig{
			Name:          v.GetString("COMPANY_NAME"),
			PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		},
		Logger: LoggerConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Mode:       v.GetString("LOG_MODE"),
			FileEnable: v.GetBool("LOG_FILE_ENABLE"),
			Filename:   v.GetString("LOG_FILE"),
		},
		SMS: SMSConfig{
			Username:    v.GetString("AFRICASTALKING_USERNAME"),
			APIKey:      v.GetString("AFRICASTALKING_API_KEY"),
			SenderID:    v.GetString("AFRICASTALKING_SENDER_ID"),
			BaseURL:     v.GetString("AFRICASTALKING_BASE_URL"),
			CountryCode: v.GetString("AFRICASTALKING_COUNTRY_CODE"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Jobs: JobsConfig{
			Location:       v.GetString("TIMEZONE"),
			QuarterlyCron:  v.GetString("QUARTERLY_CRON"),
			ReminderCron:   v.GetString("REMINDER_CRON"),
			NotifyWorkers:  v.GetInt("NOTIFY_WORKERS"),
			SnowflakeNode:  v.GetInt64("SNOWFLAKE_NODE"),
			DisableCronJob: v.GetBool("DISABLE_CRON"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Server.Mode == "release" && c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in release mode")
	}
	if c.Auth.JWTExpiration <= 0 {
		return errors.New("JWT_EXPIRATION_HOURS must be positive")
	}
	if c.Jobs.NotifyWorkers <= 0 {
		c.Jobs.NotifyWorkers = 1
	}
	if _, err := c.Jobs.TimeLocation(); err != nil {
		return err
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
