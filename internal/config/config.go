package config

import (
	"strings"

	"multinvest-backend/internal/application/projection"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string // postgres://, mysql://, sqlite:// or a sqlite file path
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	SendinblueAPIKey    string // SENDINBLUE_API_KEY for welcome/notification emails (Brevo)
	MailFrom            string // MAIL_FROM sender email (default noreply@multinvest.com)
	AdminEmail          string
	AdminPassword       string
	FuturePolicy        projection.FuturePolicy
	LogLevel            string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_URL", "sqlite://multinvest.db")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("MAIL_FROM", "noreply@multinvest.com")
	v.SetDefault("LOG_LEVEL", "info")

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	policy, err := projection.ParseFuturePolicy(v.GetString("PROJECTION_FUTURE_POLICY"))
	if err != nil {
		return nil, err
	}
	port := v.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := v.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}
	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       v.GetString("SESSION_SECRET"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   v.GetBool("ALLOW_CROSS_SITE_DEV"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		SendinblueAPIKey:    v.GetString("SENDINBLUE_API_KEY"),
		MailFrom:            v.GetString("MAIL_FROM"),
		AdminEmail:          v.GetString("ADMIN_EMAIL"),
		AdminPassword:       v.GetString("ADMIN_PASSWORD"),
		FuturePolicy:        policy,
		LogLevel:            v.GetString("LOG_LEVEL"),
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
