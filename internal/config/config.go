package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultAdminEmails is the operator allow-list used when ADMIN_EMAILS is not set.
var DefaultAdminEmails = []string{
	"tharcisionardoto@gmail.com",
	"nardotoengenharia@gmail.com",
}

// Config holds all configuration for the application.
type Config struct {
	Port                             string        `mapstructure:"PORT"`
	GinMode                          string        `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string        `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string        `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string        `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	ClientURL                        string        `mapstructure:"CLIENT_URL"`
	AdminEmailsRaw                   string        `mapstructure:"ADMIN_EMAILS"`
	RedisAddr                        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword                    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB                          int           `mapstructure:"REDIS_DB"`
	SessionTTL                       time.Duration `mapstructure:"SESSION_TTL"`
	AMQPURL                          string        `mapstructure:"AMQP_URL"`
	AMQPExchange                     string        `mapstructure:"AMQP_EXCHANGE"`
	PendingDedup                     bool          `mapstructure:"PENDING_DEDUP"`
}

// AdminEmails returns the operator allow-list. Entries keep their case,
// the gate compares them case-sensitively.
func (c *Config) AdminEmails() []string {
	if strings.TrimSpace(c.AdminEmailsRaw) == "" {
		return append([]string(nil), DefaultAdminEmails...)
	}
	var emails []string
	for _, e := range strings.Split(c.AdminEmailsRaw, ",") {
		if e = strings.TrimSpace(e); e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("AMQP_EXCHANGE", "license.events")
	v.SetDefault("PENDING_DEDUP", false)

	for _, key := range []string{
		"PORT",
		"GIN_MODE",
		"FIREBASE_PROJECT_ID",
		"GOOGLE_APPLICATION_CREDENTIALS",
		"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
		"CLIENT_URL",
		"ADMIN_EMAILS",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"SESSION_TTL",
		"AMQP_URL",
		"AMQP_EXCHANGE",
		"PENDING_DEDUP",
	} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if len(cfg.AdminEmails()) == 0 {
		return nil, errors.New("ADMIN_EMAILS must contain at least one address")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("SESSION_TTL must be a positive duration")
	}

	return &cfg, nil
}
