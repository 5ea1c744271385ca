package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress  string        `mapstructure:"SERVER_ADDRESS"`
	PostgresConn   string        `mapstructure:"POSTGRES_CONN"`
	MigrationURL   string        `mapstructure:"MIGRATION_URL"`
	StorageDriver  string        `mapstructure:"STORAGE_DRIVER"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	ApprovalLevels          int `mapstructure:"APPROVAL_LEVELS"`
	ApprovalChangeReasonMin int `mapstructure:"APPROVAL_CHANGE_REASON_MIN"`
	ApprovalCommentMax      int `mapstructure:"APPROVAL_COMMENT_MAX"`

	NotifyTimeout   time.Duration `mapstructure:"NOTIFY_TIMEOUT"`
	SendGridAPIKey  string        `mapstructure:"SENDGRID_API_KEY"`
	MailFromAddress string        `mapstructure:"MAIL_FROM_ADDRESS"`
	MailFromName    string        `mapstructure:"MAIL_FROM_NAME"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":             "0.0.0.0:8080",
	"POSTGRES_CONN":              "",
	"MIGRATION_URL":              "file://migrations",
	"STORAGE_DRIVER":             StorageDriverPostgres,
	"LOG_LEVEL":                  "info",
	"REQUEST_TIMEOUT":            "5s",
	"APPROVAL_LEVELS":            3,
	"APPROVAL_CHANGE_REASON_MIN": 10,
	"APPROVAL_COMMENT_MAX":       2000,
	"NOTIFY_TIMEOUT":             "10s",
	"SENDGRID_API_KEY":           "",
	"MAIL_FROM_ADDRESS":          "noreply@tenders.local",
	"MAIL_FROM_NAME":             "Tender Evaluation",
}

// LoadConfig загружает конфигурацию из файла app.env в каталоге path.
// Переменные окружения переопределяют значения из файла; отсутствие файла не является ошибкой.
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}
	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	err = cfg.Validate()
	return
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.PostgresConn == "" {
			return errors.New("POSTGRES_CONN is required for the postgres storage driver")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q, expected %s or %s", c.StorageDriver, StorageDriverPostgres, StorageDriverMemory)
	}
	if c.ApprovalLevels < 1 || c.ApprovalLevels > 10 {
		return fmt.Errorf("APPROVAL_LEVELS must be between 1 and 10, got %d", c.ApprovalLevels)
	}
	if c.ApprovalChangeReasonMin < 0 {
		return fmt.Errorf("APPROVAL_CHANGE_REASON_MIN must not be negative, got %d", c.ApprovalChangeReasonMin)
	}
	if c.ApprovalCommentMax < 1 {
		return fmt.Errorf("APPROVAL_COMMENT_MAX must be positive, got %d", c.ApprovalCommentMax)
	}
	if c.RequestTimeout <= 0 || c.NotifyTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT and NOTIFY_TIMEOUT must be positive durations")
	}
	return nil
}
