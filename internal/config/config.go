package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/paulexconde/complyform/internal/pkg/validation"
	"github.com/paulexconde/complyform/pkg/fault"
)

type Config struct {
	App      App      `json:"app"`
	Database Database `json:"database"`
	Scorer   Scorer   `json:"scorer"`
}

type App struct {
	Env      string `json:"env" validate:"required,oneof=development staging production"`
	LogLevel string `json:"logLevel" validate:"oneof=debug info warn error"`
}

type Database struct {
	URL             string `json:"url" validate:"required"`
	MaxOpenConns    int    `json:"maxOpenConns" validate:"gte=1"`
	ConnMaxLifetime time.Duration
}

// Scorer tunes the batch scoring run.
type Scorer struct {
	Workers    int `json:"workers" validate:"gte=1,lte=64"`
	QueueSize  int `json:"queueSize" validate:"gte=1"`
	PageSize   int `json:"pageSize" validate:"gte=1,lte=1000"`
	Retries    int `json:"retries" validate:"gte=1"`
	RetryDelay time.Duration
}

// Load reads the env files and then the process environment. With no files
// given it reads `.env`, which may be absent. Files named explicitly must
// exist.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !os.IsNotExist(err) {
			return nil, fault.NewInternalError("failed to read env file", err)
		}
	}

	cfg := &Config{
		App: App{
			Env:      GetEnvString("APP_ENV", "development"),
			LogLevel: GetEnvString("LOG_LEVEL", "info"),
		},
		Database: Database{
			URL:             GetEnvString("DATABASE_URL", ""),
			MaxOpenConns:    GetEnvInt("DATABASE_MAX_OPEN_CONNS", 10),
			ConnMaxLifetime: time.Duration(GetEnvInt("DATABASE_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute,
		},
		Scorer: Scorer{
			Workers:    GetEnvInt("SCORER_WORKERS", 4),
			QueueSize:  GetEnvInt("SCORER_QUEUE_SIZE", 64),
			PageSize:   GetEnvInt("SCORER_PAGE_SIZE", 100),
			Retries:    GetEnvInt("SCORER_RETRIES", 3),
			RetryDelay: time.Duration(GetEnvInt("SCORER_RETRY_DELAY_MS", 500)) * time.Millisecond,
		},
	}

	if err := validation.ValidateStruct(cfg); err != nil {
		return nil, fault.NewInternalError(fmt.Sprintf("invalid configuration: %v", validation.FieldErrors(err)), fault.ErrInvalidConfig)
	}

	return cfg, nil
}

func GetEnvString(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

// GetEnvInt falls back to the default when the value is not an integer.
func GetEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
