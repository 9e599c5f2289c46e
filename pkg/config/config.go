package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store backends selectable at startup.
const (
	StoreBackendFile       = "file"
	StoreBackendSecureFile = "securefile"
	StoreBackendRedis      = "redis"
	StoreBackendPostgres   = "postgres"
)

type Config struct {
	Env        string
	SchoolName string

	Backend    BackendConfig
	Store      StoreConfig
	UPI        UPIConfig
	Attendance AttendanceConfig
	Log        LogConfig
}

// BackendConfig locates the remote gateway.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StoreConfig selects and configures the session store backend.
type StoreConfig struct {
	Backend  string
	Dir      string
	Key      string
	Redis    RedisConfig
	Database DatabaseConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// UPIConfig carries the payee fields encoded into payment intents.
type UPIConfig struct {
	PayeeAddress string
	PayeeName    string
	Purpose      string
	Currency     string
}

// AttendanceConfig tunes the attendance marking window.
type AttendanceConfig struct {
	MaxPastDays int
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.SchoolName = v.GetString("SCHOOL_NAME")

	cfg.Backend = BackendConfig{
		BaseURL: strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 15*time.Second),
	}

	cfg.Store = StoreConfig{
		Backend: v.GetString("STORE_BACKEND"),
		Dir:     v.GetString("STORE_DIR"),
		Key:     v.GetString("STORE_KEY"),
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
	}

	cfg.UPI = UPIConfig{
		PayeeAddress: v.GetString("UPI_PAYEE_ADDRESS"),
		PayeeName:    v.GetString("UPI_PAYEE_NAME"),
		Purpose:      v.GetString("UPI_PURPOSE"),
		Currency:     v.GetString("UPI_CURRENCY"),
	}

	cfg.Attendance = AttendanceConfig{
		MaxPastDays: v.GetInt("ATTENDANCE_MAX_PAST_DAYS"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("SCHOOL_NAME", "Sapient Heights")

	v.SetDefault("BACKEND_URL", "http://localhost:8000")
	v.SetDefault("BACKEND_TIMEOUT", "15s")

	v.SetDefault("STORE_BACKEND", StoreBackendFile)
	v.SetDefault("STORE_DIR", "./.schoolapp")
	v.SetDefault("STORE_KEY", "")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_mobile")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("UPI_PAYEE_ADDRESS", "sapientheightsintern.99982219@hdfcbank")
	v.SetDefault("UPI_PAYEE_NAME", "Sapient Heights School")
	v.SetDefault("UPI_PURPOSE", "Fee Payment")
	v.SetDefault("UPI_CURRENCY", "INR")

	v.SetDefault("ATTENDANCE_MAX_PAST_DAYS", 2)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
