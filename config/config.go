package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBackendMemory = "memory"
	StoreBackendMySQL  = "mysql"
)

type Config struct {
	App      AppConfig
	HTTP     ServerConfig
	Store    StoreConfig
	MySQL    MySQLConfig
	Log      LogConfig
	Razorpay RazorpayConfig
	Plans    []PlanConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type StoreConfig struct {
	Backend string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Simulate      bool
}

type PlanConfig struct {
	Type          string
	DisplayName   string
	QuestionCount int
	Price         int64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "orders-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", StoreBackendMemory),
		},
		MySQL: MySQLConfig{
			DSN:             getEnv("MYSQL_DSN", ""),
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Razorpay: RazorpayConfig{
			KeyID:         getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
			WebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
			Simulate:      getBoolEnv("RAZORPAY_SIMULATE", false),
		},
		Plans: []PlanConfig{
			{
				Type:          "basic",
				DisplayName:   getEnv("PLAN_BASIC_DISPLAY_NAME", "Basic"),
				QuestionCount: getIntEnv("PLAN_BASIC_QUESTION_COUNT", 25),
				Price:         int64(getIntEnv("PLAN_BASIC_PRICE", 99)),
			},
			{
				Type:          "standard",
				DisplayName:   getEnv("PLAN_STANDARD_DISPLAY_NAME", "Standard"),
				QuestionCount: getIntEnv("PLAN_STANDARD_QUESTION_COUNT", 100),
				Price:         int64(getIntEnv("PLAN_STANDARD_PRICE", 299)),
			},
			{
				Type:          "premium",
				DisplayName:   getEnv("PLAN_PREMIUM_DISPLAY_NAME", "Premium"),
				QuestionCount: getIntEnv("PLAN_PREMIUM_QUESTION_COUNT", 250),
				Price:         int64(getIntEnv("PLAN_PREMIUM_PRICE", 499)),
			},
		},
	}

	if cfg.Store.Backend != StoreBackendMemory && cfg.Store.Backend != StoreBackendMySQL {
		return nil, errors.New("STORE_BACKEND must be memory or mysql")
	}
	if cfg.Store.Backend == StoreBackendMySQL && cfg.MySQL.DSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required for the mysql store backend")
	}
	if cfg.Razorpay.KeySecret == "" {
		return nil, errors.New("RAZORPAY_KEY_SECRET environment variable is required")
	}
	if cfg.Razorpay.WebhookSecret == "" {
		return nil, errors.New("RAZORPAY_WEBHOOK_SECRET environment variable is required")
	}
	if !cfg.Razorpay.Simulate && cfg.Razorpay.KeyID == "" {
		return nil, errors.New("RAZORPAY_KEY_ID environment variable is required unless RAZORPAY_SIMULATE is set")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
