package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Database DatabaseConfig
	Pricing  PricingConfig
	Payment  PaymentConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	OrderEvents   string
	PaymentEvents string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type PricingConfig struct {
	VATRate decimal.Decimal
}

type PaymentConfig struct {
	PayOSBaseURL       string
	PayOSClientID      string
	PayOSAPIKey        string
	PayOSChecksumKey   string
	ReturnURL          string
	CancelURL          string
	LinkExpiry         time.Duration
	DescriptionPattern string
}

type AuthConfig struct {
	JWTSecret string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "order_user"),
			Password:     getEnv("DB_PASSWORD", "order_pass"),
			Database:     getEnv("DB_NAME", "orders"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", true),
			Topics: TopicConfig{
				OrderEvents:   getEnv("KAFKA_TOPIC_ORDER_EVENTS", "order-events"),
				PaymentEvents: getEnv("KAFKA_TOPIC_PAYMENT_EVENTS", "payment-events"),
			},
		},
		Pricing: PricingConfig{
			VATRate: getEnvDecimal("PRICING_VAT_RATE", "0.10"),
		},
		Payment: PaymentConfig{
			PayOSBaseURL:       getEnv("PAYOS_BASE_URL", "https://api-merchant.payos.vn"),
			PayOSClientID:      getEnv("PAYOS_CLIENT_ID", ""),
			PayOSAPIKey:        getEnv("PAYOS_API_KEY", ""),
			PayOSChecksumKey:   getEnv("PAYOS_CHECKSUM_KEY", ""),
			ReturnURL:          getEnv("PAYMENT_RETURN_URL", "http://localhost:3000/payment/success"),
			CancelURL:          getEnv("PAYMENT_CANCEL_URL", "http://localhost:3000/payment/cancel"),
			LinkExpiry:         time.Duration(getEnvInt("PAYMENT_LINK_EXPIRY_MINUTES", 15)) * time.Minute,
			DescriptionPattern: getEnv("PAYMENT_DESCRIPTION_PATTERN", `Order[ #]*(\d+)`),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if parsed, err := decimal.NewFromString(value); err == nil {
			return parsed
		}
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}
