package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	ServerPort string
	GinMode    string

	DBDriver string
	DBDSN    string

	JWTSecret string

	RedisURL         string
	BroadcastChannel string

	DefaultDeliveryCharge decimal.Decimal
	GuestCheckoutAllowed  bool
	Currency              string

	PaymentPollAttempts int
	PaymentPollDelay    time.Duration
	PaymentReturnURL    string
	PaymentCancelURL    string
	PayPalBaseURL       string

	AllowedOrigins []string
}

func Load() *Config {
	// .env bersifat opsional
	_ = godotenv.Load()

	return &Config{
		ServerPort:            getEnv("PORT", "8080"),
		GinMode:               getEnv("GIN_MODE", "debug"),
		DBDriver:              getEnv("DB_DRIVER", "mysql"),
		DBDSN:                 getEnv("DB_DSN", "root:@tcp(127.0.0.1:3306)/restaurant_pos?charset=utf8mb4&parseTime=True&loc=Local"),
		JWTSecret:             getEnv("JWT_SECRET", "TestSecretKeyAUTH1945"),
		RedisURL:              getEnv("REDIS_URL", ""),
		BroadcastChannel:      getEnv("BROADCAST_CHANNEL", "orders"),
		DefaultDeliveryCharge: getEnvAsDecimal("DEFAULT_DELIVERY_CHARGE", decimal.Zero),
		GuestCheckoutAllowed:  getEnvAsBool("GUEST_CHECKOUT_ALLOWED", false),
		Currency:              getEnv("CURRENCY", "USD"),
		PaymentPollAttempts:   getEnvAsInt("PAYMENT_POLL_ATTEMPTS", 5),
		PaymentPollDelay:      getEnvAsDuration("PAYMENT_POLL_DELAY", 3*time.Second),
		PaymentReturnURL:      getEnv("PAYMENT_RETURN_URL", "http://localhost:8080/orders/{order_id}/payment/capture"),
		PaymentCancelURL:      getEnv("PAYMENT_CANCEL_URL", "http://localhost:8080/orders/{order_id}/payment/cancel"),
		PayPalBaseURL:         getEnv("PAYPAL_BASE_URL", ""),
		AllowedOrigins:        getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
