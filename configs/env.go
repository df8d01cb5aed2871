package configs

import (
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port        string
	AppURL      string
	LogLevel    string
	JWTSecret   string
	DBDriver    string
	DatabaseURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PublicURL string
	S3AccessKey string
	S3SecretKey string

	RazorpayKeyID     string
	RazorpayKeySecret string

	StoreBackend  string
	MongoURI      string
	MongoDatabase string
	RedisURL      string
	RabbitMQURL   string

	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
}

// Load reads .env when present and builds the config from the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using process environment")
	}

	return Config{
		Port:        env("PORT", "3000"),
		AppURL:      env("APP_URL", "http://localhost:3000"),
		LogLevel:    env("LOG_LEVEL", "info"),
		JWTSecret:   env("JWT_SECRET", ""),
		DBDriver:    env("DB_DRIVER", "sqlite"),
		DatabaseURL: env("DATABASE_URL", "./storefront.db"),

		SMTPHost:     env("SMTP_HOST", ""),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPUser:     env("SMTP_USER", ""),
		SMTPPassword: env("SMTP_PASSWORD", ""),
		MailFrom:     env("MAIL_FROM", "no-reply@storefront.local"),

		S3Bucket:    env("S3_BUCKET", ""),
		S3Region:    env("S3_REGION", "us-east-1"),
		S3Endpoint:  env("S3_ENDPOINT", ""),
		S3PublicURL: env("S3_PUBLIC_URL", ""),
		S3AccessKey: env("S3_ACCESS_KEY", ""),
		S3SecretKey: env("S3_SECRET_KEY", ""),

		RazorpayKeyID:     env("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: env("RAZORPAY_KEY_SECRET", ""),

		StoreBackend:  env("STORE_BACKEND", "memory"),
		MongoURI:      env("MONGOURI", ""),
		MongoDatabase: env("MONGO_DATABASE", "storefront"),
		RedisURL:      env("REDIS_URL", ""),
		RabbitMQURL:   env("RABBITMQ_URL", ""),

		DeliveryFee:           envDecimal("DELIVERY_FEE", "15"),
		FreeDeliveryThreshold: envDecimal("FREE_DELIVERY_THRESHOLD", "150"),
	}
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDecimal(key, fallback string) decimal.Decimal {
	d, err := decimal.NewFromString(env(key, fallback))
	if err != nil {
		log.Warnw("invalid decimal setting, using default", "key", key, "default", fallback)
		return decimal.RequireFromString(fallback)
	}
	return d
}
