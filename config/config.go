package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	AppBaseURL        string `mapstructure:"APP_BASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	// TrustedProxies are the CIDRs or addresses allowed to set X-Forwarded-For.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Session tokens.
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTTTLHours int    `mapstructure:"JWT_TTL_HOURS"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB     int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB      int    `mapstructure:"REDIS_AUTH_DB"`
	RedisAssistantDB int    `mapstructure:"REDIS_ASSISTANT_DB"`
	RedisQueueDB     int    `mapstructure:"REDIS_QUEUE_DB"`

	// Firebase.
	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseBucket          string `mapstructure:"FIREBASE_BUCKET"`
	FirestoreEnabled        bool   `mapstructure:"FIRESTORE_ENABLED"`

	// Image storage: "cloudinary" or "firebase".
	StorageBackend      string `mapstructure:"STORAGE_BACKEND"`
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	// Stripe.
	StripeSecretKey           string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret       string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripePremiumPriceID      string `mapstructure:"STRIPE_PREMIUM_PRICE_ID"`
	StripeVerificationPriceID string `mapstructure:"STRIPE_VERIFICATION_PRICE_ID"`

	// Assistant.
	GeminiAPIKey  string `mapstructure:"GEMINI_API_KEY"`
	SpeechEnabled bool   `mapstructure:"SPEECH_ENABLED"`

	// Admin API key, stored as a bcrypt hash.
	AdminKeyHash string `mapstructure:"ADMIN_KEY_HASH"`

	// Free tier limits.
	FreeSwapProposalsPerMonth int `mapstructure:"FREE_SWAP_PROPOSALS_PER_MONTH"`
	FreeActiveListings        int `mapstructure:"FREE_ACTIVE_LISTINGS"`
	SubscriptionGraceDays     int `mapstructure:"SUBSCRIPTION_GRACE_DAYS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_BASE_URL", "http://localhost:3000")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("TRUSTED_PROXIES", "")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "servswap")
	viper.SetDefault("JWT_TTL_HOURS", 72)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_ASSISTANT_DB", 2)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("FIREBASE_CREDENTIALS_PATH", "config/firebase-service-account.json")
	viper.SetDefault("FIRESTORE_ENABLED", false)
	viper.SetDefault("STORAGE_BACKEND", "cloudinary")
	viper.SetDefault("SPEECH_ENABLED", false)
	viper.SetDefault("FREE_SWAP_PROPOSALS_PER_MONTH", 3)
	viper.SetDefault("FREE_ACTIVE_LISTINGS", 3)
	viper.SetDefault("SUBSCRIPTION_GRACE_DAYS", 7)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
