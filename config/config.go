package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Client-facing rate limiting.
	RateLimitWindowSec int `mapstructure:"RATE_LIMIT_WINDOW_SEC"`
	RateLimitMax       int `mapstructure:"RATE_LIMIT_MAX"`

	// Conversation policy.
	LockThreshold   int    `mapstructure:"LOCK_THRESHOLD"`
	LockMarker      string `mapstructure:"LOCK_MARKER"`
	PolicyBlocklist string `mapstructure:"POLICY_BLOCKLIST"`
	SessionTTLMin   int    `mapstructure:"SESSION_TTL_MIN"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB       int    `mapstructure:"REDIS_SESSION_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// MongoDB (user profiles).
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Elasticsearch (appointments + knowledge vectors).
	ESAddr             string `mapstructure:"ES_ADDR"`
	ESUsername         string `mapstructure:"ES_USERNAME"`
	ESPassword         string `mapstructure:"ES_PASSWORD"`
	ESAppointmentIndex string `mapstructure:"ES_APPOINTMENT_INDEX"`
	ESKnowledgeIndex   string `mapstructure:"ES_KNOWLEDGE_INDEX"`

	// Gemini.
	GeminiAPIKey     string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel      string `mapstructure:"GEMINI_MODEL"`
	GeminiEmbedModel string `mapstructure:"GEMINI_EMBED_MODEL"`
	GeminiRPM        int    `mapstructure:"GEMINI_RPM"`

	// Google Calendar.
	GoogleCalendarID string `mapstructure:"GOOGLE_CALENDAR_ID"`
	GoogleCredsFile  string `mapstructure:"GOOGLE_CREDS_FILE"`
	ClinicTimezone   string `mapstructure:"CLINIC_TIMEZONE"`

	// Reminders.
	ReminderLeadHours int `mapstructure:"REMINDER_LEAD_HOURS"`
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

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("RATE_LIMIT_WINDOW_SEC", 60)
	viper.SetDefault("RATE_LIMIT_MAX", 10)
	viper.SetDefault("LOCK_THRESHOLD", 3)
	viper.SetDefault("LOCK_MARKER", "[LOCKED]")
	viper.SetDefault("POLICY_BLOCKLIST", "medical records,prescription,other patients,patient list,credit card")
	viper.SetDefault("SESSION_TTL_MIN", 60)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("ES_ADDR", "http://localhost:9200")
	viper.SetDefault("ES_APPOINTMENT_INDEX", "clinic-appointments")
	viper.SetDefault("ES_KNOWLEDGE_INDEX", "clinic-knowledge")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("GEMINI_EMBED_MODEL", "text-embedding-004")
	viper.SetDefault("GEMINI_RPM", 60)
	viper.SetDefault("GOOGLE_CALENDAR_ID", "primary")
	viper.SetDefault("CLINIC_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("REMINDER_LEAD_HOURS", 24)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
