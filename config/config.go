package config

import (
	"log"
	"time"

	"github.com/spf13/viper"

	"autobook/models"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Appointment persistence. When USE_MEMORY_STORE is true the in-memory
	// repository is used and DATABASE_URL is ignored.
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	UseMemoryStore bool   `mapstructure:"USE_MEMORY_STORE"`

	// Redis configuration (reminder queue and statistics cache).
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Session lifecycle.
	SessionTimeoutMin int `mapstructure:"SESSION_TIMEOUT_MIN"`
	SweepIntervalMin  int `mapstructure:"SWEEP_INTERVAL_MIN"`

	// Booking window.
	BookingHorizonMonths int    `mapstructure:"BOOKING_HORIZON_MONTHS"`
	BusinessOpen         string `mapstructure:"BUSINESS_OPEN"`
	LastAppointment      string `mapstructure:"LAST_APPOINTMENT"`
	BusinessClose        string `mapstructure:"BUSINESS_CLOSE"`
	FallbackTime         string `mapstructure:"FALLBACK_TIME"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`
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
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("USE_MEMORY_STORE", true)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 1)
	viper.SetDefault("SESSION_TIMEOUT_MIN", 30)
	viper.SetDefault("SWEEP_INTERVAL_MIN", 5)
	viper.SetDefault("BOOKING_HORIZON_MONTHS", 3)
	viper.SetDefault("BUSINESS_OPEN", "08:00")
	viper.SetDefault("LAST_APPOINTMENT", "16:00")
	viper.SetDefault("BUSINESS_CLOSE", "17:00")
	viper.SetDefault("FALLBACK_TIME", "09:00")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)

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

// SessionTimeout returns the inactivity window after which a session expires.
func SessionTimeout() time.Duration {
	return time.Duration(AppConfig.SessionTimeoutMin) * time.Minute
}

// SweepInterval returns the cadence of the expiry sweeper.
func SweepInterval() time.Duration {
	return time.Duration(AppConfig.SweepIntervalMin) * time.Minute
}

// BusinessHours parses the configured day boundaries, falling back to the
// standard day on a malformed value.
func BusinessHours() models.BusinessHours {
	hours := models.DefaultBusinessHours()
	if m, err := models.ClockToMinutes(AppConfig.BusinessOpen); err == nil {
		hours.Start = m
	}
	if m, err := models.ClockToMinutes(AppConfig.LastAppointment); err == nil {
		hours.LastAppointmentStart = m
	}
	if m, err := models.ClockToMinutes(AppConfig.BusinessClose); err == nil {
		hours.ClosingTime = m
	}
	return hours
}
