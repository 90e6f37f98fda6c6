package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	CompanyName       string `mapstructure:"COMPANY_NAME"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisContextDB int    `mapstructure:"REDIS_CONTEXT_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// MongoDB configuration.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Reference data (customers, facilities, technicians, availability).
	DataDir string `mapstructure:"DATA_DIR"`

	// Storage backends: "memory" keeps everything in-process.
	ContextStore      string `mapstructure:"CONTEXT_STORE"`
	ContextTTLMinutes int    `mapstructure:"CONTEXT_TTL_MINUTES"`
	WorkOrderStore    string `mapstructure:"WORK_ORDER_STORE"`

	// Booking policy.
	Timezone               string `mapstructure:"TIMEZONE"`
	NonWorkingDay          string `mapstructure:"NON_WORKING_DAY"`
	BookingEpochYear       int    `mapstructure:"BOOKING_EPOCH_YEAR"`
	BookingHorizonYears    int    `mapstructure:"BOOKING_HORIZON_YEARS"`
	DefaultDurationMinutes int    `mapstructure:"DEFAULT_DURATION_MINUTES"`

	// Side effects.
	CalendarDir    string `mapstructure:"CALENDAR_DIR"`
	NotifyMode     string `mapstructure:"NOTIFY_MODE"`
	NotifyProvider string `mapstructure:"NOTIFY_PROVIDER"`
	WebhookURL     string `mapstructure:"NOTIFY_WEBHOOK_URL"`
	WebhookToken   string `mapstructure:"NOTIFY_WEBHOOK_TOKEN"`
	ReminderLeadHr int    `mapstructure:"REMINDER_LEAD_HOURS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
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
	viper.SetDefault("APP_PORT", "8000")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("COMPANY_NAME", "Premium Facilities Management LLC")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CONTEXT_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)

	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "facilities")
	viper.SetDefault("DATA_DIR", "./data")

	viper.SetDefault("CONTEXT_STORE", "memory")
	viper.SetDefault("CONTEXT_TTL_MINUTES", 60)
	viper.SetDefault("WORK_ORDER_STORE", "memory")

	viper.SetDefault("TIMEZONE", "Asia/Dubai")
	viper.SetDefault("NON_WORKING_DAY", "Friday")
	viper.SetDefault("BOOKING_EPOCH_YEAR", 0)
	viper.SetDefault("BOOKING_HORIZON_YEARS", 1)
	viper.SetDefault("DEFAULT_DURATION_MINUTES", 120)

	viper.SetDefault("CALENDAR_DIR", "./data/calendar")
	viper.SetDefault("NOTIFY_MODE", "direct")
	viper.SetDefault("NOTIFY_PROVIDER", "log")
	viper.SetDefault("NOTIFY_WEBHOOK_URL", "")
	viper.SetDefault("NOTIFY_WEBHOOK_TOKEN", "")
	viper.SetDefault("REMINDER_LEAD_HOURS", 24)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown timezone %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

// Weekday parses NonWorkingDay ("Friday", "fri"), defaulting to Friday.
func (c Config) Weekday() time.Weekday {
	name := strings.ToLower(strings.TrimSpace(c.NonWorkingDay))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || (len(name) >= 3 && strings.HasPrefix(full, name)) {
			return d
		}
	}
	return time.Friday
}

// ContextTTL is how long an idle booking context survives.
func (c Config) ContextTTL() time.Duration {
	if c.ContextTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.ContextTTLMinutes) * time.Minute
}
