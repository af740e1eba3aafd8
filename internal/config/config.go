package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the api process reads from its environment.
type Config struct {
	Port            string
	BaseURL         string
	ShutdownTimeout time.Duration
	LogLevel        string

	JWTSecret string
	TokenTTL  time.Duration

	LocationTickInterval      time.Duration
	BookingSweepInterval      time.Duration
	BookingConfirmProbability float64

	// SeedDemoData fills the store with generated users, routes and bookings at startup.
	SeedDemoData bool

	RedisURL string

	KafkaBrokers       []string
	KafkaLocationTopic string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSS3Bucket        string
	UploadDir          string
}

func defaults() Config {
	return Config{
		Port:                      "8080",
		BaseURL:                   "http://localhost:8080",
		ShutdownTimeout:           15 * time.Second,
		LogLevel:                  "info",
		TokenTTL:                  7 * 24 * time.Hour,
		LocationTickInterval:      30 * time.Second,
		BookingSweepInterval:      60 * time.Second,
		BookingConfirmProbability: 0.05,
		KafkaLocationTopic:        "driver-locations",
		UploadDir:                 "./uploads",
	}
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment. Every malformed value is
// reported, not only the first.
func FromEnv() (Config, error) {
	cfg := defaults()
	var errs []error

	setString(&cfg.Port, "PORT")
	setString(&cfg.BaseURL, "BASE_URL")
	setDuration(&cfg.ShutdownTimeout, "SHUTDOWN_TIMEOUT", &errs)
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	setDuration(&cfg.TokenTTL, "TOKEN_TTL", &errs)

	setDuration(&cfg.LocationTickInterval, "LOCATION_TICK_INTERVAL", &errs)
	setDuration(&cfg.BookingSweepInterval, "BOOKING_SWEEP_INTERVAL", &errs)
	setFloat(&cfg.BookingConfirmProbability, "BOOKING_CONFIRM_PROBABILITY", &errs)
	setBool(&cfg.SeedDemoData, "SEED_DEMO_DATA", &errs)

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	setString(&cfg.KafkaLocationTopic, "KAFKA_LOCATION_TOPIC")

	cfg.AWSRegion = strings.TrimSpace(os.Getenv("AWS_REGION"))
	cfg.AWSAccessKeyID = strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID"))
	cfg.AWSSecretAccessKey = strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY"))
	cfg.AWSS3Bucket = strings.TrimSpace(os.Getenv("AWS_S3_BUCKET"))
	setString(&cfg.UploadDir, "UPLOAD_DIR")

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be > 0"))
	}
	if cfg.LocationTickInterval <= 0 {
		errs = append(errs, errors.New("LOCATION_TICK_INTERVAL must be > 0"))
	}
	if cfg.BookingSweepInterval <= 0 {
		errs = append(errs, errors.New("BOOKING_SWEEP_INTERVAL must be > 0"))
	}
	if cfg.BookingConfirmProbability < 0 || cfg.BookingConfirmProbability > 1 {
		errs = append(errs, fmt.Errorf("BOOKING_CONFIRM_PROBABILITY must be within [0,1], got %v", cfg.BookingConfirmProbability))
	}

	return cfg, errors.Join(errs...)
}

// S3Enabled reports whether all the settings needed for S3 uploads are present.
func (c Config) S3Enabled() bool {
	return c.AWSRegion != "" && c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != "" && c.AWSS3Bucket != ""
}

func setDuration(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setFloat(target *float64, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = f
	}
}

func setBool(target *bool, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = b
	}
}

func setString(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
