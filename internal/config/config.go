package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     int
	LogLevel string
	Env      string

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (optional, API rate limiting)
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// FCM push delivery
	FCMProjectID       string
	FCMCredentialsFile string

	// Email delivery
	EmailProvider string // "resend", "ses" or "log"
	EmailFrom     string
	ResendAPIURL  string
	ResendAPIKey  string
	AWSRegion     string

	// SMS delivery
	SMSProvider string // "sns" or "log"
	SNSRegion   string

	// Promotional dispatch pass
	PromoInterval        time.Duration
	PromoWindowStartHour int // local hour, inclusive
	PromoWindowEndHour   int // local hour, exclusive
	PromoTimezone        string
	PromoBatchSize       int
	PromoBatchPause      time.Duration
	PromoDailyCap        int
	PromoSendProbability float64

	// Booking confirmation worker
	BookingPollInterval time.Duration
	BookingBatchSize    int
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:     8080,
		LogLevel: "info",
		Env:      "development",

		// Local postgres defaults
		DBHost:     "localhost",
		DBPort:     5432,
		DBUser:     "orbit",
		DBPassword: "",
		DBName:     "orbit",
		DBSSLMode:  "disable",

		// Redis defaults
		RedisHost:     "localhost",
		RedisPort:     6379,
		RedisPassword: "",
		RedisDB:       0,

		EmailProvider: "log",
		EmailFrom:     "notifications@orbitlive.com",
		ResendAPIURL:  "https://api.resend.com/emails",

		SMSProvider: "log",
		AWSRegion:   "ap-south-1",

		PromoInterval:        10 * time.Minute,
		PromoWindowStartHour: 9,
		PromoWindowEndHour:   21,
		PromoTimezone:        "Asia/Kolkata",
		PromoBatchSize:       100,
		PromoBatchPause:      1 * time.Second,
		PromoDailyCap:        3,
		PromoSendProbability: 0.3,

		BookingPollInterval: 15 * time.Second,
		BookingBatchSize:    50,
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Port = p
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if env := os.Getenv("ENV"); env != "" {
		cfg.Env = env
	}

	// Database config
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DBHost = host
	}

	if port := os.Getenv("DB_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT: %w", err)
		}
		cfg.DBPort = p
	}

	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DBUser = user
	}

	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DBPassword = password
	}

	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		cfg.DBName = dbname
	}

	if sslmode := os.Getenv("DB_SSLMODE"); sslmode != "" {
		cfg.DBSSLMode = sslmode
	}

	// Redis config
	if host := os.Getenv("REDIS_HOST"); host != "" {
		cfg.RedisHost = host
	}

	if port := os.Getenv("REDIS_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
		}
		cfg.RedisPort = p
	}

	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.RedisPassword = password
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		d, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = d
	}

	// FCM config
	if project := os.Getenv("FCM_PROJECT_ID"); project != "" {
		cfg.FCMProjectID = project
	}

	if creds := os.Getenv("FCM_CREDENTIALS_FILE"); creds != "" {
		cfg.FCMCredentialsFile = creds
	}

	// Email config
	if provider := os.Getenv("EMAIL_PROVIDER"); provider != "" {
		if provider != "resend" && provider != "ses" && provider != "log" {
			return nil, fmt.Errorf("invalid EMAIL_PROVIDER: %q (must be resend, ses or log)", provider)
		}
		cfg.EmailProvider = provider
	}

	if from := os.Getenv("EMAIL_FROM"); from != "" {
		cfg.EmailFrom = from
	}

	if url := os.Getenv("RESEND_API_URL"); url != "" {
		cfg.ResendAPIURL = url
	}

	if key := os.Getenv("RESEND_API_KEY"); key != "" {
		cfg.ResendAPIKey = key
	}

	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.AWSRegion = region
	}

	// SMS config
	if provider := os.Getenv("SMS_PROVIDER"); provider != "" {
		if provider != "sns" && provider != "log" {
			return nil, fmt.Errorf("invalid SMS_PROVIDER: %q (must be sns or log)", provider)
		}
		cfg.SMSProvider = provider
	}

	if region := os.Getenv("SNS_REGION"); region != "" {
		cfg.SNSRegion = region
	} else {
		cfg.SNSRegion = cfg.AWSRegion
	}

	// Promotional dispatch config
	if interval := os.Getenv("PROMO_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid PROMO_INTERVAL: %w", err)
		}
		cfg.PromoInterval = d
	}

	if start := os.Getenv("PROMO_WINDOW_START"); start != "" {
		h, err := strconv.Atoi(start)
		if err != nil || h < 0 || h > 23 {
			return nil, fmt.Errorf("invalid PROMO_WINDOW_START: %q", start)
		}
		cfg.PromoWindowStartHour = h
	}

	if end := os.Getenv("PROMO_WINDOW_END"); end != "" {
		h, err := strconv.Atoi(end)
		if err != nil || h < 0 || h > 24 {
			return nil, fmt.Errorf("invalid PROMO_WINDOW_END: %q", end)
		}
		cfg.PromoWindowEndHour = h
	}

	if tz := os.Getenv("PROMO_TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid PROMO_TIMEZONE: %w", err)
		}
		cfg.PromoTimezone = tz
	}

	if size := os.Getenv("PROMO_BATCH_SIZE"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid PROMO_BATCH_SIZE: %q", size)
		}
		cfg.PromoBatchSize = n
	}

	if pause := os.Getenv("PROMO_BATCH_PAUSE"); pause != "" {
		d, err := time.ParseDuration(pause)
		if err != nil {
			return nil, fmt.Errorf("invalid PROMO_BATCH_PAUSE: %w", err)
		}
		cfg.PromoBatchPause = d
	}

	if cap := os.Getenv("PROMO_DAILY_CAP"); cap != "" {
		n, err := strconv.Atoi(cap)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid PROMO_DAILY_CAP: %q", cap)
		}
		cfg.PromoDailyCap = n
	}

	if prob := os.Getenv("PROMO_SEND_PROBABILITY"); prob != "" {
		f, err := strconv.ParseFloat(prob, 64)
		if err != nil || f < 0 || f > 1 {
			return nil, fmt.Errorf("invalid PROMO_SEND_PROBABILITY: %q", prob)
		}
		cfg.PromoSendProbability = f
	}

	// Booking worker config
	if interval := os.Getenv("BOOKING_POLL_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid BOOKING_POLL_INTERVAL: %w", err)
		}
		cfg.BookingPollInterval = d
	}

	if size := os.Getenv("BOOKING_BATCH_SIZE"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid BOOKING_BATCH_SIZE: %q", size)
		}
		cfg.BookingBatchSize = n
	}

	return cfg, nil
}
