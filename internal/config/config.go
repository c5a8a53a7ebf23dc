package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		API
		Global
		Database
		Session
		Carousel
		Tasks
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	API struct {
		BaseURL string // Remote catalog API, including the /api prefix
		Timeout time.Duration
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Session struct {
		Lifetime      time.Duration
		Secret        string // CSRF key; generated when empty
		SecureCookies bool   // Set to false for local dev without HTTPS
	}
	Carousel struct {
		Interval        time.Duration
		FeaturedISBNs   []string
		RefreshSchedule string // Cron format: "0 4 * * *" = daily at 04:00
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Log struct {
		Level string
	}
)

// splitList accepts both comma and whitespace separated values.
func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func NewConfig() *Config {
	// A missing .env file is fine; the environment wins anyway.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("api_base_url", DefaultAPIBaseURL)
	v.SetDefault("api_timeout", "10s")
	v.SetDefault("database_path", DefaultDatabasePath)

	// Session defaults
	v.SetDefault("session_lifetime", "24h")
	v.SetDefault("session_secret", "")
	v.SetDefault("secure_cookies", false)

	// Carousel defaults
	v.SetDefault("carousel_interval", DefaultCarouselInterval.String())
	v.SetDefault("featured_isbns", strings.Join(DefaultFeaturedISBNs, ","))
	v.SetDefault("featured_refresh_schedule", "0 4 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "5m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("log_level", "info")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		API: API{
			BaseURL: strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
			Timeout: v.GetDuration("API_TIMEOUT"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Session: Session{
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			Secret:        v.GetString("SESSION_SECRET"),
			SecureCookies: v.GetBool("SECURE_COOKIES"),
		},
		Carousel: Carousel{
			Interval:        v.GetDuration("CAROUSEL_INTERVAL"),
			FeaturedISBNs:   splitList(v.GetString("FEATURED_ISBNS")),
			RefreshSchedule: v.GetString("FEATURED_REFRESH_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}
