package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv string

	// Telegram
	BotToken    string
	AdminUserID int64 // moderator chat: every submission is forwarded here
	ChannelID   int64 // destination channel for approved photos

	// Storage
	DatabaseURL string

	// Pipeline
	ScratchDir     string
	HeifConvertBin string

	// Queue
	QueueLease    time.Duration
	QueuePoll     time.Duration
	RetryAttempts int
	RetryDelay    time.Duration

	// Observability; empty disables the metrics listener.
	MetricsAddr string
}

// Load loads configuration from the environment, optionally seeded by a .env
// file in the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// A missing .env is fine in prod; anything else should surface.
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	bindings := map[string]string{
		"app.env":              "APP_ENV",
		"bot.token":            "BOT_TOKEN",
		"bot.admin_user_id":    "ADMIN_USER_ID",
		"bot.channel_id":       "CHANNEL_ID",
		"database.url":         "DATABASE_URL",
		"pipeline.scratch_dir": "SCRATCH_DIR",
		"pipeline.heif_bin":    "HEIF_CONVERT_BIN",
		"queue.lease_seconds":  "QUEUE_LEASE_SECONDS",
		"queue.poll_seconds":   "QUEUE_POLL_SECONDS",
		"queue.retry_attempts": "QUEUE_RETRY_ATTEMPTS",
		"metrics.addr":         "METRICS_ADDR",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	viper.SetDefault("app.env", "dev")
	viper.SetDefault("pipeline.scratch_dir", os.TempDir())
	viper.SetDefault("pipeline.heif_bin", "heif-convert")
	viper.SetDefault("queue.lease_seconds", 60)
	viper.SetDefault("queue.poll_seconds", 5)
	viper.SetDefault("queue.retry_attempts", 3)

	cfg := Config{
		AppEnv:         viper.GetString("app.env"),
		BotToken:       viper.GetString("bot.token"),
		AdminUserID:    viper.GetInt64("bot.admin_user_id"),
		ChannelID:      viper.GetInt64("bot.channel_id"),
		DatabaseURL:    viper.GetString("database.url"),
		ScratchDir:     viper.GetString("pipeline.scratch_dir"),
		HeifConvertBin: viper.GetString("pipeline.heif_bin"),
		QueueLease:     time.Duration(viper.GetInt("queue.lease_seconds")) * time.Second,
		QueuePoll:      time.Duration(viper.GetInt("queue.poll_seconds")) * time.Second,
		RetryAttempts:  viper.GetInt("queue.retry_attempts"),
		RetryDelay:     time.Second,
		MetricsAddr:    viper.GetString("metrics.addr"),
	}

	if cfg.BotToken == "" {
		return nil, errors.New("BOT_TOKEN is not set in environment or .env file")
	}
	if cfg.AdminUserID == 0 {
		return nil, errors.New("ADMIN_USER_ID is not set; submissions need a moderator to go to")
	}
	if cfg.ChannelID == 0 {
		return nil, errors.New("CHANNEL_ID is not set; approved photos need a channel to go to")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set in environment or .env file")
	}
	if cfg.RetryAttempts < 1 {
		return nil, fmt.Errorf("QUEUE_RETRY_ATTEMPTS must be at least 1, got %d", cfg.RetryAttempts)
	}

	return &cfg, nil
}
