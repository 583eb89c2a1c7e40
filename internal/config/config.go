// Package config provides configuration management for the renewal run.
//
// Configuration is read from environment variables (optionally seeded
// from a .env file) once at startup and is immutable afterwards. The
// account list keeps its configuration order; that order is the order
// in which accounts are processed and reported.
//
// Configuration sources (in order of precedence):
//  1. Environment variables
//  2. .env file in the working directory
//  3. Hard-coded defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Account holds the credentials for one portal account.
//
// Immutable for the run. Email is the natural key for session
// persistence. TOTPSecret is optional; when empty the second-factor
// step is skipped entirely.
type Account struct {
	Email      string
	Password   string
	TOTPSecret string
}

// Config holds all application configuration.
type Config struct {
	// URLs for the 56idc portal
	LoginURL     string // Login page URL
	DashboardURL string // Client area URL, reached only when authenticated

	// Accounts to renew, in configuration order (required)
	Accounts []Account

	// How long to keep the session open after a successful login
	StayDuration time.Duration

	// Remote TOTP endpoint (optional; local derivation when empty)
	TOTPAPIURL string

	// Telegram configuration (optional, notifications disabled if not set)
	TelegramBotToken string
	TelegramChatID   string

	// Directory holding one session artifact per account
	SessionDir string

	// Timing configuration for the different suspending operations
	NavigationTimeout     time.Duration // Maximum time for page loads
	ChallengeTimeout      time.Duration // Maximum time for the bot-challenge to resolve
	ChallengePollInterval time.Duration // How often to re-check the challenge token
	AccountTimeout        time.Duration // Wall-clock budget for one account
	AccountGap            time.Duration // Pause between consecutive accounts
	HTTPTimeout           time.Duration // Timeout for TOTP/Telegram HTTP calls

	// Browser behaviour
	Headless bool

	// Attach a rendered summary table image to the notification
	SummaryImage bool
}

// LoadConfig loads configuration from environment variables with defaults.
//
// A .env file in the working directory is loaded first when present;
// real environment variables take precedence over it.
//
// Returns:
//   - *Config: Fully populated configuration struct
//   - error: Validation error if required fields are missing
func LoadConfig() (*Config, error) {
	// Optional .env file; environment variables override it
	_ = godotenv.Load()

	cfg := &Config{
		LoginURL:     getEnvOrDefault("LOGIN_URL", "https://56idc.net/login"),
		DashboardURL: getEnvOrDefault("DASHBOARD_URL", "https://56idc.net/clientarea.php"),

		Accounts: ParseAccounts(os.Getenv("ACCOUNTS_56IDC")),

		// STAY_DURATION is plain seconds, matching the cron setup docs
		StayDuration: time.Duration(getEnvInt("STAY_DURATION", 10)) * time.Second,

		TOTPAPIURL: os.Getenv("TOTP_API_URL"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),

		SessionDir: getEnvOrDefault("SESSION_DIR", "sessions"),

		NavigationTimeout:     getEnvDuration("NAVIGATION_TIMEOUT", 60*time.Second),
		ChallengeTimeout:      getEnvDuration("CHALLENGE_TIMEOUT", 60*time.Second),
		ChallengePollInterval: getEnvDuration("CHALLENGE_POLL_INTERVAL", time.Second),
		AccountTimeout:        getEnvDuration("ACCOUNT_TIMEOUT", 4*time.Minute),
		AccountGap:            getEnvDuration("ACCOUNT_GAP", 5*time.Second),
		HTTPTimeout:           getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		Headless: getEnvOrDefault("HEADLESS", "true") == "true",

		SummaryImage: getEnvOrDefault("SUMMARY_IMAGE", "true") == "true",
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseAccounts parses the ACCOUNTS_56IDC value.
//
// Format: comma-separated items of "email:password" or
// "email:password:totpSecret". Items without both an email and a
// password are skipped. Surrounding whitespace is trimmed, so the
// value can be split across lines in a .env file.
func ParseAccounts(s string) []Account {
	var accounts []Account
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")
		if len(parts) < 2 {
			continue
		}
		acct := Account{
			Email:    strings.TrimSpace(parts[0]),
			Password: strings.TrimSpace(parts[1]),
		}
		if len(parts) >= 3 {
			acct.TOTPSecret = strings.TrimSpace(parts[2])
		}
		if acct.Email == "" || acct.Password == "" {
			continue
		}
		accounts = append(accounts, acct)
	}
	return accounts
}

// Validate checks that required configuration is present and values are sensible.
func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return fmt.Errorf("ACCOUNTS_56IDC must contain at least one email:password account")
	}

	if c.LoginURL == "" {
		return fmt.Errorf("LOGIN_URL cannot be empty")
	}
	if c.DashboardURL == "" {
		return fmt.Errorf("DASHBOARD_URL cannot be empty")
	}

	if c.ChallengePollInterval <= 0 {
		return fmt.Errorf("CHALLENGE_POLL_INTERVAL must be positive, got %v", c.ChallengePollInterval)
	}
	if c.ChallengeTimeout <= 0 {
		return fmt.Errorf("CHALLENGE_TIMEOUT must be positive, got %v", c.ChallengeTimeout)
	}
	if c.AccountTimeout <= 0 {
		return fmt.Errorf("ACCOUNT_TIMEOUT must be positive, got %v", c.AccountTimeout)
	}
	if c.StayDuration < 0 {
		return fmt.Errorf("STAY_DURATION must not be negative, got %v", c.StayDuration)
	}

	return nil
}

// Helper functions for environment variable parsing

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an integer or a default if not set/invalid
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default if not set/invalid.
//
// Accepts standard Go duration strings like "5s", "10m", "1h30m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
