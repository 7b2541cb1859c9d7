package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	LogLevel string       `yaml:"log_level"`
	Slack    SlackConfig  `yaml:"slack"`
	GitHub   GitHubConfig `yaml:"github"`
	Scan     ScanConfig   `yaml:"scan"`
}

// SlackConfig defines Slack API settings
type SlackConfig struct {
	BotToken           string `yaml:"bot_token"`
	AppToken           string `yaml:"app_token"`
	SigningSecret      string `yaml:"signing_secret"`
	ChannelID          string `yaml:"channel_id"`
	WatchlistChannelID string `yaml:"watchlist_channel_id"`
	WorkflowBotID      string `yaml:"workflow_bot_id"`
	UserID             string `yaml:"user_id"`
}

// GitHubConfig defines GitHub API settings
type GitHubConfig struct {
	Token          string   `yaml:"token"`
	Repo           string   `yaml:"repo"` // "owner/name"
	WatchlistLabel string   `yaml:"watchlist_label"`
	IssueLabels    []string `yaml:"issue_labels"`
	Assignees      []string `yaml:"assignees"`
}

// ScanConfig defines the thread scan window and pacing
type ScanConfig struct {
	OlderThanDays  int           `yaml:"older_than_days"`
	WithinLastDays int           `yaml:"within_last_days"`
	MaxReplies     int           `yaml:"max_replies"`
	Interval       time.Duration `yaml:"interval"` // 0 means run once and exit
}

// Load loads configuration from an optional YAML file, a .env file and
// environment variables. Environment variables win over the file.
func Load(path string) (*Config, error) {
	// A missing .env file is fine; system env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel: "info",
		GitHub: GitHubConfig{
			WatchlistLabel: "watchlist",
			IssueLabels:    []string{"bug", "help wanted"},
		},
		Scan: ScanConfig{
			OlderThanDays:  7,
			WithinLastDays: 30,
			MaxReplies:     5,
		},
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Slack.BotToken = getEnv("SLACK_BOT_TOKEN", cfg.Slack.BotToken)
	cfg.Slack.AppToken = getEnv("SLACK_APP_TOKEN", cfg.Slack.AppToken)
	cfg.Slack.SigningSecret = getEnv("SLACK_SIGNING_SECRET", cfg.Slack.SigningSecret)
	cfg.Slack.ChannelID = getEnv("SLACK_CHANNEL_ID", cfg.Slack.ChannelID)
	cfg.Slack.WatchlistChannelID = getEnv("SLACK_WATCHLIST_CHANNEL_ID", cfg.Slack.WatchlistChannelID)
	cfg.Slack.WorkflowBotID = getEnv("SLACK_BOT_ID", cfg.Slack.WorkflowBotID)
	cfg.Slack.UserID = getEnv("SLACK_USER_ID", cfg.Slack.UserID)
	cfg.GitHub.Token = getEnv("GITHUB_TOKEN", cfg.GitHub.Token)
	cfg.GitHub.Repo = getEnv("GITHUB_REPO", cfg.GitHub.Repo)

	if cfg.Scan.OlderThanDays < 0 || cfg.Scan.WithinLastDays <= 0 {
		return nil, fmt.Errorf("invalid scan window: older_than_days=%d within_last_days=%d",
			cfg.Scan.OlderThanDays, cfg.Scan.WithinLastDays)
	}
	if cfg.Scan.OlderThanDays >= cfg.Scan.WithinLastDays {
		return nil, fmt.Errorf("older_than_days (%d) must be smaller than within_last_days (%d)",
			cfg.Scan.OlderThanDays, cfg.Scan.WithinLastDays)
	}

	return cfg, nil
}

// ValidateScanner checks the variables the scan-and-label run requires.
func (c *Config) ValidateScanner() error {
	return requireAll(map[string]string{
		"SLACK_BOT_TOKEN":            c.Slack.BotToken,
		"SLACK_CHANNEL_ID":           c.Slack.ChannelID,
		"SLACK_WATCHLIST_CHANNEL_ID": c.Slack.WatchlistChannelID,
		"SLACK_BOT_ID":               c.Slack.WorkflowBotID,
		"GITHUB_TOKEN":               c.GitHub.Token,
		"GITHUB_REPO":                c.GitHub.Repo,
	})
}

// ValidateWorkflow checks the variables the workflow listener requires.
func (c *Config) ValidateWorkflow() error {
	return requireAll(map[string]string{
		"SLACK_BOT_TOKEN":  c.Slack.BotToken,
		"SLACK_APP_TOKEN":  c.Slack.AppToken,
		"SLACK_CHANNEL_ID": c.Slack.ChannelID,
		"SLACK_BOT_ID":     c.Slack.WorkflowBotID,
		"GITHUB_TOKEN":     c.GitHub.Token,
		"GITHUB_REPO":      c.GitHub.Repo,
	})
}

func requireAll(vars map[string]string) error {
	var missing []string
	for name, value := range vars {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
