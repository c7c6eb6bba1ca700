package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "KNOWLEDGE_HUB_CONFIG"
	slackBotTokenEnv   = "SLACK_BOT_TOKEN"
	slackSecretEnv     = "SLACK_SIGNING_SECRET"
	slackUserEnv       = "SLACK_ALLOWED_USER_ID"
	notionAPIKeyEnv    = "NOTION_API_KEY"
	notionDatabaseEnv  = "NOTION_DATABASE_ID"
	geminiAPIKeyEnv    = "GEMINI_API_KEY"
	geminiModelEnv     = "GEMINI_MODEL"
	schedulerSecretEnv = "SCHEDULER_SECRET"
	portEnv            = "PORT"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
	Slack      SlackConfig      `yaml:"slack"`
	Notion     NotionConfig     `yaml:"notion"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Digest     DigestConfig     `yaml:"digest"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// SlackConfig wires the bot used for inbound events and notifications.
type SlackConfig struct {
	BotToken      string `yaml:"botToken"`
	SigningSecret string `yaml:"signingSecret"`
	AllowedUserID string `yaml:"allowedUserId"`
}

// NotionConfig describes the knowledge-base database connection.
type NotionConfig struct {
	APIKey     string `yaml:"apiKey"`
	DatabaseID string `yaml:"databaseId"`
}

// GeminiConfig defines how to contact the Gemini API.
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// ExtractionConfig tunes the content extraction stage.
type ExtractionConfig struct {
	TimeoutSeconds   int      `yaml:"timeoutSeconds"`
	PaywalledDomains []string `yaml:"paywalledDomains"`
}

// DigestConfig guards the scheduler endpoints and cost alerting.
type DigestConfig struct {
	SchedulerSecret   string  `yaml:"schedulerSecret"`
	DailyCostLimitUSD float64 `yaml:"dailyCostLimitUsd"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Extraction.PaywalledDomains) == 0 {
		cfg.Extraction.PaywalledDomains = defaultConfig().Extraction.PaywalledDomains
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(slackBotTokenEnv); v != "" {
		c.Slack.BotToken = v
	}
	if v := os.Getenv(slackSecretEnv); v != "" {
		c.Slack.SigningSecret = v
	}
	if v := os.Getenv(slackUserEnv); v != "" {
		c.Slack.AllowedUserID = v
	}
	if v := os.Getenv(notionAPIKeyEnv); v != "" {
		c.Notion.APIKey = v
	}
	if v := os.Getenv(notionDatabaseEnv); v != "" {
		c.Notion.DatabaseID = v
	}
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv(schedulerSecretEnv); v != "" {
		c.Digest.SchedulerSecret = v
	}
	if v := os.Getenv(portEnv); v != "" {
		c.Server.Port = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}

	if override.Slack.BotToken != "" {
		base.Slack.BotToken = override.Slack.BotToken
	}
	if override.Slack.SigningSecret != "" {
		base.Slack.SigningSecret = override.Slack.SigningSecret
	}
	if override.Slack.AllowedUserID != "" {
		base.Slack.AllowedUserID = override.Slack.AllowedUserID
	}

	if override.Notion.APIKey != "" {
		base.Notion.APIKey = override.Notion.APIKey
	}
	if override.Notion.DatabaseID != "" {
		base.Notion.DatabaseID = override.Notion.DatabaseID
	}

	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}

	if override.Extraction.TimeoutSeconds > 0 {
		base.Extraction.TimeoutSeconds = override.Extraction.TimeoutSeconds
	}
	if len(override.Extraction.PaywalledDomains) > 0 {
		base.Extraction.PaywalledDomains = override.Extraction.PaywalledDomains
	}

	if override.Digest.SchedulerSecret != "" {
		base.Digest.SchedulerSecret = override.Digest.SchedulerSecret
	}
	if override.Digest.DailyCostLimitUSD > 0 {
		base.Digest.DailyCostLimitUSD = override.Digest.DailyCostLimitUSD
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Port: "8080"},
		Gemini: GeminiConfig{
			Model: "gemini-3-flash-preview",
		},
		Extraction: ExtractionConfig{
			TimeoutSeconds: 30,
			PaywalledDomains: []string{
				"nytimes.com",
				"wsj.com",
				"ft.com",
				"economist.com",
				"bloomberg.com",
				"washingtonpost.com",
				"newyorker.com",
				"wired.com",
				"theatlantic.com",
				"businessinsider.com",
				"theinformation.com",
			},
		},
		Digest: DigestConfig{DailyCostLimitUSD: 5.0},
	}
}
