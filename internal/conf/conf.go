package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/usecase"
)

// Config represents application configuration
type Config struct {
	// Feishu configuration
	Feishu FeishuConfig

	// OpenAI-compatible completion configuration
	OpenAI OpenAIConfig

	// Reply loop configuration
	Bot BotConfig

	// Session configuration
	Session SessionConfig

	// Persona YAML path (empty = search default locations)
	PersonaPath string

	// Debug mode
	Debug bool

	invalid []*ConfigError
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID     string
	AppSecret string
	BotHandle string // Handle users type to address the bot
}

// OpenAIConfig contains completion service configuration
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Optional, for OpenAI-compatible endpoints
}

// BotConfig contains reply loop configuration
type BotConfig struct {
	ThreadID           string
	PollInterval       time.Duration
	ReplyChance        float64
	CooldownPerUser    time.Duration
	MaxReplyLength     int
	FetchAmount        int
	SkipInitialBacklog bool
}

// SessionConfig contains session persistence configuration
type SessionConfig struct {
	Dir  string
	JSON string // Pre-provisioned session blob
}

const (
	defaultModel           = "gpt-4o-mini"
	defaultPollInterval    = 7.0
	defaultReplyChance     = 0.75
	defaultCooldownPerUser = 25.0
	defaultMaxReplyLength  = 300
	defaultFetchAmount     = 40
	minReplyLength         = 20
	maxFetchAmount         = 50
)

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	c := &Config{}

	c.Feishu = FeishuConfig{
		AppID:     os.Getenv("FEISHU_APP_ID"),
		AppSecret: os.Getenv("FEISHU_APP_SECRET"),
		BotHandle: os.Getenv("BOT_HANDLE"),
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultModel
	}
	c.OpenAI = OpenAIConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   model,
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	}

	c.Bot = BotConfig{
		ThreadID:           strings.TrimSpace(os.Getenv("THREAD_ID")),
		PollInterval:       c.envSeconds("POLL_INTERVAL", defaultPollInterval),
		ReplyChance:        c.envFloat("REPLY_CHANCE", defaultReplyChance),
		CooldownPerUser:    c.envSeconds("COOLDOWN_PER_USER", defaultCooldownPerUser),
		MaxReplyLength:     c.envInt("MAX_REPLY_LENGTH", defaultMaxReplyLength),
		FetchAmount:        c.envInt("FETCH_AMOUNT", defaultFetchAmount),
		SkipInitialBacklog: os.Getenv("SKIP_INITIAL_BACKLOG") == "true",
	}

	// Session directory
	sessionDir := os.Getenv("SESSION_DIR")
	if sessionDir == "" {
		sessionDir = "."
	}
	c.Session = SessionConfig{
		Dir:  sessionDir,
		JSON: os.Getenv("SESSION_JSON"),
	}

	c.PersonaPath = os.Getenv("PERSONA_CONFIG_PATH")
	c.Debug = os.Getenv("DEBUG") == "true"
	return c
}

// SessionFile returns the session file path for the configured app
func (c *Config) SessionFile() string {
	return filepath.Join(c.Session.Dir, "session_"+c.Feishu.AppID+".db")
}

// ToDecisionConfig converts to decision configuration
func (c *Config) ToDecisionConfig() usecase.DecisionConfig {
	return usecase.DecisionConfig{
		BotHandle:   c.Feishu.BotHandle,
		ReplyChance: c.Bot.ReplyChance,
		Cooldown:    c.Bot.CooldownPerUser,
	}
}

// ValidateFeishu validates the Feishu credentials only
func (c *Config) ValidateFeishu() error {
	if c.Feishu.AppID == "" || c.Feishu.AppSecret == "" {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "required"}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.ValidateFeishu(); err != nil {
		return err
	}
	if c.Bot.ThreadID == "" {
		return &ConfigError{Field: "THREAD_ID", Message: "required"}
	}
	if c.OpenAI.APIKey == "" {
		return &ConfigError{Field: "OPENAI_API_KEY", Message: "required"}
	}
	if len(c.invalid) > 0 {
		return c.invalid[0]
	}
	if c.Bot.PollInterval <= 0 {
		return &ConfigError{Field: "POLL_INTERVAL", Message: "must be positive"}
	}
	if c.Bot.ReplyChance < 0 || c.Bot.ReplyChance > 1 {
		return &ConfigError{Field: "REPLY_CHANCE", Message: "must be between 0 and 1"}
	}
	if c.Bot.CooldownPerUser < 0 {
		return &ConfigError{Field: "COOLDOWN_PER_USER", Message: "must not be negative"}
	}
	if c.Bot.MaxReplyLength < minReplyLength {
		return &ConfigError{Field: "MAX_REPLY_LENGTH", Message: "must be at least " + strconv.Itoa(minReplyLength)}
	}
	if c.Bot.FetchAmount <= 0 || c.Bot.FetchAmount > maxFetchAmount {
		return &ConfigError{Field: "FETCH_AMOUNT", Message: "must be between 1 and " + strconv.Itoa(maxFetchAmount)}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func (c *Config) envFloat(key string, def float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		c.invalid = append(c.invalid, &ConfigError{Field: key, Message: "not a number: " + val})
		return def
	}
	return parsed
}

func (c *Config) envSeconds(key string, def float64) time.Duration {
	return time.Duration(c.envFloat(key, def) * float64(time.Second))
}

func (c *Config) envInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		c.invalid = append(c.invalid, &ConfigError{Field: key, Message: "not an integer: " + val})
		return def
	}
	return parsed
}
