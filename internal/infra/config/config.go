package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Document source kinds.
const (
	SourceDrive = "drive"
	SourceR2    = "r2"
	SourceFile  = "file"
	SourceNone  = "none"
)

// LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	LLM      LLMConfig      `yaml:"llm"`
	FAQ      FAQConfig      `yaml:"faq"`
	Chat     ChatConfig     `yaml:"chat"`
	Discord  DiscordConfig  `yaml:"discord"`
	Document DocumentConfig `yaml:"document"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"` // empty allows any origin
	Auth           AuthConfig    `yaml:"auth"`
}

// AuthConfig configures service tokens for the HTTP API. An empty secret disables auth.
type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	TokenTTL time.Duration `yaml:"tokenTtl"`
}

// LLMConfig selects and configures the completion backend.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	APIKey   string        `yaml:"apiKey"`
	BaseURL  string        `yaml:"baseUrl"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// FAQConfig controls FAQ resolution and its bookkeeping stores.
type FAQConfig struct {
	Prompt             string         `yaml:"prompt"`
	MaxAnswerTokens    int            `yaml:"maxAnswerTokens"`
	Temperature        float32        `yaml:"temperature"`
	TopRecommendations int            `yaml:"topRecommendations"`
	HistoryLimit       int            `yaml:"historyLimit"`
	Redis              RedisConfig    `yaml:"redis"`
	Postgres           PostgresConfig `yaml:"postgres"`
}

// ChatConfig controls the free-form responder and command prefixes.
type ChatConfig struct {
	Prompt      string         `yaml:"prompt"`
	MaxTokens   int            `yaml:"maxTokens"`
	Temperature float32        `yaml:"temperature"`
	Commands    CommandsConfig `yaml:"commands"`
}

// CommandsConfig names the chat commands.
type CommandsConfig struct {
	Ask        string `yaml:"ask"`
	FAQ        string `yaml:"faq"`
	FAQLiteral string `yaml:"faqLiteral"`
	Trending   string `yaml:"trending"`
}

// DiscordConfig holds the bot credentials.
type DiscordConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

// DocumentConfig selects where the FAQ document is loaded from.
type DocumentConfig struct {
	Source      string        `yaml:"source"`
	NameMatch   string        `yaml:"nameMatch"`
	LoadTimeout time.Duration `yaml:"loadTimeout"`
	Drive       DriveConfig   `yaml:"drive"`
	R2          R2Config      `yaml:"r2"`
	File        FileConfig    `yaml:"file"`
}

// DriveConfig configures the Google Drive source.
type DriveConfig struct {
	FolderID           string `yaml:"folderId"`
	CredentialsFile    string `yaml:"credentialsFile"`
	TokenFile          string `yaml:"tokenFile"`
	TokenEncryptionKey string `yaml:"tokenEncryptionKey"`
}

// R2Config configures the S3-compatible object source.
type R2Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Key       string `yaml:"key"`
}

// FileConfig configures the local file source.
type FileConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig contains connection information for the trending store.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings for the query log.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	applyModelDefault(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ENABLED"); v != "" {
		cfg.HTTP.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_AUTH_SECRET"); v != "" {
		cfg.HTTP.Auth.Secret = v
	}
	if v := os.Getenv("HTTP_AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Auth.TokenTTL = parsed
		}
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}
	// OPENAI_API_KEY is the historical name; LLM_API_KEY wins when both are set.
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = parsed
		}
	}
	if v := os.Getenv("FAQ_PROMPT"); v != "" {
		cfg.FAQ.Prompt = v
	}
	if v := os.Getenv("FAQ_MAX_ANSWER_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.MaxAnswerTokens = parsed
		}
	}
	if v := os.Getenv("FAQ_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.FAQ.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("FAQ_RECOMMENDATIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.TopRecommendations = parsed
		}
	}
	if v := os.Getenv("FAQ_REDIS_ENABLED"); v != "" {
		cfg.FAQ.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("FAQ_REDIS_ADDR"); v != "" {
		cfg.FAQ.Redis.Addr = v
	}
	if v := os.Getenv("FAQ_POSTGRES_DSN"); v != "" {
		cfg.FAQ.Postgres.DSN = v
	}
	if v := os.Getenv("FAQ_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("FAQ_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("CHAT_PROMPT"); v != "" {
		cfg.Chat.Prompt = v
	}
	if v := os.Getenv("CHAT_MAX_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.MaxTokens = parsed
		}
	}
	if v := os.Getenv("DISCORD_ENABLED"); v != "" {
		cfg.Discord.Enabled = parseBool(v)
	}
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("DOCUMENT_SOURCE"); v != "" {
		cfg.Document.Source = strings.ToLower(v)
	}
	if v := os.Getenv("DOCUMENT_NAME_MATCH"); v != "" {
		cfg.Document.NameMatch = v
	}
	if v := os.Getenv("DRIVE_FOLDER_ID"); v != "" {
		cfg.Document.Drive.FolderID = v
	}
	if v := os.Getenv("DRIVE_CREDENTIALS_FILE"); v != "" {
		cfg.Document.Drive.CredentialsFile = v
	}
	if v := os.Getenv("DRIVE_TOKEN_FILE"); v != "" {
		cfg.Document.Drive.TokenFile = v
	}
	if v := os.Getenv("DRIVE_TOKEN_ENCRYPTION_KEY"); v != "" {
		cfg.Document.Drive.TokenEncryptionKey = v
	}
	if v := os.Getenv("R2_ENDPOINT"); v != "" {
		cfg.Document.R2.Endpoint = v
	}
	if v := os.Getenv("R2_ACCESS_KEY"); v != "" {
		cfg.Document.R2.AccessKey = v
	}
	if v := os.Getenv("R2_SECRET_KEY"); v != "" {
		cfg.Document.R2.SecretKey = v
	}
	if v := os.Getenv("R2_BUCKET"); v != "" {
		cfg.Document.R2.Bucket = v
	}
	if v := os.Getenv("R2_REGION"); v != "" {
		cfg.Document.R2.Region = v
	}
	if v := os.Getenv("R2_KEY"); v != "" {
		cfg.Document.R2.Key = v
	}
	if v := os.Getenv("FAQ_FILE_PATH"); v != "" {
		cfg.Document.File.Path = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Enabled:      true,
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			Auth: AuthConfig{
				Issuer:   "faq-relay",
				TokenTTL: 30 * 24 * time.Hour,
			},
		},
		LLM: LLMConfig{
			Provider: ProviderOpenAI,
			Timeout:  60 * time.Second,
		},
		FAQ: FAQConfig{
			MaxAnswerTokens:    300,
			Temperature:        0,
			TopRecommendations: 5,
			HistoryLimit:       50,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Chat: ChatConfig{
			Prompt:      "Respond to this in a conversational tone: %s",
			MaxTokens:   150,
			Temperature: 0.7,
			Commands: CommandsConfig{
				Ask:        "!ask",
				FAQ:        "!faq",
				FAQLiteral: "!faq-literal",
				Trending:   "!faqtop",
			},
		},
		Discord: DiscordConfig{
			Enabled: true,
		},
		Document: DocumentConfig{
			Source:      SourceDrive,
			NameMatch:   "faq",
			LoadTimeout: 2 * time.Minute,
			Drive: DriveConfig{
				CredentialsFile: "client_secret.json",
				TokenFile:       "token.json",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Enabled && c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if owner := modelFamily(c.LLM.Model); owner != "" && owner != c.LLM.Provider {
		return fmt.Errorf("llm.model %q is a %s model but llm.provider is %q", c.LLM.Model, owner, c.LLM.Provider)
	}
	if c.FAQ.MaxAnswerTokens <= 0 {
		return errors.New("faq.maxAnswerTokens must be positive")
	}
	if c.FAQ.Temperature < 0 || c.FAQ.Temperature > 2 {
		return errors.New("faq.temperature must be between 0 and 2")
	}
	if c.FAQ.TopRecommendations < 0 {
		return errors.New("faq.topRecommendations cannot be negative")
	}
	if c.FAQ.HistoryLimit <= 0 {
		return errors.New("faq.historyLimit must be positive")
	}
	if c.FAQ.Redis.Enabled && strings.TrimSpace(c.FAQ.Redis.Addr) == "" {
		return errors.New("faq.redis.addr cannot be empty when redis is enabled")
	}
	if c.Chat.MaxTokens <= 0 {
		return errors.New("chat.maxTokens must be positive")
	}
	if key := c.Document.Drive.TokenEncryptionKey; key != "" {
		switch len(key) {
		case 16, 24, 32:
		default:
			return errors.New("document.drive.tokenEncryptionKey must be 16, 24, or 32 bytes")
		}
	}
	switch c.Document.Source {
	case SourceNone:
	case SourceDrive:
		if strings.TrimSpace(c.Document.Drive.FolderID) == "" {
			return errors.New("document.drive.folderId cannot be empty")
		}
		if strings.TrimSpace(c.Document.Drive.TokenFile) == "" {
			return errors.New("document.drive.tokenFile cannot be empty")
		}
	case SourceR2:
		if strings.TrimSpace(c.Document.R2.Bucket) == "" || strings.TrimSpace(c.Document.R2.Key) == "" {
			return errors.New("document.r2.bucket and document.r2.key are required")
		}
	case SourceFile:
		if strings.TrimSpace(c.Document.File.Path) == "" {
			return errors.New("document.file.path cannot be empty")
		}
	default:
		return fmt.Errorf("document.source %q is not supported", c.Document.Source)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// defaultModels is used when llm.model is left unset.
var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderGemini:    "gemini-2.0-flash",
}

func applyModelDefault(cfg *Config) {
	if strings.TrimSpace(cfg.LLM.Model) == "" {
		cfg.LLM.Model = defaultModels[cfg.LLM.Provider]
	}
}

// modelFamily names the provider that owns a well-known model prefix, or "".
// OpenAI-compatible gateways may serve other names, so unknown prefixes pass.
func modelFamily(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.HasPrefix(m, "claude"):
		return ProviderAnthropic
	case strings.HasPrefix(m, "gemini"):
		return ProviderGemini
	case strings.HasPrefix(m, "gpt-"), strings.HasPrefix(m, "chatgpt"):
		return ProviderOpenAI
	}
	return ""
}
