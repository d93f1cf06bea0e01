package config

import (
	"context"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

// Config aggregates the answer server settings.
type Config struct {
	Server ServerConfig
	AI     AIConfig
}

// Load reads the server configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai}, nil
}

// ServerConfig describes the HTTP listener and knowledge source.
type ServerConfig struct {
	Port          string `env:"PORT,default=8080"`
	KnowledgeFile string `env:"KNOWLEDGE_FILE"`
	LogLevel      string `env:"LOG_LEVEL,default=info" validate:"oneof=trace debug info warn warning error fatal panic"`

	// Addr is derived from Port.
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return ServerConfig{}, errors.Wrap(err, "server config")
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := validate.Struct(cfg); err != nil {
		return ServerConfig{}, errors.Wrap(err, "server config")
	}

	addr, err := listenAddr(cfg.Port)
	if err != nil {
		return ServerConfig{}, err
	}
	cfg.Addr = addr
	return cfg, nil
}

// listenAddr accepts "8080", ":8080" or "127.0.0.1:8080".
func listenAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}
	if strings.Contains(port, ":") {
		return port, nil
	}
	if strings.Contains(port, " ") {
		return "", errors.Errorf("invalid PORT value: %q", port)
	}
	return ":" + port, nil
}

// AIConfig describes the optional QA fallback model.
type AIConfig struct {
	APIKey      string        `env:"ARK_API_KEY"`
	AccessKey   string        `env:"ARK_ACCESS_KEY"`
	SecretKey   string        `env:"ARK_SECRET_KEY"`
	Model       string        `env:"ARK_MODEL"`
	BaseURL     string        `env:"ARK_BASE_URL,default=https://ark.cn-beijing.volces.com/api/v3" validate:"url"`
	Region      string        `env:"ARK_REGION,default=cn-beijing"`
	Temperature *float64      `env:"ARK_TEMPERATURE" validate:"omitempty,gte=0,lte=2"`
	TopP        *float64      `env:"ARK_TOP_P" validate:"omitempty,gte=0,lte=1"`
	MaxTokens   *int          `env:"ARK_MAX_TOKENS" validate:"omitempty,gt=0"`
	// Timeout bounds one QA call.
	Timeout time.Duration `env:"ARK_TIMEOUT,default=15s" validate:"gt=0"`
}

// Enabled reports whether credentials and a model were supplied.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates the Ark chat model described by the config.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, errors.New("ark credentials or model missing: set ARK_MODEL with ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	var cfg AIConfig
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return AIConfig{}, errors.Wrap(err, "ai config")
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.AccessKey = strings.TrimSpace(cfg.AccessKey)
	cfg.SecretKey = strings.TrimSpace(cfg.SecretKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if err := validate.Struct(cfg); err != nil {
		return AIConfig{}, errors.Wrap(err, "ai config")
	}
	return cfg, nil
}
