package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/pkg/errors"

	"github.com/zhouzirui/healthchat/internal/store"
)

// ClientConfig describes the terminal chat client.
type ClientConfig struct {
	Endpoint       string        `env:"CHAT_ENDPOINT,default=http://localhost:8080/chat" validate:"required,url"`
	Transport      string        `env:"CHAT_TRANSPORT,default=http" validate:"oneof=http ws websocket"`
	Language       string        `env:"CHAT_LANG,default=en" validate:"oneof=en st"`
	StoreBackend   string        `env:"STORE_BACKEND,default=file" validate:"oneof=memory file badger sqlite redis"`
	StorePath      string        `env:"STORE_PATH"`
	RedisAddr      string        `env:"REDIS_ADDR,default=localhost:6379"`
	RedisDB        int           `env:"REDIS_DB,default=0" validate:"gte=0"`
	RevealTick     time.Duration `env:"REVEAL_TICK,default=20ms" validate:"gt=0"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=30s" validate:"gte=0"`
	Welcome        string        `env:"WELCOME_TEXT"`
	LogLevel       string        `env:"LOG_LEVEL,default=info" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFile        string        `env:"LOG_FILE"`
}

// LoadClient reads the client configuration from the environment.
func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, errors.Wrap(err, "client config")
	}
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	cfg.Language = strings.ToLower(strings.TrimSpace(cfg.Language))
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "client config")
	}
	return &cfg, nil
}

// StoreOptions resolves the backend location. Without STORE_PATH, file based
// backends live under the user config directory.
func (c ClientConfig) StoreOptions() (store.Options, error) {
	opts := store.Options{
		Backend:   c.StoreBackend,
		Path:      c.StorePath,
		RedisAddr: c.RedisAddr,
		RedisDB:   c.RedisDB,
	}
	if opts.Path != "" {
		return opts, nil
	}

	var name string
	switch c.StoreBackend {
	case "file":
		name = "sessions.json"
	case "badger":
		name = "sessions.badger"
	case "sqlite":
		name = "sessions.db"
	default:
		return opts, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return store.Options{}, errors.Wrap(err, "locate config directory")
	}
	dir = filepath.Join(dir, "healthchat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return store.Options{}, errors.Wrapf(err, "create %s", dir)
	}
	opts.Path = filepath.Join(dir, name)
	return opts, nil
}

// LogPath returns where the client writes logs.
func (c ClientConfig) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(os.TempDir(), "healthchat.log")
}
