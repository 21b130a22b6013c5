// Package config loads chatkit configuration.
// Source priority (highest to lowest):
// 1. Environment variables (CHATKIT_ADDR, CHATKIT_PROVIDER, CHATKIT_MODEL,
//    OPENAI_API_KEY, ANTHROPIC_API_KEY, ...)
// 2. Config file path passed via --config
// 3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values like "2h" parse naturally.
// Bare integers are read as seconds.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var secs int64
	if err := value.Decode(&secs); err != nil {
		return fmt.Errorf("invalid duration value %q", value.Value)
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) { return d.Std().String(), nil }

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// LogJSON switches structured logs to JSON (default text).
	LogJSON bool `yaml:"log_json"`
}

// StoreConfig holds the cache backend settings.
type StoreConfig struct {
	// Backend: "memory" (default) | "badger"
	Backend string `yaml:"backend"`

	// Path is the badger data directory. Ignored for memory.
	Path string `yaml:"path"`

	// PageTTL bounds how long an extracted page stays cached.
	PageTTL Duration `yaml:"page_ttl"`

	// ConversationTTL bounds how long an idle conversation survives.
	ConversationTTL Duration `yaml:"conversation_ttl"`
}

// ConversationConfig bounds conversation growth.
type ConversationConfig struct {
	// MaxMessages is the per-session message cap; older turns are dropped.
	MaxMessages int `yaml:"max_messages"`

	// MaxSessions caps concurrently tracked sessions.
	MaxSessions int `yaml:"max_sessions"`

	// EvictionBuffer is how far below MaxSessions eviction shrinks the set.
	EvictionBuffer int `yaml:"eviction_buffer"`
}

// RetrievalConfig tunes the similarity index and the validation gate.
type RetrievalConfig struct {
	// MinScore excludes documents at or below this similarity.
	MinScore float64 `yaml:"min_score"`

	// MaxContextLength budgets the rendered retrieval context in bytes.
	MaxContextLength int `yaml:"max_context_length"`

	// MinSources is the corroboration threshold for accepting an answer.
	MinSources int `yaml:"min_sources"`
}

// ModelConfig selects and tunes the drafting model.
type ModelConfig struct {
	// Provider: "openai" (default) | "anthropic" | "mock"
	Provider string `yaml:"provider"`

	// Name overrides the provider's default model id.
	Name string `yaml:"name"`

	// APIKey overrides the provider environment variable.
	APIKey string `yaml:"api_key"`

	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
}

// Config is the complete chatkit configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Store        StoreConfig        `yaml:"store"`
	Conversation ConversationConfig `yaml:"conversation"`
	Retrieval    RetrievalConfig    `yaml:"retrieval"`
	Model        ModelConfig        `yaml:"model"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Backend:         "memory",
			PageTTL:         Duration(2 * time.Hour),
			ConversationTTL: Duration(24 * time.Hour),
		},
		Conversation: ConversationConfig{
			MaxMessages:    50,
			MaxSessions:    100,
			EvictionBuffer: 10,
		},
		Retrieval: RetrievalConfig{
			MinScore:         0.1,
			MaxContextLength: 2000,
			MinSources:       2,
		},
		Model: ModelConfig{
			Provider:    "openai",
			Temperature: 0.7,
			MaxTokens:   300,
		},
	}
}

// Load reads the config file (if any) and merges environment overrides.
// A missing file is not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would misbehave silently.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "badger":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the badger backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.Model.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}
	if c.Conversation.MaxMessages <= 0 {
		return fmt.Errorf("conversation.max_messages must be positive")
	}
	if c.Conversation.EvictionBuffer >= c.Conversation.MaxSessions {
		return fmt.Errorf("conversation.eviction_buffer must be below max_sessions")
	}
	if c.Retrieval.MinSources <= 0 {
		return fmt.Errorf("retrieval.min_sources must be positive")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHATKIT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CHATKIT_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("CHATKIT_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("CHATKIT_PAGE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Store.PageTTL = Duration(d)
		}
	}
	if v := os.Getenv("CHATKIT_CONVERSATION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Store.ConversationTTL = Duration(d)
		}
	}
	if v := os.Getenv("CHATKIT_PROVIDER"); v != "" {
		cfg.Model.Provider = v
	}
	if v := os.Getenv("CHATKIT_MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("CHATKIT_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Conversation.MaxSessions = n
		}
	}

	// Provider key fallbacks. The SDKs also read these themselves; keeping
	// them in the config lets the CLI surface a clear error early.
	if cfg.Model.APIKey == "" {
		switch cfg.Model.Provider {
		case "openai":
			cfg.Model.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			cfg.Model.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
}
