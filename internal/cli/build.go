package cli

import (
	"fmt"
	"log/slog"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/salespage/chatkit"
	"github.com/salespage/chatkit/cache"
	"github.com/salespage/chatkit/cache/badgerstore"
	"github.com/salespage/chatkit/config"
	"github.com/salespage/chatkit/core"
	"github.com/salespage/chatkit/logging"
	"github.com/salespage/chatkit/model"
	"github.com/salespage/chatkit/model/anthropic"
	"github.com/salespage/chatkit/model/openai"
)

// buildKit assembles a ChatKit from the loaded configuration. The returned
// cleanup closes the backend (a no-op for memory) and must run on exit.
func buildKit(cfg *config.Config, logger logging.Logger) (*chatkit.ChatKit, func() error, error) {
	backend, cleanup, err := buildBackend(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	m, err := buildModel(cfg)
	if err != nil {
		_ = cleanup()
		return nil, nil, err
	}

	kit := chatkit.New(func(o *chatkit.Options) {
		o.Backend = backend
		o.Model = m
		o.PageTTL = cfg.Store.PageTTL.Std()
		o.ConversationTTL = cfg.Store.ConversationTTL.Std()
		o.MaxMessages = cfg.Conversation.MaxMessages
		o.MaxSessions = cfg.Conversation.MaxSessions
		o.EvictionBuffer = cfg.Conversation.EvictionBuffer
		o.MinScore = cfg.Retrieval.MinScore
		o.MaxContextLength = cfg.Retrieval.MaxContextLength
		o.MinSources = cfg.Retrieval.MinSources
		o.Logger = logger
	})
	return kit, cleanup, nil
}

func buildBackend(cfg *config.Config, logger logging.Logger) (core.Backend, func() error, error) {
	switch cfg.Store.Backend {
	case "badger":
		bcfg := badgerstore.DefaultConfig(cfg.Store.Path)
		bcfg.Logger = logger
		backend, err := badgerstore.Open(bcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger store: %w", err)
		}
		return backend, backend.Close, nil
	default:
		// Validated earlier; anything else is memory.
		return cache.NewMemoryBackend(), func() error { return nil }, nil
	}
}

func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Model.Provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model.Name != "" {
				o.Model = cfg.Model.Name
			}
			o.Temperature = cfg.Model.Temperature
			o.MaxCompletionTokens = cfg.Model.MaxTokens
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Model.Name)
			}
			o.Temperature = cfg.Model.Temperature
			o.MaxTokens = cfg.Model.MaxTokens
			o.APIKey = cfg.Model.APIKey
		}), nil
	case "mock":
		return model.NewMockModel(), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}
}

func buildLogger(cfg *config.Config) logging.Logger {
	if cfg.Server.LogJSON {
		return logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	}
	return logging.NewTextLogger(os.Stderr, slog.LevelInfo)
}
