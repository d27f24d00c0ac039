package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/askframe"
	"github.com/ZanzyTHEbar/askframe/internal/config"
	"github.com/ZanzyTHEbar/askframe/internal/eventbus"
	"github.com/ZanzyTHEbar/askframe/internal/logging"
	"github.com/ZanzyTHEbar/askframe/pkg/llm"
)

// app holds what every command needs once the configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
	bus    *eventbus.ChannelEventBus
	asker  *askframe.Asker
}

// newBackend builds the completion backend named by the configuration.
func newBackend(ctx context.Context, cfg config.BackendConfig) (llm.Backend, error) {
	switch cfg.Provider {
	case config.ProviderGenkit:
		return llm.NewGoogleAIBackend(ctx, cfg.APIKey, cfg.ModelName)
	default:
		chat, err := llm.NewChatModel(ctx, cfg.ModelConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s chat model: %w", cfg.APIType, err)
		}
		return llm.NewEinoBackend(chat), nil
	}
}

func newApp(ctx context.Context, cfg *config.Config, verbosity int, extra ...askframe.Option) (*app, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if verbosity > 0 {
		level = logging.VerbosityToLevel(verbosity)
	}
	logger, err := logging.New(cfg.Log.JSON, level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	backend, err := newBackend(ctx, cfg.Backend)
	if err != nil {
		return nil, askframe.NewConfigurationError("failed to create backend", err)
	}

	bus := eventbus.NewChannelEventBus(eventbus.WithLogger(logger))
	if verbosity >= logging.VerbosityDebug {
		if _, err := bus.SubscribeAll(func(ctx context.Context, e eventbus.Event) error {
			logger.Debugw("pipeline event", "event", e.Type(), "id", e.Payload(), "metadata", e.Metadata())
			return nil
		}); err != nil {
			return nil, err
		}
	}

	opts := append([]askframe.Option{
		askframe.WithConfig(cfg.Ask),
		askframe.WithLogger(logger),
		askframe.WithEventBus(bus),
	}, extra...)
	asker, err := askframe.New(backend, opts...)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}

	logger.Debugw("askframe ready",
		"provider", cfg.Backend.Provider,
		"type", cfg.Backend.APIType,
		"model", cfg.Ask.Model)
	return &app{cfg: cfg, logger: logger, bus: bus, asker: asker}, nil
}

func (a *app) Close() {
	_ = a.asker.Close()
	_ = a.bus.Close()
	_ = a.logger.Sync()
}
