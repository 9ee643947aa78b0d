package factory

import (
	"fmt"
	"log"

	"IntSentry/internal/config"
	"IntSentry/internal/model"
)

// EngineFactory defines a function that creates an analytics engine from the
// loaded configuration and a notifier.
type EngineFactory func(cfg *config.Config, notifier model.Notifier) (model.Engine, error)

// registry holds the mapping of engine types to their factory functions.
var registry = make(map[string]EngineFactory)

// RegisterEngine registers a new engine type with its factory function.
func RegisterEngine(name string, factory EngineFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("engine type '%s' already registered", name))
	}
	registry[name] = factory
}

// Create builds the engine selected by the config.
func Create(cfg *config.Config, notifier model.Notifier) (model.Engine, error) {
	log.Printf("Creating analytics engine of type '%s'", cfg.Engine.Type)

	factory, ok := registry[cfg.Engine.Type]
	if !ok {
		return nil, fmt.Errorf("unknown engine type: '%s'", cfg.Engine.Type)
	}

	engine, err := factory(cfg, notifier)
	if err != nil {
		return nil, fmt.Errorf("error creating engine type '%s': %w", cfg.Engine.Type, err)
	}
	return engine, nil
}
