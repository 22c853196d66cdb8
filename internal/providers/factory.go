// Package providers implements the generation client: a priority-ordered
// chain over external LLM providers with local fallback content when every
// provider fails. Concrete providers live in subpackages and register
// themselves with the factory at init time.
package providers

import (
	"fmt"
	"sort"
	"sync"

	"sopforge/config"
	"sopforge/internal/core"
)

// Factory builds a provider from its configuration. The shared LLM config
// carries request parameters (max tokens, temperature, timeout, retries).
type Factory func(cfg config.ProviderConfig, llm config.LLMConfig) (core.Provider, error)

var (
	factoryMu sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a provider factory available by name. Called from provider
// subpackage init functions; panics on duplicate registration.
func Register(name string, factory Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("providers: Register called twice for %q", name))
	}
	factories[name] = factory
}

// Create instantiates the named provider.
func Create(name string, cfg config.ProviderConfig, llm config.LLMConfig) (core.Provider, error) {
	factoryMu.RLock()
	factory, ok := factories[name]
	factoryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("providers: unknown provider %q (registered: %v)", name, Registered())
	}
	return factory(cfg, llm)
}

// Registered returns the registered provider names, sorted.
func Registered() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
