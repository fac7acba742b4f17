package integrations

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var registryYAML []byte

// ErrUnknownIntegration is returned when a name is not in the registry
var ErrUnknownIntegration = errors.New("unknown integration")

// Integration describes a webhook integration
type Integration struct {
	Name        string            `yaml:"-"`
	DisplayName string            `yaml:"display_name"`
	URL         string            `yaml:"url"`
	Stream      string            `yaml:"stream"`
	Logo        string            `yaml:"logo"`
	EventHeader string            `yaml:"event_header,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
}

// BotEmail returns the deterministic email of the integration's bot
func (i Integration) BotEmail() string {
	return i.Name + "-bot@example.com"
}

// BotName returns the display name given to the integration's bot
func (i Integration) BotName() string {
	name := i.DisplayName
	if name == "" {
		name = i.Name
	}
	return name + " Bot"
}

// LogoPath returns the conventional avatar path for the integration
func (i Integration) LogoPath() string {
	return strings.ReplaceAll(i.Logo, "{name}", i.Name)
}

func (i Integration) clone() Integration {
	i.Headers = maps.Clone(i.Headers)
	return i
}

var loadRegistry = sync.OnceValues(func() (map[string]Integration, error) {
	return parseRegistry(registryYAML)
})

func parseRegistry(data []byte) (map[string]Integration, error) {
	raw := make(map[string]Integration)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse integration registry: %w", err)
	}

	registry := make(map[string]Integration, len(raw))
	for name, integration := range raw {
		if integration.URL == "" {
			return nil, fmt.Errorf("integration %q has no url", name)
		}
		integration.Name = name
		if integration.Stream == "" {
			integration.Stream = name
		}
		registry[name] = integration
	}
	return registry, nil
}

// Lookup returns the integration registered under name
func Lookup(name string) (Integration, error) {
	registry, err := loadRegistry()
	if err != nil {
		return Integration{}, err
	}
	integration, ok := registry[name]
	if !ok {
		return Integration{}, fmt.Errorf("%w: %s", ErrUnknownIntegration, name)
	}
	return integration.clone(), nil
}

// Names returns the sorted names of all registered integrations
func Names() []string {
	registry, err := loadRegistry()
	if err != nil {
		return nil
	}
	return slices.Sorted(maps.Keys(registry))
}

// All returns every registered integration sorted by name
func All() []Integration {
	registry, err := loadRegistry()
	if err != nil {
		return nil
	}
	result := make([]Integration, 0, len(registry))
	for _, name := range slices.Sorted(maps.Keys(registry)) {
		result = append(result, registry[name].clone())
	}
	return result
}
