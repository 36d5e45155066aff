// Package cue provides side-effect collaborators (bell, hooks, event log) driven by timer events.
package cue

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/nightreign-timer/internal/app/countdown"
)

// Cue is the interface for event collaborators.
type Cue interface {
	// Name returns the cue name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// Triggers returns the event types this cue reacts to.
	Triggers() []countdown.EventType
	// ValidateConfig validates and applies the cue settings.
	ValidateConfig(settings map[string]any) error
	// Handle reacts to a timer event.
	Handle(event countdown.Event)
}

// registry holds registered cue factories.
var registry = make(map[string]func() Cue)

// Register registers a cue factory.
func Register(name string, factory func() Cue) {
	registry[name] = factory
}

// GetRegistered returns all registered cue factories.
func GetRegistered() map[string]func() Cue {
	return registry
}

// Names returns the registered cue names in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a registered cue and applies its settings.
func New(name string, settings map[string]any) (Cue, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, errors.Newf("unknown cue %q", name)
	}
	c := factory()
	if err := c.ValidateConfig(settings); err != nil {
		return nil, errors.Wrapf(err, "cue %s", name)
	}
	return c, nil
}

// decodeSettings decodes a settings map into out, applies defaults and validates it.
func decodeSettings(settings map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	validate := validator.New()
	if err := validate.Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
