// Package di provides a lightweight wrapper around uber's dig dependency
// injection framework along with the shared constructors for loggers and AWS
// clients.
package di

import (
	"go.uber.org/dig"
)

// Container defines a dependency injection container based on uber's dig.
// The interface keeps lambda wiring testable without a real container.
type Container interface {
	// Invoke executes a function, injecting its dependencies from the container.
	Invoke(function any, opts ...dig.InvokeOption) error

	// Provide registers a constructor function in the container.
	Provide(constructor any, opts ...dig.ProvideOption) error
}

// MustGet returns an instance constructed via dependency injection or panics.
// Intended for cold-start wiring where a resolution failure is fatal anyway.
func MustGet[T any](container Container) (want T) {
	callback := func(got T) {
		want = got
	}
	if err := container.Invoke(callback); err != nil {
		panic(err)
	}
	return want
}

// New creates a dependency injection container for the given environment.
// The environment string and the DisableSSM flag are registered as injectable
// values alongside the option-supplied constructors.
func New(env string, opts ...Option) (Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	container := dig.New()
	if err := container.Provide(func() string { return env }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() DisableSSM { return o.disableSSM }); err != nil {
		return nil, err
	}
	if err := container.Provide(ProvideLogger); err != nil {
		return nil, err
	}

	for _, provider := range o.providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}
