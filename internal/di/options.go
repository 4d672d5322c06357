package di

// DisableSSM switches configuration lookups from Parameter Store to plain
// environment variables.
type DisableSSM bool

// Option is a function that configures the dependency injection container.
type Option func(*options)

func WithDisableSSM(disable bool) Option {
	return func(opts *options) {
		opts.disableSSM = DisableSSM(disable)
	}
}

// WithProviders adds constructor functions to the dependency injection
// container. Providers can declare dependencies as function parameters,
// which are resolved by the container.
func WithProviders(providers ...any) Option {
	return func(opts *options) {
		opts.providers = append(opts.providers, providers...)
	}
}

type options struct {
	disableSSM DisableSSM
	providers  []any
}
