package serverlessgql

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Options configures a QueryRunner.
type Options struct {
	// Introspection answers __schema and __type queries. Default true.
	Introspection bool

	// StrictResolvers makes NewQueryRunner fail when the resolver map names
	// types or fields the schema does not have, or binds a subscription
	// field with anything but a SubscriptionResolver. By default such
	// entries are ignored.
	StrictResolvers bool

	// Logger receives one entry per operation and subscription result.
	Logger *zerolog.Logger

	// TracerProvider creates one span per operation.
	TracerProvider trace.TracerProvider
}

// Option customizes a QueryRunner.
type Option func(*Options)

// WithIntrospection turns __schema and __type queries on or off.
func WithIntrospection(enable bool) Option { return func(o *Options) { o.Introspection = enable } }

// WithStrictResolvers rejects resolver maps that do not fit the schema.
func WithStrictResolvers() Option { return func(o *Options) { o.StrictResolvers = true } }

// WithLogger logs every operation and subscription result to l.
func WithLogger(l zerolog.Logger) Option { return func(o *Options) { o.Logger = &l } }

// WithTracerProvider records one span per operation with tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) { o.TracerProvider = tp }
}

func newOptions(opts []Option) Options {
	op := Options{Introspection: true}
	for _, f := range opts {
		f(&op)
	}
	return op
}
