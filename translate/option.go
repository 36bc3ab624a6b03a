package translate

import "log/slog"

// Option configures a Registry.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	accessors map[string]Accessor
}

// WithLogger sets the logger of the registry. It defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithAccessors installs generated field tables keyed by message name,
// usually the result of the generated Accessors function. Types without a
// table fall back to reflection. Options are merged in order.
func WithAccessors(tables map[string]Accessor) Option {
	return func(o *options) {
		if o.accessors == nil {
			o.accessors = make(map[string]Accessor, len(tables))
		}
		for name, a := range tables {
			o.accessors[name] = a
		}
	}
}
