package container

import "go.uber.org/zap"

type options struct {
	log      *zap.Logger
	observer Observer
}

// Option configures a Container at construction.
type Option func(*options)

// WithLogger sets the logger used for build and freeze events. The default
// discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log.Named("container")
		}
	}
}

// WithObserver registers an Observer notified of every resolution.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}
