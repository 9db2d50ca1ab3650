package routedb

import (
	"io"
	"log/slog"

	"github.com/hupe1980/georoute/resource"
)

type options struct {
	logger *slog.Logger
	rc     *resource.Controller
}

// Option configures a Files bundle.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithResourceController charges caches and scans to rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
