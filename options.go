package georoute

import (
	"github.com/hupe1980/georoute/matcher"
	"github.com/hupe1980/georoute/resource"
	"github.com/hupe1980/georoute/routedb"
	"github.com/hupe1980/georoute/router"
	"github.com/hupe1980/georoute/search"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	rc               *resource.Controller
	matcher          matcher.Matcher
	engine           search.Engine
	filesConfig      routedb.FilesConfig
	cellCache        bool
	routerOptions    []router.Option
}

// Option configures a Service.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController shares rc between all databases. It bounds the
// memory of the record caches, the number of concurrent match runs and
// the IO rate of sequential scans.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithMatcher replaces the cross-database node matcher.
func WithMatcher(m matcher.Matcher) Option {
	return func(o *options) {
		o.matcher = m
	}
}

// WithSearchEngine replaces the route search engine used for same- and
// cross-database routes.
func WithSearchEngine(e search.Engine) Option {
	return func(o *options) {
		o.engine = e
	}
}

// WithFileCacheSizes sets the cache sizes of every database.
// Sizes are fixed for the lifetime of the Service.
func WithFileCacheSizes(cfg routedb.FilesConfig) Option {
	return func(o *options) {
		o.filesConfig = cfg
	}
}

// WithMatcherCellCache keeps the cell set of every database between match
// runs instead of scanning both databases twice per cross-database query.
// It has no effect together with WithMatcher.
func WithMatcherCellCache(enabled bool) Option {
	return func(o *options) {
		o.cellCache = enabled
	}
}

// WithRouterOptions passes additional options to every per-database router.
func WithRouterOptions(opts ...router.Option) Option {
	return func(o *options) {
		o.routerOptions = append(o.routerOptions, opts...)
	}
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		filesConfig:      routedb.DefaultFilesConfig(),
	}
}
