package router

import (
	"io"
	"log/slog"

	"github.com/hupe1980/georoute/model"
	"github.com/hupe1980/georoute/resource"
	"github.com/hupe1980/georoute/routedb"
	"github.com/hupe1980/georoute/search"
)

// DefaultMaxLookupCells bounds the cells visited by a closest-node lookup
// before it falls back to visiting every occupied cell.
const DefaultMaxLookupCells = 4096

type options struct {
	logger         *slog.Logger
	rc             *resource.Controller
	filesConfig    routedb.FilesConfig
	engine         search.Engine
	databaseID     model.DatabaseID
	maxLookupCells int
}

// Option configures a Router.
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

// WithFilesConfig sets the cache sizes of the database files.
func WithFilesConfig(cfg routedb.FilesConfig) Option {
	return func(o *options) {
		o.filesConfig = cfg
	}
}

// WithEngine sets the search engine. Defaults to search.AStar.
func WithEngine(e search.Engine) Option {
	return func(o *options) {
		if e != nil {
			o.engine = e
		}
	}
}

// WithDatabaseID sets the id positions and route entries are tagged with.
func WithDatabaseID(id model.DatabaseID) Option {
	return func(o *options) {
		o.databaseID = id
	}
}

// WithMaxLookupCells sets the cell budget of closest-node lookups.
func WithMaxLookupCells(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLookupCells = n
		}
	}
}

func defaultOptions() options {
	return options{
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		filesConfig:    routedb.DefaultFilesConfig(),
		maxLookupCells: DefaultMaxLookupCells,
	}
}
