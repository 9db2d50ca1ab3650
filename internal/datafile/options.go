package datafile

import (
	"io"
	"log/slog"

	"github.com/hupe1980/georoute/resource"
)

// Config names the files of an IndexedFile and sizes its caches.
type Config struct {
	// DataName is the record file inside the blob store.
	DataName string
	// DataMagic is the expected magic of the record file.
	DataMagic uint32
	// IndexName is the id → offset index file. Empty disables id lookups.
	IndexName string
	// IndexMagic is the expected magic of the index file.
	IndexMagic uint32
	// IndexCacheSize bounds the number of cached index lookups.
	IndexCacheSize int
	// DataCacheSize bounds the number of cached decoded records.
	DataCacheSize int
}

type options struct {
	rc             *resource.Controller
	logger         *slog.Logger
	readBufferSize int
	scanBufferSize int
}

// Option configures an IndexedFile.
type Option func(*options)

// WithResourceController charges cached records and scan IO to rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithLogger sets the logger. Nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithReadBufferSize sets the buffer used to decode a single record from a
// non-mapped file. Defaults to 512 bytes.
func WithReadBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readBufferSize = n
		}
	}
}

// WithScanBufferSize sets the buffer of sequential scans. Defaults to 64 KiB.
func WithScanBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.scanBufferSize = n
		}
	}
}

func defaultOptions() options {
	return options{
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		readBufferSize: 512,
		scanBufferSize: 64 << 10,
	}
}
