package tiff

import (
	"encoding/binary"
	"log/slog"
	"sync/atomic"
)

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger replaces the logger used when no WithLogger option is given.
// A nil logger restores slog.Default.
func SetLogger(l *slog.Logger) {
	pkgLogger.Store(l)
}

func defaultLogger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// An Option configures a Reader, a Writer or a FileDirectory.
type Option func(*options)

type options struct {
	cache     CachePolicy
	cacheSize int
	logger    *slog.Logger
	order     binary.ByteOrder
}

func newOptions(opts []Option) options {
	o := options{
		cache:     CacheSingleBlock,
		cacheSize: DefaultLRUCacheSize,
		order:     binary.BigEndian,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = defaultLogger()
	}
	return o
}

// WithCache selects the decoded block cache policy of read directories.
func WithCache(policy CachePolicy) Option {
	return func(o *options) {
		o.cache = policy
	}
}

// WithCacheSize sets the capacity of the CacheLRU policy.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithByteOrder sets the byte order of written files. Big endian by default.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		o.order = order
	}
}
