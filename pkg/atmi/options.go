package atmi

import "github.com/endurox-dev/exgo/pkg/atmi/logging"

// Option configures a Context or a Translator.
type Option func(*options)

type options struct {
	native   Native
	logger   logging.Logger
	observer Observer
	catalog  *Catalog
	fatal    FatalFunc
	buffers  BufferTranslator
}

func buildOptions(opts []Option) options {
	o := options{
		native:   DefaultNative(),
		logger:   logging.New(nil),
		observer: nopObserver{},
		catalog:  DefaultCatalog(),
		fatal:    abortProcess,
		buffers:  typesTranslator{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithNative selects the native layer. Tests pass atmitest.Native.
func WithNative(n Native) Option {
	return func(o *options) {
		if n != nil {
			o.native = n
		}
	}
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver attaches a lifecycle observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithCatalog replaces the error catalog.
func WithCatalog(c *Catalog) Option {
	return func(o *options) {
		if c != nil {
			o.catalog = c
		}
	}
}

// WithFatal replaces the catalog mismatch hook.
func WithFatal(fn FatalFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.fatal = fn
		}
	}
}

// WithBufferTranslator replaces the payload translator used by the value
// marshaller.
func WithBufferTranslator(bt BufferTranslator) Option {
	return func(o *options) {
		if bt != nil {
			o.buffers = bt
		}
	}
}
