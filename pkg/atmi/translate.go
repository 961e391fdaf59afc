package atmi

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/endurox-dev/exgo/pkg/atmi/logging"
)

// ExitCatalogMismatch is the process exit status used when the error catalog
// is out of sync with the native error codes. It matches the status of an
// aborted process.
const ExitCatalogMismatch = 134

// FatalFunc terminates the process on a catalog mismatch. Replacing it is
// only meant for fault-injection tests; if it returns, the translator panics
// with the mismatch.
type FatalFunc func(*CatalogMismatch)

func abortProcess(m *CatalogMismatch) {
	fmt.Fprintln(os.Stderr, m.Error())
	os.Exit(ExitCatalogMismatch)
}

// Translator converts native error records into catalog errors.
type Translator struct {
	names   NameSource
	catalog *Catalog
	log     logging.Logger
	obs     Observer
	fatal   FatalFunc
}

// NewTranslator builds a translator from the native name source, catalog,
// logger, observer and fatal hook found in opts.
func NewTranslator(opts ...Option) *Translator {
	return newTranslator(buildOptions(opts))
}

func newTranslator(o options) *Translator {
	return &Translator{
		names:   o.native,
		catalog: o.catalog,
		log:     o.logger.With("component", "translator"),
		obs:     o.observer,
		fatal:   o.fatal,
	}
}

// Translate resolves the catalog entry for (d, code) and returns a new error
// of that type carrying msg unchanged. A missing entry never returns: the
// fatal hook runs and, should it come back, Translate panics.
func (t *Translator) Translate(d Domain, code int, msg string) error {
	typeName := TypeName(d, symbolicName(t.names, d, code))
	proto, ok := t.catalog.Lookup(typeName)
	if !ok {
		m := &CatalogMismatch{Domain: d, Code: code, TypeName: typeName}
		t.log.Error(context.Background(), "error type not found in catalog",
			"type", typeName, "domain", d.String(), "code", code)
		t.fatal(m)
		panic(m)
	}
	t.log.Info(context.Background(), "raising native error", "type", typeName, "message", msg)
	t.obs.ErrorTranslated(typeName)
	return &Error{Domain: proto.Domain, Code: proto.Code, Name: proto.Name, Message: msg}
}

// Raise translates err when it is an ErrorRecord and returns any other error
// unchanged.
func (t *Translator) Raise(err error) error {
	if err == nil {
		return nil
	}
	var rec *ErrorRecord
	if errors.As(err, &rec) {
		return t.Translate(rec.Domain, rec.Code, rec.Message)
	}
	return err
}
