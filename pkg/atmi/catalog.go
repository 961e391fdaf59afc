package atmi

import (
	"errors"
	"slices"
	"sync"
)

// ATMI domain sentinels.
var (
	ErrTPEABORT      = sentinel(DomainATMI, TPEABORT)
	ErrTPEBADDESC    = sentinel(DomainATMI, TPEBADDESC)
	ErrTPEBLOCK      = sentinel(DomainATMI, TPEBLOCK)
	ErrTPEINVAL      = sentinel(DomainATMI, TPEINVAL)
	ErrTPELIMIT      = sentinel(DomainATMI, TPELIMIT)
	ErrTPENOENT      = sentinel(DomainATMI, TPENOENT)
	ErrTPEOS         = sentinel(DomainATMI, TPEOS)
	ErrTPEPERM       = sentinel(DomainATMI, TPEPERM)
	ErrTPEPROTO      = sentinel(DomainATMI, TPEPROTO)
	ErrTPESVCERR     = sentinel(DomainATMI, TPESVCERR)
	ErrTPESVCFAIL    = sentinel(DomainATMI, TPESVCFAIL)
	ErrTPESYSTEM     = sentinel(DomainATMI, TPESYSTEM)
	ErrTPETIME       = sentinel(DomainATMI, TPETIME)
	ErrTPETRAN       = sentinel(DomainATMI, TPETRAN)
	ErrTPGOTSIG      = sentinel(DomainATMI, TPGOTSIG)
	ErrTPERMERR      = sentinel(DomainATMI, TPERMERR)
	ErrTPEITYPE      = sentinel(DomainATMI, TPEITYPE)
	ErrTPEOTYPE      = sentinel(DomainATMI, TPEOTYPE)
	ErrTPERELEASE    = sentinel(DomainATMI, TPERELEASE)
	ErrTPEHAZARD     = sentinel(DomainATMI, TPEHAZARD)
	ErrTPEHEURISTIC  = sentinel(DomainATMI, TPEHEURISTIC)
	ErrTPEEVENT      = sentinel(DomainATMI, TPEEVENT)
	ErrTPEMATCH      = sentinel(DomainATMI, TPEMATCH)
	ErrTPEDIAGNOSTIC = sentinel(DomainATMI, TPEDIAGNOSTIC)
	ErrTPEMIB        = sentinel(DomainATMI, TPEMIB)
	ErrTPERFU26      = sentinel(DomainATMI, TPERFU26)
	ErrTPERFU27      = sentinel(DomainATMI, TPERFU27)
	ErrTPERFU28      = sentinel(DomainATMI, TPERFU28)
	ErrTPERFU29      = sentinel(DomainATMI, TPERFU29)
	ErrTPINITFAIL    = sentinel(DomainATMI, TPINITFAIL)
)

// Standard library domain sentinels.
var (
	ErrNEINVALINI  = sentinel(DomainNSTD, NEINVALINI)
	ErrNEMALLOC    = sentinel(DomainNSTD, NEMALLOC)
	ErrNEUNIX      = sentinel(DomainNSTD, NEUNIX)
	ErrNEINVAL     = sentinel(DomainNSTD, NEINVAL)
	ErrNESYSTEM    = sentinel(DomainNSTD, NESYSTEM)
	ErrNEMANDATORY = sentinel(DomainNSTD, NEMANDATORY)
	ErrNEFORMAT    = sentinel(DomainNSTD, NEFORMAT)
	ErrNETOUT      = sentinel(DomainNSTD, NETOUT)
	ErrNENOCONN    = sentinel(DomainNSTD, NENOCONN)
	ErrNELIMIT     = sentinel(DomainNSTD, NELIMIT)
	ErrNEPLUGIN    = sentinel(DomainNSTD, NEPLUGIN)
	ErrNENOSPACE   = sentinel(DomainNSTD, NENOSPACE)
	ErrNEINVALKEY  = sentinel(DomainNSTD, NEINVALKEY)
)

// UBF domain sentinels.
var (
	ErrBERFU0    = sentinel(DomainUBF, BERFU0)
	ErrBALIGNERR = sentinel(DomainUBF, BALIGNERR)
	ErrBNOTFLD   = sentinel(DomainUBF, BNOTFLD)
	ErrBNOSPACE  = sentinel(DomainUBF, BNOSPACE)
	ErrBNOTPRES  = sentinel(DomainUBF, BNOTPRES)
	ErrBBADFLD   = sentinel(DomainUBF, BBADFLD)
	ErrBTYPERR   = sentinel(DomainUBF, BTYPERR)
	ErrBEUNIX    = sentinel(DomainUBF, BEUNIX)
	ErrBBADNAME  = sentinel(DomainUBF, BBADNAME)
	ErrBMALLOC   = sentinel(DomainUBF, BMALLOC)
	ErrBSYNTAX   = sentinel(DomainUBF, BSYNTAX)
	ErrBFTOPEN   = sentinel(DomainUBF, BFTOPEN)
	ErrBFTSYNTAX = sentinel(DomainUBF, BFTSYNTAX)
	ErrBEINVAL   = sentinel(DomainUBF, BEINVAL)
	ErrBERFU1    = sentinel(DomainUBF, BERFU1)
	ErrBBADTBL   = sentinel(DomainUBF, BBADTBL)
	ErrBBADVIEW  = sentinel(DomainUBF, BBADVIEW)
	ErrBVFSYNTAX = sentinel(DomainUBF, BVFSYNTAX)
	ErrBVFOPEN   = sentinel(DomainUBF, BVFOPEN)
	ErrBBADACM   = sentinel(DomainUBF, BBADACM)
	ErrBNOCNAME  = sentinel(DomainUBF, BNOCNAME)
	ErrBEBADOP   = sentinel(DomainUBF, BEBADOP)
)

// builtin holds every sentinel declared in this file, keyed by type name.
var builtin = map[string]*Error{}

func sentinel(d Domain, code int) *Error {
	e := &Error{Domain: d, Code: code, Name: CodeName(d, code)}
	builtin[e.TypeName()] = e
	return e
}

// NameSource maps a native error code to its symbolic name. An empty result
// falls back to the built-in tables.
type NameSource interface {
	ErrorName(d Domain, code int) string
}

// Catalog is the static dispatch table from composed type names to error
// sentinels.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]*Error
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
)

// DefaultCatalog returns the process-wide catalog holding every built-in
// sentinel.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() { defaultCatalog = NewCatalog() })
	return defaultCatalog
}

// NewCatalog returns a fresh catalog populated with the built-in sentinels.
func NewCatalog() *Catalog {
	c := &Catalog{types: make(map[string]*Error, len(builtin))}
	for name, e := range builtin {
		c.types[name] = e
	}
	return c
}

// Without returns a copy of c lacking the given type names.
func (c *Catalog) Without(typeNames ...string) *Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := &Catalog{types: make(map[string]*Error, len(c.types))}
	for name, e := range c.types {
		out.types[name] = e
	}
	for _, name := range typeNames {
		delete(out.types, name)
	}
	return out
}

// Register adds or replaces an entry. It is meant for codes introduced by a
// newer middleware release before this package learns about them.
func (c *Catalog) Register(e *Error) {
	c.mu.Lock()
	c.types[e.TypeName()] = e
	c.mu.Unlock()
}

// Lookup resolves a composed type name.
func (c *Catalog) Lookup(typeName string) (*Error, bool) {
	c.mu.RLock()
	e, ok := c.types[typeName]
	c.mu.RUnlock()
	return e, ok
}

// TypeNames lists the catalog keys in sorted order.
func (c *Catalog) TypeNames() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.types))
	for name := range c.types {
		out = append(out, name)
	}
	c.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Verify checks that every known code of every domain resolves, through
// names, to a catalog entry. The result joins one *CatalogMismatch per
// missing entry.
func (c *Catalog) Verify(names NameSource) error {
	var errs []error
	for _, d := range Domains {
		for _, code := range Codes(d) {
			typeName := TypeName(d, symbolicName(names, d, code))
			if _, ok := c.Lookup(typeName); !ok {
				errs = append(errs, &CatalogMismatch{Domain: d, Code: code, TypeName: typeName})
			}
		}
	}
	return errors.Join(errs...)
}

func symbolicName(names NameSource, d Domain, code int) string {
	if names != nil {
		if name := names.ErrorName(d, code); name != "" {
			return name
		}
	}
	return CodeName(d, code)
}
