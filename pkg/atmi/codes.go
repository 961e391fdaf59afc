package atmi

import "github.com/endurox-dev/exgo/pkg/atmi/internal/backend"

// Domain selects one of the disjoint native error code namespaces.
type Domain int

const (
	// DomainATMI covers transport and session errors (tperrno).
	DomainATMI Domain = backend.DomainATMI
	// DomainNSTD covers the middleware's standard library errors (Nerror).
	DomainNSTD Domain = backend.DomainNSTD
	// DomainUBF covers structured-buffer errors (Berror).
	DomainUBF Domain = backend.DomainUBF
)

// Domains lists every defined domain in catalog order.
var Domains = []Domain{DomainATMI, DomainNSTD, DomainUBF}

func (d Domain) String() string {
	switch d {
	case DomainATMI:
		return "atmi"
	case DomainNSTD:
		return "nstd"
	case DomainUBF:
		return "ubf"
	default:
		return "unknown"
	}
}

// Prefix is the fixed part of the error type names in this domain.
func (d Domain) Prefix() string {
	switch d {
	case DomainATMI:
		return "Atmi"
	case DomainNSTD:
		return "Nstd"
	case DomainUBF:
		return "Ubf"
	default:
		return ""
	}
}

// ATMI error codes.
const (
	TPEABORT      = 1
	TPEBADDESC    = 2
	TPEBLOCK      = 3
	TPEINVAL      = 4
	TPELIMIT      = 5
	TPENOENT      = 6
	TPEOS         = 7
	TPEPERM       = 8
	TPEPROTO      = 9
	TPESVCERR     = 10
	TPESVCFAIL    = 11
	TPESYSTEM     = 12
	TPETIME       = 13
	TPETRAN       = 14
	TPGOTSIG      = 15
	TPERMERR      = 16
	TPEITYPE      = 17
	TPEOTYPE      = 18
	TPERELEASE    = 19
	TPEHAZARD     = 20
	TPEHEURISTIC  = 21
	TPEEVENT      = 22
	TPEMATCH      = 23
	TPEDIAGNOSTIC = 24
	TPEMIB        = 25
	TPERFU26      = 26
	TPERFU27      = 27
	TPERFU28      = 28
	TPERFU29      = 29
	TPINITFAIL    = 30
)

// Standard library error codes.
const (
	NEINVALINI  = 1
	NEMALLOC    = 2
	NEUNIX      = 3
	NEINVAL     = 4
	NESYSTEM    = 5
	NEMANDATORY = 6
	NEFORMAT    = 7
	NETOUT      = 8
	NENOCONN    = 9
	NELIMIT     = 10
	NEPLUGIN    = 11
	NENOSPACE   = 12
	NEINVALKEY  = 13
)

// UBF error codes.
const (
	BERFU0    = 1
	BALIGNERR = 2
	BNOTFLD   = 3
	BNOSPACE  = 4
	BNOTPRES  = 5
	BBADFLD   = 6
	BTYPERR   = 7
	BEUNIX    = 8
	BBADNAME  = 9
	BMALLOC   = 10
	BSYNTAX   = 11
	BFTOPEN   = 12
	BFTSYNTAX = 13
	BEINVAL   = 14
	BERFU1    = 15
	BBADTBL   = 16
	BBADVIEW  = 17
	BVFSYNTAX = 18
	BVFOPEN   = 19
	BBADACM   = 20
	BNOCNAME  = 21
	BEBADOP   = 22
)

// Index 0 is unused in every table; native code 0 means success.
var codeNames = map[Domain][]string{
	DomainATMI: {
		"", "TPEABORT", "TPEBADDESC", "TPEBLOCK", "TPEINVAL", "TPELIMIT",
		"TPENOENT", "TPEOS", "TPEPERM", "TPEPROTO", "TPESVCERR", "TPESVCFAIL",
		"TPESYSTEM", "TPETIME", "TPETRAN", "TPGOTSIG", "TPERMERR", "TPEITYPE",
		"TPEOTYPE", "TPERELEASE", "TPEHAZARD", "TPEHEURISTIC", "TPEEVENT",
		"TPEMATCH", "TPEDIAGNOSTIC", "TPEMIB", "TPERFU26", "TPERFU27",
		"TPERFU28", "TPERFU29", "TPINITFAIL",
	},
	DomainNSTD: {
		"", "NEINVALINI", "NEMALLOC", "NEUNIX", "NEINVAL", "NESYSTEM",
		"NEMANDATORY", "NEFORMAT", "NETOUT", "NENOCONN", "NELIMIT", "NEPLUGIN",
		"NENOSPACE", "NEINVALKEY",
	},
	DomainUBF: {
		"", "BERFU0", "BALIGNERR", "BNOTFLD", "BNOSPACE", "BNOTPRES", "BBADFLD",
		"BTYPERR", "BEUNIX", "BBADNAME", "BMALLOC", "BSYNTAX", "BFTOPEN",
		"BFTSYNTAX", "BEINVAL", "BERFU1", "BBADTBL", "BBADVIEW", "BVFSYNTAX",
		"BVFOPEN", "BBADACM", "BNOCNAME", "BEBADOP",
	},
}

// CodeName returns the symbolic name of code in domain d from the built-in
// tables, or "" when the code is unknown.
func CodeName(d Domain, code int) string {
	names := codeNames[d]
	if code <= 0 || code >= len(names) {
		return ""
	}
	return names[code]
}

// Codes returns every defined code of domain d in ascending order.
func Codes(d Domain) []int {
	names := codeNames[d]
	if len(names) == 0 {
		return nil
	}
	out := make([]int, 0, len(names)-1)
	for code := 1; code < len(names); code++ {
		out = append(out, code)
	}
	return out
}

// TypeName composes the catalog key for a symbolic error name, for example
// "AtmiTPENOENTException".
func TypeName(d Domain, name string) string {
	return d.Prefix() + name + "Exception"
}
