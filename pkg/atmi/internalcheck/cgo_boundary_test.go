package internalcheck

import (
	"fmt"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const backendPkg = "github.com/endurox-dev/exgo/pkg/atmi/internal/backend"

// TestOnlyBackendImportsC keeps every cgo call behind the backend package.
// Files excluded by build tags are checked too, so the endurox-tagged
// sources count even when the tag is off.
func TestOnlyBackendImportsC(t *testing.T) {
	cfg := &packages.Config{
		Mode:  packages.NeedName | packages.NeedFiles,
		Tests: true,
	}

	pkgs, err := packages.Load(cfg, "github.com/endurox-dev/exgo/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	fset := token.NewFileSet()
	seen := map[string]bool{}
	var findings []string

	for _, pkg := range pkgs {
		if pkg.PkgPath == backendPkg {
			continue
		}
		files := append(append([]string{}, pkg.GoFiles...), pkg.IgnoredFiles...)
		for _, name := range files {
			if seen[name] || !strings.HasSuffix(name, ".go") {
				continue
			}
			seen[name] = true

			f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
			if err != nil {
				t.Fatalf("parse %s: %v", name, err)
			}
			for _, imp := range f.Imports {
				path, _ := strconv.Unquote(imp.Path.Value)
				if path == "C" {
					findings = append(findings, fmt.Sprintf("%s: import \"C\" outside %s", fset.Position(imp.Pos()), backendPkg))
				}
			}
		}
	}

	if len(findings) > 0 {
		t.Fatalf("cgo boundary violation:\n%s", strings.Join(findings, "\n"))
	}
}
