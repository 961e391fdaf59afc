package internalcheck

import (
	"fmt"
	"go/ast"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestLibraryDoesNotPrint makes library code log through the logging
// facade instead of writing to stdout or the standard logger.
func TestLibraryDoesNotPrint(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedFiles | packages.NeedName,
	}

	pkgs, err := packages.Load(cfg,
		"github.com/endurox-dev/exgo/pkg/atmi",
		"github.com/endurox-dev/exgo/pkg/atmi/xadrv",
		"github.com/endurox-dev/exgo/pkg/atmi/metrics",
	)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var findings []string

	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				selector, ok := call.Fun.(*ast.SelectorExpr)
				if !ok {
					return true
				}
				obj := pkg.TypesInfo.Uses[selector.Sel]
				if obj == nil || obj.Pkg() == nil {
					return true
				}
				if forbiddenPrint(obj.Pkg().Path(), obj.Name()) {
					pos := pkg.Fset.Position(call.Pos())
					findings = append(findings, fmt.Sprintf("%s: %s.%s in library code", pos, obj.Pkg().Name(), obj.Name()))
				}
				return true
			})
		}
	}

	if len(findings) > 0 {
		t.Fatalf("logging policy violation:\n%s", strings.Join(findings, "\n"))
	}
}

func forbiddenPrint(pkgPath, name string) bool {
	switch pkgPath {
	case "fmt":
		switch name {
		case "Print", "Printf", "Println":
			return true
		}
	case "log":
		return true
	}
	return false
}
