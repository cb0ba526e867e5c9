// Package type_check type-checks Go source held in memory. It is used by tests to obtain go/types values for
// declarations written inline.
package type_check

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	goTypes "go/types"
	"testing"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
)

type Package struct {
	FileSet *token.FileSet
	Package *goTypes.Package
}

func Check(path string, sources ...string) (*Package, error) {
	fileSet := token.NewFileSet()

	files := make([]*ast.File, 0, len(sources))
	for i, source := range sources {
		file, err := parser.ParseFile(fileSet, fmt.Sprintf("source_%d.go", i), source, parser.SkipObjectResolution)
		if err != nil {
			return nil, motmedelErrors.NewWithTrace(fmt.Errorf("parser parse file: %w", err), source)
		}
		files = append(files, file)
	}

	config := goTypes.Config{Importer: importer.Default()}
	pkg, err := config.Check(path, fileSet, files, nil)
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("types config check: %w", err), path)
	}

	return &Package{FileSet: fileSet, Package: pkg}, nil
}

// Eval evaluates a type expression in the package scope.
func (p *Package) Eval(expression string) (goTypes.Type, error) {
	typeAndValue, err := goTypes.Eval(p.FileSet, p.Package, token.NoPos, expression)
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("types eval: %w", err), expression)
	}
	if !typeAndValue.IsType() {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("%q is not a type", expression))
	}

	return typeAndValue.Type, nil
}

// Result returns the result type of the package-level function with the given name.
func (p *Package) Result(functionName string) (goTypes.Type, error) {
	function, ok := p.Package.Scope().Lookup(functionName).(*goTypes.Func)
	if !ok {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("%q is not a function", functionName))
	}

	results := function.Signature().Results()
	if results.Len() != 1 {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("%q does not have a single result", functionName))
	}

	return results.At(0).Type(), nil
}

func MustCheck(tb testing.TB, path string, sources ...string) *Package {
	tb.Helper()

	pkg, err := Check(path, sources...)
	if err != nil {
		tb.Fatalf("check: %v", err)
	}

	return pkg
}

func (p *Package) MustEval(tb testing.TB, expression string) goTypes.Type {
	tb.Helper()

	t, err := p.Eval(expression)
	if err != nil {
		tb.Fatalf("eval %q: %v", expression, err)
	}

	return t
}

func (p *Package) MustResult(tb testing.TB, functionName string) goTypes.Type {
	tb.Helper()

	t, err := p.Result(functionName)
	if err != nil {
		tb.Fatalf("result %q: %v", functionName, err)
	}

	return t
}
