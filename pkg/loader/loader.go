// Package loader loads type-checked packages and evaluates type expressions in their scope.
package loader

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	goTypes "go/types"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/tools/go/packages"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
)

var (
	ErrPackageErrors   = errors.New("package errors")
	ErrPackageNotFound = errors.New("package not found")
	ErrNilPackage      = errors.New("nil package")
	ErrNotType         = errors.New("not a type")
	ErrNotTypeName     = errors.New("not a type name")
	ErrNotNamed        = errors.New("not a named")
	ErrEmptyPath       = errors.New("empty package path")
	ErrTypeNotFound    = errors.New("type not found")
)

const loadMode = packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax |
	packages.NeedImports | packages.NeedDeps

type loadResult struct {
	done    chan struct{}
	fileSet *token.FileSet
	pkg     *goTypes.Package
	err     error

	// cancelled marks a load that failed because its context ended; it is not cached.
	cancelled bool
}

type Loader struct {
	dir        string
	buildFlags []string
	logger     zerolog.Logger

	mu      sync.Mutex
	results map[string]*loadResult

	// go/types does not document Eval as safe for concurrent use.
	evalMu sync.Mutex
}

type Option func(*Loader)

// WithDir sets the directory in which the go command is run; it determines the module packages resolve against.
func WithDir(dir string) Option {
	return func(l *Loader) {
		l.dir = dir
	}
}

func WithBuildFlags(flags ...string) Option {
	return func(l *Loader) {
		l.buildFlags = append(l.buildFlags, flags...)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

func New(options ...Option) *Loader {
	l := &Loader{
		logger:  zerolog.Nop(),
		results: map[string]*loadResult{},
	}

	for _, option := range options {
		if option != nil {
			option(l)
		}
	}

	return l
}

// Load returns the type-checked package with the given import path. Results, including failures, are cached;
// concurrent calls for the same path share a single load. A load cut short by its context is not cached, and
// callers waiting on it retry with their own context.
func (l *Loader) Load(ctx context.Context, pkgPath string) (*goTypes.Package, error) {
	result := l.load(ctx, pkgPath)
	return result.pkg, result.err
}

func (l *Loader) load(ctx context.Context, pkgPath string) *loadResult {
	for {
		l.mu.Lock()
		result, ok := l.results[pkgPath]
		if !ok {
			break
		}
		l.mu.Unlock()

		select {
		case <-result.done:
		case <-ctx.Done():
			return &loadResult{err: motmedelErrors.NewWithTrace(fmt.Errorf("wait for load: %w", ctx.Err()), pkgPath)}
		}

		if result.cancelled && ctx.Err() == nil {
			continue
		}
		return result
	}

	result := &loadResult{done: make(chan struct{})}
	l.results[pkgPath] = result
	l.mu.Unlock()

	defer close(result.done)

	result.fileSet, result.pkg, result.err = l.loadPackage(ctx, pkgPath)
	if result.err != nil && ctx.Err() != nil {
		result.cancelled = true

		l.mu.Lock()
		if l.results[pkgPath] == result {
			delete(l.results, pkgPath)
		}
		l.mu.Unlock()
	}

	return result
}

func (l *Loader) loadPackage(ctx context.Context, pkgPath string) (*token.FileSet, *goTypes.Package, error) {
	if pkgPath == "" {
		return nil, nil, motmedelErrors.NewWithTrace(ErrEmptyPath)
	}

	l.logger.Debug().Str("package", pkgPath).Str("dir", l.dir).Msg("loading package")

	fileSet := token.NewFileSet()
	config := &packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        l.dir,
		Fset:       fileSet,
		BuildFlags: l.buildFlags,
	}

	loadedPackages, err := packages.Load(config, pkgPath)
	if err != nil {
		return nil, nil, motmedelErrors.NewWithTrace(fmt.Errorf("packages load: %w", err), pkgPath)
	}

	var loadedPackage *packages.Package
	for _, candidate := range loadedPackages {
		if candidate.PkgPath == pkgPath || len(loadedPackages) == 1 {
			loadedPackage = candidate
			break
		}
	}
	if loadedPackage == nil {
		return nil, nil, motmedelErrors.NewWithTrace(ErrPackageNotFound, pkgPath)
	}

	if len(loadedPackage.Errors) > 0 {
		packageErrors := make([]error, 0, len(loadedPackage.Errors))
		for _, packageError := range loadedPackage.Errors {
			packageErrors = append(packageErrors, packageError)
		}
		return nil, nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: %w", ErrPackageErrors, errors.Join(packageErrors...)),
			pkgPath,
		)
	}

	if loadedPackage.Types == nil {
		return nil, nil, motmedelErrors.NewWithTrace(ErrNilPackage, pkgPath)
	}

	l.register(fileSet, loadedPackage)

	l.logger.Debug().
		Str("package", pkgPath).
		Int("scope_names", len(loadedPackage.Types.Scope().Names())).
		Msg("loaded package")

	return fileSet, loadedPackage.Types, nil
}

// register caches the dependencies of a loaded package, so that later loads of them resolve to the very same
// *types.Package and identical types stay identical across loads.
func (l *Loader) register(fileSet *token.FileSet, root *packages.Package) {
	l.mu.Lock()
	defer l.mu.Unlock()

	packages.Visit([]*packages.Package{root}, nil, func(dependency *packages.Package) {
		if dependency == root || dependency.Types == nil || len(dependency.Errors) > 0 {
			return
		}
		if _, ok := l.results[dependency.PkgPath]; ok {
			return
		}

		result := &loadResult{done: make(chan struct{}), fileSet: fileSet, pkg: dependency.Types}
		close(result.done)
		l.results[dependency.PkgPath] = result
	})
}

// Eval evaluates the type expression in the package scope of pkgPath, e.g. "Pair[string, []Item]".
func (l *Loader) Eval(ctx context.Context, pkgPath string, expression string) (goTypes.Type, error) {
	result := l.load(ctx, pkgPath)
	if result.err != nil {
		return nil, fmt.Errorf("load: %w", result.err)
	}

	l.evalMu.Lock()
	typeAndValue, err := goTypes.Eval(result.fileSet, result.pkg, token.NoPos, expression)
	l.evalMu.Unlock()
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("types eval: %w", err), pkgPath, expression)
	}
	if !typeAndValue.IsType() {
		return nil, motmedelErrors.NewWithTrace(ErrNotType, pkgPath, expression)
	}

	return typeAndValue.Type, nil
}

// LookupNamed returns the defined type declared as name in the package scope of pkgPath. For a generic type, the
// uninstantiated origin is returned.
func (l *Loader) LookupNamed(ctx context.Context, pkgPath string, name string) (*goTypes.Named, error) {
	pkg, err := l.Load(ctx, pkgPath)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	object := pkg.Scope().Lookup(name)
	if object == nil {
		return nil, motmedelErrors.NewWithTrace(ErrTypeNotFound, pkgPath, name)
	}

	typeName, ok := object.(*goTypes.TypeName)
	if !ok {
		return nil, motmedelErrors.NewWithTrace(ErrNotTypeName, pkgPath, name)
	}

	named, ok := goTypes.Unalias(typeName.Type()).(*goTypes.Named)
	if !ok {
		return nil, motmedelErrors.NewWithTrace(ErrNotNamed, pkgPath, name)
	}

	return named, nil
}
