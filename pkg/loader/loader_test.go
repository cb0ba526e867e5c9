package loader

import (
	"context"
	goTypes "go/types"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturesPath = "github.com/vphpersson/generic_explorer/internal/fixtures"

func TestLoader_Load(t *testing.T) {
	l := New()

	pkg, err := l.Load(context.Background(), fixturesPath)
	require.NoError(t, err)
	assert.Equal(t, "fixtures", pkg.Name())
	assert.NotNil(t, pkg.Scope().Lookup("Pair"))

	again, err := l.Load(context.Background(), fixturesPath)
	require.NoError(t, err)
	assert.Same(t, pkg, again)
}

func TestLoader_LoadConcurrent(t *testing.T) {
	l := New()

	const workers = 8
	results := make([]*goTypes.Package, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = l.Load(context.Background(), fixturesPath)
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
}

func TestLoader_LoadRegistersDependencies(t *testing.T) {
	l := New()

	pkg, err := l.Load(context.Background(), fixturesPath)
	require.NoError(t, err)

	timePackage, err := l.Load(context.Background(), "time")
	require.NoError(t, err)

	item := pkg.Scope().Lookup("Item").Type().Underlying().(*goTypes.Struct)
	createdAt := item.Field(1).Type().(*goTypes.Named)
	assert.Same(t, timePackage, createdAt.Obj().Pkg())
}

func TestLoader_LoadErrors(t *testing.T) {
	l := New()

	_, err := l.Load(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyPath)

	_, err = l.Load(context.Background(), "github.com/vphpersson/generic_explorer/internal/does_not_exist")
	require.Error(t, err)
}

func TestLoader_CancelledLoadNotCached(t *testing.T) {
	l := New()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	_, _ = l.Load(cancelled, fixturesPath)

	pkg, err := l.Load(context.Background(), fixturesPath)
	require.NoError(t, err)
	assert.Equal(t, "fixtures", pkg.Name())
}

func TestLoader_Eval(t *testing.T) {
	l := New()

	pairType, err := l.Eval(context.Background(), fixturesPath, "Pair[string, []Item]")
	require.NoError(t, err)

	named, ok := pairType.(*goTypes.Named)
	require.True(t, ok)
	assert.Equal(t, "Pair", named.Obj().Name())
	assert.Equal(t, 2, named.TypeArgs().Len())

	_, err = l.Eval(context.Background(), fixturesPath, "StatusActive")
	require.ErrorIs(t, err, ErrNotType)

	_, err = l.Eval(context.Background(), fixturesPath, "Missing[int]")
	require.Error(t, err)
}

func TestLoader_LookupNamed(t *testing.T) {
	l := New()
	ctx := context.Background()

	pair, err := l.LookupNamed(ctx, fixturesPath, "Pair")
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, 2, pair.TypeParams().Len())

	missing, err := l.LookupNamed(ctx, fixturesPath, "Missing")
	require.ErrorIs(t, err, ErrTypeNotFound)
	assert.Nil(t, missing)

	_, err = l.LookupNamed(ctx, fixturesPath, "StatusActive")
	require.ErrorIs(t, err, ErrNotTypeName)

	_, err = l.LookupNamed(ctx, fixturesPath, "IDs")
	require.ErrorIs(t, err, ErrNotNamed)
}
