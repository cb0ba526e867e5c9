package mentioned

import (
	goTypes "go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vphpersson/generic_explorer/internal/type_check"
	generalErrors "github.com/vphpersson/generic_explorer/pkg/errors"
	"github.com/vphpersson/generic_explorer/pkg/explorer"
	"github.com/vphpersson/generic_explorer/pkg/types/bounds_policy"
)

const fixtureSource = `package fixture

type MyInterface interface{ Do() }

type MyEnum int

const (
	A MyEnum = iota
	B
	C
)

type Custom struct{}

type Custom1P[T any] struct{ Value T }

type Custom2P[T, U any] struct {
	First  T
	Second U
}

type Custom3P[T, U, V any] struct {
	A T
	B U
	C V
}

type List[T any] []T

type Set[T comparable] map[T]struct{}

type Ordered[T any] interface{ Less(T) bool }

func CustomGeneric1PVariable[T any]() Custom1P[T] { return Custom1P[T]{} }

func CustomGeneric1PBoundVariable[T Custom]() Custom1P[T] { return Custom1P[T]{} }

func CustomGenericNestedList() Custom1P[List[string]] { return Custom1P[List[string]]{} }

func GenericArray[T any]() []T { return nil }

func BoundGenericArray[T Custom]() []T { return nil }

func ListGenericArray[T any]() List[[]T] { return nil }

func ListBoundGenericArray[T Custom]() List[[]T] { return nil }

func RecursiveBound[T Ordered[T]]() T { var t T; return t }

func ComparableBound[T comparable]() T { var t T; return t }

func UnionBound[T ~int | ~string]() []T { return nil }
`

type unknownType struct{}

func (unknownType) Underlying() goTypes.Type { return goTypes.Typ[goTypes.Invalid] }
func (unknownType) String() string          { return "unknown" }

func check(t *testing.T, pkg *type_check.Package, declaration goTypes.Type, expected ...string) {
	t.Helper()

	set, err := Get(declaration)
	require.NoError(t, err)

	if expected == nil {
		expected = []string{}
	}
	assert.Equal(t, expected, set.Names(goTypes.RelativeTo(pkg.Package)))
}

func TestGet_FailsOnNil(t *testing.T) {
	_, err := Get(nil)
	require.ErrorIs(t, err, generalErrors.ErrNilType)
}

func TestGet_FailsOnUnknownKind(t *testing.T) {
	_, err := Get(unknownType{})
	require.ErrorIs(t, err, generalErrors.ErrUnsupportedType)
}

func TestGet_Declarations(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", fixtureSource)

	testCases := []struct {
		name       string
		expression string
		expected   []string
	}{
		{name: "primitive int", expression: "int", expected: []string{"int"}},
		{name: "primitive bool", expression: "bool", expected: []string{"bool"}},
		{name: "simple string", expression: "string", expected: []string{"string"}},
		{name: "simple array", expression: "[4]int32", expected: []string{"int32"}},
		{name: "simple custom", expression: "Custom", expected: []string{"Custom"}},
		{name: "simple interface", expression: "MyInterface", expected: []string{"MyInterface"}},
		{name: "simple custom slice", expression: "[]Custom", expected: []string{"Custom"}},
		{name: "pointer", expression: "*Custom", expected: []string{"Custom"}},
		{name: "enum", expression: "MyEnum", expected: []string{"MyEnum"}},
		{name: "simple list", expression: "List[int]", expected: []string{"List", "int"}},
		{name: "list of interface", expression: "List[MyInterface]", expected: []string{"List", "MyInterface"}},
		{name: "nested list", expression: "List[Set[int]]", expected: []string{"List", "Set", "int"}},
		{name: "simple map", expression: "map[string]Custom", expected: []string{"Custom", "string"}},
		{
			name:       "nested map key",
			expression: "map[Custom1P[string]]Custom",
			expected:   []string{"Custom", "Custom1P", "string"},
		},
		{
			name:       "nested map value",
			expression: "map[string]Set[Custom]",
			expected:   []string{"Custom", "Set", "string"},
		},
		{name: "custom generic 1P", expression: "Custom1P[string]", expected: []string{"Custom1P", "string"}},
		{
			name:       "custom generic 2P",
			expression: "Custom2P[string, int]",
			expected:   []string{"Custom2P", "int", "string"},
		},
		{
			name:       "custom generic 1P interface",
			expression: "Custom1P[MyInterface]",
			expected:   []string{"Custom1P", "MyInterface"},
		},
		{name: "channel", expression: "chan<- Custom", expected: []string{"Custom"}},
		{name: "signature without results", expression: "func(int, string)", expected: []string{"int", "string"}},
		{
			name:       "struct literal",
			expression: "struct{ A Custom; B []MyEnum }",
			expected:   []string{"Custom", "MyEnum"},
		},
		{name: "empty interface", expression: "interface{}", expected: nil},
		{
			name:       "complex",
			expression: "map[Custom1P[string]]Custom2P[Set[int], Custom3P[map[Custom2P[int64, bool]]Custom, float32, int16]]",
			expected: []string{
				"Custom", "Custom1P", "Custom2P", "Custom3P", "Set", "bool", "float32", "int", "int16", "int64",
				"string",
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			check(t, pkg, pkg.MustEval(t, testCase.expression), testCase.expected...)
		})
	}
}

func TestGet_GenericDeclarations(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", fixtureSource)

	testCases := []struct {
		function string
		expected []string
	}{
		{function: "CustomGeneric1PVariable", expected: []string{"Custom1P"}},
		{function: "CustomGeneric1PBoundVariable", expected: []string{"Custom", "Custom1P"}},
		{function: "CustomGenericNestedList", expected: []string{"Custom1P", "List", "string"}},
		{function: "GenericArray", expected: nil},
		{function: "BoundGenericArray", expected: []string{"Custom"}},
		{function: "ListGenericArray", expected: []string{"List"}},
		{function: "ListBoundGenericArray", expected: []string{"Custom", "List"}},
		{function: "RecursiveBound", expected: []string{"Ordered"}},
		{function: "ComparableBound", expected: []string{"comparable"}},
		{function: "UnionBound", expected: []string{"int", "string"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.function, func(t *testing.T) {
			check(t, pkg, pkg.MustResult(t, testCase.function), testCase.expected...)
		})
	}
}

func TestGet_ImplicitBoundsProcessed(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", fixtureSource)

	testCases := []struct {
		function string
		expected []string
	}{
		{function: "GenericArray", expected: []string{"any"}},
		{function: "ListGenericArray", expected: []string{"List", "any"}},
		{function: "BoundGenericArray", expected: []string{"Custom"}},
		{function: "UnionBound", expected: []string{"int", "string"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.function, func(t *testing.T) {
			set, err := Get(
				pkg.MustResult(t, testCase.function),
				explorer.WithImplicitBoundsPolicy(bounds_policy.Process),
			)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, set.Names(goTypes.RelativeTo(pkg.Package)))
		})
	}
}

func TestGet_RawGenericType(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", fixtureSource)

	list := pkg.Package.Scope().Lookup("List").Type()
	check(t, pkg, list, "List")
}

func TestGet_Void(t *testing.T) {
	set, err := Get(goTypes.NewTuple())
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestSet_NamesQualified(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", fixtureSource)

	set, err := Get(pkg.MustEval(t, "Custom1P[int]"))
	require.NoError(t, err)

	assert.Equal(t, []string{"example.com/fixture.Custom1P", "int"}, set.Names(nil))
	assert.True(t, set.Contains(pkg.Package.Scope().Lookup("Custom1P").(*goTypes.TypeName)))
}
