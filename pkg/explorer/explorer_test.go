package explorer

import (
	"errors"
	"fmt"
	goTypes "go/types"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vphpersson/generic_explorer/internal/type_check"
	generalErrors "github.com/vphpersson/generic_explorer/pkg/errors"
	"github.com/vphpersson/generic_explorer/pkg/types/bounds_policy"
)

const source = `package fixture

type Color int

const (
	Red Color = iota
	Green
	Blue
)

type Plain struct{}

type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

type Node[T Ordered[T]] struct{ Value T }

type Ordered[T any] interface{ Less(T) bool }

type Alias = Pair[string, int]

type Number interface{ ~int | ~float64 }

func Unbounded[T any]() T { var t T; return t }

func Bounded[T interface{ ~int | ~float64 }]() []T { return nil }

func NamedBound[T Number]() T { var t T; return t }

func Recursive[T Ordered[T]]() map[string]T { return nil }

type Stringer interface{ String() string }

func MultiEmbedded[T interface{ comparable; Stringer }]() T { var t T; return t }

func WithMethods[T interface{ ~int; String() string }]() T { var t T; return t }

type Level int

const (
	LevelLow Level = iota
	LevelHigh
	levelMax
)

type mode int

const (
	modeA mode = iota
	modeB
)
`

var errHandlerFailure = errors.New("handler failure")

// recorder renders a Go-like description of each type and records the order of the handler calls.
type recorder struct {
	calls []string
	fail  string
}

func (r *recorder) record(call string, value string) (string, error) {
	r.calls = append(r.calls, call)
	if r.fail != "" && call == r.fail {
		return "", errHandlerFailure
	}
	return value, nil
}

func (r *recorder) HandleVoid() (string, error) {
	return r.record("void", "void")
}

func (r *recorder) HandleBasic(basic *goTypes.Basic) (string, error) {
	return r.record("basic", basic.Name())
}

func (r *recorder) HandleNamed(named *goTypes.Named) (string, error) {
	return r.record("named", named.Obj().Name())
}

func (r *recorder) HandleEnum(named *goTypes.Named, constants []*goTypes.Const) (string, error) {
	names := make([]string, len(constants))
	for i, constant := range constants {
		names[i] = constant.Name()
	}
	return r.record("enum", fmt.Sprintf("%s(%s)", named.Obj().Name(), strings.Join(names, "|")))
}

func (r *recorder) HandleInstantiated(_ *goTypes.Named, origin string, arguments []string) (string, error) {
	return r.record("instantiated", fmt.Sprintf("%s[%s]", origin, strings.Join(arguments, ", ")))
}

func (r *recorder) HandleAlias(alias *goTypes.Alias, target string) (string, error) {
	return r.record("alias", fmt.Sprintf("%s=%s", alias.Obj().Name(), target))
}

func (r *recorder) HandleElem(t goTypes.Type, elem string) (string, error) {
	switch tt := t.(type) {
	case *goTypes.Pointer:
		return r.record("elem", "*"+elem)
	case *goTypes.Slice:
		return r.record("elem", "[]"+elem)
	case *goTypes.Array:
		return r.record("elem", fmt.Sprintf("[%d]%s", tt.Len(), elem))
	default:
		return r.record("elem", "chan "+elem)
	}
}

func (r *recorder) HandleMap(_ *goTypes.Map, key string, elem string) (string, error) {
	return r.record("map", fmt.Sprintf("map[%s]%s", key, elem))
}

func (r *recorder) HandleStruct(_ *goTypes.Struct, fields []string) (string, error) {
	return r.record("struct", fmt.Sprintf("struct{%s}", strings.Join(fields, "; ")))
}

func (r *recorder) HandleTuple(_ *goTypes.Tuple, elems []string) (string, error) {
	return r.record("tuple", fmt.Sprintf("(%s)", strings.Join(elems, ", ")))
}

func (r *recorder) HandleSignature(_ *goTypes.Signature, params string, results string) (string, error) {
	return r.record("signature", fmt.Sprintf("func%s %s", params, results))
}

func (r *recorder) HandleInterface(_ *goTypes.Interface, embedded []string, methods []string) (string, error) {
	return r.record(
		"interface",
		fmt.Sprintf("interface{%s}", strings.Join(append(append([]string{}, embedded...), methods...), "; ")),
	)
}

func (r *recorder) HandleUnion(union *goTypes.Union, terms []string) (string, error) {
	rendered := make([]string, len(terms))
	for i, term := range terms {
		if union.Term(i).Tilde() {
			term = "~" + term
		}
		rendered[i] = term
	}
	return r.record("union", strings.Join(rendered, " | "))
}

func (r *recorder) HandleTypeParam(typeParam *goTypes.TypeParam, bounds []string) (string, error) {
	return r.record("type param", fmt.Sprintf("%s<%s>", typeParam.Obj().Name(), strings.Join(bounds, " & ")))
}

func TestExplore_Render(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", source)

	testCases := []struct {
		expression string
		expected   string
	}{
		{expression: "int", expected: "int"},
		{expression: "Plain", expected: "Plain"},
		{expression: "Color", expected: "Color(Red|Green|Blue)"},
		{expression: "*Plain", expected: "*Plain"},
		{expression: "[2][]string", expected: "[2][]string"},
		{expression: "<-chan bool", expected: "chan bool"},
		{expression: "map[Color]*Plain", expected: "map[Color(Red|Green|Blue)]*Plain"},
		{expression: "Pair[string, []int]", expected: "Pair[string, []int]"},
		{expression: "Alias", expected: "Alias=Pair[string, int]"},
		{expression: "struct{ A int; B string }", expected: "struct{int; string}"},
		{expression: "func(int) (string, error)", expected: "func(int) (string, error)"},
		{expression: "func()", expected: "funcvoid void"},
		{expression: "Number", expected: "Number"},
		{expression: "interface{ Get() int }", expected: "interface{funcvoid (int)}"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.expression, func(t *testing.T) {
			rendered, err := Explore[string](pkg.MustEval(t, testCase.expression), &recorder{})
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, rendered)
		})
	}
}

func TestExplore_ChildrenBeforeParent(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", source)

	r := &recorder{}
	_, err := Explore[string](pkg.MustEval(t, "map[string]Pair[Plain, []int]"), r)
	require.NoError(t, err)

	expected := []string{"basic", "named", "named", "basic", "elem", "instantiated", "map"}
	if diff := cmp.Diff(expected, r.calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestExplore_ImplicitBoundsPolicy(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", source)
	unbounded := pkg.MustResult(t, "Unbounded")

	ignored, err := Explore[string](unbounded, &recorder{})
	require.NoError(t, err)
	assert.Equal(t, "T<>", ignored)

	explicitIgnore, err := Explore[string](unbounded, &recorder{}, WithImplicitBoundsPolicy(bounds_policy.Ignore))
	require.NoError(t, err)
	assert.Equal(t, ignored, explicitIgnore)

	r := &recorder{}
	processed, err := Explore[string](unbounded, r, WithImplicitBoundsPolicy(bounds_policy.Process))
	require.NoError(t, err)
	assert.NotEqual(t, "T<>", processed)
	assert.Contains(t, r.calls, "interface")
}

func TestExplore_PolicyDoesNotAffectExplicitBounds(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", source)

	for _, policy := range []bounds_policy.ImplicitBoundsPolicy{bounds_policy.Ignore, bounds_policy.Process} {
		rendered, err := Explore[string](pkg.MustResult(t, "Bounded"), &recorder{}, WithImplicitBoundsPolicy(policy))
		require.NoError(t, err)
		assert.Equal(t, "[]T<~int | ~float64>", rendered, policy.String())

		rendered, err = Explore[string](pkg.MustResult(t, "NamedBound"), &recorder{}, WithImplicitBoundsPolicy(policy))
		require.NoError(t, err)
		assert.Equal(t, "T<Number>", rendered, policy.String())
	}
}

func TestExplore_ConstraintBounds(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", source)

	testCases := []struct {
		function string
		expected string
	}{
		{function: "MultiEmbedded", expected: "T<comparable & Stringer>"},
		{function: "WithMethods", expected: "T<interface{~int; funcvoid (string)}>"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.function, func(t *testing.T) {
			for _, policy := range []bounds_policy.ImplicitBoundsPolicy{bounds_policy.Ignore, bounds_policy.Process} {
				rendered, err := Explore[string](
					pkg.MustResult(t, testCase.function),
					&recorder{},
					WithImplicitBoundsPolicy(policy),
				)
				require.NoError(t, err)
				assert.Equal(t, testCase.expected, rendered, policy.String())
			}
		})
	}
}

func TestExplore_Leaf(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", source)

	isLiteral := func(t goTypes.Type) bool {
		switch t.(type) {
		case *goTypes.Struct, *goTypes.Signature, *goTypes.Interface:
			return true
		default:
			return false
		}
	}

	testCases := []struct {
		expression string
		expected   string
		calls      []string
	}{
		{expression: "struct{ A int; B Plain }", expected: "struct{}", calls: []string{"struct"}},
		{expression: "func(Plain) int", expected: "func ", calls: []string{"signature"}},
		{expression: "interface{ Get() Plain }", expected: "interface{}", calls: []string{"interface"}},
		{
			expression: "[]struct{ A Plain }",
			expected:   "[]struct{}",
			calls:      []string{"struct", "elem"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.expression, func(t *testing.T) {
			r := &recorder{}
			rendered, err := Explore[string](pkg.MustEval(t, testCase.expression), r, WithLeaf(isLiteral))
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, rendered)
			assert.Equal(t, testCase.calls, r.calls)
		})
	}
}

func TestExplore_RecursiveBoundTerminates(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", source)

	rendered, err := Explore[string](pkg.MustResult(t, "Recursive"), &recorder{})
	require.NoError(t, err)
	assert.Equal(t, "map[string]T<Ordered[T<>]>", rendered)
}

func TestExplore_FreshStatePerCall(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", source)
	recursive := pkg.MustResult(t, "Recursive")

	first, err := Explore[string](recursive, &recorder{})
	require.NoError(t, err)
	second, err := Explore[string](recursive, &recorder{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExplore_Errors(t *testing.T) {
	_, err := Explore[string](nil, &recorder{})
	require.ErrorIs(t, err, generalErrors.ErrNilType)

	_, err = Explore[string](goTypes.Typ[goTypes.Int], nil)
	require.ErrorIs(t, err, generalErrors.ErrNilHandler)

	pkg := type_check.MustCheck(t, "example.com/fixture", source)
	r := &recorder{fail: "elem"}
	_, err = Explore[string](pkg.MustEval(t, "map[string][]int"), r)
	require.ErrorIs(t, err, errHandlerFailure)
	assert.NotContains(t, r.calls, "map")
}

func TestExploreAll(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", source)

	values, err := ExploreAll[string](
		[]goTypes.Type{pkg.MustEval(t, "int"), pkg.MustEval(t, "[]Plain")},
		&recorder{},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "[]Plain"}, values)

	_, err = ExploreAll[string]([]goTypes.Type{pkg.MustEval(t, "int"), nil}, &recorder{})
	require.ErrorIs(t, err, generalErrors.ErrNilType)
}

func TestEnumConstants(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", source)

	color := pkg.MustEval(t, "Color").(*goTypes.Named)
	constants := EnumConstants(color)
	require.Len(t, constants, 3)
	assert.Equal(t, "Red", constants[0].Name())
	assert.Equal(t, "Blue", constants[2].Name())

	assert.Empty(t, EnumConstants(pkg.MustEval(t, "Plain").(*goTypes.Named)))

	// Unexported constants of an exported type are left out.
	levels := EnumConstants(pkg.MustEval(t, "Level").(*goTypes.Named))
	require.Len(t, levels, 2)
	assert.Equal(t, "LevelHigh", levels[1].Name())

	assert.Len(t, EnumConstants(pkg.MustEval(t, "mode").(*goTypes.Named)), 2)
}

func TestIsImplicitBound(t *testing.T) {
	pkg := type_check.MustCheck(t, "example.com/fixture", source)

	assert.True(t, IsImplicitBound(pkg.MustEval(t, "interface{}")))
	assert.True(t, IsImplicitBound(pkg.MustEval(t, "any")))
	assert.False(t, IsImplicitBound(pkg.MustEval(t, "comparable")))
	assert.False(t, IsImplicitBound(pkg.MustEval(t, "Number")))
}
