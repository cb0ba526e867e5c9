// Package explorer recursively explores a generic type declaration, calling a handler.Handler on each type
// encountered.
//
// Children are always explored before their parent is handed to the handler. Defined types are leaves: their
// underlying types are not explored, only their type arguments when instantiated.
package explorer

import (
	"fmt"
	goTypes "go/types"

	generalErrors "github.com/vphpersson/generic_explorer/pkg/errors"
	"github.com/vphpersson/generic_explorer/pkg/types/bounds_policy"
	"github.com/vphpersson/generic_explorer/pkg/types/handler"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
	"github.com/Motmedel/utils_go/pkg/utils"
)

type Config struct {
	ImplicitBoundsPolicy bounds_policy.ImplicitBoundsPolicy
	IsLeaf               func(goTypes.Type) bool
}

type Option func(*Config)

func WithImplicitBoundsPolicy(policy bounds_policy.ImplicitBoundsPolicy) Option {
	return func(config *Config) {
		config.ImplicitBoundsPolicy = policy
	}
}

// WithLeaf makes the explorer stop at the struct, signature and interface literals for which isLeaf returns true:
// their children are not explored, and the handler receives zero values in their place.
func WithLeaf(isLeaf func(goTypes.Type) bool) Option {
	return func(config *Config) {
		config.IsLeaf = isLeaf
	}
}

type explorer[T any] struct {
	handler              handler.Handler[T]
	implicitBoundsPolicy bounds_policy.ImplicitBoundsPolicy
	isLeaf               func(goTypes.Type) bool
	resolvedTypeParams   map[*goTypes.TypeParam]struct{}
}

// Explore recursively explores t using h, and returns the value h produced for t.
func Explore[T any](t goTypes.Type, h handler.Handler[T], options ...Option) (T, error) {
	var zero T

	if utils.IsNil(h) {
		return zero, motmedelErrors.NewWithTrace(generalErrors.ErrNilHandler)
	}

	var config Config
	for _, option := range options {
		if option != nil {
			option(&config)
		}
	}

	e := &explorer[T]{
		handler:              h,
		implicitBoundsPolicy: config.ImplicitBoundsPolicy,
		isLeaf:               config.IsLeaf,
		resolvedTypeParams:   map[*goTypes.TypeParam]struct{}{},
	}

	return e.explore(t)
}

// ExploreAll explores each type independently, as if Explore were called once per type.
func ExploreAll[T any](typeList []goTypes.Type, h handler.Handler[T], options ...Option) ([]T, error) {
	values := make([]T, 0, len(typeList))
	for i, t := range typeList {
		value, err := Explore(t, h, options...)
		if err != nil {
			return nil, motmedelErrors.New(fmt.Errorf("explore (index %d): %w", i, err), t)
		}
		values = append(values, value)
	}

	return values, nil
}

func (e *explorer[T]) explore(t goTypes.Type) (T, error) {
	var zero T

	if t == nil {
		return zero, motmedelErrors.NewWithTrace(generalErrors.ErrNilType)
	}

	if e.isLeaf != nil && e.isLeaf(t) {
		switch tt := t.(type) {
		case *goTypes.Struct:
			value, err := e.handler.HandleStruct(tt, nil)
			return handled(value, err, t, "handle struct")
		case *goTypes.Signature:
			value, err := e.handler.HandleSignature(tt, zero, zero)
			return handled(value, err, t, "handle signature")
		case *goTypes.Interface:
			value, err := e.handler.HandleInterface(tt, nil, nil)
			return handled(value, err, t, "handle interface")
		}
	}

	switch tt := t.(type) {
	case *goTypes.Basic:
		value, err := e.handler.HandleBasic(tt)
		return handled(value, err, t, "handle basic")
	case *goTypes.Named:
		return e.exploreNamed(tt)
	case *goTypes.Alias:
		target, err := e.explore(tt.Rhs())
		if err != nil {
			return zero, err
		}
		value, err := e.handler.HandleAlias(tt, target)
		return handled(value, err, t, "handle alias")
	case *goTypes.Pointer:
		return e.exploreElem(tt, tt.Elem())
	case *goTypes.Slice:
		return e.exploreElem(tt, tt.Elem())
	case *goTypes.Array:
		return e.exploreElem(tt, tt.Elem())
	case *goTypes.Chan:
		return e.exploreElem(tt, tt.Elem())
	case *goTypes.Map:
		key, err := e.explore(tt.Key())
		if err != nil {
			return zero, err
		}
		elem, err := e.explore(tt.Elem())
		if err != nil {
			return zero, err
		}
		value, err := e.handler.HandleMap(tt, key, elem)
		return handled(value, err, t, "handle map")
	case *goTypes.Struct:
		fields := make([]goTypes.Type, tt.NumFields())
		for i := range tt.NumFields() {
			fields[i] = tt.Field(i).Type()
		}
		handledFields, err := e.exploreAll(fields)
		if err != nil {
			return zero, err
		}
		value, err := e.handler.HandleStruct(tt, handledFields)
		return handled(value, err, t, "handle struct")
	case *goTypes.Tuple:
		// A nil tuple is a valid empty tuple.
		if tt.Len() == 0 {
			value, err := e.handler.HandleVoid()
			return handled(value, err, t, "handle void")
		}
		elems := make([]goTypes.Type, tt.Len())
		for i := range tt.Len() {
			elems[i] = tt.At(i).Type()
		}
		handledElems, err := e.exploreAll(elems)
		if err != nil {
			return zero, err
		}
		value, err := e.handler.HandleTuple(tt, handledElems)
		return handled(value, err, t, "handle tuple")
	case *goTypes.Signature:
		params, err := e.explore(tt.Params())
		if err != nil {
			return zero, err
		}
		results, err := e.explore(tt.Results())
		if err != nil {
			return zero, err
		}
		value, err := e.handler.HandleSignature(tt, params, results)
		return handled(value, err, t, "handle signature")
	case *goTypes.Interface:
		embedded := make([]goTypes.Type, tt.NumEmbeddeds())
		for i := range tt.NumEmbeddeds() {
			embedded[i] = tt.EmbeddedType(i)
		}
		handledEmbedded, err := e.exploreAll(embedded)
		if err != nil {
			return zero, err
		}
		methods := make([]goTypes.Type, tt.NumExplicitMethods())
		for i := range tt.NumExplicitMethods() {
			methods[i] = tt.ExplicitMethod(i).Type()
		}
		handledMethods, err := e.exploreAll(methods)
		if err != nil {
			return zero, err
		}
		value, err := e.handler.HandleInterface(tt, handledEmbedded, handledMethods)
		return handled(value, err, t, "handle interface")
	case *goTypes.Union:
		terms := make([]goTypes.Type, tt.Len())
		for i := range tt.Len() {
			terms[i] = tt.Term(i).Type()
		}
		handledTerms, err := e.exploreAll(terms)
		if err != nil {
			return zero, err
		}
		value, err := e.handler.HandleUnion(tt, handledTerms)
		return handled(value, err, t, "handle union")
	case *goTypes.TypeParam:
		return e.exploreTypeParam(tt)
	default:
		return zero, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: %T", generalErrors.ErrUnsupportedType, t),
			t,
		)
	}
}

func (e *explorer[T]) exploreNamed(named *goTypes.Named) (T, error) {
	var zero T

	if typeArguments := named.TypeArgs(); typeArguments.Len() > 0 {
		origin, err := e.explore(named.Origin())
		if err != nil {
			return zero, err
		}

		arguments := make([]goTypes.Type, typeArguments.Len())
		for i := range typeArguments.Len() {
			arguments[i] = typeArguments.At(i)
		}
		handledArguments, err := e.exploreAll(arguments)
		if err != nil {
			return zero, err
		}

		value, err := e.handler.HandleInstantiated(named, origin, handledArguments)
		return handled(value, err, named, "handle instantiated")
	}

	if constants := EnumConstants(named); len(constants) > 0 {
		value, err := e.handler.HandleEnum(named, constants)
		return handled(value, err, named, "handle enum")
	}

	value, err := e.handler.HandleNamed(named)
	return handled(value, err, named, "handle named")
}

func (e *explorer[T]) exploreElem(t goTypes.Type, elem goTypes.Type) (T, error) {
	handledElem, err := e.explore(elem)
	if err != nil {
		var zero T
		return zero, err
	}

	value, err := e.handler.HandleElem(t, handledElem)
	return handled(value, err, t, "handle elem")
}

func (e *explorer[T]) exploreTypeParam(typeParam *goTypes.TypeParam) (T, error) {
	if _, ok := e.resolvedTypeParams[typeParam]; ok {
		// The bounds are ignored when already resolved to avoid infinite recursion.
		value, err := e.handler.HandleTypeParam(typeParam, nil)
		return handled(value, err, typeParam, "handle type param")
	}
	e.resolvedTypeParams[typeParam] = struct{}{}

	handledBounds, err := e.exploreAll(e.significantBounds(typeParam))
	if err != nil {
		var zero T
		return zero, err
	}

	value, err := e.handler.HandleTypeParam(typeParam, handledBounds)
	return handled(value, err, typeParam, "handle type param")
}

// significantBounds returns the bounds of the type parameter's constraint that are subject to exploration.
func (e *explorer[T]) significantBounds(typeParam *goTypes.TypeParam) []goTypes.Type {
	constraint := typeParam.Constraint()
	if constraint == nil {
		return nil
	}

	if IsImplicitBound(constraint) {
		switch e.implicitBoundsPolicy {
		case bounds_policy.Ignore:
			return nil
		default:
			return []goTypes.Type{constraint}
		}
	}

	// An interface literal consisting only of embedded elements, such as interface{ ~int | ~string } or the
	// implicit interface of [T ~int | ~string], has one bound per element.
	if iface, ok := constraint.(*goTypes.Interface); ok && iface.NumExplicitMethods() == 0 && iface.NumEmbeddeds() > 0 {
		bounds := make([]goTypes.Type, iface.NumEmbeddeds())
		for i := range iface.NumEmbeddeds() {
			bounds[i] = iface.EmbeddedType(i)
		}
		return bounds
	}

	return []goTypes.Type{constraint}
}

func (e *explorer[T]) exploreAll(typeList []goTypes.Type) ([]T, error) {
	values := make([]T, 0, len(typeList))
	for _, t := range typeList {
		value, err := e.explore(t)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return values, nil
}

func handled[T any](value T, err error, t goTypes.Type, description string) (T, error) {
	if err != nil {
		var zero T
		return zero, motmedelErrors.New(fmt.Errorf("%s: %w", description, err), t)
	}

	return value, nil
}
