// Package handler declares the callbacks invoked while exploring a generic type declaration.
//
// A Handler provides the domain-specific code, while the explorer owns the traversal. Every method receives the
// values already produced for the children of the type being handled, so implementations build their result
// bottom-up without recursing themselves.
package handler

import (
	goTypes "go/types"
)

type Handler[T any] interface {
	// HandleVoid handles an empty tuple, e.g. the results of a function that returns nothing.
	HandleVoid() (T, error)

	// HandleBasic handles a predeclared basic type such as int, string or unsafe.Pointer.
	HandleBasic(basic *goTypes.Basic) (T, error)

	// HandleNamed handles a defined type that is neither an enum nor instantiated. A generic type referenced
	// without type arguments (its origin) is handled here too.
	HandleNamed(named *goTypes.Named) (T, error)

	// HandleEnum handles a defined type whose underlying type is basic and for which the declaring package
	// declares constants of exactly that type. The constants are given in declaration order.
	HandleEnum(named *goTypes.Named, constants []*goTypes.Const) (T, error)

	// HandleInstantiated handles an instantiated generic type. handledOrigin is the value associated with the
	// generic origin, and handledTypeArguments are the values associated with the type arguments, in the order
	// of the type parameter declaration.
	HandleInstantiated(named *goTypes.Named, handledOrigin T, handledTypeArguments []T) (T, error)

	// HandleAlias handles an alias declaration. handledTarget is the value associated with the aliased type.
	HandleAlias(alias *goTypes.Alias, handledTarget T) (T, error)

	// HandleElem handles a pointer, slice, array or channel type. handledElem is the value associated with the
	// element type.
	HandleElem(t goTypes.Type, handledElem T) (T, error)

	HandleMap(m *goTypes.Map, handledKey T, handledElem T) (T, error)

	// HandleStruct handles a struct literal type. handledFields are in field declaration order.
	HandleStruct(s *goTypes.Struct, handledFields []T) (T, error)

	// HandleTuple handles a non-empty tuple. Empty tuples are handed to HandleVoid.
	HandleTuple(tuple *goTypes.Tuple, handledElems []T) (T, error)

	// HandleSignature handles a function type. handledParams and handledResults are the values associated with
	// the parameter and result tuples.
	HandleSignature(signature *goTypes.Signature, handledParams T, handledResults T) (T, error)

	// HandleInterface handles an interface literal. handledEmbedded are the values associated with the explicitly
	// embedded types, and handledMethods the values associated with the signatures of the explicit methods.
	HandleInterface(iface *goTypes.Interface, handledEmbedded []T, handledMethods []T) (T, error)

	// HandleUnion handles a union of terms, such as ~int | ~string. handledTerms are the values associated with
	// the term types, in order; whether a term has a tilde is available from union.Term(i).Tilde().
	HandleUnion(union *goTypes.Union, handledTerms []T) (T, error)

	// HandleTypeParam handles a type parameter. handledBounds are the values associated with the bounds of its
	// constraint, in declaration order. It is empty for an unconstrained parameter under the Ignore policy, and
	// for a parameter that was already visited during the same exploration.
	HandleTypeParam(typeParam *goTypes.TypeParam, handledBounds []T) (T, error)
}
