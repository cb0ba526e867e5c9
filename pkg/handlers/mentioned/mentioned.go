// Package mentioned collects the type names mentioned anywhere in a generic type declaration.
package mentioned

import (
	"fmt"
	goTypes "go/types"
	"slices"

	"github.com/vphpersson/generic_explorer/pkg/explorer"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
)

type Set map[*goTypes.TypeName]struct{}

func (s Set) Contains(typeName *goTypes.TypeName) bool {
	_, ok := s[typeName]
	return ok
}

// Names returns the sorted names of the set members, qualified using qualifier. A nil qualifier yields
// package-path qualified names.
func (s Set) Names(qualifier goTypes.Qualifier) []string {
	names := make([]string, 0, len(s))
	for typeName := range s {
		pkg := typeName.Pkg()
		if pkg == nil {
			names = append(names, typeName.Name())
			continue
		}

		prefix := pkg.Path()
		if qualifier != nil {
			prefix = qualifier(pkg)
		}
		if prefix == "" {
			names = append(names, typeName.Name())
			continue
		}

		names = append(names, prefix+"."+typeName.Name())
	}

	slices.Sort(names)

	return names
}

func union(sets ...Set) Set {
	result := Set{}
	for _, set := range sets {
		for typeName := range set {
			result[typeName] = struct{}{}
		}
	}
	return result
}

func singleton(typeName *goTypes.TypeName) Set {
	if typeName == nil {
		return Set{}
	}
	return Set{typeName: {}}
}

type Handler struct{}

func (Handler) HandleVoid() (Set, error) {
	return Set{}, nil
}

func (Handler) HandleBasic(basic *goTypes.Basic) (Set, error) {
	// Untyped basic types have no universe object.
	typeName, _ := goTypes.Universe.Lookup(basic.Name()).(*goTypes.TypeName)
	return singleton(typeName), nil
}

func (Handler) HandleNamed(named *goTypes.Named) (Set, error) {
	return singleton(named.Obj()), nil
}

func (Handler) HandleEnum(named *goTypes.Named, _ []*goTypes.Const) (Set, error) {
	return singleton(named.Obj()), nil
}

func (Handler) HandleInstantiated(_ *goTypes.Named, handledOrigin Set, handledTypeArguments []Set) (Set, error) {
	return union(append([]Set{handledOrigin}, handledTypeArguments...)...), nil
}

func (Handler) HandleAlias(alias *goTypes.Alias, handledTarget Set) (Set, error) {
	return union(singleton(alias.Obj()), handledTarget), nil
}

func (Handler) HandleElem(_ goTypes.Type, handledElem Set) (Set, error) {
	return handledElem, nil
}

func (Handler) HandleMap(_ *goTypes.Map, handledKey Set, handledElem Set) (Set, error) {
	return union(handledKey, handledElem), nil
}

func (Handler) HandleStruct(_ *goTypes.Struct, handledFields []Set) (Set, error) {
	return union(handledFields...), nil
}

func (Handler) HandleTuple(_ *goTypes.Tuple, handledElems []Set) (Set, error) {
	return union(handledElems...), nil
}

func (Handler) HandleSignature(_ *goTypes.Signature, handledParams Set, handledResults Set) (Set, error) {
	return union(handledParams, handledResults), nil
}

func (Handler) HandleInterface(_ *goTypes.Interface, handledEmbedded []Set, handledMethods []Set) (Set, error) {
	return union(append(slices.Clone(handledEmbedded), handledMethods...)...), nil
}

func (Handler) HandleUnion(_ *goTypes.Union, handledTerms []Set) (Set, error) {
	return union(handledTerms...), nil
}

func (Handler) HandleTypeParam(_ *goTypes.TypeParam, handledBounds []Set) (Set, error) {
	return union(handledBounds...), nil
}

// Get returns the type names mentioned in the declaration t.
func Get(t goTypes.Type, options ...explorer.Option) (Set, error) {
	set, err := explorer.Explore[Set](t, Handler{}, options...)
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("explore: %w", err), t)
	}

	return set, nil
}
