package explorer

import (
	goTypes "go/types"
	"slices"
)

// EnumConstants returns the package-level constants declared with exactly the type named, in declaration order.
// Only non-generic defined types with a basic underlying type can have enum constants. The unexported constants of
// an exported type are implementation details, such as bounds, and are left out.
func EnumConstants(named *goTypes.Named) []*goTypes.Const {
	if named == nil || named.TypeParams().Len() > 0 || named.TypeArgs().Len() > 0 {
		return nil
	}

	if _, ok := named.Underlying().(*goTypes.Basic); !ok {
		return nil
	}

	object := named.Obj()
	if object == nil || object.Pkg() == nil {
		return nil
	}

	scope := object.Pkg().Scope()
	if scope == nil {
		return nil
	}

	var constants []*goTypes.Const
	for _, name := range scope.Names() {
		constant, ok := scope.Lookup(name).(*goTypes.Const)
		if !ok {
			continue
		}
		if !goTypes.Identical(constant.Type(), named) {
			continue
		}
		if object.Exported() && !constant.Exported() {
			continue
		}
		constants = append(constants, constant)
	}

	slices.SortStableFunc(constants, func(a, b *goTypes.Const) int {
		return int(a.Pos()) - int(b.Pos())
	})

	return constants
}

// IsImplicitBound reports whether the constraint is the empty interface, either as the "any" alias or as an
// interface{} literal. Defined empty interfaces carry a name of their own and are not implicit.
func IsImplicitBound(constraint goTypes.Type) bool {
	iface, ok := goTypes.Unalias(constraint).(*goTypes.Interface)
	if !ok {
		return false
	}

	if alias, ok := constraint.(*goTypes.Alias); ok && alias.Obj().Name() != "any" {
		return false
	}

	return iface.Empty()
}
