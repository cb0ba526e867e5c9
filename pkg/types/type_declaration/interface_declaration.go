package type_declaration

import (
	goTypes "go/types"
	"reflect"
)

type PropertySignature struct {
	Identifier string
	Field      *goTypes.Var
	Tag        reflect.StructTag
	Optional   bool
}

// InterfaceDeclaration declares a struct type. Type is either a defined type with a struct underlying type or a
// struct literal. TypeParameters is set when Type is an uninstantiated generic type.
type InterfaceDeclaration struct {
	Identifier     string
	Type           goTypes.Type
	TypeParameters []string
	Properties     []*PropertySignature
}

func (i *InterfaceDeclaration) QualifiedName() string {
	return i.Identifier
}
