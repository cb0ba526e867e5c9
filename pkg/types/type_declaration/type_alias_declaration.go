package type_declaration

import goTypes "go/types"

// TypeAliasDeclaration declares a defined type whose underlying type is not a struct, such as
// "type IDs []ID". AliasedType is the underlying type, expressed in terms of TypeParameters when Named is
// an uninstantiated generic type.
type TypeAliasDeclaration struct {
	Identifier     string
	TypeParameters []string
	Named          *goTypes.Named
	AliasedType    goTypes.Type
}

func (t *TypeAliasDeclaration) QualifiedName() string {
	return t.Identifier
}
