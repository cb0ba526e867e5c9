package type_declaration

import goTypes "go/types"

type EnumDeclaration struct {
	Identifier string
	Named      *goTypes.Named
	Constants  []*goTypes.Const
}

func (e *EnumDeclaration) QualifiedName() string {
	return e.Identifier
}
