package types

import (
	"fmt"
	"go/constant"
	goTypes "go/types"
	"strconv"
	"strings"

	generalErrors "github.com/vphpersson/generic_explorer/pkg/errors"
	"github.com/vphpersson/generic_explorer/pkg/explorer"
	typescriptErrors "github.com/vphpersson/generic_explorer/pkg/producers/typescript/errors"
	typeGenerationContext "github.com/vphpersson/generic_explorer/pkg/types/context"
	"github.com/vphpersson/generic_explorer/pkg/types/type_declaration"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
)

type Context struct {
	*typeGenerationContext.Context
	GenerateNominalTypes bool
}

func (c *Context) GetTypeScriptType(t goTypes.Type) (Type, error) {
	if c == nil || c.Context == nil {
		return nil, motmedelErrors.NewWithTrace(typescriptErrors.ErrNilContext)
	}

	return explorer.Explore[Type](t, &typeScriptHandler{c: c}, explorer.WithLeaf(typeGenerationContext.IsLiteral))
}

func (c *Context) reference(t goTypes.Type) (*TypeReference, error) {
	typeDeclaration, ok := c.Lookup(t)
	if !ok {
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: %s", typescriptErrors.ErrMissingDeclaration, t),
			t,
		)
	}

	switch v := typeDeclaration.(type) {
	case *type_declaration.InterfaceDeclaration:
		return (&InterfaceDeclaration{InterfaceDeclaration: v, c: c}).TypeReference(), nil
	case *type_declaration.TypeAliasDeclaration:
		return (&TypeAliasDeclaration{TypeAliasDeclaration: v, c: c}).TypeReference(), nil
	case *type_declaration.EnumDeclaration:
		return (&EnumDeclaration{EnumDeclaration: v}).TypeReference(), nil
	default:
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: %T", generalErrors.ErrUnsupportedType, typeDeclaration),
			typeDeclaration,
		)
	}
}

// unsupportedType stands in for a type without a TypeScript notation. Rendering it fails, so that the methods of
// an interface, which render as any, may still mention such types.
type unsupportedType struct {
	err error
}

func (u *unsupportedType) String() (string, error) { return "", u.err }

func unsupported(t goTypes.Type) (Type, error) {
	return &unsupportedType{
		err: motmedelErrors.NewWithTrace(fmt.Errorf("%w: %s", generalErrors.ErrUnsupportedType, t), t),
	}, nil
}

func isByte(t goTypes.Type) bool {
	basic, ok := t.Underlying().(*goTypes.Basic)
	return ok && basic.Kind() == goTypes.Byte
}

// typeScriptHandler maps a type to its TypeScript notation. Defined types are referenced by their declarations.
type typeScriptHandler struct {
	c *Context
}

func (h *typeScriptHandler) HandleVoid() (Type, error) { return Void, nil }

func (h *typeScriptHandler) HandleBasic(basic *goTypes.Basic) (Type, error) {
	info := basic.Info()
	switch {
	case basic.Kind() == goTypes.UntypedNil:
		return Null, nil
	case info&goTypes.IsBoolean != 0:
		return Boolean, nil
	case info&goTypes.IsString != 0:
		return String, nil
	case info&(goTypes.IsInteger|goTypes.IsFloat) != 0:
		return Number, nil
	default:
		return unsupported(basic)
	}
}

func (h *typeScriptHandler) HandleNamed(named *goTypes.Named) (Type, error) {
	if typeGenerationContext.IsTime(named) {
		return String, nil
	}
	if typeGenerationContext.IsDuration(named) {
		return Number, nil
	}

	// error, comparable and interfaces in general.
	if named.Obj().Pkg() == nil || typeGenerationContext.IsInterface(named) {
		return Any, nil
	}

	return h.c.reference(named)
}

func (h *typeScriptHandler) HandleEnum(named *goTypes.Named, _ []*goTypes.Const) (Type, error) {
	if typeGenerationContext.IsDuration(named) {
		return Number, nil
	}
	return h.c.reference(named)
}

func (h *typeScriptHandler) HandleInstantiated(_ *goTypes.Named, origin Type, typeArguments []Type) (Type, error) {
	originReference, ok := origin.(*TypeReference)
	if !ok {
		return origin, nil
	}

	return &TypeReference{TypeDeclaration: originReference.TypeDeclaration, TypeArguments: typeArguments}, nil
}

func (h *typeScriptHandler) HandleAlias(_ *goTypes.Alias, target Type) (Type, error) { return target, nil }

func (h *typeScriptHandler) HandleElem(t goTypes.Type, elem Type) (Type, error) {
	switch tt := goTypes.Unalias(t).(type) {
	case *goTypes.Pointer:
		return elem, nil
	case *goTypes.Slice:
		// json.Marshal encodes a byte slice as a base64 string.
		if isByte(tt.Elem()) {
			return String, nil
		}
		return &ArrayType{ItemsType: elem}, nil
	case *goTypes.Array:
		return &ArrayType{ItemsType: elem}, nil
	default:
		return unsupported(t)
	}
}

func (h *typeScriptHandler) HandleMap(mapType *goTypes.Map, key Type, elem Type) (Type, error) {
	// TypeScript index signature parameter types[1] must be either "string" or "number", and
	// cannot be type aliases, otherwise the TypeScript compiler will fail with error
	// "TS1336: An index signature parameter type cannot be a type alias.".
	//
	// Example:
	//
	//   export type Foo = string;
	//   export type Bar = { [key: Foo]: string };  // Compiler produces error TS1336.
	//
	// Thus, we treat map keys as a special case where we ignore any type aliases and use either
	// "string" or "number" directly.
	//
	// [1] https://www.typescriptlang.org/docs/handbook/advanced-types.html#index-types-and-index-signatures.
	var indexType Type

	keyType := goTypes.Unalias(mapType.Key())
	if _, ok := keyType.(*goTypes.TypeParam); ok {
		indexType = key
	} else if basic, ok := keyType.Underlying().(*goTypes.Basic); ok {
		switch info := basic.Info(); {
		case info&goTypes.IsString != 0:
			indexType = String
		case info&(goTypes.IsInteger|goTypes.IsFloat) != 0:
			indexType = Number
		}
	}

	if indexType == nil {
		return &unsupportedType{
			err: motmedelErrors.NewWithTrace(
				fmt.Errorf("%w: %s", typescriptErrors.ErrUnsupportedIndexType, keyType),
				keyType,
			),
		}, nil
	}

	return &MapType{IndexType: indexType, ValueType: elem}, nil
}

func (h *typeScriptHandler) HandleStruct(structType *goTypes.Struct, _ []Type) (Type, error) {
	return h.c.reference(structType)
}

func (h *typeScriptHandler) HandleTuple(tuple *goTypes.Tuple, _ []Type) (Type, error) {
	return unsupported(tuple)
}

func (h *typeScriptHandler) HandleSignature(signature *goTypes.Signature, _ Type, _ Type) (Type, error) {
	return unsupported(signature)
}

func (h *typeScriptHandler) HandleInterface(*goTypes.Interface, []Type, []Type) (Type, error) {
	return Any, nil
}

func (h *typeScriptHandler) HandleUnion(_ *goTypes.Union, terms []Type) (Type, error) {
	return &UnionType{Types: terms}, nil
}

func (h *typeScriptHandler) HandleTypeParam(typeParam *goTypes.TypeParam, _ []Type) (Type, error) {
	return &TypeParameter{Identifier: typeParam.Obj().Name()}, nil
}

func (c *Context) Render() (string, error) {
	var interfaceDeclarations []*InterfaceDeclaration
	var otherDeclarations []interface{ ToTypeScript() (string, error) }

	for _, typeDeclaration := range c.TypeDeclarationsInOrder {
		switch v := typeDeclaration.(type) {
		case *type_declaration.InterfaceDeclaration:
			interfaceDeclarations = append(
				interfaceDeclarations,
				&InterfaceDeclaration{InterfaceDeclaration: v, c: c},
			)
		case *type_declaration.TypeAliasDeclaration:
			otherDeclarations = append(otherDeclarations, &TypeAliasDeclaration{TypeAliasDeclaration: v, c: c})
		case *type_declaration.EnumDeclaration:
			otherDeclarations = append(otherDeclarations, &EnumDeclaration{EnumDeclaration: v})
		}
	}

	var stringBuilder strings.Builder

	for i, interfaceDeclaration := range interfaceDeclarations {
		if i > 0 {
			stringBuilder.WriteString("\n")
		}
		d, err := interfaceDeclaration.String()
		if err != nil {
			return "", motmedelErrors.New(fmt.Errorf("to type script: %w", err), interfaceDeclaration)
		}
		stringBuilder.WriteString(d)
		stringBuilder.WriteString("\n")
	}

	for _, declaration := range otherDeclarations {
		if len(interfaceDeclarations) > 0 {
			stringBuilder.WriteString("\n")
		}

		d, err := declaration.ToTypeScript()
		if err != nil {
			return "", motmedelErrors.New(fmt.Errorf("to type script: %w", err), declaration)
		}
		stringBuilder.WriteString(d)
		stringBuilder.WriteString("\n")
	}

	return stringBuilder.String(), nil
}

func renderTypeParams(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return fmt.Sprintf("<%s>", strings.Join(params, ", "))
}

type InterfaceDeclaration struct {
	*type_declaration.InterfaceDeclaration
	c *Context
}

func (t *InterfaceDeclaration) String() (string, error) {
	var propertyStrings []string

	for _, property := range t.Properties {
		optionalString := ""
		if property.Optional {
			optionalString = "?"
		}

		field := property.Field
		if field == nil {
			return "", motmedelErrors.NewWithTrace(generalErrors.ErrNilField, property)
		}

		// The fields of a generic declaration are expressed in terms of its type parameters, which render as-is.
		typeScriptType, err := t.c.GetTypeScriptType(field.Type())
		if err != nil {
			return "", motmedelErrors.New(fmt.Errorf("get type script type (field %s): %w", field.Name(), err), field)
		}

		typeString, err := typeScriptType.String()
		if err != nil {
			return "", fmt.Errorf("type string: %w", err)
		}

		propertyStrings = append(
			propertyStrings,
			fmt.Sprintf("\t%s%s: %s;\n", property.Identifier, optionalString, typeString),
		)
	}

	return fmt.Sprintf(
		"export interface %s%s {\n%s}",
		t.Identifier,
		renderTypeParams(t.TypeParameters),
		strings.Join(propertyStrings, ""),
	), nil
}

func (t *InterfaceDeclaration) QualifiedName() string {
	return t.Identifier
}

func (t *InterfaceDeclaration) TypeReference() *TypeReference {
	return &TypeReference{TypeDeclaration: t}
}

type TypeAliasDeclaration struct {
	*type_declaration.TypeAliasDeclaration
	c *Context
}

func (a *TypeAliasDeclaration) TypeReference() *TypeReference {
	return &TypeReference{TypeDeclaration: a}
}

func (a *TypeAliasDeclaration) QualifiedName() string {
	return a.Identifier
}

func (a *TypeAliasDeclaration) ToTypeScript() (string, error) {
	params := renderTypeParams(a.TypeParameters)

	typeScriptType, err := a.c.GetTypeScriptType(a.AliasedType)
	if err != nil {
		return "", fmt.Errorf("get type script type: %w", err)
	}

	param, err := typeScriptType.String()
	if err != nil {
		return "", fmt.Errorf("type string: %w", err)
	}

	if _, ok := typeScriptType.(*UnionType); !ok && a.c.GenerateNominalTypes {
		return fmt.Sprintf(`    export type %s%s = %s & {
		/**
		* WARNING: Do not reference this field from application code.
		*
		* This field exists solely to provide nominal typing. For reference, see
		* https://www.typescriptlang.org/play#example/nominal-typing.
		*/
        _%sbrand: 'type alias for %s'
    };

    export function %s%s(v: %s): %s%s {
        return v as %s%s;
    };
`,
			a.Identifier,
			params,
			param,
			strings.ToLower(string(a.Identifier[0]))+a.Identifier[1:],
			param,
			a.Identifier,
			params,
			param,
			a.Identifier,
			params,
			a.Identifier,
			params), nil
	}

	return fmt.Sprintf("export type %s%s = %s;", a.Identifier, params, param), nil
}

// EnumDeclaration renders an enum as the union of its constant values.
type EnumDeclaration struct {
	*type_declaration.EnumDeclaration
}

func (e *EnumDeclaration) TypeReference() *TypeReference {
	return &TypeReference{TypeDeclaration: e}
}

func (e *EnumDeclaration) QualifiedName() string {
	return e.Identifier
}

func literalOf(value constant.Value) (Type, error) {
	switch value.Kind() {
	case constant.String:
		return LiteralType(strconv.Quote(constant.StringVal(value))), nil
	case constant.Bool, constant.Int:
		return LiteralType(value.ExactString()), nil
	case constant.Float:
		f, _ := constant.Float64Val(value)
		return LiteralType(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: constant kind %s", generalErrors.ErrUnsupportedKind, value.Kind()),
			value,
		)
	}
}

func (e *EnumDeclaration) ToTypeScript() (string, error) {
	unionType := &UnionType{}
	seen := map[string]struct{}{}
	for _, enumConstant := range e.Constants {
		literal, err := literalOf(enumConstant.Val())
		if err != nil {
			return "", motmedelErrors.New(fmt.Errorf("literal of (%s): %w", enumConstant.Name(), err), enumConstant)
		}

		// Several constants may share a value.
		literalString, _ := literal.String()
		if _, ok := seen[literalString]; ok {
			continue
		}
		seen[literalString] = struct{}{}

		unionType.Types = append(unionType.Types, literal)
	}

	unionString, err := unionType.String()
	if err != nil {
		return "", fmt.Errorf("union type string: %w", err)
	}

	return fmt.Sprintf("export type %s = %s;", e.Identifier, unionString), nil
}
