package types

import (
	"fmt"
	goTypes "go/types"
	"regexp"
	"slices"
	"strings"

	typeGenerationErrors "github.com/vphpersson/generic_explorer/pkg/errors"
	"github.com/vphpersson/generic_explorer/pkg/explorer"
	postgresErrors "github.com/vphpersson/generic_explorer/pkg/producers/postgres/errors"
	"github.com/vphpersson/generic_explorer/pkg/producers/postgres/types/tag"
	typeGenerationContext "github.com/vphpersson/generic_explorer/pkg/types/context"
	"github.com/vphpersson/generic_explorer/pkg/types/type_declaration"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
	"github.com/Motmedel/utils_go/pkg/utils"
)

var matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
var matchAllCap = regexp.MustCompile("([a-z0-9])([A-Z])")

func toSnakeCase(s string) string {
	s = matchFirstCap.ReplaceAllString(s, "${1}_${2}")
	s = matchAllCap.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

type AssociativeTable struct {
	SourceTableName string
	TargetTableName string
}

func (a *AssociativeTable) String() (string, error) {
	var propertyStrings []string
	for _, name := range []string{a.SourceTableName, a.TargetTableName} {
		propertyStrings = append(propertyStrings, fmt.Sprintf("\t%[1]s_id uuid NOT NULL REFERENCES %[1]s(id) ON DELETE CASCADE", name))
	}
	propertyStrings = append(propertyStrings, fmt.Sprintf("\tPRIMARY KEY (%s_id, %s_id)", a.SourceTableName, a.TargetTableName))

	return fmt.Sprintf(
		"CREATE TABLE %s (\n%s\n);",
		fmt.Sprintf("%s_%s", a.SourceTableName, a.TargetTableName),
		strings.Join(propertyStrings, ",\n"),
	), nil
}

type Context struct {
	*typeGenerationContext.Context
}

func (c *Context) GetPostgresType(t goTypes.Type) (Type, error) {
	return explorer.Explore[Type](
		t,
		&postgresHandler{c: c, resolving: map[*goTypes.Named]struct{}{}},
		explorer.WithLeaf(typeGenerationContext.IsLiteral),
	)
}

func unsupportedError(t goTypes.Type) error {
	return motmedelErrors.NewWithTrace(fmt.Errorf("%w: %s", typeGenerationErrors.ErrUnsupportedType, t), t)
}

// unsupported yields no column type. It only fails once a column needs it, since the methods of an interface,
// which is stored as jsonb, may mention such types.
func unsupported(goTypes.Type) (Type, error) {
	return nil, nil
}

func genericUnsupported(t goTypes.Type) (Type, error) {
	return nil, motmedelErrors.NewWithTrace(fmt.Errorf("%w: %s", postgresErrors.ErrGenericTypesUnsupported, t), t)
}

// postgresHandler maps a type to a column type. Struct types become references to their tables; other defined
// types are resolved to the column type of their underlying type.
type postgresHandler struct {
	c         *Context
	resolving map[*goTypes.Named]struct{}
}

func (h *postgresHandler) resolveUnderlying(named *goTypes.Named) (Type, error) {
	if _, ok := h.resolving[named]; ok {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("%w: %s", postgresErrors.ErrRecursiveType, named), named)
	}
	h.resolving[named] = struct{}{}
	defer delete(h.resolving, named)

	return explorer.Explore[Type](named.Underlying(), h, explorer.WithLeaf(typeGenerationContext.IsLiteral))
}

func (h *postgresHandler) HandleVoid() (Type, error) { return unsupported(goTypes.NewTuple()) }

func (h *postgresHandler) HandleBasic(basic *goTypes.Basic) (Type, error) {
	switch basic.Kind() {
	case goTypes.Int8, goTypes.Uint8, goTypes.Int16, goTypes.Uint16:
		return SmallInt, nil
	case goTypes.Int32, goTypes.Uint32, goTypes.Int, goTypes.Uint:
		return Integer, nil
	case goTypes.Int64, goTypes.Uint64:
		return BigInt, nil
	case goTypes.Float32:
		return Real, nil
	case goTypes.Float64:
		return DoublePrecision, nil
	case goTypes.String:
		return Text, nil
	case goTypes.Bool:
		return Boolean, nil
	default:
		return unsupported(basic)
	}
}

func (h *postgresHandler) HandleNamed(named *goTypes.Named) (Type, error) {
	if typeGenerationContext.IsTime(named) {
		return Timestamp, nil
	}
	if typeGenerationContext.IsDuration(named) {
		return BigInt, nil
	}

	if named.Obj().Pkg() == nil || typeGenerationContext.IsInterface(named) {
		return JSONB, nil
	}

	if named.TypeParams().Len() > 0 {
		return genericUnsupported(named)
	}

	typeDeclaration, ok := h.c.Lookup(named)
	if !ok {
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w (type declaration): %s", motmedelErrors.ErrNotInMap, named),
			named,
		)
	}

	if interfaceDeclaration, ok := typeDeclaration.(*type_declaration.InterfaceDeclaration); ok {
		return (&InterfaceDeclaration{InterfaceDeclaration: interfaceDeclaration, c: h.c}).TypeReference(), nil
	}

	return h.resolveUnderlying(named)
}

func (h *postgresHandler) HandleEnum(named *goTypes.Named, _ []*goTypes.Const) (Type, error) {
	return h.resolveUnderlying(named)
}

func (h *postgresHandler) HandleInstantiated(named *goTypes.Named, _ Type, _ []Type) (Type, error) {
	return genericUnsupported(named)
}

func (h *postgresHandler) HandleAlias(_ *goTypes.Alias, target Type) (Type, error) { return target, nil }

func (h *postgresHandler) HandleElem(t goTypes.Type, elem Type) (Type, error) {
	if elem == nil {
		return nil, nil
	}

	var elemType goTypes.Type
	switch tt := goTypes.Unalias(t).(type) {
	case *goTypes.Pointer:
		return elem, nil
	case *goTypes.Slice:
		elemType = tt.Elem()
	case *goTypes.Array:
		elemType = tt.Elem()
	default:
		return unsupported(t)
	}

	if basic, ok := typeGenerationContext.RemoveIndirection(elemType).Underlying().(*goTypes.Basic); ok &&
		basic.Kind() == goTypes.Byte {
		return ByteA, nil
	}

	if typeReference, ok := elem.(*TypeReference); ok {
		return &AssociativeTable{TargetTableName: typeReference.TypeDeclaration.QualifiedName()}, nil
	}

	return &ArrayType{ItemsType: elem}, nil
}

func (h *postgresHandler) HandleMap(*goTypes.Map, Type, Type) (Type, error) { return JSONB, nil }

func (h *postgresHandler) HandleStruct(structType *goTypes.Struct, _ []Type) (Type, error) {
	typeDeclaration, ok := h.c.Lookup(structType)
	if !ok {
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w (type declaration): %s", motmedelErrors.ErrNotInMap, structType),
			structType,
		)
	}

	interfaceDeclaration, err := utils.Convert[*type_declaration.InterfaceDeclaration](typeDeclaration)
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("convert: %w", err), typeDeclaration)
	}

	return (&InterfaceDeclaration{InterfaceDeclaration: interfaceDeclaration, c: h.c}).TypeReference(), nil
}

func (h *postgresHandler) HandleTuple(tuple *goTypes.Tuple, _ []Type) (Type, error) {
	return unsupported(tuple)
}

func (h *postgresHandler) HandleSignature(signature *goTypes.Signature, _ Type, _ Type) (Type, error) {
	return unsupported(signature)
}

func (h *postgresHandler) HandleInterface(*goTypes.Interface, []Type, []Type) (Type, error) {
	return JSONB, nil
}

func (h *postgresHandler) HandleUnion(union *goTypes.Union, _ []Type) (Type, error) {
	return unsupported(union)
}

func (h *postgresHandler) HandleTypeParam(typeParam *goTypes.TypeParam, _ []Type) (Type, error) {
	return genericUnsupported(typeParam)
}

func (c *Context) Render() (string, error) {
	var interfaceDeclarations []*InterfaceDeclaration

	for _, typeDeclaration := range c.TypeDeclarationsInOrder {
		if v, ok := typeDeclaration.(*type_declaration.InterfaceDeclaration); ok {
			interfaceDeclarations = append(
				interfaceDeclarations,
				&InterfaceDeclaration{InterfaceDeclaration: v, c: c},
			)
		}
	}

	var stringBuilder strings.Builder

	for i, interfaceDeclaration := range interfaceDeclarations {
		if i > 0 {
			stringBuilder.WriteString("\n")
		}
		d, err := interfaceDeclaration.String()
		if err != nil {
			return "", motmedelErrors.New(fmt.Errorf("interface declaration string: %w", err), interfaceDeclaration)
		}
		stringBuilder.WriteString(d)
		stringBuilder.WriteString("\n")
	}

	return stringBuilder.String(), nil
}

type InterfaceDeclaration struct {
	*type_declaration.InterfaceDeclaration
	c *Context
}

func (t *InterfaceDeclaration) String() (string, error) {
	if len(t.TypeParameters) > 0 {
		return "", motmedelErrors.NewWithTrace(postgresErrors.ErrGenericTypesUnsupported, t.Identifier)
	}

	var associativeTables []string
	var indices []string

	var propertyLines []string
	var uniqueCompositeFields []string
	var primaryKeyObserved bool

	for _, property := range t.Properties {
		if property == nil {
			continue
		}

		field := property.Field
		if field == nil {
			return "", motmedelErrors.NewWithTrace(typeGenerationErrors.ErrNilField, property)
		}

		postgresTag := tag.New(property.Tag.Get("postgres"))
		if postgresTag != nil && postgresTag.Skip {
			continue
		}

		fieldType := field.Type()
		postgresType, err := t.c.GetPostgresType(fieldType)
		if err != nil {
			return "", motmedelErrors.New(fmt.Errorf("context get postgres type: %w", err), fieldType)
		}
		if utils.IsNil(postgresType) {
			return "", unsupportedError(fieldType)
		}

		if associativeTable, ok := postgresType.(*AssociativeTable); ok {
			associativeTable.SourceTableName = t.QualifiedName()
			tableString, err := associativeTable.String()
			if err != nil {
				return "", fmt.Errorf("type string: %w", err)
			}

			associativeTables = append(associativeTables, tableString)
			continue
		}

		typeString, err := postgresType.String()
		if err != nil {
			return "", fmt.Errorf("type string: %w", err)
		}

		identifier := property.Identifier
		var attributes []string
		optional := property.Optional

		if postgresTag != nil {
			if name := postgresTag.Name; name != "" {
				identifier = name
			}

			if tagType := postgresTag.Type; tagType != "" {
				typeString = tagType
			}

			if postgresTag.Nullable {
				optional = true
			}

			if postgresTag.UniqueComposite {
				uniqueCompositeFields = append(uniqueCompositeFields, identifier)
			}

			if postgresTag.Indexed {
				indices = append(
					indices,
					fmt.Sprintf("CREATE INDEX %[1]s_%[2]s_idx ON %[1]s(%[2]s);", t.QualifiedName(), identifier),
				)
			}

			if postgresTag.PrimaryKey {
				primaryKeyObserved = true
				attributes = append(attributes, "PRIMARY KEY")
			}

			if _, ok := postgresType.(*TypeReference); ok {
				if onUpdate := postgresTag.OnUpdate; onUpdate != "" {
					attributes = append(attributes, fmt.Sprintf("ON UPDATE %s", onUpdate))
				}

				if onDelete := postgresTag.OnDelete; onDelete != "" {
					attributes = append(attributes, fmt.Sprintf("ON DELETE %s", onDelete))
				}
			}

			if postgresTag.Default != "" {
				attributes = append(attributes, fmt.Sprintf("DEFAULT %s", postgresTag.Default))
			}

			if unique := postgresTag.Unique; unique {
				attributes = append(attributes, "UNIQUE")
			}

			if generated := postgresTag.Generated; generated != "" {
				attributes = append(attributes, fmt.Sprintf("GENERATED ALWAYS AS (%s)", generated))
			}

			if generatedStored := postgresTag.GeneratedStored; generatedStored != "" {
				attributes = append(attributes, fmt.Sprintf("GENERATED ALWAYS AS (%s) STORED", generatedStored))
			}

			if check := postgresTag.Check; check != "" {
				attributes = append(attributes, fmt.Sprintf("CHECK (%s)", check))
			}
		}

		if !optional {
			attributes = append(attributes, "NOT NULL")
		}

		var attributesString string
		if len(attributes) > 0 {
			attributesString = fmt.Sprintf(" %s", strings.Join(attributes, " "))
		}

		propertyLines = append(
			propertyLines,
			fmt.Sprintf("\t%s %s%s", identifier, typeString, attributesString),
		)
	}

	if len(uniqueCompositeFields) > 0 {
		propertyLines = append(
			propertyLines,
			fmt.Sprintf("\tUNIQUE (%s)", strings.Join(uniqueCompositeFields, ", ")),
		)
	}

	if !primaryKeyObserved {
		propertyLines = append(
			propertyLines,
			"\tid uuid PRIMARY KEY DEFAULT gen_random_uuid()",
		)
	}

	table := fmt.Sprintf(
		"CREATE TABLE %s (\n%s\n);",
		t.QualifiedName(),
		strings.Join(propertyLines, ",\n"),
	)

	return strings.Join(slices.Concat([]string{table}, associativeTables, indices), "\n\n"), nil
}

func (t *InterfaceDeclaration) QualifiedName() string {
	return toSnakeCase(t.Identifier)
}

func (t *InterfaceDeclaration) TypeReference() *TypeReference {
	return &TypeReference{TypeDeclaration: t}
}
