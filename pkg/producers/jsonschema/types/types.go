package types

import (
	"encoding/json"
	"fmt"
	"go/constant"
	goTypes "go/types"
	"slices"
	"strings"

	generalErrors "github.com/vphpersson/generic_explorer/pkg/errors"
	"github.com/vphpersson/generic_explorer/pkg/explorer"
	"github.com/vphpersson/generic_explorer/pkg/producers/jsonschema/types/tag"
	typeGenerationContext "github.com/vphpersson/generic_explorer/pkg/types/context"
	"github.com/vphpersson/generic_explorer/pkg/types/type_declaration"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
	motmedelJsonTag "github.com/Motmedel/utils_go/pkg/json/types/tag"
	"github.com/Motmedel/utils_go/pkg/utils"
)

const defsPrefix = "#/$defs/"

type Context struct {
	*typeGenerationContext.Context
}

// GetJSONSchemaType returns a JSON Schema fragment describing the provided type.
func (c *Context) GetJSONSchemaType(t goTypes.Type) (map[string]any, error) {
	return explorer.Explore[map[string]any](t, &jsonSchemaHandler{c: c}, explorer.WithLeaf(typeGenerationContext.IsLiteral))
}

func (c *Context) reference(t goTypes.Type) (map[string]any, error) {
	typeDeclaration, ok := c.Lookup(t)
	if !ok {
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w (type declaration): %s", motmedelErrors.ErrNotInMap, t),
			t,
		)
	}

	return map[string]any{"$ref": defsPrefix + typeDeclaration.QualifiedName()}, nil
}

func unsupportedError(t goTypes.Type) error {
	return motmedelErrors.NewWithTrace(fmt.Errorf("%w: %s", generalErrors.ErrUnsupportedType, t), t)
}

// unsupported yields no schema. A type without a schema only fails when a property or declaration needs it, since
// the methods of an interface, which has the empty schema, may mention such types.
func unsupported(goTypes.Type) (map[string]any, error) {
	return nil, nil
}

func basicSchema(basic *goTypes.Basic) (map[string]any, bool) {
	info := basic.Info()
	switch {
	case basic.Kind() == goTypes.UntypedNil:
		return map[string]any{"type": "null"}, true
	case info&goTypes.IsBoolean != 0:
		return map[string]any{"type": "boolean"}, true
	case info&goTypes.IsString != 0:
		return map[string]any{"type": "string"}, true
	case info&goTypes.IsInteger != 0:
		return map[string]any{"type": "integer"}, true
	case info&goTypes.IsFloat != 0:
		return map[string]any{"type": "number"}, true
	default:
		return nil, false
	}
}

type jsonSchemaHandler struct {
	c *Context
}

func (h *jsonSchemaHandler) HandleVoid() (map[string]any, error) {
	return map[string]any{"type": "null"}, nil
}

func (h *jsonSchemaHandler) HandleBasic(basic *goTypes.Basic) (map[string]any, error) {
	schema, ok := basicSchema(basic)
	if !ok {
		return unsupported(basic)
	}
	return schema, nil
}

func (h *jsonSchemaHandler) HandleNamed(named *goTypes.Named) (map[string]any, error) {
	if typeGenerationContext.IsTime(named) {
		return map[string]any{"type": "string", "format": "date-time"}, nil
	}
	if typeGenerationContext.IsDuration(named) {
		return map[string]any{"type": "integer"}, nil
	}

	if named.Obj().Pkg() == nil || typeGenerationContext.IsInterface(named) {
		return map[string]any{}, nil
	}

	// Generic origins are only met as the origin of an instantiated type, which is declared on its own.
	if named.TypeParams().Len() > 0 {
		return nil, nil
	}

	return h.c.reference(named)
}

func (h *jsonSchemaHandler) HandleEnum(named *goTypes.Named, _ []*goTypes.Const) (map[string]any, error) {
	if typeGenerationContext.IsDuration(named) {
		return map[string]any{"type": "integer"}, nil
	}
	return h.c.reference(named)
}

func (h *jsonSchemaHandler) HandleInstantiated(
	named *goTypes.Named,
	_ map[string]any,
	_ []map[string]any,
) (map[string]any, error) {
	return h.c.reference(named)
}

func (h *jsonSchemaHandler) HandleAlias(_ *goTypes.Alias, target map[string]any) (map[string]any, error) {
	return target, nil
}

func (h *jsonSchemaHandler) HandleElem(t goTypes.Type, elem map[string]any) (map[string]any, error) {
	if elem == nil {
		return nil, nil
	}

	switch tt := goTypes.Unalias(t).(type) {
	case *goTypes.Pointer:
		return elem, nil
	case *goTypes.Slice:
		// Special case: []byte -> base64 string
		if basic, ok := tt.Elem().Underlying().(*goTypes.Basic); ok && basic.Kind() == goTypes.Byte {
			return map[string]any{"type": "string", "contentEncoding": "base64"}, nil
		}
		return map[string]any{"type": "array", "items": elem}, nil
	case *goTypes.Array:
		return map[string]any{"type": "array", "items": elem, "minItems": tt.Len(), "maxItems": tt.Len()}, nil
	default:
		return unsupported(t)
	}
}

func (h *jsonSchemaHandler) HandleMap(_ *goTypes.Map, _ map[string]any, elem map[string]any) (map[string]any, error) {
	if elem == nil {
		return nil, nil
	}

	// JSON object with additionalProperties as value schema
	return map[string]any{"type": "object", "additionalProperties": elem}, nil
}

func (h *jsonSchemaHandler) HandleStruct(structType *goTypes.Struct, _ []map[string]any) (map[string]any, error) {
	return h.c.reference(structType)
}

func (h *jsonSchemaHandler) HandleTuple(tuple *goTypes.Tuple, _ []map[string]any) (map[string]any, error) {
	return unsupported(tuple)
}

func (h *jsonSchemaHandler) HandleSignature(
	signature *goTypes.Signature,
	_ map[string]any,
	_ map[string]any,
) (map[string]any, error) {
	return unsupported(signature)
}

func (h *jsonSchemaHandler) HandleInterface(
	*goTypes.Interface,
	[]map[string]any,
	[]map[string]any,
) (map[string]any, error) {
	return map[string]any{}, nil
}

func (h *jsonSchemaHandler) HandleUnion(union *goTypes.Union, terms []map[string]any) (map[string]any, error) {
	for _, term := range terms {
		if term == nil {
			return unsupported(union)
		}
	}
	return map[string]any{"anyOf": terms}, nil
}

func (h *jsonSchemaHandler) HandleTypeParam(typeParam *goTypes.TypeParam, _ []map[string]any) (map[string]any, error) {
	return unsupported(typeParam)
}

// buildInterfaceSchema builds the object schema for a given interface declaration
func (c *Context) buildInterfaceSchema(interfaceDeclaration *type_declaration.InterfaceDeclaration) (map[string]any, error) {
	schemaMap := map[string]any{
		"type": "object",
	}

	properties := map[string]any{}
	var requiredProperties []string
	var additionalProps any = false

	for _, property := range interfaceDeclaration.Properties {
		if property == nil {
			continue
		}

		field := property.Field
		if field == nil {
			return nil, motmedelErrors.NewWithTrace(generalErrors.ErrNilField, property)
		}

		identifier := property.Identifier
		isOptional := property.Optional

		rawJsonSchemaTag := property.Tag.Get("jsonschema")
		jsonschemaTag, err := tag.New(rawJsonSchemaTag)
		if err != nil {
			return nil, motmedelErrors.New(fmt.Errorf("jsonschema tag new: %w", err), rawJsonSchemaTag)
		}

		if jsonschemaTag != nil {
			if jsonschemaTag.Skip {
				continue
			}

			if name := jsonschemaTag.Name; name != "" {
				identifier = name
			}

			if jsonschemaTag.Optional {
				isOptional = true
			}
		} else {
			// As a fallback, use the `json` tag.
			jsonTagRaw := property.Tag.Get("json")
			jsonTag := motmedelJsonTag.New(jsonTagRaw)
			if jsonTag != nil {
				if jsonTag.Skip {
					continue
				}

				if name := jsonTag.Name; name != "" {
					identifier = name
				}

				isOptional = isOptional || jsonTag.OmitEmpty || jsonTag.OmitZero
			}
		}

		fieldType := field.Type()
		propertySchema, err := c.GetJSONSchemaType(fieldType)
		if err != nil {
			return nil, motmedelErrors.New(fmt.Errorf("get json schema type: %w", err), fieldType)
		}
		if propertySchema == nil {
			return nil, unsupportedError(fieldType)
		}

		if t, ok := propertySchema["type"].(string); ok && t == "string" {
			// By default, for required string fields, the minLength is 1.
			if !isOptional {
				propertySchema["minLength"] = 1
			}
		}

		// Apply constraints from the jsonschema tag.
		if jsonschemaTag != nil {
			// explicit format (overrides any inferred format, e.g., time.Time)
			if f := strings.TrimSpace(jsonschemaTag.Format); f != "" {
				propertySchema["format"] = f
			}
			if description := jsonschemaTag.Description; description != "" {
				propertySchema["description"] = description
			}
			// string constraints
			if t, ok := propertySchema["type"].(string); ok && t == "string" {
				if pattern := jsonschemaTag.Pattern; pattern != "" {
					propertySchema["pattern"] = pattern
				}
				if jsonschemaTag.MinLength > 0 {
					propertySchema["minLength"] = jsonschemaTag.MinLength
				}
				if jsonschemaTag.MaxLength > 0 {
					propertySchema["maxLength"] = jsonschemaTag.MaxLength
				}
			}
			// number/integer constraints
			if t, ok := propertySchema["type"].(string); ok && (t == "number" || t == "integer") {
				if jsonschemaTag.Minimum != 0 {
					propertySchema["minimum"] = jsonschemaTag.Minimum
				}
				if jsonschemaTag.Maximum != 0 {
					propertySchema["maximum"] = jsonschemaTag.Maximum
				}
			}
		}

		properties[identifier] = propertySchema
		if !isOptional {
			requiredProperties = append(requiredProperties, identifier)
		}
	}

	schemaMap["properties"] = properties
	if len(requiredProperties) > 0 {
		schemaMap["required"] = requiredProperties
	} else {
		schemaMap["required"] = []string{}
	}

	schemaMap["additionalProperties"] = additionalProps

	return schemaMap, nil
}

func (c *Context) buildTypeAliasSchema(typeAliasDeclaration *type_declaration.TypeAliasDeclaration) (map[string]any, error) {
	aliasedType := typeAliasDeclaration.AliasedType

	schema, err := c.GetJSONSchemaType(aliasedType)
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("get json schema type: %w", err), aliasedType)
	}
	if schema == nil {
		return nil, unsupportedError(aliasedType)
	}

	return schema, nil
}

func constantValue(value constant.Value) (any, error) {
	switch value.Kind() {
	case constant.String:
		return constant.StringVal(value), nil
	case constant.Bool:
		return constant.BoolVal(value), nil
	case constant.Int:
		if i, exact := constant.Int64Val(value); exact {
			return i, nil
		}
		if u, exact := constant.Uint64Val(value); exact {
			return u, nil
		}
	case constant.Float:
		f, _ := constant.Float64Val(value)
		return f, nil
	default:
	}

	return nil, motmedelErrors.NewWithTrace(
		fmt.Errorf("%w: constant %s", generalErrors.ErrUnsupportedKind, value.ExactString()),
		value,
	)
}

func (c *Context) buildEnumSchema(enumDeclaration *type_declaration.EnumDeclaration) (map[string]any, error) {
	basic, err := utils.ConvertToNonZero[*goTypes.Basic](enumDeclaration.Named.Underlying())
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("convert to non zero (underlying): %w", err), enumDeclaration.Named)
	}

	schemaMap, ok := basicSchema(basic)
	if !ok {
		return nil, unsupportedError(basic)
	}

	values := make([]any, 0, len(enumDeclaration.Constants))
	for _, enumConstant := range enumDeclaration.Constants {
		value, err := constantValue(enumConstant.Val())
		if err != nil {
			return nil, motmedelErrors.New(fmt.Errorf("constant value (%s): %w", enumConstant.Name(), err), enumConstant)
		}
		// Enum items must be unique, while several constants may share a value.
		if slices.Contains(values, value) {
			continue
		}
		values = append(values, value)
	}
	schemaMap["enum"] = values

	return schemaMap, nil
}

// RenderRoot builds a single JSON Schema document with the provided root type as the top-level schema
// and all discovered declarations included under $defs. References use local $refs to $defs.
func (c *Context) RenderRoot(root goTypes.Type) (string, error) {
	root = typeGenerationContext.RemoveIndirection(goTypes.Unalias(root))

	if _, ok := root.Underlying().(*goTypes.Struct); !ok {
		return "", motmedelErrors.NewWithTrace(fmt.Errorf("%w: %s", generalErrors.ErrNotStruct, root), root)
	}

	rootTypeDeclaration, ok := c.Lookup(root)
	if !ok {
		return "", motmedelErrors.NewWithTrace(
			fmt.Errorf("%w (root type)", motmedelErrors.ErrNotInMap),
			root,
		)
	}

	rootInterfaceDeclaration, err := utils.ConvertToNonZero[*type_declaration.InterfaceDeclaration](rootTypeDeclaration)
	if err != nil {
		return "", motmedelErrors.New(
			fmt.Errorf("convert to non zero (root type declaration): %w", err),
			rootTypeDeclaration,
		)
	}

	defs := map[string]any{}
	for _, typeDeclaration := range c.TypeDeclarationsInOrder {
		var schema map[string]any
		var err error

		switch v := typeDeclaration.(type) {
		case *type_declaration.InterfaceDeclaration:
			schema, err = c.buildInterfaceSchema(v)
		case *type_declaration.TypeAliasDeclaration:
			schema, err = c.buildTypeAliasSchema(v)
		case *type_declaration.EnumDeclaration:
			schema, err = c.buildEnumSchema(v)
		default:
			continue
		}
		if err != nil {
			return "", motmedelErrors.New(fmt.Errorf("build schema: %w", err), typeDeclaration)
		}

		defs[typeDeclaration.QualifiedName()] = schema
	}

	rootInterfaceDeclarationIdentifier := rootInterfaceDeclaration.Identifier

	schemaMap := map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"title":   rootInterfaceDeclarationIdentifier,
		"$defs":   defs,
	}
	// Reference the root schema via $defs to avoid duplicating the object at the top level
	schemaMap["$ref"] = defsPrefix + rootInterfaceDeclarationIdentifier

	data, err := json.Marshal(schemaMap)
	if err != nil {
		return "", motmedelErrors.NewWithTrace(fmt.Errorf("json marshal (schema map): %w", err), schemaMap)
	}

	return string(data), nil
}
