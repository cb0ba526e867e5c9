package jsonschema

import (
	"context"
	"fmt"
	goTypes "go/types"

	"github.com/vphpersson/generic_explorer/pkg/producers/jsonschema/types"
	"github.com/vphpersson/generic_explorer/pkg/reflect_bridge"
	typeGenerationTypesContext "github.com/vphpersson/generic_explorer/pkg/types/context"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
)

// ConvertType renders a JSON Schema document for root, which must be a struct type. Instantiated generic types
// are declared on their own, since a schema has no notion of type parameters.
func ConvertType(root goTypes.Type) (string, error) {
	jsonschemaContext := types.Context{
		Context: typeGenerationTypesContext.New(typeGenerationTypesContext.WithInstantiateGenerics()),
	}
	if err := jsonschemaContext.Add(root); err != nil {
		return "", fmt.Errorf("add: %w", err)
	}

	output, err := jsonschemaContext.RenderRoot(root)
	if err != nil {
		return "", motmedelErrors.New(fmt.Errorf("render: %w", err), jsonschemaContext.Identifiers())
	}

	return output, nil
}

func Convert(ctx context.Context, bridge *reflect_bridge.Bridge, root any) (string, error) {
	typeList, err := bridge.TypesOf(ctx, root)
	if err != nil {
		return "", fmt.Errorf("bridge types of: %w", err)
	}

	return ConvertType(typeList[0])
}
