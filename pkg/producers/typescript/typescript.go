package typescript

import (
	"context"
	"fmt"
	goTypes "go/types"

	"github.com/vphpersson/generic_explorer/pkg/producers/typescript/types"
	"github.com/vphpersson/generic_explorer/pkg/reflect_bridge"
	typeGenerationTypesContext "github.com/vphpersson/generic_explorer/pkg/types/context"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
)

type Option func(*types.Context)

// WithNominalTypes makes type aliases nominal, so that e.g. an "ID" cannot be passed where a plain string is
// expected.
func WithNominalTypes(generateNominalTypes bool) Option {
	return func(c *types.Context) {
		c.GenerateNominalTypes = generateNominalTypes
	}
}

func ConvertTypes(typeList []goTypes.Type, options ...Option) (string, error) {
	tsContext := types.Context{Context: typeGenerationTypesContext.New()}
	for _, option := range options {
		if option != nil {
			option(&tsContext)
		}
	}

	if err := tsContext.Add(typeList...); err != nil {
		return "", fmt.Errorf("add: %w", err)
	}

	output, err := tsContext.Render()
	if err != nil {
		return "", motmedelErrors.New(fmt.Errorf("render: %w", err), tsContext.Identifiers())
	}

	return output, nil
}

// Convert renders the types of runtime values; see reflect_bridge.Bridge.TypesOf for what values are accepted.
func Convert(ctx context.Context, bridge *reflect_bridge.Bridge, values []any, options ...Option) (string, error) {
	typeList, err := bridge.TypesOf(ctx, values...)
	if err != nil {
		return "", fmt.Errorf("bridge types of: %w", err)
	}

	return ConvertTypes(typeList, options...)
}
