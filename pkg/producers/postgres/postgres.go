package postgres

import (
	"context"
	"fmt"
	goTypes "go/types"

	"github.com/vphpersson/generic_explorer/pkg/producers/postgres/types"
	"github.com/vphpersson/generic_explorer/pkg/reflect_bridge"
	typeGenerationTypesContext "github.com/vphpersson/generic_explorer/pkg/types/context"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
)

// ConvertTypes renders a CREATE TABLE statement per struct type reachable from typeList.
func ConvertTypes(typeList ...goTypes.Type) (string, error) {
	postgresContext := types.Context{Context: typeGenerationTypesContext.New()}
	if err := postgresContext.Add(typeList...); err != nil {
		return "", fmt.Errorf("add: %w", err)
	}

	output, err := postgresContext.Render()
	if err != nil {
		return "", motmedelErrors.New(fmt.Errorf("render: %w", err), postgresContext.Identifiers())
	}

	return output, nil
}

func Convert(ctx context.Context, bridge *reflect_bridge.Bridge, values ...any) (string, error) {
	typeList, err := bridge.TypesOf(ctx, values...)
	if err != nil {
		return "", fmt.Errorf("bridge types of: %w", err)
	}

	return ConvertTypes(typeList...)
}
