package generic_type_info

import (
	"errors"
	goTypes "go/types"

	"github.com/vphpersson/generic_explorer/pkg/types/generic_type_info"
	"github.com/vphpersson/generic_explorer/pkg/types/shape"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
)

var (
	ErrNilNamed        = errors.New("nil named")
	ErrEmptyTypeParams = errors.New("empty type parameters")
	ErrNotStruct       = errors.New("not a struct")
)

func directTypeParam(t goTypes.Type, paramSet map[*goTypes.TypeParam]struct{}) (*goTypes.TypeParam, bool) {
	typeParameter, ok := goTypes.Unalias(t).(*goTypes.TypeParam)
	if !ok {
		return nil, false
	}
	_, ok = paramSet[typeParameter]
	return typeParameter, ok
}

// detectShapes returns the type parameters a field type carries directly or one level down, in the order key
// before value for maps.
func detectShapes(t goTypes.Type, paramSet map[*goTypes.TypeParam]struct{}) []shape.Shape {
	var shapes []shape.Shape
	add := func(component goTypes.Type, kind shape.Kind) {
		if typeParameter, ok := directTypeParam(component, paramSet); ok {
			shapes = append(shapes, shape.Shape{Param: typeParameter.Obj().Name(), Kind: kind})
		}
	}

	switch tt := goTypes.Unalias(t).(type) {
	case *goTypes.TypeParam:
		add(tt, shape.KindDirect)
	case *goTypes.Pointer:
		add(tt.Elem(), shape.KindPointer)
	case *goTypes.Slice:
		add(tt.Elem(), shape.KindSlice)
	case *goTypes.Array:
		add(tt.Elem(), shape.KindArray)
	case *goTypes.Map:
		add(tt.Key(), shape.KindMapKey)
		add(tt.Elem(), shape.KindMapValue)
	}

	return shapes
}

// Get describes, for the generic struct type named, which field carries each type parameter and in what shape.
// The first field using a type parameter is the one recorded for it. Instantiated types are described by their
// origin.
func Get(named *goTypes.Named) (*generic_type_info.GenericTypeInfo, error) {
	if named == nil {
		return nil, motmedelErrors.NewWithTrace(ErrNilNamed)
	}
	named = named.Origin()

	structType, ok := named.Underlying().(*goTypes.Struct)
	if !ok {
		return nil, motmedelErrors.NewWithTrace(ErrNotStruct, named)
	}

	typeParameters := named.TypeParams()
	if typeParameters.Len() == 0 {
		return nil, motmedelErrors.NewWithTrace(ErrEmptyTypeParams, named)
	}

	parameterSet := map[*goTypes.TypeParam]struct{}{}
	parameterNames := make([]string, typeParameters.Len())
	for i := range typeParameters.Len() {
		typeParameter := typeParameters.At(i)
		parameterSet[typeParameter] = struct{}{}
		parameterNames[i] = typeParameter.Obj().Name()
	}

	paramToField := map[string]string{}
	paramToShape := map[string]shape.Shape{}
	for i := range structType.NumFields() {
		field := structType.Field(i)
		for _, fieldShape := range detectShapes(field.Type(), parameterSet) {
			if _, exists := paramToField[fieldShape.Param]; exists {
				continue
			}
			paramToField[fieldShape.Param] = field.Name()
			paramToShape[fieldShape.Param] = fieldShape
		}
	}

	return &generic_type_info.GenericTypeInfo{
		TypeParameterNames:           parameterNames,
		TypeParameterNameToFieldName: paramToField,
		TypeParameterNameToShape:     paramToShape,
	}, nil
}
