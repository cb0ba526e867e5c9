// Package reflect_bridge resolves runtime reflect.Type values, including instantiated generic types, to their
// go/types declarations.
//
// The reflect package does not expose the type arguments of an instantiated generic type. They are recovered from
// the fields of the instantiated struct: for each type parameter, the first field using it tells, through its
// shape, where the concrete type argument can be read.
package reflect_bridge

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	goTypes "go/types"
	"reflect"

	internalGenericTypeInfo "github.com/vphpersson/generic_explorer/internal/generic_type_info"
	generalErrors "github.com/vphpersson/generic_explorer/pkg/errors"
	"github.com/vphpersson/generic_explorer/pkg/loader"
	"github.com/vphpersson/generic_explorer/pkg/types/shape"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
	motmedelMaps "github.com/Motmedel/utils_go/pkg/maps"
	motmedelReflect "github.com/Motmedel/utils_go/pkg/reflect"
)

var (
	ErrNilBridge           = errors.New("nil bridge")
	ErrNilLoader           = errors.New("nil loader")
	ErrTypeNotFound        = loader.ErrTypeNotFound
	ErrUnusedTypeParameter = errors.New("type parameter not used by any field")
	ErrEmptyTypeName       = errors.New("empty type name")
)

type Bridge struct {
	Loader *loader.Loader
}

func New(l *loader.Loader) *Bridge {
	return &Bridge{Loader: l}
}

// TypeFor returns the go/types declaration of V.
func TypeFor[V any](ctx context.Context, bridge *Bridge) (goTypes.Type, error) {
	return bridge.TypeOf(ctx, reflect.TypeFor[V]())
}

// TypesOf resolves values the way the producers accept them: a reflect.Type is used as-is, a reflect.Value
// contributes its type, and any other value contributes its dynamic type.
func (b *Bridge) TypesOf(ctx context.Context, values ...any) ([]goTypes.Type, error) {
	if b == nil {
		return nil, motmedelErrors.NewWithTrace(ErrNilBridge)
	}

	typeList := make([]goTypes.Type, 0, len(values))
	for _, value := range values {
		var reflectType reflect.Type
		switch v := value.(type) {
		case reflect.Type:
			reflectType = v
		case reflect.Value:
			reflectType = v.Type()
		default:
			reflectType = reflect.TypeOf(v)
		}

		t, err := b.TypeOf(ctx, reflectType)
		if err != nil {
			return nil, fmt.Errorf("type of: %w", err)
		}
		typeList = append(typeList, t)
	}

	return typeList, nil
}

func (b *Bridge) TypeOf(ctx context.Context, reflectType reflect.Type) (goTypes.Type, error) {
	if b == nil {
		return nil, motmedelErrors.NewWithTrace(ErrNilBridge)
	}
	if reflectType == nil {
		return nil, motmedelErrors.NewWithTrace(generalErrors.ErrNilType)
	}

	if reflectType.Name() != "" {
		return b.namedTypeOf(ctx, reflectType)
	}

	switch kind := reflectType.Kind(); kind {
	case reflect.Pointer:
		elem, err := b.TypeOf(ctx, reflectType.Elem())
		if err != nil {
			return nil, err
		}
		return goTypes.NewPointer(elem), nil
	case reflect.Slice:
		elem, err := b.TypeOf(ctx, reflectType.Elem())
		if err != nil {
			return nil, err
		}
		return goTypes.NewSlice(elem), nil
	case reflect.Array:
		elem, err := b.TypeOf(ctx, reflectType.Elem())
		if err != nil {
			return nil, err
		}
		return goTypes.NewArray(elem, int64(reflectType.Len())), nil
	case reflect.Map:
		key, err := b.TypeOf(ctx, reflectType.Key())
		if err != nil {
			return nil, err
		}
		elem, err := b.TypeOf(ctx, reflectType.Elem())
		if err != nil {
			return nil, err
		}
		return goTypes.NewMap(key, elem), nil
	case reflect.Chan:
		elem, err := b.TypeOf(ctx, reflectType.Elem())
		if err != nil {
			return nil, err
		}
		direction := goTypes.SendRecv
		switch reflectType.ChanDir() {
		case reflect.SendDir:
			direction = goTypes.SendOnly
		case reflect.RecvDir:
			direction = goTypes.RecvOnly
		default:
		}
		return goTypes.NewChan(direction, elem), nil
	case reflect.Func:
		return b.signatureOf(ctx, reflectType)
	case reflect.Struct:
		return b.structOf(ctx, reflectType)
	case reflect.Interface:
		if reflectType.NumMethod() == 0 {
			return goTypes.Universe.Lookup("any").Type(), nil
		}
		return b.interfaceOf(ctx, reflectType)
	default:
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: %s", generalErrors.ErrUnsupportedKind, kind),
			reflectType,
		)
	}
}

func (b *Bridge) namedTypeOf(ctx context.Context, reflectType reflect.Type) (goTypes.Type, error) {
	pkgPath := reflectType.PkgPath()

	if pkgPath == "" {
		// Predeclared: the basic types and error.
		if object, ok := goTypes.Universe.Lookup(reflectType.Name()).(*goTypes.TypeName); ok {
			return object.Type(), nil
		}
		return nil, motmedelErrors.NewWithTrace(ErrTypeNotFound, reflectType)
	}

	if pkgPath == "unsafe" && reflectType.Kind() == reflect.UnsafePointer {
		return goTypes.Typ[goTypes.UnsafePointer], nil
	}

	if b.Loader == nil {
		return nil, motmedelErrors.NewWithTrace(ErrNilLoader)
	}

	typeName, isGenericType := motmedelReflect.GetTypeName(reflectType)
	if typeName == "" {
		return nil, motmedelErrors.NewWithTrace(ErrEmptyTypeName, reflectType)
	}

	origin, err := b.Loader.LookupNamed(ctx, pkgPath, typeName)
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("loader lookup named: %w", err), pkgPath, typeName)
	}

	if !isGenericType {
		return origin, nil
	}

	typeArguments, err := b.typeArgumentsOf(ctx, reflectType, origin)
	if err != nil {
		return nil, fmt.Errorf("type arguments of: %w", err)
	}

	instance, err := goTypes.Instantiate(nil, origin, typeArguments, true)
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("types instantiate: %w", err), origin, typeArguments)
	}

	return instance, nil
}

func (b *Bridge) typeArgumentsOf(
	ctx context.Context,
	reflectType reflect.Type,
	origin *goTypes.Named,
) ([]goTypes.Type, error) {
	if reflectType.Kind() != reflect.Struct {
		return nil, motmedelErrors.NewWithTrace(generalErrors.ErrNotStruct, reflectType)
	}

	genericTypeInfo, err := internalGenericTypeInfo.Get(origin)
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("get generic type info: %w", err), origin)
	}

	typeArguments := make([]goTypes.Type, 0, len(genericTypeInfo.TypeParameterNames))
	for _, typeParameterName := range genericTypeInfo.TypeParameterNames {
		// Find a field in the generic struct that uses the generic type parameter.

		typeParameterNameToFieldName := genericTypeInfo.TypeParameterNameToFieldName
		fieldName, err := motmedelMaps.MapGet(typeParameterNameToFieldName, typeParameterName)
		if err != nil {
			return nil, motmedelErrors.New(
				fmt.Errorf("%w: %s: %w", ErrUnusedTypeParameter, typeParameterName, err),
				origin, typeParameterName,
			)
		}

		field, ok := reflectType.FieldByName(fieldName)
		if !ok {
			return nil, motmedelErrors.NewWithTrace(generalErrors.ErrNoStructField, reflectType, fieldName)
		}

		// Determine the "shape" of the field that uses the generic type parameter and extract the concrete type
		// for this instantiation.

		argReflectType := field.Type
		if fieldShape, ok := genericTypeInfo.TypeParameterNameToShape[typeParameterName]; ok {
			switch fieldShape.Kind {
			case shape.KindPointer, shape.KindSlice, shape.KindArray, shape.KindMapValue:
				argReflectType = argReflectType.Elem()
			case shape.KindMapKey:
				argReflectType = argReflectType.Key()
			case shape.KindDirect:
				// use as-is
			}
		}

		typeArgument, err := b.TypeOf(ctx, argReflectType)
		if err != nil {
			return nil, motmedelErrors.New(fmt.Errorf("type of (type argument): %w", err), argReflectType)
		}
		typeArguments = append(typeArguments, typeArgument)
	}

	return typeArguments, nil
}

func (b *Bridge) tupleOf(ctx context.Context, reflectTypes []reflect.Type) (*goTypes.Tuple, error) {
	variables := make([]*goTypes.Var, 0, len(reflectTypes))
	for _, reflectType := range reflectTypes {
		t, err := b.TypeOf(ctx, reflectType)
		if err != nil {
			return nil, err
		}
		variables = append(variables, goTypes.NewParam(token.NoPos, nil, "", t))
	}

	return goTypes.NewTuple(variables...), nil
}

func (b *Bridge) signatureOf(ctx context.Context, reflectType reflect.Type) (*goTypes.Signature, error) {
	in := make([]reflect.Type, reflectType.NumIn())
	for i := range reflectType.NumIn() {
		in[i] = reflectType.In(i)
	}
	out := make([]reflect.Type, reflectType.NumOut())
	for i := range reflectType.NumOut() {
		out[i] = reflectType.Out(i)
	}

	params, err := b.tupleOf(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("tuple of (params): %w", err)
	}
	results, err := b.tupleOf(ctx, out)
	if err != nil {
		return nil, fmt.Errorf("tuple of (results): %w", err)
	}

	return goTypes.NewSignatureType(nil, nil, nil, params, results, reflectType.IsVariadic()), nil
}

func (b *Bridge) structOf(ctx context.Context, reflectType reflect.Type) (*goTypes.Struct, error) {
	fields := make([]*goTypes.Var, 0, reflectType.NumField())
	tags := make([]string, 0, reflectType.NumField())
	for i := range reflectType.NumField() {
		field := reflectType.Field(i)

		t, err := b.TypeOf(ctx, field.Type)
		if err != nil {
			return nil, motmedelErrors.New(fmt.Errorf("type of (field %s): %w", field.Name, err), field)
		}

		fields = append(fields, goTypes.NewField(token.NoPos, nil, field.Name, t, field.Anonymous))
		tags = append(tags, string(field.Tag))
	}

	return goTypes.NewStruct(fields, tags), nil
}

func (b *Bridge) interfaceOf(ctx context.Context, reflectType reflect.Type) (*goTypes.Interface, error) {
	methods := make([]*goTypes.Func, 0, reflectType.NumMethod())
	for i := range reflectType.NumMethod() {
		method := reflectType.Method(i)

		signature, err := b.signatureOf(ctx, method.Type)
		if err != nil {
			return nil, motmedelErrors.New(fmt.Errorf("signature of (method %s): %w", method.Name, err), method)
		}

		methods = append(methods, goTypes.NewFunc(token.NoPos, nil, method.Name, signature))
	}

	return goTypes.NewInterfaceType(methods, nil).Complete(), nil
}
