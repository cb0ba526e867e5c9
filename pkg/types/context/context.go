package context

import (
	"fmt"
	goTypes "go/types"
	"reflect"
	"strings"

	generalErrors "github.com/vphpersson/generic_explorer/pkg/errors"
	"github.com/vphpersson/generic_explorer/pkg/explorer"
	"github.com/vphpersson/generic_explorer/pkg/types/type_declaration"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/go/types/typeutil"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
	motmedelJsonTag "github.com/Motmedel/utils_go/pkg/json/types/tag"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

func IsTime(t goTypes.Type) bool {
	named, ok := goTypes.Unalias(t).(*goTypes.Named)
	if !ok {
		return false
	}

	object := named.Obj()
	return object.Name() == "Time" && object.Pkg() != nil && object.Pkg().Path() == "time"
}

// IsDuration reports whether t is time.Duration, which is a plain integer count of nanoseconds rather than an enum
// of its unit constants.
func IsDuration(t goTypes.Type) bool {
	named, ok := goTypes.Unalias(t).(*goTypes.Named)
	if !ok {
		return false
	}

	object := named.Obj()
	return object.Name() == "Duration" && object.Pkg() != nil && object.Pkg().Path() == "time"
}

// RemoveIndirection strips any number of pointers from t.
func RemoveIndirection(t goTypes.Type) goTypes.Type {
	for {
		pointer, ok := goTypes.Unalias(t).(*goTypes.Pointer)
		if !ok {
			return t
		}
		t = pointer.Elem()
	}
}

// IsInterface reports whether the underlying type of t is an interface. Interface types carry no data of their
// own and are never declared.
func IsInterface(t goTypes.Type) bool {
	_, ok := t.Underlying().(*goTypes.Interface)
	return ok
}

type optionalFieldPolicy int

const (
	forceOptional optionalFieldPolicy = iota
	dontForceOptional
)

// Context collects the declarations needed to render a set of types. The zero value is ready to use.
type Context struct {
	// TypeDeclarations maps types to their declarations; identical types share one declaration.
	TypeDeclarations        typeutil.Map
	TypeDeclarationsInOrder []type_declaration.TypeDeclaration

	// InstantiateGenerics makes instantiated generic types declared on their own ("Pair[string, int]" becomes
	// "PairStringInt") rather than referencing a declaration of the generic origin.
	InstantiateGenerics bool

	usedQualifiedNames map[string]struct{}
	anonymousCount     int
}

type Option func(*Context)

func WithInstantiateGenerics() Option {
	return func(c *Context) {
		c.InstantiateGenerics = true
	}
}

func (g *Context) makeUniqueIdentifier(base string) string {
	id := base
	i := 2
	for {
		if _, exists := g.usedQualifiedNames[id]; !exists {
			return id
		}
		id = fmt.Sprintf("%s%d", base, i)
		i++
	}
}

func (g *Context) makeUniqueAnonymousIdentifier() string {
	g.anonymousCount++
	return fmt.Sprintf("Anonymous%d", g.anonymousCount)
}

func (g *Context) reserveIdentifier(base string) string {
	if base == "" {
		base = g.makeUniqueAnonymousIdentifier()
	}

	identifier := g.makeUniqueIdentifier(base)
	if g.usedQualifiedNames == nil {
		g.usedQualifiedNames = map[string]struct{}{}
	}
	g.usedQualifiedNames[identifier] = struct{}{}

	return identifier
}

// identifierPart renders a type argument as part of the identifier of an instantiated declaration.
func identifierPart(t goTypes.Type) string {
	switch tt := goTypes.Unalias(t).(type) {
	case *goTypes.Named:
		part := titleCaser.String(tt.Obj().Name())
		typeArguments := tt.TypeArgs()
		for i := range typeArguments.Len() {
			part += identifierPart(typeArguments.At(i))
		}
		return part
	case *goTypes.Basic:
		return titleCaser.String(tt.Name())
	case *goTypes.Pointer:
		return identifierPart(tt.Elem())
	case *goTypes.Slice:
		return identifierPart(tt.Elem()) + "List"
	case *goTypes.Array:
		return identifierPart(tt.Elem()) + "List"
	case *goTypes.Map:
		return "Map" + identifierPart(tt.Key()) + identifierPart(tt.Elem())
	case *goTypes.TypeParam:
		return tt.Obj().Name()
	default:
		return "Anonymous"
	}
}

func (g *Context) declarationIdentifier(t goTypes.Type) string {
	named, ok := t.(*goTypes.Named)
	if !ok {
		return ""
	}

	return identifierPart(named)
}

func typeParameterNames(named *goTypes.Named) []string {
	typeParams := named.TypeParams()
	if typeParams.Len() == 0 || named.TypeArgs().Len() > 0 {
		return nil
	}

	names := make([]string, typeParams.Len())
	for i := range typeParams.Len() {
		names[i] = typeParams.At(i).Obj().Name()
	}

	return names
}

// Lookup returns the declaration of t, if any.
func (g *Context) Lookup(t goTypes.Type) (type_declaration.TypeDeclaration, bool) {
	if t == nil {
		return nil, false
	}

	typeDeclaration, ok := g.TypeDeclarations.At(t).(type_declaration.TypeDeclaration)
	return typeDeclaration, ok
}

// IsLiteral reports whether t is a struct, signature or interface literal. The fields of a struct literal are
// discovered through its properties, so that unexported and skipped fields declare nothing; signatures and
// interfaces have no properties at all. Exploring with explorer.WithLeaf(IsLiteral) thus only meets declared
// types.
func IsLiteral(t goTypes.Type) bool {
	switch t.(type) {
	case *goTypes.Struct, *goTypes.Signature, *goTypes.Interface:
		return true
	default:
		return false
	}
}

func (g *Context) discover(t goTypes.Type) error {
	if _, err := explorer.Explore[struct{}](t, &discoverer{c: g}, explorer.WithLeaf(IsLiteral)); err != nil {
		return fmt.Errorf("explore: %w", err)
	}

	return nil
}

func structOf(t goTypes.Type) (*goTypes.Struct, bool) {
	structType, ok := RemoveIndirection(t).Underlying().(*goTypes.Struct)
	return structType, ok
}

func (g *Context) populateProperties(
	interfaceDeclaration *type_declaration.InterfaceDeclaration,
	structType *goTypes.Struct,
	optionalFieldPolicy optionalFieldPolicy,
) error {
	// Iterate over normal fields first, and embedded structs last. This ensures that outer fields
	// will take precedence over inner fields in the case of overlapping fields, which is consistent
	// with json.Marshal().
	var embeddedFields []*goTypes.Var
	for i := range structType.NumFields() {
		field := structType.Field(i)

		if len(field.Name()) == 0 || !field.Exported() {
			continue
		}

		if _, isStruct := structOf(field.Type()); field.Embedded() && isStruct && !IsTime(RemoveIndirection(field.Type())) {
			embeddedFields = append(embeddedFields, field)
			continue
		}

		tag := reflect.StructTag(structType.Tag(i))

		propertyName := field.Name()
		optional := false

		jsonTag := motmedelJsonTag.New(tag.Get("json"))
		if jsonTag != nil {
			if jsonTag.Skip {
				continue
			}
			if name := jsonTag.Name; name != "" {
				propertyName = name
			}

			optional = jsonTag.OmitEmpty || jsonTag.OmitZero
		}

		// If there's already a field with the same name as the current field, we skip it. This can
		// happen when populating the fields of an embedded struct, and the inner and outer structs
		// have overlapping fields, in which case the outer field takes precedence.
		overlaps := false
		for _, property := range interfaceDeclaration.Properties {
			if propertyName == property.Identifier {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}

		if err := g.discover(field.Type()); err != nil {
			return motmedelErrors.New(fmt.Errorf("discover (field %s): %w", field.Name(), err), field)
		}

		interfaceDeclaration.Properties = append(
			interfaceDeclaration.Properties,
			&type_declaration.PropertySignature{
				Identifier: propertyName,
				Field:      field,
				Tag:        tag,
				Optional:   optionalFieldPolicy == forceOptional || optional,
			},
		)
	}

	for _, field := range embeddedFields {
		// If the field is an embedded struct pointer, we recursively mark all its fields as optional.
		// This is because json.Marshal() will omit said fields if the embedded struct pointer is nil.
		embeddedStructOptionalFieldPolicy := dontForceOptional
		_, isPointer := goTypes.Unalias(field.Type()).(*goTypes.Pointer)
		if optionalFieldPolicy == forceOptional || isPointer {
			embeddedStructOptionalFieldPolicy = forceOptional
		}

		embeddedStructType, _ := structOf(field.Type())
		err := g.populateProperties(interfaceDeclaration, embeddedStructType, embeddedStructOptionalFieldPolicy)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetOrCreateInterfaceDeclaration declares t, a defined type with a struct underlying type or a struct literal,
// along with every type its properties mention.
func (g *Context) GetOrCreateInterfaceDeclaration(t goTypes.Type) (*type_declaration.InterfaceDeclaration, error) {
	t = RemoveIndirection(goTypes.Unalias(t))

	structType, ok := t.Underlying().(*goTypes.Struct)
	if !ok {
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: cannot declare interface for type %s", generalErrors.ErrNotStruct, t),
			t,
		)
	}

	if existingTypeDeclaration, ok := g.Lookup(t); ok {
		interfaceDeclaration, ok := existingTypeDeclaration.(*type_declaration.InterfaceDeclaration)
		if !ok {
			return nil, motmedelErrors.NewWithTrace(
				fmt.Errorf("%w: declared as %T", generalErrors.ErrNotStruct, existingTypeDeclaration),
				t,
			)
		}
		return interfaceDeclaration, nil
	}

	interfaceDeclaration := &type_declaration.InterfaceDeclaration{
		Identifier: g.reserveIdentifier(g.declarationIdentifier(t)),
		Type:       t,
	}
	if named, ok := t.(*goTypes.Named); ok {
		interfaceDeclaration.TypeParameters = typeParameterNames(named)
	}
	g.TypeDeclarations.Set(t, interfaceDeclaration)

	if err := g.populateProperties(interfaceDeclaration, structType, dontForceOptional); err != nil {
		return nil, fmt.Errorf("populate interface declaration properties: %w", err)
	}

	// Add the interface declaration to the ordered output after populating its fields. This ensures
	// that any new types discovered while populating the interface fields will appear before the
	// interface declaration in the output.
	g.TypeDeclarationsInOrder = append(g.TypeDeclarationsInOrder, interfaceDeclaration)

	return interfaceDeclaration, nil
}

func (g *Context) getOrCreateTypeAliasDeclaration(named *goTypes.Named) (*type_declaration.TypeAliasDeclaration, error) {
	if existingTypeDeclaration, ok := g.Lookup(named); ok {
		typeAliasDeclaration, _ := existingTypeDeclaration.(*type_declaration.TypeAliasDeclaration)
		return typeAliasDeclaration, nil
	}

	typeAliasDeclaration := &type_declaration.TypeAliasDeclaration{
		Identifier:     g.reserveIdentifier(g.declarationIdentifier(named)),
		TypeParameters: typeParameterNames(named),
		Named:          named,
		AliasedType:    named.Underlying(),
	}
	g.TypeDeclarations.Set(named, typeAliasDeclaration)

	if err := g.discover(typeAliasDeclaration.AliasedType); err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("discover (aliased type): %w", err), named)
	}

	g.TypeDeclarationsInOrder = append(g.TypeDeclarationsInOrder, typeAliasDeclaration)

	return typeAliasDeclaration, nil
}

func (g *Context) getOrCreateEnumDeclaration(
	named *goTypes.Named,
	constants []*goTypes.Const,
) *type_declaration.EnumDeclaration {
	if existingTypeDeclaration, ok := g.Lookup(named); ok {
		enumDeclaration, _ := existingTypeDeclaration.(*type_declaration.EnumDeclaration)
		return enumDeclaration
	}

	enumDeclaration := &type_declaration.EnumDeclaration{
		Identifier: g.reserveIdentifier(g.declarationIdentifier(named)),
		Named:      named,
		Constants:  constants,
	}
	g.TypeDeclarations.Set(named, enumDeclaration)
	g.TypeDeclarationsInOrder = append(g.TypeDeclarationsInOrder, enumDeclaration)

	return enumDeclaration
}

func (g *Context) declareNamed(named *goTypes.Named) error {
	if named.Obj().Pkg() == nil || IsTime(named) || IsDuration(named) || IsInterface(named) {
		return nil
	}

	if named.TypeParams().Len() > 0 && named.TypeArgs().Len() == 0 && g.InstantiateGenerics {
		return nil
	}

	if _, ok := named.Underlying().(*goTypes.Struct); ok {
		if _, err := g.GetOrCreateInterfaceDeclaration(named); err != nil {
			return fmt.Errorf("get or create interface declaration: %w", err)
		}
		return nil
	}

	if _, err := g.getOrCreateTypeAliasDeclaration(named); err != nil {
		return fmt.Errorf("get or create type alias declaration: %w", err)
	}

	return nil
}

func (g *Context) Add(typeList ...goTypes.Type) error {
	for _, t := range typeList {
		if t == nil {
			return motmedelErrors.NewWithTrace(generalErrors.ErrNilType)
		}

		if err := g.discover(t); err != nil {
			return motmedelErrors.New(fmt.Errorf("discover: %w", err), t)
		}
	}

	return nil
}

func New(options ...Option) *Context {
	c := &Context{
		TypeDeclarationsInOrder: []type_declaration.TypeDeclaration{},
		usedQualifiedNames:      map[string]struct{}{},
	}

	for _, option := range options {
		if option != nil {
			option(c)
		}
	}

	return c
}

// discoverer declares the defined types and struct literals met while exploring a type.
type discoverer struct {
	c *Context
}

func (d *discoverer) HandleVoid() (struct{}, error) { return struct{}{}, nil }

func (d *discoverer) HandleBasic(*goTypes.Basic) (struct{}, error) { return struct{}{}, nil }

func (d *discoverer) HandleNamed(named *goTypes.Named) (struct{}, error) {
	return struct{}{}, d.c.declareNamed(named)
}

func (d *discoverer) HandleEnum(named *goTypes.Named, constants []*goTypes.Const) (struct{}, error) {
	if IsDuration(named) {
		return struct{}{}, nil
	}
	d.c.getOrCreateEnumDeclaration(named, constants)
	return struct{}{}, nil
}

func (d *discoverer) HandleInstantiated(named *goTypes.Named, _ struct{}, _ []struct{}) (struct{}, error) {
	if !d.c.InstantiateGenerics {
		// The origin has been declared already.
		return struct{}{}, nil
	}
	return struct{}{}, d.c.declareNamed(named)
}

func (d *discoverer) HandleAlias(*goTypes.Alias, struct{}) (struct{}, error) { return struct{}{}, nil }

func (d *discoverer) HandleElem(goTypes.Type, struct{}) (struct{}, error) { return struct{}{}, nil }

func (d *discoverer) HandleMap(*goTypes.Map, struct{}, struct{}) (struct{}, error) {
	return struct{}{}, nil
}

func (d *discoverer) HandleStruct(structType *goTypes.Struct, _ []struct{}) (struct{}, error) {
	if _, err := d.c.GetOrCreateInterfaceDeclaration(structType); err != nil {
		return struct{}{}, fmt.Errorf("get or create interface declaration: %w", err)
	}
	return struct{}{}, nil
}

func (d *discoverer) HandleTuple(*goTypes.Tuple, []struct{}) (struct{}, error) { return struct{}{}, nil }

func (d *discoverer) HandleSignature(*goTypes.Signature, struct{}, struct{}) (struct{}, error) {
	return struct{}{}, nil
}

func (d *discoverer) HandleInterface(*goTypes.Interface, []struct{}, []struct{}) (struct{}, error) {
	return struct{}{}, nil
}

func (d *discoverer) HandleUnion(*goTypes.Union, []struct{}) (struct{}, error) { return struct{}{}, nil }

func (d *discoverer) HandleTypeParam(*goTypes.TypeParam, []struct{}) (struct{}, error) {
	return struct{}{}, nil
}

// Identifiers returns the identifiers of the declarations in order, which is mainly useful for diagnostics.
func (g *Context) Identifiers() []string {
	identifiers := make([]string, 0, len(g.TypeDeclarationsInOrder))
	for _, typeDeclaration := range g.TypeDeclarationsInOrder {
		identifiers = append(identifiers, typeDeclaration.QualifiedName())
	}
	return identifiers
}

func (g *Context) String() string {
	return strings.Join(g.Identifiers(), ", ")
}
