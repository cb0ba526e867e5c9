package generic_type_info

import "github.com/vphpersson/generic_explorer/pkg/types/shape"

// GenericTypeInfo maps each type parameter of a generic struct to the first field that uses it, and to the shape in
// which that field uses it. A field may carry more than one type parameter, e.g. map[K]V.
type GenericTypeInfo struct {
	TypeParameterNames           []string
	TypeParameterNameToFieldName map[string]string
	TypeParameterNameToShape     map[string]shape.Shape
}
