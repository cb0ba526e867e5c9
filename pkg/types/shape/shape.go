// Package shape describes how a struct field of a generic type uses one of the type parameters.
package shape

type Kind int

const (
	KindDirect Kind = iota
	KindPointer
	KindSlice
	KindArray
	KindMapValue
	KindMapKey
)

func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindPointer:
		return "pointer"
	case KindSlice:
		return "slice"
	case KindArray:
		return "array"
	case KindMapValue:
		return "map value"
	case KindMapKey:
		return "map key"
	default:
		return "unknown"
	}
}

type Shape struct {
	Param string
	Kind  Kind
}
