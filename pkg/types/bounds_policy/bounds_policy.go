// Package bounds_policy defines how an implicit "any" constraint of a type parameter is treated.
//
// A type parameter declared without a meaningful constraint ([T any] or [T interface{}]) implicitly has the
// empty interface as its bound. An explicit "any" cannot be told apart from the implicit one, and is thus subject
// to the policy as well.
package bounds_policy

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPolicy = errors.New("unknown implicit bounds policy")

type ImplicitBoundsPolicy int

const (
	// Ignore makes the explorer skip empty-interface bounds: the handler is not called on "any", and the bounds
	// handed to HandleTypeParam are empty for unconstrained type parameters.
	Ignore ImplicitBoundsPolicy = iota
	// Process makes the explorer treat the empty interface as a regular bound: the handler is called on "any", and
	// its value is the single bound handed to HandleTypeParam.
	Process
)

func (p ImplicitBoundsPolicy) String() string {
	switch p {
	case Ignore:
		return "ignore"
	case Process:
		return "process"
	default:
		return fmt.Sprintf("ImplicitBoundsPolicy(%d)", int(p))
	}
}

func Parse(s string) (ImplicitBoundsPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return Ignore, nil
	case "process":
		return Process, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}
