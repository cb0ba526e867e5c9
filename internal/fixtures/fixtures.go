// Package fixtures declares types exercised by the loader and reflect bridge tests.
package fixtures

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

type Item struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Status    Status    `json:"status,omitempty"`
}

type Pair[K comparable, V any] struct {
	Key   K `json:"key"`
	Value V `json:"value"`
}

type Page[T comparable] struct {
	Items    []T            `json:"items"`
	Next     *T             `json:"next,omitempty"`
	Index    map[string]T   `json:"index"`
	Counters map[T]int      `json:"-"`
	Total    int            `json:"total"`
	Window   [2]T           `json:"window"`
	Labels   map[string]any `json:"labels,omitempty"`
}

// Dict carries both of its type parameters in a single map field.
type Dict[K comparable, V any] struct {
	Entries map[K]V `json:"entries"`
}

// Phantom does not use its type parameter in any field.
type Phantom[T any] struct {
	Value int
}

type IDs = []int
