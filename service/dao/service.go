package dao

import (
	"context"
)

type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}

// Mutator applies an in-place change to a loaded record. Returning false
// aborts the mutation without saving; this is how callers express a guard
// ("only while status is pending") that must hold at the moment of the
// state-changing write, not merely at read time.
type Mutator[T any] func(*T) bool

// Conditional extends Service with an atomic read-check-write. The storage
// layer guarantees that no other mutation of the same record interleaves
// between the load and the save, making the guard an optimistic conditional
// update. When several callers race on the same record exactly one wins.
type Conditional[K comparable, T any] interface {
	Service[K, T]

	// Mutate loads the record, applies fn and persists the result when fn
	// returns true. It returns (false, nil) when fn declined the mutation
	// and ErrNotFound when the record does not exist.
	Mutate(ctx context.Context, id K, fn Mutator[T]) (bool, error)
}
