package idgen

import "github.com/google/uuid"

// NewFunc produces identifiers for actions, audit entries and tasks; swap it
// in tests to get predictable IDs.
var NewFunc = func() string { return uuid.New().String() }

// New returns a fresh identifier via NewFunc.
func New() string { return NewFunc() }
