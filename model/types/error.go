package types

import "fmt"

func NewToolNotFoundError(name string) error {
	return fmt.Errorf("tool %v not found", name)
}

func NewInvalidArgsError(args interface{}) error {
	return fmt.Errorf("invalid arguments %T", args)
}
