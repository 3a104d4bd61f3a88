package graph

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownType   = errors.New("graph: unknown node type")
	ErrNoNode        = errors.New("graph: no such node")
	ErrNoConnection  = errors.New("graph: no such connection")
	ErrInvalidTarget = errors.New("graph: invalid connection target")
	ErrDuplicate     = errors.New("graph: duplicate connection")
	ErrDangling      = errors.New("graph: node still has connections")
	ErrNoProperty    = errors.New("graph: no such property")
	ErrPropertyType  = errors.New("graph: property type mismatch")
)

// UnknownTypeError carries the rejected type name.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("graph: unknown node type %q", e.Name)
}

func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}
