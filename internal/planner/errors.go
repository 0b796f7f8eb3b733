package planner

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned for requests that cannot be planned at all
var ErrInvalidRequest = errors.New("invalid trip request")

// ErrInputNotFound is returned when a trip input cannot be geocoded
type ErrInputNotFound struct {
	Role  string // "origin", "destination" or "via"
	Input string
	Err   error
}

func (e *ErrInputNotFound) Error() string {
	return fmt.Sprintf("could not find %s %q: %v", e.Role, e.Input, e.Err)
}

func (e *ErrInputNotFound) Unwrap() error { return e.Err }

// ErrNoRoute is returned when the router cannot connect the trip inputs
type ErrNoRoute struct {
	Err error
}

func (e *ErrNoRoute) Error() string {
	return fmt.Sprintf("no driving route found: %v", e.Err)
}

func (e *ErrNoRoute) Unwrap() error { return e.Err }
