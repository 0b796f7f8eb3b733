package database

import "errors"

// ErrNotFound is returned when a requested trip does not exist
var ErrNotFound = errors.New("entity not found")
