package domain

import "errors"

// ErrNotFound is returned when a requested talk unit or dialogue node does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnsupported is returned when a store lacks an optional capability.
var ErrUnsupported = errors.New("unsupported by store")
