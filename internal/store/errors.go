package store

import "errors"

// ErrConflict is returned when an insert violates a primary-key
// uniqueness constraint (spec.md §7 "Conflict").
var ErrConflict = errors.New("store: primary key conflict")
