package store

import "errors"

// ErrNotFound is returned when an operation references a job, application,
// or session id that is not in the database. Callers must surface it,
// never swallow it.
var ErrNotFound = errors.New("not found")
