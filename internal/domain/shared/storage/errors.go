package storage

import "errors"

// ErrUnavailable marks store failures that are transient from the caller's
// point of view. An unreachable store must surface as this, never as an
// empty (and therefore "available") result.
var ErrUnavailable = errors.New("storage: store unavailable")
