package database

import "errors"

// ErrNotReady wraps a failed ping.
var ErrNotReady = errors.New("database not ready")
