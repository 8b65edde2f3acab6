package utils

import "github.com/pkg/errors"

// ErrInvalidConfiguration is the only error kind raised while building a
// simulation: malformed seed matrices, non-positive dimensions and invalid
// config values all wrap it.
var ErrInvalidConfiguration = errors.New("invalid configuration")
