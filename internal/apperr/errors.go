package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrManifestUnavailable = errors.New("manifest unavailable")
	ErrManifestMalformed   = errors.New("manifest malformed")
	ErrContentUnavailable  = errors.New("content unavailable")
	// ErrContentNotFound also matches ErrContentUnavailable.
	ErrContentNotFound = fmt.Errorf("content not found: %w", ErrContentUnavailable)
)
