package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrElementTimeout       = errors.New("element wait timed out")
	ErrDiscoveryFailed      = errors.New("document discovery failed")
	ErrResolutionFailed     = errors.New("document resolution failed")
	ErrInvalidExtension     = errors.New("extension not allowed or not identified")
	ErrDownloadFailed       = errors.New("document download failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
