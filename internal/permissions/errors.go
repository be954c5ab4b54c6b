package permissions

import "errors"

var (
	// ErrUnknownFlag is returned when a symbolic name does not resolve to a
	// registered flag.
	ErrUnknownFlag = errors.New("unknown permission flag")

	// ErrInvalidFlag is returned when a raw integer carries bits outside the
	// registered flag space.
	ErrInvalidFlag = errors.New("invalid permission flag bits")

	// ErrInvalidPermissionInput is returned when a Set is constructed from an
	// unsupported input shape.
	ErrInvalidPermissionInput = errors.New("invalid permission input")

	// ErrOverlappingOverwrite is returned when an overwrite allows and denies
	// the same flag.
	ErrOverlappingOverwrite = errors.New("overwrite allow and deny masks overlap")
)
