package summon

import "errors"

// Sentinel errors for runtime operations.
var (
	ErrUnknownCallback = errors.New("summon: unknown callback id")
	ErrMalformedAction = errors.New("summon: malformed action descriptor")
	ErrMissingElement  = errors.New("summon: element not found")
)

// IsUnknownCallback checks if err is an unknown-callback error.
func IsUnknownCallback(err error) bool {
	return errors.Is(err, ErrUnknownCallback)
}

// IsMalformedAction checks if err is a malformed action descriptor error.
func IsMalformedAction(err error) bool {
	return errors.Is(err, ErrMalformedAction)
}
