package custom_errors

import "errors"

// Configuration errors. They are fatal to a single schedule run and are never retried
// within the same tick.
var (
	ErrProviderNotFound    = errors.New("provider not found")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// IsConfigurationError reports whether err stems from a missing or unsupported provider.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrProviderNotFound) || errors.Is(err, ErrUnsupportedProvider)
}
