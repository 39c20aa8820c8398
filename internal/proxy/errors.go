package proxy

// validationError signals a missing/malformed request field for 400 mapping.
type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

// ErrValidation constructs a validationError.
func ErrValidation(msg string) error { return validationError{msg: msg} }

// IsValidation reports whether err is caller-correctable (return 400).
func IsValidation(err error) bool {
	_, ok := err.(validationError)
	return ok
}

// configError signals missing server-side configuration (e.g. the provider
// token) so the HTTP layer returns 500 without blaming the caller.
type configError struct{ msg string }

func (e configError) Error() string { return e.msg }

// ErrConfig constructs a configError.
func ErrConfig(msg string) error { return configError{msg: msg} }

// IsConfig reports whether err indicates operator-correctable configuration.
func IsConfig(err error) bool {
	_, ok := err.(configError)
	return ok
}

// stagingError wraps failures materializing inline image data into a URL:
// malformed data URLs and upload failures both land here.
type stagingError struct{ err error }

func (e stagingError) Error() string { return "staging failed: " + e.err.Error() }

func (e stagingError) Unwrap() error { return e.err }

// ErrStaging wraps err as a staging failure.
func ErrStaging(err error) error { return stagingError{err: err} }

// IsStaging reports whether err occurred while staging the image.
func IsStaging(err error) bool {
	_, ok := err.(stagingError)
	return ok
}
