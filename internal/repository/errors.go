package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness constraint rejected the write.
	ErrConflict = errors.New("repository: conflict")
)

// ErrDecode classifies cached payloads that could not be parsed.
var ErrDecode = errors.New("repository: decode cached payload")

// DecodeError reports a cached payload under Key that failed to parse.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return "decode cached payload " + e.Key + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports ErrDecode as a match so callers can use errors.Is.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
