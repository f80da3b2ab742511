package osscert

import (
	"errors"
	"fmt"
)

var (
	// ErrLookupFailure means no custom domain on the bucket matches the target.
	ErrLookupFailure = errors.New("no matching custom domain")
	// ErrIncompleteInput means the private key or certificate is empty.
	ErrIncompleteInput = errors.New("incomplete certificate material")
	// ErrDateParse means a bound certificate's expiry is not in ExpiryLayout.
	ErrDateParse = errors.New("unparseable certificate expiry")
)

// ProviderError wraps a failure returned by the storage provider.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Process exit codes.
const (
	// ExitOK is returned when the binding was updated or listed.
	ExitOK = 0
	// ExitInput covers invalid configuration, missing material and no
	// matching custom domain.
	ExitInput = 1
	// ExitRuntime covers provider, expiry parsing and history failures.
	ExitRuntime = 2
)

// ExitCode maps an error returned by the rotator to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrLookupFailure), errors.Is(err, ErrIncompleteInput):
		return ExitInput
	default:
		return ExitRuntime
	}
}
