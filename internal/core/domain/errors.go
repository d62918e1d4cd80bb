package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate")
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited is the distinguished upstream quota signal. It is the
	// only error kind the retry policy re-attempts.
	ErrRateLimited = errors.New("rate limited")

	ErrTemporary = errors.New("temporary failure")

	// ErrMalformedOutput means completion text survived no repair strategy.
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrStructuringFailed is fatal for a document: without a section list
	// nothing downstream can proceed.
	ErrStructuringFailed = errors.New("document structuring failed")
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
