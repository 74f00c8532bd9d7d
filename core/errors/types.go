// Package errors defines the error taxonomy shared by the metra core:
// duplicate-identity rejections, persistence failures, and non-fatal
// validation warnings. Malformed-identifier errors live with the codec in
// core/readingtype.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for lookup and store paths.
var (
	// ErrUnknownField indicates a field name outside the 16 standard fields.
	ErrUnknownField = errors.New("unknown field name")

	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("store is closed")
)

// DuplicateError reports an attempt to add an entry or record whose
// identity already exists. The original data is left untouched.
type DuplicateError struct {
	// Kind names the colliding identity, e.g. "record name" or
	// "dictionary value".
	Kind string

	// Key is the duplicated identity value.
	Key string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s: %q already exists", e.Kind, e.Key)
}

// IsDuplicate reports whether err is a *DuplicateError.
func IsDuplicate(err error) bool {
	var d *DuplicateError
	return errors.As(err, &d)
}

// PersistError reports a failed write of a store to its backing file.
// In-memory state is unchanged when it is returned, so the caller may retry.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Warnings is a list of non-fatal validation messages. It accompanies a
// successful result and never blocks generation or storage.
type Warnings []string

// Empty reports whether there are no warnings.
func (w Warnings) Empty() bool {
	return len(w) == 0
}
