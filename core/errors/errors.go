// Package errors provides error handling for the scene sync service.
//
// This package re-exports github.com/cockroachdb/errors and defines the
// sentinel errors that drive control flow between the persistence layers:
//
//   - ErrNotFound: a document or object does not exist (drives create-vs-update)
//   - ErrConflict: an object already exists (treated as success for assets)
//   - ErrDecryption: wrong room key or corrupted ciphertext
//   - ErrPersistence: any other document or blob store failure
//   - ErrPartialBatch: some items of a batch failed while others succeeded
//
// Store implementations mark their failures with Mark so callers can test
// with Is while the original cause stays attached:
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    // create instead of update
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	WithHint     = crdb.WithHint
	WithDetailf  = crdb.WithDetailf
	Mark         = crdb.Mark
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

var (
	// ErrNotFound indicates the requested document or object does not exist.
	ErrNotFound = New("not found")

	// ErrConflict indicates the resource already exists.
	ErrConflict = New("resource conflict")

	// ErrDecryption indicates ciphertext could not be opened with the given key.
	ErrDecryption = New("decryption failed")

	// ErrPersistence indicates a document or blob store failure.
	ErrPersistence = New("persistence failure")

	// ErrPartialBatch indicates that part of a batch operation failed.
	ErrPartialBatch = New("partial batch failure")

	// ErrInvalidRequest indicates the request was malformed or invalid.
	ErrInvalidRequest = New("invalid request")
)

// Persistence marks err as a persistence failure unless it already carries
// one of the expected sentinels.
func Persistence(err error, msg string) error {
	if err == nil {
		return nil
	}
	if IsAny(err, ErrNotFound, ErrConflict, ErrDecryption) {
		return Wrap(err, msg)
	}
	return Mark(Wrap(err, msg), ErrPersistence)
}

// Decryption marks err as a decryption failure.
func Decryption(err error, msg string) error {
	if err == nil {
		return nil
	}
	return Mark(Wrap(err, msg), ErrDecryption)
}
