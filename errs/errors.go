// Package errs defines the error kinds returned by the lasf codec.
//
// Every error is either a sentinel that can be matched with errors.Is, or a typed error
// carrying diagnostic context (byte offset, expected vs. actual length, offending value)
// that unwraps to one of the sentinels:
//
//	if errors.Is(err, errs.ErrTruncated) {
//	    var te *errs.TruncatedError
//	    if errors.As(err, &te) {
//	        log.Printf("short %s at offset %d: want %d bytes, got %d", te.Section, te.Offset, te.Expected, te.Actual)
//	    }
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrFormat is the parent of all "not a decodable LAS stream" errors.
var ErrFormat = errors.New("lasf: format error")

// Format errors. All of them match ErrFormat with errors.Is.
var (
	ErrInvalidSignature       = fmt.Errorf("%w: invalid file signature", ErrFormat)
	ErrUnsupportedVersion     = fmt.Errorf("%w: unsupported LAS version", ErrFormat)
	ErrUnsupportedPointFormat = fmt.Errorf("%w: unsupported point data record format", ErrFormat)
)

var (
	// ErrTruncated indicates fewer bytes were available than a structure requires.
	ErrTruncated = errors.New("lasf: truncated stream")
	// ErrOutOfRange indicates a value does not fit its declared bit or byte width.
	ErrOutOfRange = errors.New("lasf: value out of range")
	// ErrInconsistentHeader indicates header fields that disagree with each other or with the stream.
	ErrInconsistentHeader = errors.New("lasf: inconsistent header")

	ErrWriterFinished         = errors.New("lasf: writer already finished")
	ErrPointsStarted          = errors.New("lasf: VLRs must be added before the first point")
	ErrFormatMismatch         = errors.New("lasf: record format does not match writer format")
	ErrQuantizationRequired   = errors.New("lasf: raw records require fixed quantization parameters")
	ErrUnsupportedCompression = errors.New("lasf: unsupported container compression")
	ErrInvalidWorkers         = errors.New("lasf: worker count must be positive")
)

// TruncatedError reports a short read of a fixed-size structure.
type TruncatedError struct {
	Section  string // "header", "vlr", "evlr", "points", ...
	Offset   int64  // byte offset where the structure starts
	Expected int    // bytes required
	Actual   int    // bytes available
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("lasf: truncated %s at offset %d: expected %d bytes, got %d",
		e.Section, e.Offset, e.Expected, e.Actual)
}

func (e *TruncatedError) Unwrap() error {
	return ErrTruncated
}

// Truncated builds a TruncatedError.
func Truncated(section string, offset int64, expected, actual int) error {
	return &TruncatedError{Section: section, Offset: offset, Expected: expected, Actual: actual}
}

// RangeError reports a caller value outside its declared width. Values are never masked.
type RangeError struct {
	Field string
	Value int64
	Min   int64
	Max   int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("lasf: %s=%d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// OutOfRange builds a RangeError.
func OutOfRange(field string, value, lo, hi int64) error {
	return &RangeError{Field: field, Value: value, Min: lo, Max: hi}
}

// InconsistentHeaderError reports a header field that disagrees with what the format,
// the version or the stream mandates.
type InconsistentHeaderError struct {
	Field    string
	Declared int64
	Expected int64
}

func (e *InconsistentHeaderError) Error() string {
	return fmt.Sprintf("lasf: inconsistent header field %s: declared %d, expected %d",
		e.Field, e.Declared, e.Expected)
}

func (e *InconsistentHeaderError) Unwrap() error {
	return ErrInconsistentHeader
}

// Inconsistent builds an InconsistentHeaderError.
func Inconsistent(field string, declared, expected int64) *InconsistentHeaderError {
	return &InconsistentHeaderError{Field: field, Declared: declared, Expected: expected}
}
