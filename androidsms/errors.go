package androidsms

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind categorizes a parse failure.
type Kind string

const (
	KindDecode   Kind = "decode"
	KindDatabase Kind = "database"
	KindIO       Kind = "io"
	KindRange    Kind = "range"
)

// Error is a categorized failure tied to a source file and, when known, a record within it.
type Error struct {
	Kind   Kind
	Path   string
	Record int // -1 when the failure is not tied to one record
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind) + " error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Record >= 0 {
		msg += fmt.Sprintf(" (record %d)", e.Record)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, &Error{Kind: KindRange}) matches any range failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Path == "" && t.Err == nil
}

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Record: -1, Err: err}
}

// withContext fills in the path and record of err, wrapping it as kind when it
// is not already categorized.
func withContext(err error, kind Kind, path string, record int) error {
	if err == nil {
		return nil
	}
	var categorized *Error
	if errors.As(err, &categorized) {
		out := *categorized
		if out.Path == "" {
			out.Path = path
		}
		if out.Record < 0 {
			out.Record = record
		}
		return &out
	}
	return &Error{Kind: kind, Path: path, Record: record, Err: err}
}

// KindOf returns the category of err. Filesystem errors are reported as KindIO;
// anything else uncategorized is reported as the empty Kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var categorized *Error
	if errors.As(err, &categorized) {
		return categorized.Kind
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return KindIO
	}
	return ""
}
