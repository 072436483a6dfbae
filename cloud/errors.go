/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package cloud

import (
	"errors"
	"fmt"
)

// Kind classifies the four status families the open/savepoint pipeline
// distinguishes. Everything else is IOError.
type Kind int

const (
	IOError Kind = iota
	NotFound
	InvalidArgument
	NotSupported
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not-found"
	case InvalidArgument:
		return "invalid-argument"
	case NotSupported:
		return "not-supported"
	default:
		return "io-error"
	}
}

// Error wraps an underlying cause with a Kind so callers can branch with
// errors.Is/errors.As instead of string-matching.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Msg: msg, Err: cause}
}

func errNotFound(msg string, cause error) error      { return newErr(NotFound, msg, cause) }
func errInvalidArg(msg string, cause error) error    { return newErr(InvalidArgument, msg, cause) }
func errNotSupported(msg string, cause error) error  { return newErr(NotSupported, msg, cause) }
func errIO(msg string, cause error) error            { return newErr(IOError, msg, cause) }

// IsNotFound reports whether err (or a wrapped cause) is a NotFound Error.
func IsNotFound(err error) bool { return hasKind(err, NotFound) }

// IsInvalidArgument reports whether err (or a wrapped cause) is an
// InvalidArgument Error.
func IsInvalidArgument(err error) bool { return hasKind(err, InvalidArgument) }

// IsNotSupported reports whether err (or a wrapped cause) is a NotSupported
// Error.
func IsNotSupported(err error) bool { return hasKind(err, NotSupported) }

func hasKind(err error, k Kind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == k
	}
	return false
}
