// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package errs holds the error type shared by every layer of the codec.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a codec failure.
type Kind int

const (
	// KindSchema covers field/array mismatches and unsupported layouts.
	KindSchema Kind = iota + 1
	// KindProtocol covers emission events or extraction requests that are
	// not valid for the target column.
	KindProtocol
	// KindExhausted is returned when reading past the end of a column.
	KindExhausted
	// KindConversion covers values that cannot be represented in the target
	// type (overflowing offsets, unparsable dates, out-of-range integers).
	KindConversion
	// KindCustom wraps errors returned by user-provided values and visitors.
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "SchemaError"
	case KindProtocol:
		return "ProtocolError"
	case KindExhausted:
		return "ExhaustedError"
	case KindConversion:
		return "ConversionError"
	case KindCustom:
		return "CustomError"
	default:
		return "Error"
	}
}

// Sentinels for use with errors.Is. They match any *Error of the same kind.
var (
	ErrSchema     = &Error{Kind: KindSchema}
	ErrProtocol   = &Error{Kind: KindProtocol}
	ErrExhausted  = &Error{Kind: KindExhausted}
	ErrConversion = &Error{Kind: KindConversion}
)

// Annotation is a single key/value pair of error context.
type Annotation struct {
	Key   string
	Value string
}

// Error is the codec error. Annotations carry the column path and data
// type where the failure happened.
type Error struct {
	Kind        Kind
	Message     string
	Annotations []Annotation
	Cause       error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Cause != nil {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}
		sb.WriteString(e.Cause.Error())
	}
	if len(e.Annotations) > 0 {
		sb.WriteString(" (")
		for i, a := range e.Annotations {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s: %q", a.Key, a.Value)
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is. A target without a message matches every error of
// its kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message != "" && t.Message != e.Message {
		return false
	}
	return t.Kind == 0 || t.Kind == e.Kind
}

// Annotation returns the value stored under key.
func (e *Error) Annotation(key string) (string, bool) {
	for _, a := range e.Annotations {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Schemaf returns a KindSchema error.
func Schemaf(format string, args ...any) error { return newf(KindSchema, format, args...) }

// Protocolf returns a KindProtocol error.
func Protocolf(format string, args ...any) error { return newf(KindProtocol, format, args...) }

// Exhaustedf returns a KindExhausted error.
func Exhaustedf(format string, args ...any) error { return newf(KindExhausted, format, args...) }

// Conversionf returns a KindConversion error.
func Conversionf(format string, args ...any) error { return newf(KindConversion, format, args...) }

// Wrap attaches a message and kind to cause.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	e := newf(kind, format, args...)
	e.Cause = cause
	return e
}

// Annotate adds key/value pairs to err. Keys that an inner layer already set
// are kept, so the innermost column path survives unwinding. Errors that are
// not codec errors are wrapped as KindCustom first.
func Annotate(err error, kvs ...string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindCustom, Cause: err}
		err = e
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		if _, ok := e.Annotation(kvs[i]); ok {
			continue
		}
		e.Annotations = append(e.Annotations, Annotation{Key: kvs[i], Value: kvs[i+1]})
	}
	return err
}
