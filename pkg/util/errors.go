// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two failure classes a poll can hit
var (
	ErrProtocol   = errors.New("session protocol failure")
	ErrDataFormat = errors.New("unexpected device output format")
)

// ProtocolError represents a transport-level failure: a read timed out, the
// stream closed early, or an expected prompt never appeared. Always fatal to
// the current poll; never retried.
type ProtocolError struct {
	Op     string // operation that failed, e.g. "login", "send 'xdsl info'"
	Detail string
	Err    error // underlying transport error, may be nil
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("protocol failure during %s", e.Op)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += " (" + e.Err.Error() + ")"
	}
	return msg
}

func (e *ProtocolError) Unwrap() error {
	return ErrProtocol
}

// NewProtocolError creates a protocol error with context
func NewProtocolError(op, detail string, err error) *ProtocolError {
	return &ProtocolError{Op: op, Detail: detail, Err: err}
}

// DataFormatError represents device output that did not match the profile's
// expectations: a required key was missing from parsed output, or its value
// could not be converted. Indicates a firmware or localization mismatch, not
// a transport failure.
type DataFormatError struct {
	Command string // command whose output was being parsed
	Key     string // required key that was missing or malformed
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("output of %q: required key %q missing or malformed", e.Command, e.Key)
}

func (e *DataFormatError) Unwrap() error {
	return ErrDataFormat
}

// NewDataFormatError creates a data format error
func NewDataFormatError(command, key string) *DataFormatError {
	return &DataFormatError{Command: command, Key: key}
}
