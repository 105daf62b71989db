// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package models

import "fmt"

// FailureClass classifies failures for control flow. Everything except
// ClassInvalidInput is recovered inside the core by substitution; only
// invalid input surfaces to the caller as a rejection.
type FailureClass int

const (
	// ClassUpstreamUnavailable means an external call failed or timed out.
	ClassUpstreamUnavailable FailureClass = iota

	// ClassDataEmpty means a call succeeded but returned zero usable records.
	ClassDataEmpty

	// ClassParseCorrupt means cached data failed structural validation.
	ClassParseCorrupt

	// ClassInvalidInput means a caller-supplied identifier failed validation.
	ClassInvalidInput
)

// String returns the class name used in logs and error payloads.
func (c FailureClass) String() string {
	switch c {
	case ClassUpstreamUnavailable:
		return "upstream_unavailable"
	case ClassDataEmpty:
		return "data_empty"
	case ClassParseCorrupt:
		return "parse_corrupt"
	case ClassInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// ClassifiedError carries a failure class alongside the underlying error.
type ClassifiedError struct {
	Class FailureClass
	Op    string
	Err   error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Class)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Class, e.Err)
}

// Unwrap returns the wrapped error.
func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// NewClassifiedError wraps err with a failure class and operation name.
func NewClassifiedError(class FailureClass, op string, err error) *ClassifiedError {
	return &ClassifiedError{Class: class, Op: op, Err: err}
}
