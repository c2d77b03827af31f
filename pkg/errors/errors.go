package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the subsystem an error originated from
type ErrorType string

const (
	// ErrorTypeStore represents graph store / connection errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeGraph represents graph logic errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Kind classifies a failure so callers can choose policy (retry, skip,
// surface) instead of treating every error uniformly.
type Kind string

const (
	// KindNotFound - a queried node or edge endpoint is absent
	KindNotFound Kind = "not_found"
	// KindAlreadyExists - a node with the same hash is already present
	KindAlreadyExists Kind = "already_exists"
	// KindLocked - the store is held by another owner
	KindLocked Kind = "locked"
	// KindMalformed - invalid identifier or edge shape (e.g. self-loop)
	KindMalformed Kind = "malformed"
	// KindUnavailable - the store is unreachable or the operation failed
	KindUnavailable Kind = "unavailable"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Kind      Kind
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s/%s] %s: %v", e.Type, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Type, e.Kind, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// New creates a new base error
func New(errType ErrorType, kind Kind, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Kind:      kind,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Store errors

// NewStoreLocked is returned when the store path is locked by another owner
func NewStoreLocked(path string, err error) *BaseError {
	return New(ErrorTypeStore, KindLocked, fmt.Sprintf("store locked: %s", path), err)
}

// NewStoreUnavailable is returned when the store cannot serve an operation
func NewStoreUnavailable(operation string, err error) *BaseError {
	return New(ErrorTypeStore, KindUnavailable, fmt.Sprintf("store operation failed: %s", operation), err)
}

// Graph errors

// NewNodeNotFound is returned when a node hash is absent from the graph
func NewNodeNotFound(hash string) *BaseError {
	return New(ErrorTypeGraph, KindNotFound, fmt.Sprintf("node not found: %s", hash), nil)
}

// NewNodeExists is returned when a node with the same hash already exists
func NewNodeExists(hash string) *BaseError {
	return New(ErrorTypeGraph, KindAlreadyExists, fmt.Sprintf("node already exists: %s", hash), nil)
}

// NewEndpointMissing is returned when an edge endpoint does not exist
func NewEndpointMissing(from, to string) *BaseError {
	return New(ErrorTypeGraph, KindNotFound, fmt.Sprintf("edge endpoint missing: %s -> %s", from, to), nil)
}

// NewSelfLoop is returned when an edge would connect a node to itself
func NewSelfLoop(hash string) *BaseError {
	return New(ErrorTypeGraph, KindMalformed, fmt.Sprintf("self-loop rejected: %s", hash), nil)
}

// NewMalformedHash is returned when a content hash is empty or invalid
func NewMalformedHash(hash string) *BaseError {
	return New(ErrorTypeGraph, KindMalformed, fmt.Sprintf("malformed hash: %q", hash), nil)
}

// Helper functions

func isKind(err error, kind Kind) bool {
	var base *BaseError
	if errors.As(err, &base) {
		return base.Kind == kind
	}
	return false
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsAlreadyExists reports whether err is an already-exists error
func IsAlreadyExists(err error) bool { return isKind(err, KindAlreadyExists) }

// IsLocked reports whether err is a lock-contention error
func IsLocked(err error) bool { return isKind(err, KindLocked) }

// IsMalformed reports whether err is a malformed-input error
func IsMalformed(err error) bool { return isKind(err, KindMalformed) }

// IsUnavailable reports whether err is a store-unavailable error
func IsUnavailable(err error) bool { return isKind(err, KindUnavailable) }
