// Package common defines sentinel errors shared by the store, the services
// and the conversational layer. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal  = errors.New("internal error")
	ErrorForbidden = errors.New("forbidden")

	// Validation errors for wizard input.
	ErrorInvalidIdentifier = errors.New("invalid identifier")
	ErrorEmptyInput        = errors.New("empty input")
)
