// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the domain logic between the HTTP
// handlers and the store.
package service

import (
	"database/sql"
	"errors"
)

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate means a uniqueness rule was violated.
	ErrDuplicate = errors.New("already exists")

	// ErrInvalidCredentials covers bad username/password pairs and
	// invalid or expired tokens. Deliberately vague.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConflict means the entity is not in a state that allows the
	// requested operation (e.g. editing a queued newsletter).
	ErrConflict = errors.New("conflict")

	// ErrCapacityFull means an event has no remaining registration slots.
	ErrCapacityFull = errors.New("event capacity reached")

	// ErrLastSuperadmin guards against demoting or deleting the only
	// superadmin account.
	ErrLastSuperadmin = errors.New("cannot remove the last superadmin")
)

// ValidationError reports a domain-level validation failure on a
// specific field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validation creates a ValidationError.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// mapNoRows converts the driver's empty-result error into ErrNotFound.
func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
