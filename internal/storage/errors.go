// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// StoreError represents a storage-related error.
// It implements the error interface and can be compared using errors.Is.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrCorrupt marks persisted data that could not be decoded. Stores
	// recover from it on load by starting over; it is only ever logged.
	ErrCorrupt = &StoreError{Message: "persisted data is corrupt"}

	// ErrInvalidSymbol is reported when a symbol is empty after normalization.
	ErrInvalidSymbol = &StoreError{Message: "invalid symbol"}

	// ErrDuplicate is reported when adding a symbol that is already a favorite.
	ErrDuplicate = &StoreError{Message: "symbol is already a favorite"}

	// ErrCapacity is reported when the favorites list is full.
	ErrCapacity = &StoreError{Message: "favorites list is full"}
)
