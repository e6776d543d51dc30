// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error handling and exit codes for markyt commands.
//
// Handlers return errors; HandleX wrappers display them and pick the exit
// code.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/backend"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/chat"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/config"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports a malformed command line.
type UsageError struct {
	Message string
	Usage   string // Example invocation, optional
}

func (e *UsageError) Error() string {
	if e.Usage != "" {
		return fmt.Sprintf("%s\nUsage: %s", e.Message, e.Usage)
	}
	return e.Message
}

// NotFoundError reports a missing conversation, key or symbol.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrMissingArgument creates a UsageError for a missing argument.
func ErrMissingArgument(argName, usage string) error {
	return &UsageError{
		Message: fmt.Sprintf("missing required argument: %s", argName),
		Usage:   usage,
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return ExitNotFoundError
	}
	var validateErrs config.ValidateErrors
	if errors.As(err, &validateErrs) {
		return ExitConfigError
	}

	switch {
	case errors.Is(err, storage.ErrInvalidSymbol),
		errors.Is(err, storage.ErrDuplicate),
		errors.Is(err, storage.ErrCapacity),
		errors.Is(err, chat.ErrEmptyMessage):
		return ExitUsageError
	case backend.IsNotFound(err):
		return ExitNotFoundError
	case backend.IsTimeout(err):
		return ExitTimeoutError
	case backend.IsConnection(err):
		return ExitNetworkError
	}
	return ExitGeneralError
}

// DisplayError writes err to w, as a JSON error document in JSON mode.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		resp := NewJSONErrorResponse("", err)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(resp)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// exitOnError displays err on stderr and exits with its exit code.
func exitOnError(err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		DisplayError(os.Stdout, err, true)
	} else {
		DisplayError(os.Stderr, err, false)
	}
	os.Exit(GetExitCode(err))
}
