// SPDX-License-Identifier: BSD-3-Clause

package supervisor

import "errors"

var (
	// ErrNameEmpty indicates that the supervisor name cannot be empty.
	ErrNameEmpty = errors.New("supervisor name cannot be empty")
	// ErrAdaptersIncomplete indicates that one or more required host
	// adapters were never configured.
	ErrAdaptersIncomplete = errors.New("supervisor adapters incomplete: every With* adapter option is required")
	// ErrConnect indicates that connecting to the in-process event bus failed.
	ErrConnect = errors.New("failed to connect to event bus")
	// ErrPanicked indicates that the supervisor panicked during execution.
	ErrPanicked = errors.New("supervisor panicked")
)
