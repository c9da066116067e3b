// SPDX-License-Identifier: BSD-3-Clause

package operator

import "errors"

var (
	// ErrNameEmpty indicates that the operator name cannot be empty.
	ErrNameEmpty = errors.New("operator name cannot be empty")
	// ErrBusNil indicates that the embedded event bus is not configured.
	ErrBusNil = errors.New("event bus not configured: provide the WithEventBus option")
	// ErrAddProcess indicates that adding a process to supervision failed.
	ErrAddProcess = errors.New("failed to add process to supervision tree")
	// ErrAddExtraService indicates that adding an extra service failed.
	ErrAddExtraService = errors.New("failed to add extra service to supervision tree")
	// ErrPanicked indicates that the operator panicked during execution.
	ErrPanicked = errors.New("operator panicked")
)
