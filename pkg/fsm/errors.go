// SPDX-License-Identifier: BSD-3-Clause

package fsm

import "errors"

var (
	// ErrInvalidConfig indicates the machine configuration failed validation.
	ErrInvalidConfig = errors.New("invalid state machine configuration")
	// ErrInvalidTrigger indicates the requested trigger is not valid from the current state.
	ErrInvalidTrigger = errors.New("invalid trigger for current state")
	// ErrInvalidTransition indicates the underlying machine rejected the transition.
	ErrInvalidTransition = errors.New("state transition rejected")
	// ErrTransitionTimeout indicates a transition did not complete within its deadline.
	ErrTransitionTimeout = errors.New("state transition timed out")
)
