// SPDX-License-Identifier: BSD-3-Clause

// Package fsm provides a thread-safe finite state machine wrapper around
// github.com/qmuntal/stateless, built from a declarative list of states and
// transitions rather than direct calls into the underlying library. It is
// shared by every state machine the supervisor runs: the device lifecycle
// machine and the button debounce machine.
package fsm
