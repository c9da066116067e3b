// SPDX-License-Identifier: BSD-3-Clause

package eventbus

import "errors"

var (
	// ErrInvalidConfiguration indicates the bus configuration failed validation.
	ErrInvalidConfiguration = errors.New("invalid event bus configuration")
	// ErrServerCreationFailed indicates the embedded NATS server could not be created.
	ErrServerCreationFailed = errors.New("failed to create embedded NATS server")
	// ErrServerTimeout indicates the embedded server did not become ready in time.
	ErrServerTimeout = errors.New("embedded NATS server not ready in time")
	// ErrNotStarted indicates an operation was attempted before Start completed.
	ErrNotStarted = errors.New("event bus not started")
	// ErrEmitFailed indicates Emit could not publish within its deadline.
	ErrEmitFailed = errors.New("failed to emit event")
	// ErrConnectionFailed indicates a client connection to the embedded server could not be made.
	ErrConnectionFailed = errors.New("failed to connect to event bus")
	// ErrUnknownKind indicates a Kind that cannot be emitted (the KindAny
	// subscription wildcard) was passed to Emit.
	ErrUnknownKind = errors.New("unknown event kind")
)
