// SPDX-License-Identifier: BSD-3-Clause

// Package eventbus implements the broadcast event bus the supervisor uses to
// notify subscribers of lifecycle, button, and adapter-reported events. It is
// backed by an embedded, loopback-only NATS server: publishing an event is a
// NATS publish to a subject derived from the event's Kind, and subscribing to
// KindAny subscribes to the ">" wildcard subject.
//
// Handlers run on NATS's dispatch goroutines, never on the caller's
// goroutine, so a slow or misbehaving handler cannot stall the publisher.
package eventbus
