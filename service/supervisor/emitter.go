// SPDX-License-Identifier: BSD-3-Clause

package supervisor

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/powersupd/powersupd/pkg/eventbus"
)

// eventEmitter is the minimal surface the button and lifecycle tasks need
// to post lifecycle events. *eventbus.Bus satisfies it directly; natsEmitter
// lets the supervisor publish onto a connection it does not own the server
// for, which is the common case once it is wired under an operator that
// already runs the embedded bus.
type eventEmitter interface {
	Emit(ctx context.Context, kind eventbus.Kind, payload []byte) error
}

// natsEmitter publishes events directly on an existing NATS connection,
// without standing up a second embedded server the way eventbus.Bus would.
type natsEmitter struct {
	conn *nats.Conn
}

func (e *natsEmitter) Emit(ctx context.Context, kind eventbus.Kind, payload []byte) error {
	return e.conn.Publish(string(kind), payload)
}
