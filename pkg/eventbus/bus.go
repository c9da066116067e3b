// SPDX-License-Identifier: BSD-3-Clause

package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/powersupd/powersupd/pkg/log"
)

// Handler processes a published event. It runs on a NATS dispatch goroutine,
// never on the goroutine that called Emit.
type Handler func(kind Kind, payload []byte)

// Subscription is a handle returned by Register, passed back to Deregister.
type Subscription struct {
	sub  *nats.Subscription
	kind Kind
}

// Bus is a broadcast event bus backed by an embedded, loopback-only NATS
// server. One Bus serves an entire process; every registered handler and
// every Emit call shares the same embedded server.
type Bus struct {
	cfg    *config
	server *server.Server
	conn   *nats.Conn
	logger *slog.Logger
	tracer trace.Tracer

	mu      sync.Mutex
	started bool
}

// New creates a Bus. The embedded server is not started until Start is called.
func New(opts ...Option) *Bus {
	return &Bus{cfg: newConfig(opts...)}
}

// Name reports the bus's configured service name, satisfying service.Service.
func (b *Bus) Name() string {
	return b.cfg.serviceName
}

// Start boots the embedded NATS server and blocks until it is ready for
// connections or the configured startup timeout elapses, whichever comes
// first. ctx is used for tracing and logging, not to cut the wait short.
func (b *Bus) Start(ctx context.Context) error {
	if err := b.cfg.validate(); err != nil {
		return err
	}

	b.logger = log.GetGlobalLogger().With("component", b.cfg.serviceName)
	b.tracer = otel.Tracer(b.cfg.serviceName)

	ctx, span := b.tracer.Start(ctx, "eventbus.Start")
	defer span.End()

	ns, err := server.NewServer(b.cfg.toServerOptions())
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %w", ErrServerCreationFailed, err)
	}
	ns.SetLoggerV2(log.NewNATSLogger(b.logger), true, false, false)
	ns.Start()

	if !ns.ReadyForConnections(b.cfg.startupTimeout) {
		ns.Shutdown()
		err := fmt.Errorf("%w: not ready within %v", ErrServerTimeout, b.cfg.startupTimeout)
		span.RecordError(err)
		return err
	}

	conn, err := nats.Connect("", nats.InProcessServer(inProcessProvider{ns}))
	if err != nil {
		ns.Shutdown()
		span.RecordError(err)
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	b.mu.Lock()
	b.server = ns
	b.conn = conn
	b.started = true
	b.mu.Unlock()

	b.logger.InfoContext(ctx, "event bus started", "server_id", ns.ID())
	return nil
}

// Stop closes the internal connection and shuts the embedded server down.
func (b *Bus) Stop(ctx context.Context) error {
	b.mu.Lock()
	conn, ns := b.conn, b.server
	b.started = false
	b.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if ns == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.cfg.shutdownTimeout)
	defer cancel()

	ns.LameDuckShutdown()
	done := make(chan struct{})
	go func() {
		defer close(done)
		ns.Shutdown()
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		b.logger.WarnContext(ctx, "event bus shutdown timed out")
	}
	return nil
}

// ConnProvider returns a nats.InProcessConnProvider other services can use
// to obtain their own connection to this bus's embedded server.
func (b *Bus) ConnProvider() nats.InProcessConnProvider {
	b.mu.Lock()
	defer b.mu.Unlock()
	return inProcessProvider{b.server}
}

// Emit publishes payload under kind, bounded by the bus's emit timeout (or
// ctx's deadline, whichever is sooner). KindAny is not a valid Emit kind.
func (b *Bus) Emit(ctx context.Context, kind Kind, payload []byte) error {
	if kind == KindAny {
		return fmt.Errorf("%w: %s is a subscription wildcard, not an emittable kind", ErrUnknownKind, kind)
	}

	b.mu.Lock()
	conn, started := b.conn, b.started
	b.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.emitTimeout)
	defer cancel()

	_, span := b.tracer.Start(ctx, "eventbus.Emit", trace.WithAttributes(
		attribute.String("eventbus.kind", string(kind)),
	))
	defer span.End()

	if err := conn.Publish(kind.subject(), payload); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %w", ErrEmitFailed, err)
	}
	return nil
}

// Register subscribes handler to kind. Registering KindAny subscribes to
// every kind via the ">" wildcard subject.
func (b *Bus) Register(kind Kind, handler Handler) (Subscription, error) {
	b.mu.Lock()
	conn, started := b.conn, b.started
	b.mu.Unlock()
	if !started {
		return Subscription{}, ErrNotStarted
	}

	sub, err := conn.Subscribe(kind.subject(), func(msg *nats.Msg) {
		handler(Kind(msg.Subject), msg.Data)
	})
	if err != nil {
		return Subscription{}, fmt.Errorf("registering handler for %s: %w", kind, err)
	}
	return Subscription{sub: sub, kind: kind}, nil
}

// Deregister removes a subscription. Deregistering an already-deregistered
// subscription fails softly and returns nil.
func (b *Bus) Deregister(sub Subscription) error {
	if sub.sub == nil {
		return nil
	}
	if err := sub.sub.Unsubscribe(); err != nil && err != nats.ErrBadSubscription {
		return fmt.Errorf("deregistering handler for %s: %w", sub.kind, err)
	}
	return nil
}

type inProcessProvider struct {
	server *server.Server
}

func (p inProcessProvider) InProcessConn() (net.Conn, error) {
	timeout := time.Now().Add(time.Minute)
	for p.server == nil && time.Now().Before(timeout) {
		time.Sleep(time.Millisecond)
	}
	if p.server == nil {
		return nil, ErrConnectionFailed
	}
	if !p.server.ReadyForConnections(time.Minute) {
		return nil, ErrServerTimeout
	}
	return p.server.InProcessConn()
}
