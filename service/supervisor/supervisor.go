// SPDX-License-Identifier: BSD-3-Clause

// Package supervisor implements the device lifecycle and button debouncer
// state machines, the request queue that arbitrates between them, and the
// public API façade client code uses to drive the lifecycle.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/powersupd/powersupd/pkg/fsm"
	"github.com/powersupd/powersupd/pkg/log"
	"github.com/powersupd/powersupd/service"
)

var _ service.Service = (*Supervisor)(nil)

// Supervisor is the device lifecycle supervisor. A caller that obtained
// *Supervisor from New before Run is free to call the façade methods
// immediately: requests enqueued before Run starts are simply processed
// once the lifecycle task starts draining the queue.
type Supervisor struct {
	cfg *config

	conn      *nats.Conn
	emitter   eventEmitter
	button    *fsm.Machine
	lifecycle *fsm.Machine

	buttonTask    *buttonTask
	lifecycleTask *lifecycleTask
	requests      chan Request

	logger *slog.Logger
	tracer trace.Tracer
	meter  metric.Meter

	requestsDropped metric.Int64Counter
}

// New constructs a Supervisor from the given options. Adapters are
// validated lazily, at Run, matching the façade's "setters before init"
// contract in spec terms.
func New(opts ...Option) *Supervisor {
	cfg := newConfig(opts...)
	return &Supervisor{
		cfg:      cfg,
		requests: make(chan Request, cfg.requestsQueueSize),
	}
}

// Name reports the service name, satisfying service.Service.
func (s *Supervisor) Name() string {
	return s.cfg.name
}

// Run validates the configured adapters, connects to the shared event bus,
// and runs the button and lifecycle tasks until ctx is done.
func (s *Supervisor) Run(ctx context.Context, ipcConn nats.InProcessConnProvider) (err error) {
	if s.cfg.name == "" {
		return ErrNameEmpty
	}
	if !s.cfg.adapters.complete() {
		return ErrAdaptersIncomplete
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s %w: %v", s.Name(), ErrPanicked, r)
		}
	}()

	s.logger = log.GetGlobalLogger().With("component", s.cfg.name)
	s.tracer = otel.Tracer(s.cfg.name)
	s.meter = otel.Meter(s.cfg.name)
	if err := s.initMetrics(); err != nil {
		return err
	}

	if ipcConn != nil {
		conn, err := nats.Connect("", nats.InProcessServer(ipcConn))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConnect, err)
		}
		s.conn = conn
		s.emitter = &natsEmitter{conn: conn}
		defer conn.Close()
	}

	button, err := newButtonMachine(s.emitter)
	if err != nil {
		return fmt.Errorf("building button machine: %w", err)
	}
	s.button = button

	lifecycle, err := newLifecycleMachine(s.cfg, s.emitter)
	if err != nil {
		return fmt.Errorf("building lifecycle machine: %w", err)
	}
	s.lifecycle = lifecycle

	s.buttonTask = newButtonTask(s.cfg, s.button, s.requests)
	s.lifecycleTask = newLifecycleTask(s.cfg, s.lifecycle, s.emitter, s.buttonTask, s.requests)

	s.logger.InfoContext(ctx, "starting supervisor tasks", "service", s.cfg.name)

	go s.buttonTask.run(ctx)
	s.lifecycleTask.run(ctx)

	return nil
}

func (s *Supervisor) initMetrics() error {
	var err error
	s.requestsDropped, err = s.meter.Int64Counter(
		"supervisor.requests_dropped",
		metric.WithDescription("requests dropped because the request queue was full"),
		metric.WithUnit("{request}"),
	)
	return err
}

// enqueue submits req to the lifecycle task's request queue, matching the
// bounded, best-effort contract of the public API façade: enqueue has a
// 10ms budget, after which a full queue silently drops the request.
func (s *Supervisor) enqueue(req Request) {
	timer := time.NewTimer(10 * time.Millisecond)
	defer timer.Stop()

	select {
	case s.requests <- req:
	case <-timer.C:
		if s.requestsDropped != nil {
			s.requestsDropped.Add(context.Background(), 1)
		}
	}
}
