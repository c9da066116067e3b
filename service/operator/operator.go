// SPDX-License-Identifier: BSD-3-Clause

// Package operator provides a service orchestrator that supervises the
// embedded event bus and the device lifecycle supervisor in a
// fault-tolerant manner, restarting either one on crash.
package operator

import (
	"context"
	"fmt"
	"time"

	"cirello.io/oversight/v2"
	"github.com/arunsworld/nursery"
	"github.com/nats-io/nats.go"

	"github.com/powersupd/powersupd/pkg/id"
	"github.com/powersupd/powersupd/pkg/log"
	"github.com/powersupd/powersupd/pkg/process"
	"github.com/powersupd/powersupd/pkg/telemetry"
	"github.com/powersupd/powersupd/service"
)

const defaultLogo = `
 ____                       ____              _
|  _ \ _____      _____ _ _/ ___| _   _ _ __ __| |
| |_) / _ \ \ /\ / / _ \ '__\___ \| | | | '_ \ / _` + "`" + ` |
|  __/ (_) \ V  V /  __/ |   ___) | |_| | |_) | (_| |
|_|   \___/ \_/\_/ \___|_|  |____/ \__,_| .__/ \__,_|
                                        |_|
`

// Compile-time assertion that Operator implements service.Service.
var _ service.Service = (*Operator)(nil)

// Operator supervises the event bus and the device lifecycle supervisor,
// restarting either one if it panics or returns.
type Operator struct {
	config
}

// New creates a new Operator instance with the provided configuration options.
//
// Example usage:
//
//	op := operator.New(
//		operator.WithName("my-supervisor"),
//		operator.WithEventBus(eventbus.WithServiceName("bus")),
//		operator.WithSupervisor(),
//	)
func New(opts ...Option) *Operator {
	cfg := &config{
		name:      "operator",
		id:        "",
		otelSetup: telemetry.DefaultSetup,
		logger:    log.New(),
		timeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return &Operator{
		config: *cfg,
	}
}

// Name returns the configured name of the operator service.
func (s *Operator) Name() string {
	return s.name
}

// Run starts the operator and all configured children under supervision.
// It runs the embedded event bus, wires its in-process connection to the
// supervisor, and manages the supervision tree until ctx is canceled.
func (s *Operator) Run(ctx context.Context, busConn nats.InProcessConnProvider) (err error) {
	if s.name == "" {
		return ErrNameEmpty
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s %w: %v", s.Name(), ErrPanicked, r)
		}
	}()

	s.otelSetup()

	l := s.logger
	if l == nil {
		l = log.GetGlobalLogger()
	}

	if s.id == "" {
		s.id = id.New()
	}

	if !s.disableLogo {
		if s.customLogo != "" {
			l.Info(s.customLogo)
		} else {
			l.Info(defaultLogo)
		}
	}

	supervisionTree := oversight.New(
		oversight.NeverHalt(),
		oversight.DefaultRestartStrategy(),
		oversight.WithLogger(log.NewOversightLogger(l)),
	)

	if s.bus == nil && busConn == nil {
		return ErrBusNil
	}

	if s.bus != nil && busConn == nil {
		if err := supervisionTree.Add(
			s.busChildProcess(),
			oversight.Transient(),
			oversight.Timeout(s.timeout),
			s.bus.Name(),
		); err != nil {
			return fmt.Errorf("%w %s to tree: %w", ErrAddProcess, s.bus.Name(), err)
		}
	}

	supervise := func(ctx context.Context, c chan error) {
		c <- supervisionTree.Start(ctx)
	}

	spawnProcs := func(ctx context.Context, c chan error) {
		var conn nats.InProcessConnProvider
		if busConn != nil {
			conn = busConn
		} else {
			conn = s.bus.ConnProvider()
		}

		if s.Supervisor != nil {
			if err := supervisionTree.Add(
				process.New(s.Supervisor, conn),
				oversight.Transient(),
				oversight.Timeout(s.timeout),
				s.Supervisor.Name(),
			); err != nil {
				c <- fmt.Errorf("%w %s to tree: %w", ErrAddProcess, s.Supervisor.Name(), err)
				return
			}
		}

		for _, svc := range s.extraServices {
			if err := supervisionTree.Add(
				process.New(svc, conn),
				oversight.Transient(),
				oversight.Timeout(s.timeout),
				svc.Name(),
			); err != nil {
				c <- fmt.Errorf("%w %s to tree: %w", ErrAddExtraService, svc.Name(), err)
				return
			}
		}
	}

	l.InfoContext(ctx, "Starting child routines", "service", s.name)
	return nursery.RunConcurrentlyWithContext(ctx, supervise, spawnProcs)
}

// busChildProcess wraps the embedded event bus as an oversight.ChildProcess,
// starting it, waiting for cancellation, and stopping it on the way out.
func (s *Operator) busChildProcess() oversight.ChildProcess {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panicked: %v", s.bus.Name(), r)
			}
		}()

		if err := s.bus.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		return s.bus.Stop(stopCtx)
	}
}
