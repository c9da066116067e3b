// SPDX-License-Identifier: BSD-3-Clause

package fsm

import (
	"context"
	"fmt"
	"sync"

	"github.com/qmuntal/stateless"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Machine is a thread-safe finite state machine. A single Machine is not
// safe to Fire from multiple goroutines concurrently with different
// triggers expecting serialized ordering beyond what the internal lock
// gives: Fire calls are serialized, but callers racing on outcome still need
// their own coordination.
type Machine struct {
	cfg     *config
	sm      *stateless.StateMachine
	tracer  trace.Tracer
	mu      sync.Mutex
	guards  map[string]map[string]GuardFunc // from -> trigger -> guard
	current string
}

// New builds a Machine from the given options and validates it.
func New(opts ...Option) (*Machine, error) {
	cfg := newConfig(opts...)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	m := &Machine{
		cfg:     cfg,
		tracer:  otel.Tracer("fsm"),
		guards:  make(map[string]map[string]GuardFunc),
		current: cfg.initialState,
	}

	m.sm = stateless.NewStateMachine(cfg.initialState)

	for _, s := range cfg.states {
		sc := m.sm.Configure(s.Name)
		if s.OnEntry != nil {
			entry := s.OnEntry
			sc.OnEntry(func(ctx context.Context, _ ...any) error { return entry(ctx) })
		}
		if s.OnExit != nil {
			exit := s.OnExit
			sc.OnExit(func(ctx context.Context, _ ...any) error { return exit(ctx) })
		}
	}

	for _, t := range cfg.transitions {
		m.sm.Configure(t.From).Permit(t.Trigger, t.To)
		if t.Guard != nil {
			if m.guards[t.From] == nil {
				m.guards[t.From] = make(map[string]GuardFunc)
			}
			m.guards[t.From][t.Trigger] = t.Guard
		}
	}

	return m, nil
}

// Fire attempts to fire trigger from the current state. If the trigger has
// a guard and the guard refuses, Fire returns nil without changing state:
// callers in this codebase fire triggers fire-and-forget and never branch
// on a guard refusal.
func (m *Machine) Fire(ctx context.Context, trigger string) error {
	m.mu.Lock()

	var span trace.Span
	ctx, span = m.tracer.Start(ctx, "fsm.Fire", trace.WithAttributes(
		attribute.String("fsm.name", m.cfg.name),
		attribute.String("fsm.state", m.current),
		attribute.String("fsm.trigger", trigger),
	))
	defer span.End()

	if guard, ok := m.guards[m.current][trigger]; ok && !guard(ctx) {
		m.mu.Unlock()
		return nil
	}

	ok, err := m.sm.CanFire(trigger)
	if err != nil || !ok {
		m.mu.Unlock()
		span.RecordError(ErrInvalidTrigger)
		return fmt.Errorf("%w: trigger %q in state %q", ErrInvalidTrigger, trigger, m.current)
	}

	timeout := m.cfg.stateTimeout
	fireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	previous := m.current
	done := make(chan error, 1)
	go func() { done <- m.sm.FireCtx(fireCtx, trigger) }()

	select {
	case err := <-done:
		if err != nil {
			m.mu.Unlock()
			span.RecordError(err)
			return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
		}
	case <-fireCtx.Done():
		m.mu.Unlock()
		span.RecordError(ErrTransitionTimeout)
		return ErrTransitionTimeout
	}

	state, err := m.sm.State(ctx)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("reading resulting state: %w", err)
	}
	m.current = fmt.Sprintf("%v", state)
	current := m.current
	broadcast := m.cfg.broadcast
	m.mu.Unlock()

	span.SetAttributes(attribute.String("fsm.new_state", current))

	if broadcast != nil {
		broadcast(previous, current, trigger)
	}

	return nil
}

// CurrentState returns the machine's current state.
func (m *Machine) CurrentState() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// IsInState reports whether the machine is currently in state.
func (m *Machine) IsInState(state string) bool {
	return m.CurrentState() == state
}

// CanFire reports whether trigger is permitted from the current state,
// taking guards into account.
func (m *Machine) CanFire(ctx context.Context, trigger string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if guard, ok := m.guards[m.current][trigger]; ok && !guard(ctx) {
		return false
	}
	ok, err := m.sm.CanFire(trigger)
	return err == nil && ok
}
