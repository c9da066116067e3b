// SPDX-License-Identifier: BSD-3-Clause

package fsm

import (
	"context"
	"fmt"
	"time"
)

// GuardFunc decides whether a transition may proceed. A guard returning
// false makes the trigger silently not fire: Fire returns nil, the machine
// stays in its current state.
type GuardFunc func(ctx context.Context) bool

// BroadcastFunc is invoked after every successful transition, outside the
// machine's internal lock, so it is safe for it to call back into the
// machine (e.g. CurrentState) or publish an event.
type BroadcastFunc func(previous, current, trigger string)

// State declares one state of the machine and its optional entry/exit hooks.
type State struct {
	Name    string
	OnEntry func(ctx context.Context) error
	OnExit  func(ctx context.Context) error
}

// Transition declares one permitted edge of the machine.
type Transition struct {
	From    string
	To      string
	Trigger string
	// Guard, if set, must return true for the transition to be taken. A
	// transition whose guard refuses is treated the same as a trigger that
	// was never fired: Fire returns nil and the state is unchanged.
	Guard GuardFunc
}

type config struct {
	name         string
	initialState string
	states       []State
	transitions  []Transition
	stateTimeout time.Duration
	broadcast    BroadcastFunc
}

// Option configures a Machine at construction time.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithName sets the machine's name, used in error messages and tracing.
func WithName(name string) Option {
	return optionFunc(func(c *config) { c.name = name })
}

// WithInitialState sets the state the machine starts in.
func WithInitialState(state string) Option {
	return optionFunc(func(c *config) { c.initialState = state })
}

// WithStates declares the machine's states, appending to any already set.
func WithStates(states ...State) Option {
	return optionFunc(func(c *config) { c.states = append(c.states, states...) })
}

// WithTransition adds an unguarded transition.
func WithTransition(from, to, trigger string) Option {
	return optionFunc(func(c *config) {
		c.transitions = append(c.transitions, Transition{From: from, To: to, Trigger: trigger})
	})
}

// WithGuardedTransition adds a transition that only fires when guard returns true.
func WithGuardedTransition(from, to, trigger string, guard GuardFunc) Option {
	return optionFunc(func(c *config) {
		c.transitions = append(c.transitions, Transition{From: from, To: to, Trigger: trigger, Guard: guard})
	})
}

// WithStateTimeout bounds how long a single Fire call may take. Defaults to 5s.
func WithStateTimeout(d time.Duration) Option {
	return optionFunc(func(c *config) { c.stateTimeout = d })
}

// WithBroadcastFunc registers a callback invoked after every committed transition.
func WithBroadcastFunc(fn BroadcastFunc) Option {
	return optionFunc(func(c *config) { c.broadcast = fn })
}

func newConfig(opts ...Option) *config {
	c := &config{stateTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

func (c *config) validate() error {
	if c.name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidConfig)
	}
	if c.initialState == "" {
		return fmt.Errorf("%w: initial state must not be empty", ErrInvalidConfig)
	}
	if len(c.states) == 0 {
		return fmt.Errorf("%w: at least one state must be declared", ErrInvalidConfig)
	}

	names := make(map[string]bool, len(c.states))
	for _, s := range c.states {
		if s.Name == "" {
			return fmt.Errorf("%w: state name must not be empty", ErrInvalidConfig)
		}
		if names[s.Name] {
			return fmt.Errorf("%w: duplicate state %q", ErrInvalidConfig, s.Name)
		}
		names[s.Name] = true
	}
	if !names[c.initialState] {
		return fmt.Errorf("%w: initial state %q not declared", ErrInvalidConfig, c.initialState)
	}
	for _, t := range c.transitions {
		if !names[t.From] {
			return fmt.Errorf("%w: transition from undeclared state %q", ErrInvalidConfig, t.From)
		}
		if !names[t.To] {
			return fmt.Errorf("%w: transition to undeclared state %q", ErrInvalidConfig, t.To)
		}
		if t.Trigger == "" {
			return fmt.Errorf("%w: transition trigger must not be empty", ErrInvalidConfig)
		}
	}
	return nil
}
