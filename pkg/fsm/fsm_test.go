// SPDX-License-Identifier: BSD-3-Clause

package fsm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/powersupd/powersupd/pkg/fsm"
)

func newTrafficLight(t *testing.T, broadcast fsm.BroadcastFunc) *fsm.Machine {
	t.Helper()

	m, err := fsm.New(
		fsm.WithName("traffic-light"),
		fsm.WithInitialState("RED"),
		fsm.WithStates(
			fsm.State{Name: "RED"},
			fsm.State{Name: "GREEN"},
			fsm.State{Name: "YELLOW"},
		),
		fsm.WithTransition("RED", "GREEN", "NEXT"),
		fsm.WithTransition("GREEN", "YELLOW", "NEXT"),
		fsm.WithTransition("YELLOW", "RED", "NEXT"),
		fsm.WithBroadcastFunc(broadcast),
	)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return m
}

func TestMachineTransitions(t *testing.T) {
	ctx := context.Background()
	m := newTrafficLight(t, nil)

	if got := m.CurrentState(); got != "RED" {
		t.Fatalf("initial state = %q, want RED", got)
	}

	for _, want := range []string{"GREEN", "YELLOW", "RED"} {
		if err := m.Fire(ctx, "NEXT"); err != nil {
			t.Fatalf("Fire(NEXT) returned error: %v", err)
		}
		if got := m.CurrentState(); got != want {
			t.Fatalf("state after Fire = %q, want %q", got, want)
		}
	}
}

func TestMachineInvalidTrigger(t *testing.T) {
	ctx := context.Background()
	m := newTrafficLight(t, nil)

	err := m.Fire(ctx, "NOPE")
	if !errors.Is(err, fsm.ErrInvalidTrigger) {
		t.Fatalf("Fire(NOPE) error = %v, want ErrInvalidTrigger", err)
	}
	if got := m.CurrentState(); got != "RED" {
		t.Fatalf("state after rejected trigger = %q, want RED", got)
	}
}

func TestMachineGuardRefusalIsSilent(t *testing.T) {
	ctx := context.Background()
	allow := false

	m, err := fsm.New(
		fsm.WithName("gate"),
		fsm.WithInitialState("CLOSED"),
		fsm.WithStates(fsm.State{Name: "CLOSED"}, fsm.State{Name: "OPEN"}),
		fsm.WithGuardedTransition("CLOSED", "OPEN", "OPEN_IT", func(context.Context) bool { return allow }),
	)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	if err := m.Fire(ctx, "OPEN_IT"); err != nil {
		t.Fatalf("Fire() with refused guard returned error: %v", err)
	}
	if got := m.CurrentState(); got != "CLOSED" {
		t.Fatalf("state after refused guard = %q, want CLOSED", got)
	}

	allow = true
	if err := m.Fire(ctx, "OPEN_IT"); err != nil {
		t.Fatalf("Fire() with satisfied guard returned error: %v", err)
	}
	if got := m.CurrentState(); got != "OPEN" {
		t.Fatalf("state after satisfied guard = %q, want OPEN", got)
	}
}

func TestMachineBroadcastFunc(t *testing.T) {
	ctx := context.Background()

	type call struct{ previous, current, trigger string }
	var got []call

	m := newTrafficLight(t, func(previous, current, trigger string) {
		got = append(got, call{previous, current, trigger})
	})

	if err := m.Fire(ctx, "NEXT"); err != nil {
		t.Fatalf("Fire() returned error: %v", err)
	}

	want := []call{{"RED", "GREEN", "NEXT"}}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("broadcast calls = %+v, want %+v", got, want)
	}
}

func TestMachineInvalidConfig(t *testing.T) {
	_, err := fsm.New(fsm.WithName("broken"))
	if !errors.Is(err, fsm.ErrInvalidConfig) {
		t.Fatalf("New() with no states error = %v, want ErrInvalidConfig", err)
	}
}

func TestMachineCanFire(t *testing.T) {
	ctx := context.Background()
	m := newTrafficLight(t, nil)

	if !m.CanFire(ctx, "NEXT") {
		t.Fatal("CanFire(NEXT) = false, want true")
	}
	if m.CanFire(ctx, "NOPE") {
		t.Fatal("CanFire(NOPE) = true, want false")
	}
}

func TestMachineStateTimeout(t *testing.T) {
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})

	m, err := fsm.New(
		fsm.WithName("slow"),
		fsm.WithInitialState("A"),
		fsm.WithStates(
			fsm.State{Name: "A"},
			fsm.State{
				Name: "B",
				OnEntry: func(ctx context.Context) error {
					close(entered)
					select {
					case <-release:
					case <-ctx.Done():
						return ctx.Err()
					}
					return nil
				},
			},
		),
		fsm.WithTransition("A", "B", "GO"),
		fsm.WithStateTimeout(20*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- m.Fire(ctx, "GO") }()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("OnEntry was never invoked")
	}

	if err := <-errCh; !errors.Is(err, fsm.ErrTransitionTimeout) {
		t.Fatalf("Fire() error = %v, want ErrTransitionTimeout", err)
	}
	close(release)
}
