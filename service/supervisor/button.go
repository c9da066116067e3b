// SPDX-License-Identifier: BSD-3-Clause

package supervisor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/powersupd/powersupd/pkg/eventbus"
	"github.com/powersupd/powersupd/pkg/fsm"
)

const (
	triggerPress         = "press"
	triggerRelease       = "release"
	triggerLongPress     = "long_press"
	triggerVeryLongPress = "very_long_press"
)

// newButtonMachine builds the four-state debounced button classifier. bus
// may be nil, in which case button transitions are silent.
func newButtonMachine(bus eventEmitter) (*fsm.Machine, error) {
	broadcast := func(previous, current, trigger string) {
		if bus == nil {
			return
		}
		ctx := context.Background()
		switch trigger {
		case triggerPress:
			_ = bus.Emit(ctx, eventbus.KindButtonPressed, nil)
		case triggerRelease:
			_ = bus.Emit(ctx, eventbus.KindButtonReleased, nil)
			if previous == string(ButtonPressed) {
				_ = bus.Emit(ctx, eventbus.KindButtonClicked, nil)
			}
		case triggerLongPress:
			_ = bus.Emit(ctx, eventbus.KindButtonLongPressed, nil)
		case triggerVeryLongPress:
			_ = bus.Emit(ctx, eventbus.KindButtonVeryLongPressed, nil)
		}
	}

	return fsm.New(
		fsm.WithName("button"),
		fsm.WithInitialState(string(ButtonReleased)),
		fsm.WithStates(
			fsm.State{Name: string(ButtonReleased)},
			fsm.State{Name: string(ButtonPressed)},
			fsm.State{Name: string(ButtonLongPressed)},
			fsm.State{Name: string(ButtonVeryLongPressed)},
		),
		fsm.WithTransition(string(ButtonReleased), string(ButtonPressed), triggerPress),
		fsm.WithTransition(string(ButtonPressed), string(ButtonReleased), triggerRelease),
		fsm.WithTransition(string(ButtonPressed), string(ButtonLongPressed), triggerLongPress),
		fsm.WithTransition(string(ButtonLongPressed), string(ButtonReleased), triggerRelease),
		fsm.WithTransition(string(ButtonLongPressed), string(ButtonVeryLongPressed), triggerVeryLongPress),
		fsm.WithTransition(string(ButtonVeryLongPressed), string(ButtonReleased), triggerRelease),
		fsm.WithBroadcastFunc(broadcast),
	)
}

// buttonTask samples the raw power button line, debounces it, and drives the
// button state machine. It enqueues an idle timer reset request for as long
// as the button is held, per the lifecycle task's single-writer invariant
// over last_activity_ms.
type buttonTask struct {
	cfg      *config
	machine  *fsm.Machine
	requests chan<- Request
	state    atomic.Value // ButtonState
}

func newButtonTask(cfg *config, machine *fsm.Machine, requests chan<- Request) *buttonTask {
	t := &buttonTask{cfg: cfg, machine: machine, requests: requests}
	t.state.Store(ButtonReleased)
	return t
}

// CurrentState returns the last debounced button classification.
func (t *buttonTask) CurrentState() ButtonState {
	return t.state.Load().(ButtonState)
}

func (t *buttonTask) run(ctx context.Context) {
	ticker := time.NewTicker(t.cfg.buttonPollInterval)
	defer ticker.Stop()

	var rawLevel, debouncedLevel bool
	var lastEdge time.Time
	var pressStart time.Time
	var firedLong, firedVeryLong bool

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			level := t.cfg.adapters.ButtonRead()

			if level != rawLevel {
				rawLevel = level
				lastEdge = now
			}

			if level != debouncedLevel && now.Sub(lastEdge) >= t.cfg.debounce {
				debouncedLevel = level
				if debouncedLevel {
					pressStart = now
					firedLong = false
					firedVeryLong = false
					_ = t.machine.Fire(ctx, triggerPress)
					t.state.Store(ButtonPressed)
				} else {
					_ = t.machine.Fire(ctx, triggerRelease)
					t.state.Store(ButtonReleased)
				}
			}

			if debouncedLevel {
				held := now.Sub(pressStart)
				if !firedLong && held >= t.cfg.longPress {
					firedLong = true
					_ = t.machine.Fire(ctx, triggerLongPress)
					t.state.Store(ButtonLongPressed)
				}
				if !firedVeryLong && held >= t.cfg.veryLongPress {
					firedVeryLong = true
					_ = t.machine.Fire(ctx, triggerVeryLongPress)
					t.state.Store(ButtonVeryLongPressed)
				}
				t.enqueueIdleReset()
			}
		}
	}
}

func (t *buttonTask) enqueueIdleReset() {
	select {
	case t.requests <- Request{Kind: RequestIdleTimerReset}:
	default:
	}
}
