// SPDX-License-Identifier: BSD-3-Clause

package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/powersupd/powersupd/pkg/eventbus"
	"github.com/powersupd/powersupd/pkg/fsm"
)

const (
	triggerInitSetup           = "init_setup"
	triggerInitOffCharger      = "init_off_charger"
	triggerOffChargerSetup     = "off_charger_setup"
	triggerPowerOn             = "power_on"
	triggerSetupDone           = "setup_done"
	triggerLockAcquired        = "lock_acquired"
	triggerLockReleased        = "lock_released"
	triggerIdleShutdown        = "idle_shutdown"
	triggerIdleSleep           = "idle_sleep"
	triggerVeryLongPressReboot = "very_long_press_reboot"
	triggerReqSleep            = "req_sleep"
	triggerReqReboot           = "req_reboot"
	triggerReqShutdown         = "req_shutdown"
	triggerShutdownDone        = "shutdown_done"
	triggerSleepDone           = "sleep_done"
)

func emit(bus eventEmitter, kind eventbus.Kind) {
	if bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = bus.Emit(ctx, kind, nil)
}

// newLifecycleMachine builds the ten-state device lifecycle machine. The
// prepare states' one-shot entry actions run on detached goroutines: Fire
// holds the machine's lock for the duration of OnEntry, so any entry action
// that blocks (or needs to Fire again itself, as SETUP and the sleep and
// shutdown prepare states do) must get off that goroutine first.
func newLifecycleMachine(cfg *config, bus eventEmitter) (*fsm.Machine, error) {
	var self *fsm.Machine

	fireAsync := func(trigger string) {
		go func() {
			_ = self.Fire(context.Background(), trigger)
		}()
	}

	onEntryOffCharger := func(ctx context.Context) error {
		go func() {
			cfg.adapters.OffChargerSetup(context.Background())
			time.Sleep(cfg.offChargerSettleDelay)
			emit(bus, eventbus.KindOffCharger)
		}()
		return nil
	}

	onEntrySetup := func(ctx context.Context) error {
		go func() {
			cfg.adapters.Setup(context.Background())
			time.Sleep(cfg.setupDelay)
			emit(bus, eventbus.KindDeviceSetupFinished)
			fireAsync(triggerSetupDone)
		}()
		return nil
	}

	onEntryShutdownPrepare := func(ctx context.Context) error {
		go func() {
			emit(bus, eventbus.KindDeviceShutdown)
			time.Sleep(cfg.gap)
			cfg.adapters.Shutdown(context.Background())
			fireAsync(triggerShutdownDone)
		}()
		return nil
	}

	onEntryRebootPrepare := func(ctx context.Context) error {
		go func() {
			emit(bus, eventbus.KindDeviceReboot)
			time.Sleep(cfg.gap)
			cfg.adapters.Reboot(context.Background())
		}()
		return nil
	}

	onEntrySleepPrepare := func(ctx context.Context) error {
		go func() {
			emit(bus, eventbus.KindDeviceSleep)
			time.Sleep(cfg.gap)
			cfg.adapters.Sleep(context.Background())
			fireAsync(triggerSleepDone)
		}()
		return nil
	}

	opts := []fsm.Option{
		fsm.WithName("lifecycle"),
		fsm.WithInitialState(string(StateInit)),
		fsm.WithStates(
			fsm.State{Name: string(StateInit)},
			fsm.State{Name: string(StateOffCharger), OnEntry: onEntryOffCharger},
			fsm.State{Name: string(StateSetup), OnEntry: onEntrySetup},
			fsm.State{Name: string(StateDevIdle)},
			fsm.State{Name: string(StateDevActive)},
			fsm.State{Name: string(StateShutdownPrepare), OnEntry: onEntryShutdownPrepare},
			fsm.State{Name: string(StateShutdown)},
			fsm.State{Name: string(StateRebootPrepare), OnEntry: onEntryRebootPrepare},
			fsm.State{Name: string(StateSleepPrepare), OnEntry: onEntrySleepPrepare},
			fsm.State{Name: string(StateSleep)},
		),
		fsm.WithTransition(string(StateInit), string(StateSetup), triggerInitSetup),
		fsm.WithTransition(string(StateInit), string(StateOffCharger), triggerInitOffCharger),
		fsm.WithTransition(string(StateOffCharger), string(StateSetup), triggerOffChargerSetup),
		fsm.WithTransition(string(StateOffCharger), string(StateSetup), triggerPowerOn),
		fsm.WithTransition(string(StateSetup), string(StateDevIdle), triggerSetupDone),
		fsm.WithTransition(string(StateDevIdle), string(StateDevActive), triggerLockAcquired),
		fsm.WithTransition(string(StateDevActive), string(StateDevIdle), triggerLockReleased),
		fsm.WithTransition(string(StateDevIdle), string(StateShutdownPrepare), triggerIdleShutdown),
		fsm.WithTransition(string(StateDevIdle), string(StateSleepPrepare), triggerIdleSleep),
		fsm.WithTransition(string(StateDevIdle), string(StateRebootPrepare), triggerVeryLongPressReboot),
		fsm.WithTransition(string(StateShutdownPrepare), string(StateShutdown), triggerShutdownDone),
		fsm.WithTransition(string(StateSleepPrepare), string(StateSleep), triggerSleepDone),
	}

	nonTerminal := []DeviceState{
		StateInit, StateOffCharger, StateSetup, StateDevIdle, StateDevActive,
		StateShutdownPrepare, StateRebootPrepare, StateSleepPrepare,
	}
	for _, s := range nonTerminal {
		if s != StateShutdownPrepare {
			opts = append(opts, fsm.WithTransition(string(s), string(StateShutdownPrepare), triggerReqShutdown))
		}
		if s != StateRebootPrepare {
			opts = append(opts, fsm.WithTransition(string(s), string(StateRebootPrepare), triggerReqReboot))
		}
		if s != StateSleepPrepare {
			opts = append(opts, fsm.WithTransition(string(s), string(StateSleepPrepare), triggerReqSleep))
		}
	}

	m, err := fsm.New(opts...)
	self = m
	return m, err
}

// lifecycleTask owns every field the lifecycle task is the single writer
// for, and drives the main loop described in §4.5.
type lifecycleTask struct {
	cfg      *config
	machine  *fsm.Machine
	bus      eventEmitter
	buttons  *buttonTask
	requests chan Request

	mu                 sync.Mutex
	idleTimeoutMs      int64
	lastActivityMs     int64
	activeLockCount    int
	idleExpiredAction  IdleAction
	idleExpiredLatched bool
}

func newLifecycleTask(cfg *config, machine *fsm.Machine, bus eventEmitter, buttons *buttonTask, requests chan Request) *lifecycleTask {
	return &lifecycleTask{
		cfg:            cfg,
		machine:        machine,
		bus:            bus,
		buttons:        buttons,
		requests:       requests,
		idleTimeoutMs:  cfg.idleTimeoutMin.Milliseconds(),
		lastActivityMs: time.Now().UnixMilli(),
	}
}

func (t *lifecycleTask) run(ctx context.Context) {
	initEntry := time.Now()
	ticker := time.NewTicker(t.cfg.lifecycleTickInterval)
	defer ticker.Stop()

	var lastOffChargerLoop time.Time
	var veryLongPressSince time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			switch DeviceState(t.machine.CurrentState()) {
			case StateInit:
				switch {
				case t.cfg.adapters.ButtonRead() || t.cfg.adapters.DeviceWokenUp():
					_ = t.machine.Fire(ctx, triggerInitSetup)
				case t.cfg.adapters.ChargerConnected():
					_ = t.machine.Fire(ctx, triggerInitOffCharger)
				case now.Sub(initEntry) > t.cfg.initWaitForButtonAction:
					t.cfg.adapters.Shutdown(ctx)
				}

			case StateOffCharger:
				if t.cfg.adapters.ChargerConnected() {
					if lastOffChargerLoop.IsZero() || now.Sub(lastOffChargerLoop) >= t.cfg.offChargerLoopInterval {
						t.cfg.adapters.OffChargerLoop(ctx)
						lastOffChargerLoop = now
					}
					if t.buttons.CurrentState() == ButtonLongPressed {
						_ = t.machine.Fire(ctx, triggerOffChargerSetup)
					}
				} else {
					t.cfg.adapters.Shutdown(ctx)
				}

			case StateDevIdle:
				t.cfg.adapters.PMICLoop(ctx)
				t.tickIdle(ctx, now)
				t.tickVeryLongPress(ctx, now, &veryLongPressSince)

			case StateDevActive:
				t.cfg.adapters.PMICLoop(ctx)
				if t.lockCount() == 0 {
					_ = t.machine.Fire(ctx, triggerLockReleased)
				}
			}

			t.drainRequests(ctx)
		}
	}
}

func (t *lifecycleTask) tickIdle(ctx context.Context, now time.Time) {
	if t.lockCount() > 0 {
		_ = t.machine.Fire(ctx, triggerLockAcquired)
		return
	}

	idleTimeoutMs, lastActivityMs, action, latched := t.idleSnapshot()
	elapsed := now.UnixMilli() - lastActivityMs
	if elapsed <= idleTimeoutMs {
		t.setLatched(false)
		return
	}

	if !latched {
		emit(t.bus, eventbus.KindIdleTimerExpired)
		t.setLatched(true)
	}

	switch action {
	case IdleActionShutdown:
		_ = t.machine.Fire(ctx, triggerIdleShutdown)
	case IdleActionSleep:
		_ = t.machine.Fire(ctx, triggerIdleSleep)
	}
}

func (t *lifecycleTask) tickVeryLongPress(ctx context.Context, now time.Time, since *time.Time) {
	if t.buttons.CurrentState() != ButtonVeryLongPressed {
		*since = time.Time{}
		return
	}
	if since.IsZero() {
		*since = now
		return
	}
	if now.Sub(*since) >= t.cfg.rebootSettle {
		_ = t.machine.Fire(ctx, triggerVeryLongPressReboot)
		*since = time.Time{}
	}
}

func (t *lifecycleTask) drainRequests(ctx context.Context) {
	for i := 0; i < t.cfg.requestBatchSize; i++ {
		select {
		case req := <-t.requests:
			t.handleRequest(ctx, req)
		default:
			return
		}
	}
}

func (t *lifecycleTask) handleRequest(ctx context.Context, req Request) {
	switch req.Kind {
	case RequestIdleTimerReset:
		t.mu.Lock()
		t.lastActivityMs = time.Now().UnixMilli()
		t.mu.Unlock()

	case RequestIdleInactivitySet:
		v := req.InactivityTimeMs
		min := t.cfg.idleTimeoutMin.Milliseconds()
		if v < min {
			v = min
		}
		t.mu.Lock()
		t.idleTimeoutMs = v
		t.mu.Unlock()

	case RequestIdleExpiredActionSet:
		t.mu.Lock()
		t.idleExpiredAction = req.IdleAction
		t.mu.Unlock()

	case RequestActiveLock:
		t.mu.Lock()
		t.activeLockCount++
		t.lastActivityMs = time.Now().UnixMilli()
		t.mu.Unlock()

	case RequestActiveUnlock:
		t.mu.Lock()
		if t.activeLockCount > 0 {
			t.activeLockCount--
		}
		t.lastActivityMs = time.Now().UnixMilli()
		t.mu.Unlock()

	case RequestSleep:
		_ = t.machine.Fire(ctx, triggerReqSleep)
	case RequestReboot:
		_ = t.machine.Fire(ctx, triggerReqReboot)
	case RequestShutdown:
		_ = t.machine.Fire(ctx, triggerReqShutdown)
	case RequestPowerOn:
		_ = t.machine.Fire(ctx, triggerPowerOn)
	}
}

func (t *lifecycleTask) lockCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeLockCount
}

func (t *lifecycleTask) idleSnapshot() (idleTimeoutMs, lastActivityMs int64, action IdleAction, latched bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.idleTimeoutMs, t.lastActivityMs, t.idleExpiredAction, t.idleExpiredLatched
}

func (t *lifecycleTask) setLatched(v bool) {
	t.mu.Lock()
	t.idleExpiredLatched = v
	t.mu.Unlock()
}

func (t *lifecycleTask) getIdleTimeoutMs() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.idleTimeoutMs
}
