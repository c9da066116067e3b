// SPDX-License-Identifier: BSD-3-Clause

package supervisor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/powersupd/powersupd/pkg/eventbus"
)

type fakeEmitter struct {
	mu    sync.Mutex
	kinds []eventbus.Kind
}

func (f *fakeEmitter) Emit(ctx context.Context, kind eventbus.Kind, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	return nil
}

func (f *fakeEmitter) snapshot() []eventbus.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]eventbus.Kind, len(f.kinds))
	copy(out, f.kinds)
	return out
}

// fakeAdapters builds a complete Adapters table backed by atomics and
// counters, so tests can both drive inputs and assert on call counts
// without touching real hardware.
type fakeAdapters struct {
	buttonDown   atomic.Bool
	charger      atomic.Bool
	wokenUp      atomic.Bool
	setupCalls   atomic.Int32
	sleepCalls   atomic.Int32
	rebootCalls  atomic.Int32
	shutdownCalls atomic.Int32
	offChargerSetupCalls atomic.Int32
	offChargerLoopCalls  atomic.Int32
	pmicLoopCalls        atomic.Int32
}

func (f *fakeAdapters) adapters() Adapters {
	return Adapters{
		Setup:            func(ctx context.Context) { f.setupCalls.Add(1) },
		Sleep:            func(ctx context.Context) { f.sleepCalls.Add(1) },
		Reboot:           func(ctx context.Context) { f.rebootCalls.Add(1) },
		Shutdown:         func(ctx context.Context) { f.shutdownCalls.Add(1) },
		OffChargerSetup:  func(ctx context.Context) { f.offChargerSetupCalls.Add(1) },
		OffChargerLoop:   func(ctx context.Context) { f.offChargerLoopCalls.Add(1) },
		PMICLoop:         func(ctx context.Context) { f.pmicLoopCalls.Add(1) },
		ButtonRead:       func() bool { return f.buttonDown.Load() },
		ChargerConnected: func() bool { return f.charger.Load() },
		DeviceWokenUp:    func() bool { return f.wokenUp.Load() },
	}
}

func awaitState(t *testing.T, machine interface{ CurrentState() string }, want DeviceState, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if DeviceState(machine.CurrentState()) == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("state = %q, want %q within %v", machine.CurrentState(), want, timeout)
}

func newTestLifecycle(t *testing.T, cfg *config, emitter eventEmitter) (*lifecycleTask, *buttonTask) {
	t.Helper()

	buttonMachine, err := newButtonMachine(emitter)
	if err != nil {
		t.Fatalf("newButtonMachine() returned error: %v", err)
	}
	lifecycleMachine, err := newLifecycleMachine(cfg, emitter)
	if err != nil {
		t.Fatalf("newLifecycleMachine() returned error: %v", err)
	}

	requests := make(chan Request, cfg.requestsQueueSize)
	bt := newButtonTask(cfg, buttonMachine, requests)
	lt := newLifecycleTask(cfg, lifecycleMachine, emitter, bt, requests)
	return lt, bt
}

func testConfig(adapters Adapters) *config {
	return newConfig(
		WithAdapters(adapters),
		WithDebounce(time.Millisecond),
		WithLongPress(5*time.Millisecond),
		WithVeryLongPress(10*time.Millisecond),
		WithInitWaitForButtonAction(30*time.Millisecond),
		WithIdleTimeoutMin(30*time.Millisecond),
		WithGap(10*time.Millisecond),
		WithSetupDelay(10*time.Millisecond),
		WithOffChargerSettleDelay(10*time.Millisecond),
		WithRebootSettle(5*time.Millisecond),
		WithButtonPollInterval(200*time.Microsecond),
		WithLifecycleTickInterval(200*time.Microsecond),
		WithOffChargerLoopInterval(2*time.Millisecond),
	)
}

func TestLifecycleColdBootWithButton(t *testing.T) {
	fa := &fakeAdapters{}
	fa.buttonDown.Store(true)
	cfg := testConfig(fa.adapters())
	emitter := &fakeEmitter{}

	lt, bt := newTestLifecycle(t, cfg, emitter)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bt.run(ctx)
	go lt.run(ctx)

	awaitState(t, lt.machine, StateDevIdle, time.Second)

	if got := fa.setupCalls.Load(); got != 1 {
		t.Fatalf("setup calls = %d, want 1", got)
	}
	found := false
	for _, k := range emitter.snapshot() {
		if k == eventbus.KindDeviceSetupFinished {
			found = true
		}
	}
	if !found {
		t.Fatal("DEVICE_SETUP_FINISHED was never emitted")
	}
}

func TestLifecycleColdBootUnexplainedShutsDown(t *testing.T) {
	fa := &fakeAdapters{}
	cfg := testConfig(fa.adapters())
	emitter := &fakeEmitter{}

	lt, bt := newTestLifecycle(t, cfg, emitter)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bt.run(ctx)
	go lt.run(ctx)

	deadline := time.Now().Add(time.Second)
	for fa.shutdownCalls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := fa.shutdownCalls.Load(); got == 0 {
		t.Fatal("shutdown was never invoked")
	}
	if len(emitter.snapshot()) != 0 {
		t.Fatalf("events emitted = %v, want none", emitter.snapshot())
	}
}

func TestLifecycleChargerInsertionOffCharger(t *testing.T) {
	fa := &fakeAdapters{}
	fa.charger.Store(true)
	cfg := testConfig(fa.adapters())
	emitter := &fakeEmitter{}

	lt, bt := newTestLifecycle(t, cfg, emitter)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bt.run(ctx)
	go lt.run(ctx)

	awaitState(t, lt.machine, StateOffCharger, time.Second)
	if got := fa.offChargerSetupCalls.Load(); got != 1 {
		t.Fatalf("off_charger_setup calls = %d, want 1", got)
	}

	// Hold the button long enough to reach LONG_PRESSED, which should
	// carry OFF_CHARGER into SETUP.
	fa.buttonDown.Store(true)
	awaitState(t, lt.machine, StateSetup, time.Second)
}

func TestLifecycleIdleTimeoutDispatchesSleep(t *testing.T) {
	fa := &fakeAdapters{}
	fa.buttonDown.Store(true)
	cfg := testConfig(fa.adapters())
	emitter := &fakeEmitter{}

	lt, bt := newTestLifecycle(t, cfg, emitter)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bt.run(ctx)
	go lt.run(ctx)

	awaitState(t, lt.machine, StateDevIdle, time.Second)
	fa.buttonDown.Store(false)

	lt.handleRequest(ctx, Request{Kind: RequestIdleExpiredActionSet, IdleAction: IdleActionSleep})

	awaitState(t, lt.machine, StateSleepPrepare, time.Second)
	awaitState(t, lt.machine, StateSleep, time.Second)

	if got := fa.sleepCalls.Load(); got != 1 {
		t.Fatalf("sleep calls = %d, want 1", got)
	}

	var expiredCount int
	for _, k := range emitter.snapshot() {
		if k == eventbus.KindIdleTimerExpired {
			expiredCount++
		}
	}
	if expiredCount != 1 {
		t.Fatalf("IDLE_TIMER_EXPIRED emitted %d times, want exactly 1", expiredCount)
	}
}

func TestLifecycleActiveLockPreemptsIdle(t *testing.T) {
	fa := &fakeAdapters{}
	fa.buttonDown.Store(true)
	cfg := testConfig(fa.adapters())
	emitter := &fakeEmitter{}

	lt, bt := newTestLifecycle(t, cfg, emitter)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bt.run(ctx)
	go lt.run(ctx)

	awaitState(t, lt.machine, StateDevIdle, time.Second)
	fa.buttonDown.Store(false)

	lt.handleRequest(ctx, Request{Kind: RequestIdleExpiredActionSet, IdleAction: IdleActionShutdown})
	lt.handleRequest(ctx, Request{Kind: RequestActiveLock})

	awaitState(t, lt.machine, StateDevActive, time.Second)

	time.Sleep(cfg.idleTimeoutMin * 2)
	if DeviceState(lt.machine.CurrentState()) != StateDevActive {
		t.Fatalf("state = %q, want DEV_ACTIVE to persist while locked", lt.machine.CurrentState())
	}
	if fa.shutdownCalls.Load() != 0 {
		t.Fatal("shutdown invoked while active lock held")
	}

	lt.handleRequest(ctx, Request{Kind: RequestActiveUnlock})
	awaitState(t, lt.machine, StateDevIdle, time.Second)

	if lt.getIdleTimeoutMs() < 0 {
		t.Fatal("idle timeout went negative")
	}
}

func TestActiveLockReleaseClampsAtZero(t *testing.T) {
	fa := &fakeAdapters{}
	cfg := testConfig(fa.adapters())
	lt, _ := newTestLifecycle(t, cfg, &fakeEmitter{})

	lt.handleRequest(context.Background(), Request{Kind: RequestActiveUnlock})
	lt.handleRequest(context.Background(), Request{Kind: RequestActiveUnlock})

	if got := lt.lockCount(); got != 0 {
		t.Fatalf("active_lock_count = %d, want 0", got)
	}
}

func TestIdleSetTimeoutClampsToMinimum(t *testing.T) {
	fa := &fakeAdapters{}
	cfg := testConfig(fa.adapters())
	lt, _ := newTestLifecycle(t, cfg, &fakeEmitter{})

	lt.handleRequest(context.Background(), Request{Kind: RequestIdleInactivitySet, InactivityTimeMs: 1})

	if got := lt.getIdleTimeoutMs(); got != cfg.idleTimeoutMin.Milliseconds() {
		t.Fatalf("idle timeout = %d, want clamped to %d", got, cfg.idleTimeoutMin.Milliseconds())
	}
}

func TestButtonPressJustBelowLongPress(t *testing.T) {
	fa := &fakeAdapters{}
	cfg := testConfig(fa.adapters())
	emitter := &fakeEmitter{}

	buttonMachine, err := newButtonMachine(emitter)
	if err != nil {
		t.Fatalf("newButtonMachine() returned error: %v", err)
	}
	requests := make(chan Request, cfg.requestsQueueSize)
	bt := newButtonTask(cfg, buttonMachine, requests)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bt.run(ctx)

	fa.buttonDown.Store(true)
	time.Sleep(cfg.longPress - time.Millisecond)
	fa.buttonDown.Store(false)
	time.Sleep(50 * time.Millisecond)

	var kinds []eventbus.Kind
	for _, k := range emitter.snapshot() {
		if k == eventbus.KindButtonPressed || k == eventbus.KindButtonReleased ||
			k == eventbus.KindButtonClicked || k == eventbus.KindButtonLongPressed ||
			k == eventbus.KindButtonVeryLongPressed {
			kinds = append(kinds, k)
		}
	}

	for _, unwanted := range []eventbus.Kind{eventbus.KindButtonLongPressed, eventbus.KindButtonVeryLongPressed} {
		for _, k := range kinds {
			if k == unwanted {
				t.Fatalf("unexpected %s for a press shorter than LONG_PRESS_MS", unwanted)
			}
		}
	}
}

func TestButtonVeryLongPressSequence(t *testing.T) {
	fa := &fakeAdapters{}
	cfg := testConfig(fa.adapters())
	emitter := &fakeEmitter{}

	buttonMachine, err := newButtonMachine(emitter)
	if err != nil {
		t.Fatalf("newButtonMachine() returned error: %v", err)
	}
	requests := make(chan Request, cfg.requestsQueueSize)
	bt := newButtonTask(cfg, buttonMachine, requests)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bt.run(ctx)

	fa.buttonDown.Store(true)
	time.Sleep(cfg.veryLongPress + 5*time.Millisecond)
	fa.buttonDown.Store(false)
	time.Sleep(50 * time.Millisecond)

	want := []eventbus.Kind{
		eventbus.KindButtonPressed,
		eventbus.KindButtonLongPressed,
		eventbus.KindButtonVeryLongPressed,
	}
	got := emitter.snapshot()
	for _, w := range want {
		var seen bool
		for _, k := range got {
			if k == w {
				seen = true
			}
		}
		if !seen {
			t.Fatalf("events = %v, missing %s", got, w)
		}
	}
}
