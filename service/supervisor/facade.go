// SPDX-License-Identifier: BSD-3-Clause

package supervisor

// IdleResetTimer refreshes last_activity_ms to now, clearing any pending
// idle countdown.
func (s *Supervisor) IdleResetTimer() {
	s.enqueue(Request{Kind: RequestIdleTimerReset})
}

// IdleSetTimeout sets the idle timeout in milliseconds. Values below
// IDLE_TIMEOUT_MIN_MS are clamped by the lifecycle task once the request is
// drained.
func (s *Supervisor) IdleSetTimeout(ms int64) {
	s.enqueue(Request{Kind: RequestIdleInactivitySet, InactivityTimeMs: ms})
}

// IdleGetTimeout returns the effective idle timeout in milliseconds. Before
// Run has started this reports the configured minimum.
func (s *Supervisor) IdleGetTimeout() int64 {
	if s.lifecycleTask == nil {
		return s.cfg.idleTimeoutMin.Milliseconds()
	}
	return s.lifecycleTask.getIdleTimeoutMs()
}

// IdleSetExpiredAction sets the action dispatched when the idle timeout elapses.
func (s *Supervisor) IdleSetExpiredAction(action IdleAction) {
	s.enqueue(Request{Kind: RequestIdleExpiredActionSet, IdleAction: action})
}

// ActiveLockAcquire increments the recursive active lock, forcing the
// lifecycle into DEV_ACTIVE and refreshing last_activity_ms.
func (s *Supervisor) ActiveLockAcquire() {
	s.enqueue(Request{Kind: RequestActiveLock})
}

// ActiveLockRelease decrements the recursive active lock, clamped at zero.
func (s *Supervisor) ActiveLockRelease() {
	s.enqueue(Request{Kind: RequestActiveUnlock})
}

// TriggerSleep requests an immediate transition into SLEEP_PREPARE,
// regardless of current state (terminal sentinels excepted).
func (s *Supervisor) TriggerSleep() {
	s.enqueue(Request{Kind: RequestSleep})
}

// TriggerReboot requests an immediate transition into REBOOT_PREPARE.
func (s *Supervisor) TriggerReboot() {
	s.enqueue(Request{Kind: RequestReboot})
}

// TriggerShutdown requests an immediate transition into SHUTDOWN_PREPARE.
func (s *Supervisor) TriggerShutdown() {
	s.enqueue(Request{Kind: RequestShutdown})
}

// TriggerPowerOn requests a transition from OFF_CHARGER into SETUP. It is a
// no-op in every other state.
func (s *Supervisor) TriggerPowerOn() {
	s.enqueue(Request{Kind: RequestPowerOn})
}

// CurrentState reports the lifecycle FSM's current state.
func (s *Supervisor) CurrentState() DeviceState {
	if s.lifecycle == nil {
		return StateInit
	}
	return DeviceState(s.lifecycle.CurrentState())
}

// ButtonState reports the button classifier's current state.
func (s *Supervisor) ButtonState() ButtonState {
	if s.buttonTask == nil {
		return ButtonReleased
	}
	return s.buttonTask.CurrentState()
}
