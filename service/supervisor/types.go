// SPDX-License-Identifier: BSD-3-Clause

package supervisor

// DeviceState names one of the ten states of the device lifecycle.
type DeviceState string

const (
	StateInit             DeviceState = "INIT"
	StateOffCharger       DeviceState = "OFF_CHARGER"
	StateSetup            DeviceState = "SETUP"
	StateDevIdle          DeviceState = "DEV_IDLE"
	StateDevActive        DeviceState = "DEV_ACTIVE"
	StateShutdownPrepare  DeviceState = "SHUTDOWN_PREPARE"
	StateShutdown         DeviceState = "SHUTDOWN"
	StateRebootPrepare    DeviceState = "REBOOT_PREPARE"
	StateSleepPrepare     DeviceState = "SLEEP_PREPARE"
	StateSleep            DeviceState = "SLEEP"
)

// ButtonState names one of the four states of the debounced button classifier.
type ButtonState string

const (
	ButtonReleased        ButtonState = "RELEASED"
	ButtonPressed         ButtonState = "PRESSED"
	ButtonLongPressed     ButtonState = "LONG_PRESSED"
	ButtonVeryLongPressed ButtonState = "VERY_LONG_PRESSED"
)

// IdleAction names the action dispatched when the idle timeout elapses.
type IdleAction string

const (
	IdleActionNone     IdleAction = "NONE"
	IdleActionSleep    IdleAction = "SLEEP"
	IdleActionShutdown IdleAction = "SHUTDOWN"
)

// RequestKind names one of the nine request records the public API façade
// can enqueue for the lifecycle task to process.
type RequestKind string

const (
	RequestIdleTimerReset       RequestKind = "IDLE_TIMER_RESET"
	RequestIdleInactivitySet    RequestKind = "IDLE_INACTIVITY_SET"
	RequestIdleExpiredActionSet RequestKind = "IDLE_EXPIRED_ACTION_SET"
	RequestActiveLock           RequestKind = "ACTIVE_LOCK"
	RequestActiveUnlock         RequestKind = "ACTIVE_UNLOCK"
	RequestSleep                RequestKind = "SLEEP"
	RequestReboot               RequestKind = "REBOOT"
	RequestShutdown             RequestKind = "SHUTDOWN"
	RequestPowerOn              RequestKind = "POWER_ON"
)

// Request is a single tagged mutation of lifecycle state, carried from any
// goroutine to the lifecycle task through the request queue. Fields unused
// by Kind are ignored.
type Request struct {
	Kind             RequestKind
	InactivityTimeMs int64
	IdleAction       IdleAction
}
