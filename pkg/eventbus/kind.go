// SPDX-License-Identifier: BSD-3-Clause

package eventbus

// Kind identifies a published event. The set of Kinds is closed: it mirrors
// exactly the event enumeration the supervisor is specified against.
type Kind string

const (
	// Battery events.
	KindBatteryLow           Kind = "battery.low"
	KindBatteryCriticallyLow Kind = "battery.critically_low"
	KindBatteryFullyCharged  Kind = "battery.fully_charged"
	KindBatteryDead          Kind = "battery.dead"
	KindBatteryConnected     Kind = "battery.connected"
	KindBatteryTooCold       Kind = "battery.too_cold"
	KindBatteryCool          Kind = "battery.cool"
	KindBatteryWarm          Kind = "battery.warm"
	KindBatteryTooHot        Kind = "battery.too_hot"

	// Charger events.
	KindChargerConnected         Kind = "charger.connected"
	KindChargerDisconnected      Kind = "charger.disconnected"
	KindChargerChargeStarted     Kind = "charger.charge_started"
	KindChargerChargeWeak        Kind = "charger.charge_weak"
	KindChargerChargePowerChanged Kind = "charger.charge_power_changed"

	// Off-charger sentinel, emitted once the supervisor settles in OFF_CHARGER.
	KindOffCharger Kind = "off_charger"

	// OTG (on-the-go) events.
	KindOTGConnected    Kind = "otg.connected"
	KindOTGDisconnected Kind = "otg.disconnected"

	// Button events.
	KindButtonPressed        Kind = "button.pressed"
	KindButtonReleased       Kind = "button.released"
	KindButtonClicked        Kind = "button.clicked"
	KindButtonLongPressed    Kind = "button.long_pressed"
	KindButtonVeryLongPressed Kind = "button.very_long_pressed"

	// Idle timer.
	KindIdleTimerExpired Kind = "idle_timer.expired"

	// Device lifecycle events.
	KindDeviceShutdown      Kind = "device.shutdown"
	KindDeviceSleep         Kind = "device.sleep"
	KindDeviceReboot        Kind = "device.reboot"
	KindDeviceSetupFinished Kind = "device.setup_finished"

	// PMIC and port status updates.
	KindPMICStatusUpdated    Kind = "pmic.status_updated"
	KindPMICControlUpdated   Kind = "pmic.control_updated"
	KindBatteryLevelUpdated  Kind = "battery.level_updated"
	KindPortCurrentUpdated   Kind = "port.current_updated"

	// Opaque, host-defined event.
	KindUserEvent Kind = "user_event"

	// KindAny subscribes to every kind above; it is never a valid Emit kind.
	KindAny Kind = ">"
)

func (k Kind) subject() string {
	return string(k)
}
