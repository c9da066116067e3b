// SPDX-License-Identifier: BSD-3-Clause

package supervisor

import "context"

// Adapters is the capability table a host application provides before the
// supervisor starts. Every field must be non-nil by the time Run begins;
// see WithAdapters.
type Adapters struct {
	// Setup performs one-time application bring-up on the path into
	// DEV_IDLE.
	Setup func(ctx context.Context)
	// Sleep, Reboot, and Shutdown perform the corresponding terminal
	// action. The supervisor treats all three as non-returning.
	Sleep    func(ctx context.Context)
	Reboot   func(ctx context.Context)
	Shutdown func(ctx context.Context)

	// OffChargerSetup renders the initial charging-while-off UI state.
	OffChargerSetup func(ctx context.Context)
	// OffChargerLoop is invoked periodically while OFF_CHARGER is active.
	OffChargerLoop func(ctx context.Context)
	// PMICLoop is invoked every lifecycle tick while the device is awake.
	PMICLoop func(ctx context.Context)

	// ButtonRead reports the raw power button line level; true means pressed.
	ButtonRead func() bool
	// ChargerConnected reports raw external charger presence.
	ChargerConnected func() bool
	// DeviceWokenUp reports whether the current boot was caused by a
	// programmed wake source rather than a cold power-on.
	DeviceWokenUp func() bool
}

// complete reports whether every adapter field has been set.
func (a Adapters) complete() bool {
	return a.Setup != nil &&
		a.Sleep != nil &&
		a.Reboot != nil &&
		a.Shutdown != nil &&
		a.OffChargerSetup != nil &&
		a.OffChargerLoop != nil &&
		a.PMICLoop != nil &&
		a.ButtonRead != nil &&
		a.ChargerConnected != nil &&
		a.DeviceWokenUp != nil
}
