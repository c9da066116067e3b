// SPDX-License-Identifier: BSD-3-Clause

// Package supervisor implements the device power-lifecycle supervisor: a
// ten-state lifecycle machine (INIT, OFF_CHARGER, SETUP, DEV_IDLE,
// DEV_ACTIVE, SHUTDOWN_PREPARE, SHUTDOWN, REBOOT_PREPARE, SLEEP_PREPARE,
// SLEEP) cooperating with a four-state button debouncer over a bounded
// request queue.
//
// A host wires ten capability adapters before starting the supervisor:
//
//	sup := supervisor.New(
//		supervisor.WithName("power"),
//		supervisor.WithAdapters(myAdapters),
//		supervisor.WithIdleTimeoutMin(30*time.Second),
//	)
//
// Run validates that every adapter is set, connects to the shared event
// bus, and runs the button and lifecycle tasks until its context is done.
// Client code drives the lifecycle exclusively through the façade methods
// (IdleResetTimer, ActiveLockAcquire, TriggerSleep, and so on); none of them
// touch the FSMs directly, preserving the lifecycle task as the sole writer
// of its own state.
package supervisor
