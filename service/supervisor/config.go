// SPDX-License-Identifier: BSD-3-Clause

package supervisor

import (
	"context"
	"time"
)

// Tuning constants named in spec.md §6, with the defaults used when no
// option overrides them.
const (
	DefaultDebounce                  = 30 * time.Millisecond
	DefaultLongPress                 = 3 * time.Second
	DefaultVeryLongPress              = 8 * time.Second
	DefaultInitWaitForButtonAction    = 5 * time.Second
	DefaultIdleTimeoutMin             = 30 * time.Second
	DefaultGap                        = 3 * time.Second
	DefaultRequestsQueueSize          = 10
	DefaultRequestBatchSize           = 1
	DefaultButtonPollInterval         = time.Millisecond
	DefaultLifecycleTickInterval      = time.Millisecond
	DefaultOffChargerLoopInterval     = 100 * time.Millisecond
	DefaultRebootSettle               = 100 * time.Millisecond
	DefaultSetupDelay                 = 3 * time.Second
	DefaultOffChargerSettleDelay      = 3 * time.Second
)

const defaultServiceName = "supervisor"

type config struct {
	name     string
	adapters Adapters

	debounce               time.Duration
	longPress              time.Duration
	veryLongPress          time.Duration
	initWaitForButtonAction time.Duration
	idleTimeoutMin         time.Duration
	gap                    time.Duration
	requestsQueueSize      int
	requestBatchSize       int
	buttonPollInterval     time.Duration
	lifecycleTickInterval  time.Duration
	offChargerLoopInterval time.Duration
	rebootSettle           time.Duration
	setupDelay             time.Duration
	offChargerSettleDelay  time.Duration
}

func newConfig(opts ...Option) *config {
	c := &config{
		name:                    defaultServiceName,
		debounce:                DefaultDebounce,
		longPress:               DefaultLongPress,
		veryLongPress:           DefaultVeryLongPress,
		initWaitForButtonAction: DefaultInitWaitForButtonAction,
		idleTimeoutMin:          DefaultIdleTimeoutMin,
		gap:                     DefaultGap,
		requestsQueueSize:       DefaultRequestsQueueSize,
		requestBatchSize:        DefaultRequestBatchSize,
		buttonPollInterval:      DefaultButtonPollInterval,
		lifecycleTickInterval:   DefaultLifecycleTickInterval,
		offChargerLoopInterval:  DefaultOffChargerLoopInterval,
		rebootSettle:            DefaultRebootSettle,
		setupDelay:              DefaultSetupDelay,
		offChargerSettleDelay:   DefaultOffChargerSettleDelay,
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

// Option configures a Supervisor at construction time.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithName sets the name reported by Supervisor.Name.
func WithName(name string) Option {
	return optionFunc(func(c *config) { c.name = name })
}

// WithAdapters sets every host adapter at once. This is the Go-idiomatic
// replacement for spec.md §4.6's ten individual setters; the With* options
// below remain available for callers that prefer to set one field at a time.
func WithAdapters(a Adapters) Option {
	return optionFunc(func(c *config) { c.adapters = a })
}

// WithSetup sets the one-time application bring-up adapter.
func WithSetup(fn func(ctx context.Context)) Option {
	return optionFunc(func(c *config) { c.adapters.Setup = fn })
}

// WithSleep sets the sleep-entry adapter.
func WithSleep(fn func(ctx context.Context)) Option {
	return optionFunc(func(c *config) { c.adapters.Sleep = fn })
}

// WithReboot sets the reboot adapter.
func WithReboot(fn func(ctx context.Context)) Option {
	return optionFunc(func(c *config) { c.adapters.Reboot = fn })
}

// WithShutdown sets the shutdown adapter.
func WithShutdown(fn func(ctx context.Context)) Option {
	return optionFunc(func(c *config) { c.adapters.Shutdown = fn })
}

// WithOffChargerSetup sets the off-charger entry adapter.
func WithOffChargerSetup(fn func(ctx context.Context)) Option {
	return optionFunc(func(c *config) { c.adapters.OffChargerSetup = fn })
}

// WithOffChargerLoop sets the off-charger periodic render adapter.
func WithOffChargerLoop(fn func(ctx context.Context)) Option {
	return optionFunc(func(c *config) { c.adapters.OffChargerLoop = fn })
}

// WithPMICLoop sets the periodic PMIC interaction adapter.
func WithPMICLoop(fn func(ctx context.Context)) Option {
	return optionFunc(func(c *config) { c.adapters.PMICLoop = fn })
}

// WithButtonRead sets the raw power button line reader.
func WithButtonRead(fn func() bool) Option {
	return optionFunc(func(c *config) { c.adapters.ButtonRead = fn })
}

// WithChargerConnected sets the raw charger presence reader.
func WithChargerConnected(fn func() bool) Option {
	return optionFunc(func(c *config) { c.adapters.ChargerConnected = fn })
}

// WithDeviceWokenUp sets the programmed-wake-source reader.
func WithDeviceWokenUp(fn func() bool) Option {
	return optionFunc(func(c *config) { c.adapters.DeviceWokenUp = fn })
}

// WithDebounce overrides DEBOUNCE_MS.
func WithDebounce(d time.Duration) Option {
	return optionFunc(func(c *config) { c.debounce = d })
}

// WithLongPress overrides LONG_PRESS_MS.
func WithLongPress(d time.Duration) Option {
	return optionFunc(func(c *config) { c.longPress = d })
}

// WithVeryLongPress overrides VERY_LONG_PRESS_MS.
func WithVeryLongPress(d time.Duration) Option {
	return optionFunc(func(c *config) { c.veryLongPress = d })
}

// WithInitWaitForButtonAction overrides INIT_WAIT_FOR_BUTTON_ACTION_MS.
func WithInitWaitForButtonAction(d time.Duration) Option {
	return optionFunc(func(c *config) { c.initWaitForButtonAction = d })
}

// WithIdleTimeoutMin overrides IDLE_TIMEOUT_MIN_MS.
func WithIdleTimeoutMin(d time.Duration) Option {
	return optionFunc(func(c *config) { c.idleTimeoutMin = d })
}

// WithGap overrides GAP_MS, the prepare-to-terminal grace period.
func WithGap(d time.Duration) Option {
	return optionFunc(func(c *config) { c.gap = d })
}

// WithRequestsQueueSize overrides REQUESTS_QUEUE_SIZE.
func WithRequestsQueueSize(n int) Option {
	return optionFunc(func(c *config) { c.requestsQueueSize = n })
}

// WithRequestBatchSize controls how many pending requests the lifecycle
// task drains per main-loop iteration. spec.md §9's Open Question leaves
// this ambiguous; the default of 1 preserves the literal one-per-iteration
// contract, but hosts expecting request bursts may raise it.
func WithRequestBatchSize(n int) Option {
	return optionFunc(func(c *config) { c.requestBatchSize = n })
}

// WithButtonPollInterval overrides the button task's sampling cadence.
func WithButtonPollInterval(d time.Duration) Option {
	return optionFunc(func(c *config) { c.buttonPollInterval = d })
}

// WithLifecycleTickInterval overrides the lifecycle task's main loop cadence.
func WithLifecycleTickInterval(d time.Duration) Option {
	return optionFunc(func(c *config) { c.lifecycleTickInterval = d })
}

// WithOffChargerLoopInterval overrides how often OffChargerLoop is invoked
// while OFF_CHARGER is active.
func WithOffChargerLoopInterval(d time.Duration) Option {
	return optionFunc(func(c *config) { c.offChargerLoopInterval = d })
}

// WithRebootSettle overrides the settle delay between observing a
// very-long button press in DEV_IDLE and entering REBOOT_PREPARE.
func WithRebootSettle(d time.Duration) Option {
	return optionFunc(func(c *config) { c.rebootSettle = d })
}

// WithSetupDelay overrides the fixed delay SETUP waits after calling the
// setup adapter before emitting DEVICE_SETUP_FINISHED.
func WithSetupDelay(d time.Duration) Option {
	return optionFunc(func(c *config) { c.setupDelay = d })
}

// WithOffChargerSettleDelay overrides the fixed delay OFF_CHARGER waits
// after calling off_charger_setup before emitting OFF_CHARGER.
func WithOffChargerSettleDelay(d time.Duration) Option {
	return optionFunc(func(c *config) { c.offChargerSettleDelay = d })
}
