// SPDX-License-Identifier: BSD-3-Clause

package operator

import (
	"log/slog"
	"time"

	"github.com/powersupd/powersupd/pkg/eventbus"
	"github.com/powersupd/powersupd/service"
	"github.com/powersupd/powersupd/service/supervisor"
)

type config struct {
	name        string
	id          string
	disableLogo bool
	customLogo  string
	otelSetup   func()
	logger      *slog.Logger
	timeout     time.Duration
	// Bus needs special handling: it is the transport the rest of the
	// tree dials into, not a service.Service itself.
	bus *eventbus.Bus
	// Everything of type service.Service needs to be exported.
	Supervisor service.Service

	extraServices []service.Service
}

type Option interface {
	apply(*config)
}

type nameOption struct {
	name string
}

func (o *nameOption) apply(c *config) {
	c.name = o.name
}

// WithName sets the name for the operator configuration.
func WithName(name string) Option {
	return &nameOption{
		name: name,
	}
}

type idOption struct {
	id string
}

func (o *idOption) apply(c *config) {
	c.id = o.id
}

// WithID sets the unique identifier for the operator configuration.
func WithID(id string) Option {
	return &idOption{
		id: id,
	}
}

type disableLogoOption struct {
	disableLogo bool
}

func (o *disableLogoOption) apply(c *config) {
	c.disableLogo = o.disableLogo
}

// WithDisableLogo controls whether the logo display is disabled.
// When set to true, the logo will not be shown during startup.
func WithDisableLogo(disableLogo bool) Option {
	return &disableLogoOption{
		disableLogo: disableLogo,
	}
}

type customLogoOption struct {
	customLogo string
}

func (o *customLogoOption) apply(c *config) {
	c.customLogo = o.customLogo
}

// WithCustomLogo sets a custom logo to be displayed instead of the default logo.
func WithCustomLogo(customLogo string) Option {
	return &customLogoOption{
		customLogo: customLogo,
	}
}

type otelSetupOption struct {
	otelSetup func()
}

func (o *otelSetupOption) apply(c *config) {
	c.otelSetup = o.otelSetup
}

// WithOtelSetup sets up OpenTelemetry configuration by providing a setup function.
// The function will be called during operator initialization to configure telemetry.
func WithOtelSetup(otelSetup func()) Option {
	return &otelSetupOption{
		otelSetup: otelSetup,
	}
}

type loggerOption struct {
	logger *slog.Logger
}

func (o *loggerOption) apply(c *config) {
	c.logger = o.logger
}

// WithLogger sets a custom structured logger for the operator.
// If not provided, a default logger will be used.
func WithLogger(logger *slog.Logger) Option {
	return &loggerOption{
		logger: logger,
	}
}

type timeoutOption struct {
	timeout time.Duration
}

func (o *timeoutOption) apply(c *config) {
	c.timeout = o.timeout
}

// WithTimeout sets the timeout duration the supervision tree waits for a
// child to start or stop before declaring it unresponsive.
func WithTimeout(timeout time.Duration) Option {
	return &timeoutOption{
		timeout: timeout,
	}
}

type eventBusOption struct {
	bus *eventbus.Bus
}

func (o *eventBusOption) apply(c *config) {
	c.bus = o.bus
}

// WithEventBus configures the embedded event bus with the provided options.
// This is the in-process broker the supervisor and any extra services use
// to exchange events.
func WithEventBus(opts ...eventbus.Option) Option {
	return &eventBusOption{
		bus: eventbus.New(opts...),
	}
}

type supervisorOption struct {
	supervisor service.Service
}

func (o *supervisorOption) apply(c *config) {
	c.Supervisor = o.supervisor
}

// WithSupervisor configures the device lifecycle supervisor with the provided options.
func WithSupervisor(opts ...supervisor.Option) Option {
	return &supervisorOption{
		supervisor: supervisor.New(opts...),
	}
}

type servicesOption struct {
	services []service.Service
}

func (o *servicesOption) apply(c *config) {
	c.extraServices = o.services
}

// WithExtraServices adds additional custom services to the operator configuration.
// These services will be managed alongside the supervisor.
func WithExtraServices(services ...service.Service) Option {
	return &servicesOption{
		services: services,
	}
}
