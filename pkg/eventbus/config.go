// SPDX-License-Identifier: BSD-3-Clause

package eventbus

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

const (
	defaultServiceName      = "eventbus"
	defaultStartupTimeout   = 5 * time.Second
	defaultShutdownTimeout  = 5 * time.Second
	defaultEmitTimeout      = time.Second
	defaultMaxPayload       = 1 << 20 // 1MB
)

type config struct {
	serviceName     string
	startupTimeout  time.Duration
	shutdownTimeout time.Duration
	emitTimeout     time.Duration
	maxPayload      int32
}

// Option configures a Bus at construction time.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithServiceName sets the name reported by Bus.Name, used in logs and the
// embedded server's identity.
func WithServiceName(name string) Option {
	return optionFunc(func(c *config) { c.serviceName = name })
}

// WithStartupTimeout bounds how long Start waits for the embedded server to
// become ready for connections.
func WithStartupTimeout(d time.Duration) Option {
	return optionFunc(func(c *config) { c.startupTimeout = d })
}

// WithShutdownTimeout bounds how long Stop waits for the embedded server's
// final shutdown to complete. When it elapses, Stop logs a warning and
// returns nil without waiting further.
func WithShutdownTimeout(d time.Duration) Option {
	return optionFunc(func(c *config) { c.shutdownTimeout = d })
}

// WithEmitTimeout bounds how long Emit blocks trying to publish. Defaults to
// one second, matching the bounded delivery budget events are specified to use.
func WithEmitTimeout(d time.Duration) Option {
	return optionFunc(func(c *config) { c.emitTimeout = d })
}

// WithMaxPayload bounds the size of a single emitted event payload.
func WithMaxPayload(bytes int32) Option {
	return optionFunc(func(c *config) { c.maxPayload = bytes })
}

func newConfig(opts ...Option) *config {
	c := &config{
		serviceName:     defaultServiceName,
		startupTimeout:  defaultStartupTimeout,
		shutdownTimeout: defaultShutdownTimeout,
		emitTimeout:     defaultEmitTimeout,
		maxPayload:      defaultMaxPayload,
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

func (c *config) validate() error {
	if c.serviceName == "" {
		return fmt.Errorf("%w: service name must not be empty", ErrInvalidConfiguration)
	}
	if c.startupTimeout <= 0 {
		return fmt.Errorf("%w: startup timeout must be positive", ErrInvalidConfiguration)
	}
	if c.shutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", ErrInvalidConfiguration)
	}
	if c.emitTimeout <= 0 {
		return fmt.Errorf("%w: emit timeout must be positive", ErrInvalidConfiguration)
	}
	return nil
}

func (c *config) toServerOptions() *server.Options {
	return &server.Options{
		ServerName:  c.serviceName,
		DontListen:  true,
		JetStream:   false,
		MaxPayload:  c.maxPayload,
		NoSigs:      true,
		NoLog:       true,
	}
}
