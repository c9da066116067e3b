// SPDX-License-Identifier: BSD-3-Clause

package telemetry

import "errors"

var (
	// ErrInvalidExporterType is returned when an unsupported exporter type is specified.
	ErrInvalidExporterType = errors.New("invalid exporter type")

	// ErrMissingEndpoint is returned when an endpoint is required but not provided.
	ErrMissingEndpoint = errors.New("missing endpoint")

	// ErrInvalidConfiguration is returned when the telemetry configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrShutdownFailed is returned when the provider fails to shutdown cleanly.
	ErrShutdownFailed = errors.New("shutdown failed")

	// ErrExporterSetupFailed is returned when an exporter fails to initialize.
	ErrExporterSetupFailed = errors.New("exporter setup failed")
)
