// SPDX-License-Identifier: BSD-3-Clause

// Package telemetry provides OpenTelemetry integration for powersupd
// services: default no-op providers for standalone use, and a Setup
// function services can opt into for a live OTLP backend.
//
// # Basic setup
//
//	func main() {
//		telemetry.DefaultSetup()
//		logger := log.GetGlobalLogger()
//		logger.Info("starting")
//	}
//
// DefaultSetup installs no-op tracer/meter/logger providers and a
// composite context propagator, so every otel.Tracer/otel.Meter call
// elsewhere in this module (pkg/fsm, pkg/eventbus, service/supervisor)
// is safe to make unconditionally, whether or not a real collector is
// configured.
package telemetry
