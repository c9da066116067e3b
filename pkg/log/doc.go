// SPDX-License-Identifier: BSD-3-Clause

// Package log provides structured logging for the power-management supervisor
// with dual output to console and OpenTelemetry. It fans a single slog.Logger
// out to a zerolog console writer and an OpenTelemetry log bridge via
// samber/slog-multi, so every subsystem logs through log/slog while telemetry
// backends still see the same events.
//
// Adapters are provided for the two third-party components that define their
// own logging interface instead of accepting a slog.Logger directly: the
// embedded NATS server (pkg/eventbus) and the oversight supervision tree
// (service/operator).
package log
