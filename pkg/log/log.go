// SPDX-License-Identifier: BSD-3-Clause

package log

import (
	"log/slog"
	"sync"

	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogzerolog "github.com/samber/slog-zerolog/v2"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
)

const serviceName = "powersupd"

// New creates a structured logger that fans out to a zerolog console writer
// and the global OpenTelemetry log provider. Debug level and above is always
// enabled; filtering belongs to the host application, not this package.
func New() *slog.Logger {
	zeroLogger := zerolog.
		New(zerolog.NewConsoleWriter()).
		With().
		Timestamp().
		Logger()

	otelHandler := otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(global.GetLoggerProvider()))

	return slog.New(slogmulti.Fanout(
		slogzerolog.Option{Level: slog.LevelDebug, Logger: &zeroLogger}.NewZerologHandler(),
		otelHandler,
	))
}

var (
	globalOnce   sync.Once
	globalLogger *slog.Logger
)

// GetGlobalLogger returns a process-wide logger, constructing it on first use.
func GetGlobalLogger() *slog.Logger {
	globalOnce.Do(func() {
		globalLogger = New()
	})
	return globalLogger
}
