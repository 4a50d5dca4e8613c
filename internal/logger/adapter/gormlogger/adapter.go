// Package gormlogger routes GORM log output through the global zerolog logger.
package gormlogger

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	gormlog "gorm.io/gorm/logger"
)

// Adapter implements gorm.io/gorm/logger.Interface on top of zerolog.
type Adapter struct {
	level         gormlog.LogLevel
	slowThreshold time.Duration
}

// New creates a GORM logger adapter. GORM levels above Warn stay silent
// until LogMode raises them, matching the GORM default logger.
func New() *Adapter {
	return &Adapter{
		level:         gormlog.Warn,
		slowThreshold: 200 * time.Millisecond, //nolint: mnd
	}
}

// LogMode returns a copy of the adapter using the given GORM log level.
func (a *Adapter) LogMode(level gormlog.LogLevel) gormlog.Interface {
	adapted := *a
	adapted.level = level

	return &adapted
}

// Info logs GORM informational messages.
func (a *Adapter) Info(_ context.Context, msg string, args ...interface{}) {
	if a.level >= gormlog.Info {
		log.Info().Msgf(msg, args...)
	}
}

// Warn logs GORM warnings.
func (a *Adapter) Warn(_ context.Context, msg string, args ...interface{}) {
	if a.level >= gormlog.Warn {
		log.Warn().Msgf(msg, args...)
	}
}

// Error logs GORM errors.
func (a *Adapter) Error(_ context.Context, msg string, args ...interface{}) {
	if a.level >= gormlog.Error {
		log.Error().Msgf(msg, args...)
	}
}

// Trace logs a finished query with its duration and affected rows.
// Queries ending in ErrRecordNotFound are not errors for the portal,
// a missing row is a regular answer.
func (a *Adapter) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if a.level <= gormlog.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && a.level >= gormlog.Error && !errors.Is(err, gormlog.ErrRecordNotFound):
		log.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query failed")
	case a.slowThreshold > 0 && elapsed > a.slowThreshold && a.level >= gormlog.Warn:
		log.Warn().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("slow query")
	case a.level >= gormlog.Info:
		log.Trace().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query")
	}
}
