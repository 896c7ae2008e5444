package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/xtesports/xtesports/internal/util/slogx"
	"gorm.io/gorm/logger"
)

// Logger routes gorm messages into slog. With Debug set, gorm's own colored statement log is
// used instead.
func Logger(srcLog *slog.Logger, o Options) logger.Interface {
	if o.Debug {
		return logger.New(
			log.New(colorable.NewColorableStdout(), "", log.LstdFlags),
			logger.Config{
				LogLevel: logger.Info,
				Colorful: true,
			},
		)
	}
	return &slogLogger{
		log:   srcLog.With(slog.String("component", "gorm")),
		level: logger.Warn,
		slow:  o.SlowThreshold,
	}
}

type slogLogger struct {
	log   *slog.Logger
	level logger.LogLevel
	slow  time.Duration
}

func (l *slogLogger) LogMode(level logger.LogLevel) logger.Interface {
	c := *l
	c.level = level
	return &c
}

func (l *slogLogger) printf(ctx context.Context, need logger.LogLevel, level slog.Level, msg string, data []any) {
	if l.level < need {
		return
	}
	l.log.Log(ctx, level, fmt.Sprintf(msg, data...))
}

func (l *slogLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, logger.Info, slog.LevelInfo, msg, data)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, logger.Warn, slog.LevelWarn, msg, data)
}

func (l *slogLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, logger.Error, slog.LevelError, msg, data)
}

func (l *slogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	var (
		level slog.Level
		msg   string
		attrs []slog.Attr
	)
	switch {
	case err != nil && !errors.Is(err, logger.ErrRecordNotFound) && l.level >= logger.Error:
		level, msg = slog.LevelError, "sql failed"
		attrs = append(attrs, slogx.Err(err))
	case l.slow > 0 && elapsed > l.slow && l.level >= logger.Warn:
		level, msg = slog.LevelWarn, "slow sql"
	case l.level >= logger.Info:
		level, msg = slog.LevelDebug, "sql"
	default:
		return
	}
	sql, rows := fc()
	attrs = append(attrs,
		slog.Duration("elapsed", elapsed),
		slog.String("sql", sql),
		slog.Int64("rows", rows),
	)
	l.log.LogAttrs(ctx, level, msg, attrs...)
}
