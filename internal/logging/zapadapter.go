package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapCore forwards zap entries to a Logger so the annealing driver, which
// logs through *zap.Logger, shares the process's output and format.
type zapCore struct {
	logger *Logger
}

// NewZapCore creates a zapcore.Core that writes through logger.
func NewZapCore(logger *Logger) zapcore.Core {
	return &zapCore{logger: logger}
}

// NewZapLogger creates a *zap.Logger that writes through logger.
func NewZapLogger(logger *Logger) *zap.Logger {
	return zap.New(NewZapCore(logger), zap.AddCaller())
}

func levelFromZap(level zapcore.Level) LogLevel {
	switch level {
	case zapcore.DebugLevel:
		return DebugLevel
	case zapcore.InfoLevel:
		return InfoLevel
	case zapcore.WarnLevel:
		return WarnLevel
	case zapcore.FatalLevel:
		return FatalLevel
	default:
		return ErrorLevel
	}
}

// encodeFields flattens zap fields into a plain map.
func encodeFields(fields []zapcore.Field) map[string]interface{} {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return enc.Fields
}

func (c *zapCore) Enabled(level zapcore.Level) bool {
	return c.logger.shouldLog(levelFromZap(level))
}

func (c *zapCore) With(fields []zapcore.Field) zapcore.Core {
	return &zapCore{logger: c.logger.WithFields(encodeFields(fields))}
}

func (c *zapCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *zapCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	f := encodeFields(fields)
	if ent.Caller.Defined {
		f["caller"] = ent.Caller.TrimmedPath()
	}
	if ent.LoggerName != "" {
		f["logger"] = ent.LoggerName
	}

	// Fatal exit is left to zap's CheckWriteAction.
	level := levelFromZap(ent.Level)
	if level == FatalLevel {
		level = ErrorLevel
	}
	c.logger.log(1, level, ent.Message, f)
	return nil
}

func (c *zapCore) Sync() error {
	return nil
}
