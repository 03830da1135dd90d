package identity

import "go.uber.org/zap"

// ZapLogger adapts a zap.SugaredLogger to Logger
type ZapLogger struct {
	l *zap.SugaredLogger
}

var _ Logger = (*ZapLogger)(nil)

// NewZapLogger wraps the given zap logger, named "identity".
// A nil logger falls back to zap.NewNop.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{l: l.Named("identity").Sugar()}
}

func (z *ZapLogger) Debug(msg string, args ...any) {
	z.l.Debugw(msg, args...)
}

func (z *ZapLogger) Info(msg string, args ...any) {
	z.l.Infow(msg, args...)
}

func (z *ZapLogger) Warn(msg string, args ...any) {
	z.l.Warnw(msg, args...)
}

func (z *ZapLogger) Error(msg string, args ...any) {
	z.l.Errorw(msg, args...)
}

// With returns a child logger carrying the given key/value pairs
func (z *ZapLogger) With(args ...any) *ZapLogger {
	return &ZapLogger{l: z.l.With(args...)}
}
