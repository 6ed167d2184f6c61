package log

import (
	"go.uber.org/zap"
)

// ZapLogger records events in memory and mirrors each one to a zap logger
// as a structured entry. Terminal outcomes are logged at warn level.
type ZapLogger struct {
	MemoryLogger
	z *zap.Logger
}

func NewZapLogger(z *zap.Logger) *ZapLogger {
	if z == nil {
		z = zap.NewNop()
	}
	return &ZapLogger{z: z.Named("game")}
}

func (l *ZapLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)

	// MemoryLogger assigned the sequence number.
	event = l.LastEvent()
	fields := []zap.Field{
		zap.Int("seq", event.Seq),
		zap.Int("turn", event.Turn),
		zap.String("phase", event.Phase),
		zap.Int("player", event.Player),
		zap.Stringer("type", event.Type),
	}
	if event.Card != "" {
		fields = append(fields, zap.String("card", event.Card))
	}
	if event.Amount != 0 {
		fields = append(fields, zap.Int("amount", event.Amount))
	}

	switch event.Type {
	case EventVictory, EventDefeat:
		l.z.Warn(event.Details, fields...)
	default:
		l.z.Debug(event.Details, fields...)
	}
}
