package queue

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventLog appends consumed envelopes as JSON lines to a file.
type EventLog struct {
	file *os.File
	log  *zap.Logger
}

func OpenEventLog(path string) (*EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "logged_at"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(f), zapcore.InfoLevel)
	return &EventLog{file: f, log: zap.New(core)}, nil
}

// Handle has the HandlerFunc signature.
func (l *EventLog) Handle(_ context.Context, env Envelope) error {
	l.log.Info(env.Name,
		zap.String("event_id", env.ID),
		zap.Time("occurred_at", env.OccurredAt),
		zap.Reflect("payload", env.Payload),
	)
	return nil
}

func (l *EventLog) Close() error {
	_ = l.log.Sync()
	return l.file.Close()
}
