package booster

import (
	"time"

	"go.uber.org/zap"
)

// PersistenceEvent describes one load, save or clear attempt.
type PersistenceEvent struct {
	Operation  string
	Key        string
	SnapshotID string
	Found      bool
	Duration   time.Duration
	Err        error
}

// StoreEvent describes a store lifecycle step or mutation.
type StoreEvent struct {
	Operation string
	Section   Section
	ObjectID  string
	Fields    []string
	Err       error
}

// Logger records persistence and store events.
type Logger interface {
	LogPersistence(PersistenceEvent)
	LogStore(StoreEvent)
}

// LoggerFunc adapts a pair of functions to Logger. Either may be nil.
type LoggerFunc struct {
	Persistence func(PersistenceEvent)
	Store       func(StoreEvent)
}

// LogPersistence implements Logger.
func (f LoggerFunc) LogPersistence(event PersistenceEvent) {
	if f.Persistence != nil {
		f.Persistence(event)
	}
}

// LogStore implements Logger.
func (f LoggerFunc) LogStore(event StoreEvent) {
	if f.Store != nil {
		f.Store(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogPersistence(PersistenceEvent) {}
func (noopLogger) LogStore(StoreEvent)             {}

// NewZapLogger routes events to a zap logger. Failures log at warn level,
// everything else at debug.
func NewZapLogger(logger *zap.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return zapLogger{logger: logger.Named("booster")}
}

type zapLogger struct {
	logger *zap.Logger
}

func (l zapLogger) LogPersistence(event PersistenceEvent) {
	fields := []zap.Field{
		zap.String("operation", event.Operation),
		zap.String("key", event.Key),
		zap.Duration("duration", event.Duration),
	}
	if event.SnapshotID != "" {
		fields = append(fields, zap.String("snapshot_id", event.SnapshotID))
	}
	if event.Err != nil {
		l.logger.Warn("persistence failed", append(fields, zap.Error(event.Err))...)
		return
	}
	l.logger.Debug("persistence", append(fields, zap.Bool("found", event.Found))...)
}

func (l zapLogger) LogStore(event StoreEvent) {
	fields := []zap.Field{zap.String("operation", event.Operation)}
	if event.Section != "" {
		fields = append(fields, zap.String("section", string(event.Section)))
	}
	if event.ObjectID != "" {
		fields = append(fields, zap.String("object_id", event.ObjectID))
	}
	if len(event.Fields) > 0 {
		fields = append(fields, zap.Strings("fields", event.Fields))
	}
	if event.Err != nil {
		l.logger.Warn("store operation failed", append(fields, zap.Error(event.Err))...)
		return
	}
	l.logger.Debug("store", fields...)
}
