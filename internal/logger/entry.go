package logger

import "context"

// Entry accumulates metric fields (duration_ms, count, cursor, status) for
// a single line. Trace fields come from the context the line is logged with.
//
//	logger.With(logger.Fields{logger.FieldCount: n}).WithCursor(pos).Info(ctx, "chunk done")
type Entry struct {
	fields Fields
}

// With starts an Entry with the given metric fields.
func With(fields Fields) *Entry {
	return &Entry{fields: fields}
}

// WithField returns a copy of e with one more field.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	merged := make(Fields, len(e.fields)+1)
	for k, v := range e.fields {
		merged[k] = v
	}
	merged[key] = value
	return &Entry{fields: merged}
}

// WithCursor adds a queue cursor field.
func (e *Entry) WithCursor(pos int) *Entry {
	return e.WithField(FieldCursor, pos)
}

// WithStatus adds a status field.
func (e *Entry) WithStatus(status string) *Entry {
	return e.WithField(FieldStatus, status)
}

func (e *Entry) on(ctx context.Context) *Logger {
	return FromContext(ctx).WithFields(e.fields)
}

// Debug logs at Debug level.
func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.on(ctx).Debugf(format, args...)
}

// Info logs at Info level.
func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.on(ctx).Infof(format, args...)
}

// Warn logs at Warn level.
func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.on(ctx).Warnf(format, args...)
}

// Error logs at Error level.
func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.on(ctx).Errorf(format, args...)
}
