package logger

import (
	"context"
	"sync/atomic"
)

type contextKey struct{}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(New(Options{}))
}

// GetDefault returns the process-wide logger used outside a request or job.
func GetDefault() *Logger {
	return defaultLogger.Load()
}

// SetDefaultLogger replaces the process-wide logger. nil is ignored.
func SetDefaultLogger(l *Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

// WithContext returns a new context with the logger attached.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger carried by ctx, or the default logger.
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*Logger); ok {
			return l
		}
	}
	return GetDefault()
}

// WithField returns a context whose logger carries one more field.
func WithField(ctx context.Context, key string, value interface{}) context.Context {
	return FromContext(ctx).WithField(key, value).WithContext(ctx)
}

// WithFields returns a context whose logger carries the extra fields.
func WithFields(ctx context.Context, fields Fields) context.Context {
	return FromContext(ctx).WithFields(fields).WithContext(ctx)
}

// SetRequestID sets the request ID field in context.
func SetRequestID(ctx context.Context, id string) context.Context {
	return WithField(ctx, FieldRequestID, id)
}

// SetQueueID sets the production queue ID field in context.
func SetQueueID(ctx context.Context, id string) context.Context {
	return WithField(ctx, FieldQueueID, id)
}

// SetSiteID sets the site ID field in context.
func SetSiteID(ctx context.Context, id string) context.Context {
	return WithField(ctx, FieldSiteID, id)
}

// SetCampaignID sets the campaign ID field in context.
func SetCampaignID(ctx context.Context, id string) context.Context {
	return WithField(ctx, FieldCampaignID, id)
}

// SetComponent sets the component name field in context.
func SetComponent(ctx context.Context, name string) context.Context {
	return WithField(ctx, FieldComponent, name)
}

// Field returns a string field of the context's logger, or "".
func Field(ctx context.Context, key string) string {
	s, _ := FromContext(ctx).Data[key].(string)
	return s
}
