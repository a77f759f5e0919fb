package logger

// Fields is a set of structured log fields.
type Fields map[string]interface{}

// Trace fields, carried on context loggers through a call chain.
const (
	FieldRequestID  = "request_id"
	FieldQueueID    = "queue_id"
	FieldSiteID     = "site_id"
	FieldCampaignID = "campaign_id"
	FieldComponent  = "component"
)

// Metric fields, attached per line through Entry.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldStatus     = "status"
	FieldCursor     = "cursor" // production queue cursor position
)
