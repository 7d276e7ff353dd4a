package telemetry

import "time"

// LoginAuditEvent mirrors a persisted login-history row for export.
type LoginAuditEvent struct {
	Timestamp time.Time `json:"@timestamp"`
	Browser   string    `json:"browser,omitempty"`
	OS        string    `json:"os,omitempty"`
	IP        string    `json:"ip,omitempty"`
	Method    string    `json:"method,omitempty"`
	Path      string    `json:"path,omitempty"`
}
