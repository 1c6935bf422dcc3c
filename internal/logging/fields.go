package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldService   = "service"
	FieldUserID    = "user_id"
	FieldSourceID  = "source_id"
	FieldEventKind = "event_kind"
	FieldCommand   = "command"
	FieldIP        = "ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// UserID returns a slog attribute for the local user ID.
func UserID(id string) slog.Attr {
	return slog.String(FieldUserID, id)
}

// SourceID returns a slog attribute for the external chat-platform user ID.
func SourceID(id string) slog.Attr {
	return slog.String(FieldSourceID, id)
}

// EventKind returns a slog attribute for the webhook event kind.
func EventKind(kind string) slog.Attr {
	return slog.String(FieldEventKind, kind)
}

// Command returns a slog attribute for the resolved bot command.
func Command(cmd string) slog.Attr {
	return slog.String(FieldCommand, cmd)
}

// IP returns a slog attribute for the IP address.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
