package core

// Logger is the diagnostic channel of the app.
// args may hold errors, a RequestID or map[string]interface{} with extra context.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// RequestID tags a log entry with the id of the request being served.
type RequestID string
