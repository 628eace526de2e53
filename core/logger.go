package core

// Logger is any leveled logging service.
// Implementations may inspect args for known types (errors, the acting student)
// to enrich reports.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
	Enable(enabled bool)
}
