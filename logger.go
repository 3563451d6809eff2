package skiplock

// Logger receives pass and item events as a message plus alternating key/value pairs.
// *slog.Logger satisfies it, so the CLI passes its slog logger straight through.
//
// Cycle logs per-item failures at Error with an "id" key, version drift at Warn,
// and one Info line per non-empty pass with a "report" key such as "3/3".
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards everything. It is the default for Cycle, Scheduler and Producer.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
