package notifier

import "ms-bookings/internal/logger"

// Notifier is the user-facing outcome channel for the booking and payment
// flows. Injecting it keeps the flows testable in isolation instead of
// dispatching through ambient global state.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notifications through the shared logger.
type LogNotifier struct {
	Logger *logger.Logger
}

func NewLogNotifier(l *logger.Logger) *LogNotifier {
	return &LogNotifier{Logger: l}
}

func (n *LogNotifier) Success(msg string) {
	n.Logger.Info("NOTIFY", msg)
}

func (n *LogNotifier) Error(msg string) {
	n.Logger.Error("NOTIFY", msg)
}

// Noop discards notifications. Handy in tests that only assert flow state.
type Noop struct{}

func (Noop) Success(string) {}
func (Noop) Error(string)   {}
