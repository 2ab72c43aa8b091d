package core

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// logger holds the package-level *zap.Logger behind an atomic.Pointer so
// SetLogger can be called concurrently with ongoing operations.
var logger atomic.Pointer[zap.Logger]

// SetLogger replaces the package-level logger. A nil argument resets to
// zap.NewNop(), which is also the zero-value behavior before any logger is
// set — deployq never logs to a default-configured global logger on its
// own, since that default configuration belongs to the embedding
// application.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// Logger returns the current package-level logger, defaulting to a no-op
// logger if none has been set.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

func init() {
	logger.Store(zap.NewNop())
}
