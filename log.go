package deployq

import (
	"go.uber.org/zap"

	"github.com/neondatabase/deployq/internal/core"
)

// SetLogger replaces the package-level logger used by every Client. A nil
// argument resets to a no-op logger, which is also the default before any
// logger is set — deployq never configures a default logger of its own,
// since that configuration belongs to the embedding application.
func SetLogger(l *zap.Logger) {
	core.SetLogger(l)
}
