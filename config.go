package deployq

import (
	"time"

	"github.com/neondatabase/deployq/internal/core"
)

// clientConfig collects every Option's effect before New opens the store
// and builds a Coordinator. It embeds core.Config so Validate and the
// field set stay in lockstep with the orchestration layer's own tunables.
type clientConfig struct {
	core.Config

	notifier core.Notifier

	retryAttempts int
	retryBaseWait time.Duration
}

// defaultClientConfig returns a clientConfig populated with the package
// defaults, before any Option is applied.
func defaultClientConfig() clientConfig {
	return clientConfig{
		Config:        core.DefaultConfig(),
		retryAttempts: 3,
		retryBaseWait: 20 * time.Millisecond,
	}
}
