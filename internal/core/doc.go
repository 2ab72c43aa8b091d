// Package core implements the deployment queue's orchestration logic: the
// lifecycle operations (Coordinator), the wait-and-start loop (WaitLoop),
// and the heartbeat engine (backgroundHeartbeat, ForegroundHeartbeat).
//
// core holds no SQL of its own — every store access goes through the Store
// interface, which internal/store implements against Postgres. This keeps
// the blocking predicate, the transition guard, and the retry-on-
// serialization-failure behavior entirely in the store layer, where they
// are authoritative.
package core
