// Package notify provides core.Notifier implementations: a Slack sink that
// threads lifecycle events under one message per deployment, and a file
// sink that appends one JSON line per event for local use and tests.
package notify
