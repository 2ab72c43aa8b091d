package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/neondatabase/deployq/internal/core"
)

// SlackNotifier posts lifecycle events to a single Slack channel, threading
// every event after the first under the message the start-pending event
// created.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

// NewSlackNotifier returns a SlackNotifier authenticated with token,
// posting to channel (a channel id or name the bot has joined).
func NewSlackNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{client: slack.New(token), channel: channel}
}

// Notify posts e as a message, replying in-thread when e.ThreadID is set,
// and returns the timestamp of the message it posted (or the existing
// thread's timestamp) as the thread id for subsequent calls.
func (n *SlackNotifier) Notify(ctx context.Context, e core.Event) (string, error) {
	opts := []slack.MsgOption{slack.MsgOptionText(formatEvent(e), false)}
	if e.ThreadID != "" {
		opts = append(opts, slack.MsgOptionTS(e.ThreadID))
	}

	_, ts, err := n.client.PostMessageContext(ctx, n.channel, opts...)
	if err != nil {
		return "", fmt.Errorf("slack: post message: %w", err)
	}
	if e.ThreadID != "" {
		return e.ThreadID, nil
	}
	return ts, nil
}

func formatEvent(e core.Event) string {
	d := e.Deployment
	switch e.Kind {
	case core.EventStartPending:
		return fmt.Sprintf(":hourglass: deployment %d queued: %s@%s in %s/%s/%s/%d",
			d.ID, d.Component, d.Version, d.Environment, d.CloudProvider, d.Region, d.CellIndex)
	case core.EventStarted:
		return fmt.Sprintf(":rocket: deployment %d started: %s@%s", d.ID, d.Component, d.Version)
	case core.EventFinished:
		return fmt.Sprintf(":white_check_mark: deployment %d finished: %s@%s", d.ID, d.Component, d.Version)
	case core.EventCancelled:
		note := d.CancellationNote
		if note == "" {
			note = "no reason given"
		}
		return fmt.Sprintf(":x: deployment %d cancelled: %s@%s (%s)", d.ID, d.Component, d.Version, note)
	default:
		return fmt.Sprintf("deployment %d: %s", d.ID, e.Kind)
	}
}
