// Package slackapi implements the messaging boundary on the Slack Web
// API (conversations.history and chat.postMessage). Every call carries a
// bounded timeout so a stalled Slack request ends the affected domain's
// processing instead of hanging the handler.
package slackapi

import (
	"context"
	"fmt"
	"time"

	"github.com/slack-go/slack"
)

// Message is one channel-history entry as consumed by the thread locator.
type Message struct {
	// ID is the Slack message timestamp, the stable identifier Slack uses
	// to address a message (and to anchor its thread).
	ID string
	// Text is the rendered message text.
	Text string
	// ThreadRootID is the parent's ID when this message is a threaded
	// reply, its own ID for a root with replies, and "" otherwise.
	ThreadRootID string
}

// IsReply reports whether the message lives inside another message's
// thread.
func (m Message) IsReply() bool {
	return m.ThreadRootID != "" && m.ThreadRootID != m.ID
}

// Client wraps the slack-go API client behind the narrow surface the
// dispatcher and locator need.
type Client struct {
	api     *slack.Client
	timeout time.Duration
}

// New builds a Client with the given bot token. timeout bounds every
// outbound call; values <= 0 default to 10 seconds.
func New(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{api: slack.New(token), timeout: timeout}
}

// History fetches up to limit of the most recent messages in a channel,
// newest first (Slack's natural feed order).
func (c *Client) History(ctx context.Context, channel string, limit int) ([]Message, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channel,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("conversations.history %s: %w", channel, err)
	}

	out := make([]Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		out = append(out, Message{
			ID:           m.Timestamp,
			Text:         m.Text,
			ThreadRootID: m.ThreadTimestamp,
		})
	}
	return out, nil
}

// PostReply posts text into the thread anchored at rootID and returns the
// new message's ID once Slack confirms it.
func (c *Client) PostReply(ctx context.Context, channel, rootID, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, ts, err := c.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(rootID),
	)
	if err != nil {
		return "", fmt.Errorf("chat.postMessage (thread %s): %w", rootID, err)
	}
	return ts, nil
}

// PostRoot posts a top-level message and returns its ID once Slack
// confirms it. The returned ID is what makes the thread usable; callers
// must never assume a root exists before this confirmation.
func (c *Client) PostRoot(ctx context.Context, channel, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, ts, err := c.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return "", fmt.Errorf("chat.postMessage: %w", err)
	}
	return ts, nil
}
