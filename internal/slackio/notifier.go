package slackio

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/support-watchlist-bot/internal/tracker"
	"github.com/support-watchlist-bot/internal/utils"
)

// Notifier posts watchlist notifications and thread replies. Posting is not
// idempotent at this layer: calling twice posts twice. Duplicate-post
// prevention is the scanner's single-pass-per-run semantics.
type Notifier struct {
	api   API
	retry utils.RetryConfig
}

// NewNotifier creates a notifier on top of the given client.
func NewNotifier(api API) *Notifier {
	return &Notifier{api: api, retry: utils.DefaultRetryConfig()}
}

// Post sends one watchlist message referencing the thread's permalink and
// the issue it resolved to.
func (n *Notifier) Post(ctx context.Context, channelID string, th Thread, ref tracker.Ref) error {
	permalink, err := n.permalink(ctx, th)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("%s\nTracked in %s", permalink, ref)
	if err := n.send(ctx, channelID, text, ""); err != nil {
		return fmt.Errorf("watchlist post for thread %s: %w", th.RootMessageID, err)
	}
	logrus.Infof("Posted watchlist notification for thread %s (issue %s)", th.RootMessageID, ref)
	return nil
}

// ReplyInThread posts text as a reply inside the given thread.
func (n *Notifier) ReplyInThread(ctx context.Context, channelID, threadTS, text string) error {
	if err := n.send(ctx, channelID, text, threadTS); err != nil {
		return fmt.Errorf("reply in thread %s: %w", threadTS, err)
	}
	logrus.Debugf("Posted reply in thread %s", threadTS)
	return nil
}

func (n *Notifier) permalink(ctx context.Context, th Thread) (string, error) {
	var permalink string
	err := utils.RetryWithBackoff(ctx, n.retry, func() error {
		var apiErr error
		permalink, apiErr = n.api.GetPermalinkContext(ctx, &slack.PermalinkParameters{
			Channel: th.ChannelID,
			Ts:      th.RootMessageID,
		})
		return classifyErr(apiErr)
	})
	if err != nil {
		return "", fmt.Errorf("permalink for thread %s: %w", th.RootMessageID, err)
	}
	return permalink, nil
}

func (n *Notifier) send(ctx context.Context, channelID, text, threadTS string) error {
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS != "" {
		options = append(options, slack.MsgOptionTS(threadTS))
	}
	return utils.RetryWithBackoff(ctx, n.retry, func() error {
		_, _, err := n.api.PostMessageContext(ctx, channelID, options...)
		return classifyErr(err)
	})
}
