package slackio

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/support-watchlist-bot/internal/utils"
)

// Inspector resolves a thread's replies and derives its full text. The
// issue reference usually lives in the first reply rather than the root
// message, so the concatenated text covers the root plus the first
// maxReplies replies, including their attachment titles and URLs.
type Inspector struct {
	api        API
	maxReplies int
	retry      utils.RetryConfig
}

// NewInspector creates an inspector that reads up to maxReplies replies per
// thread.
func NewInspector(api API, maxReplies int) *Inspector {
	if maxReplies <= 0 {
		maxReplies = 5
	}
	return &Inspector{
		api:        api,
		maxReplies: maxReplies,
		retry:      utils.DefaultRetryConfig(),
	}
}

// ThreadDetail returns a copy of th with ReplyCount resolved and Text
// replaced by the concatenated root and reply texts. Pure function of the
// API responses; nothing is cached.
func (i *Inspector) ThreadDetail(ctx context.Context, th Thread) (Thread, error) {
	params := slack.GetConversationRepliesParameters{
		ChannelID: th.ChannelID,
		Timestamp: th.RootMessageID,
		Limit:     i.maxReplies + 1, // the root message counts against the limit
	}

	var msgs []slack.Message
	err := utils.RetryWithBackoff(ctx, i.retry, func() error {
		var apiErr error
		msgs, _, _, apiErr = i.api.GetConversationRepliesContext(ctx, &params)
		return classifyErr(apiErr)
	})
	if err != nil {
		return Thread{}, fmt.Errorf("replies for thread %s in channel %s: %w", th.RootMessageID, th.ChannelID, err)
	}

	var parts []string
	replies := 0
	for idx, msg := range msgs {
		if text := messageText(msg); text != "" {
			parts = append(parts, text)
		}
		if idx > 0 {
			replies++
		}
	}

	logrus.Debugf("Thread %s: %d replies inspected", th.RootMessageID, replies)

	detail := th
	detail.ReplyCount = replies
	detail.Text = strings.Join(parts, "\n")
	return detail, nil
}

// messageText flattens a message into searchable text. Attachment titles,
// link URLs and bodies are included because workflow bots often carry the
// issue link in an attachment instead of the message text.
func messageText(msg slack.Message) string {
	parts := []string{msg.Text}
	for _, att := range msg.Attachments {
		for _, s := range []string{att.Title, att.TitleLink, att.FromURL, att.Text} {
			if s != "" {
				parts = append(parts, s)
			}
		}
	}
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n")
}
