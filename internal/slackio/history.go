package slackio

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/support-watchlist-bot/internal/utils"
)

const historyPageSize = 200 // Slack API page limit

// HistoryReader pages through a channel's message history and yields the
// workflow-generated root messages as Threads.
type HistoryReader struct {
	api           API
	workflowBotID string
	retry         utils.RetryConfig
}

// NewHistoryReader creates a reader that recognizes workflow posts by the
// given bot ID.
func NewHistoryReader(api API, workflowBotID string) *HistoryReader {
	return &HistoryReader{
		api:           api,
		workflowBotID: workflowBotID,
		retry:         utils.DefaultRetryConfig(),
	}
}

// ListRootMessages enumerates workflow root messages in the channel no older
// than the oldest bound, transparently following the pagination cursor until
// the history is exhausted. The bound keeps a run from re-reading the full
// channel history; it is passed to the API as the oldest parameter so pages
// never contain messages outside it.
func (r *HistoryReader) ListRootMessages(ctx context.Context, channelID string, oldest time.Time) ([]Thread, error) {
	var threads []Thread
	cursor := ""
	page := 0

	for {
		page++
		params := slack.GetConversationHistoryParameters{
			ChannelID: channelID,
			Oldest:    slackTimestamp(oldest),
			Limit:     historyPageSize,
			Inclusive: true,
			Cursor:    cursor,
		}

		var history *slack.GetConversationHistoryResponse
		err := utils.RetryWithBackoff(ctx, r.retry, func() error {
			var apiErr error
			history, apiErr = r.api.GetConversationHistoryContext(ctx, &params)
			return classifyErr(apiErr)
		})
		if err != nil {
			return nil, fmt.Errorf("conversation history for channel %s (page %d): %w", channelID, page, err)
		}

		logrus.Debugf("History page %d for channel %s: %d messages, next_cursor=%q",
			page, channelID, len(history.Messages), history.ResponseMetaData.NextCursor)

		for _, msg := range history.Messages {
			if !r.isWorkflowRoot(msg) {
				continue
			}
			th, err := decodeThread(channelID, msg)
			if err != nil {
				return nil, err
			}
			threads = append(threads, th)
		}

		if history.ResponseMetaData.NextCursor == "" || len(history.Messages) == 0 {
			break
		}
		cursor = history.ResponseMetaData.NextCursor
	}

	logrus.Debugf("Found %d workflow threads in channel %s", len(threads), channelID)
	return threads, nil
}

// isWorkflowRoot reports whether msg is a root message posted by the
// workflow bot. Replies inside a thread carry a thread ts different from
// their own ts and are excluded.
func (r *HistoryReader) isWorkflowRoot(msg slack.Message) bool {
	if msg.SubType != "bot_message" || msg.BotID != r.workflowBotID {
		return false
	}
	return msg.ThreadTimestamp == "" || msg.ThreadTimestamp == msg.Timestamp
}
