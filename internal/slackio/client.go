// Package slackio wraps the Slack Web API behind the narrow surface the
// scan pipeline needs: enumerating workflow threads, resolving thread
// detail and posting notifications.
package slackio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/support-watchlist-bot/internal/errs"
)

// API is the subset of the slack-go client used by this package.
type API interface {
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	GetConversationRepliesContext(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, bool, string, error)
	GetPermalinkContext(ctx context.Context, params *slack.PermalinkParameters) (string, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Thread is a workflow-generated root message in the source channel.
// Identity is (ChannelID, RootMessageID); the struct is immutable once
// decoded and never persisted across runs.
type Thread struct {
	RootMessageID string // Slack message ts, also the thread ts
	ChannelID     string
	CreatedAt     time.Time
	Text          string
	ReplyCount    int
}

// Ping verifies the bot token against auth.test. Invalid credentials are
// fatal for both entry points, so callers treat any returned error as such.
func Ping(ctx context.Context, api API) error {
	resp, err := api.AuthTestContext(ctx)
	if err != nil {
		return classifyErr(err)
	}
	logrus.Infof("Authenticated with Slack as %s (team: %s)", resp.User, resp.Team)
	return nil
}

// decodeThread converts a raw Slack message into a Thread, failing fast on
// malformed timestamps instead of carrying loose maps inward.
func decodeThread(channelID string, msg slack.Message) (Thread, error) {
	created, err := parseTimestamp(msg.Timestamp)
	if err != nil {
		return Thread{}, fmt.Errorf("message %s in channel %s: %w", msg.Timestamp, channelID, err)
	}
	return Thread{
		RootMessageID: msg.Timestamp,
		ChannelID:     channelID,
		CreatedAt:     created,
		Text:          msg.Text,
		ReplyCount:    msg.ReplyCount,
	}, nil
}

// parseTimestamp parses a Slack ts value ("1712345678.000200") into a
// time.Time.
func parseTimestamp(ts string) (time.Time, error) {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slack timestamp %q: %w", ts, err)
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)), nil
}

// slackTimestamp formats a time.Time the way the Slack API expects its
// oldest/latest bounds.
func slackTimestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

// Slack API error strings that indicate bad or revoked credentials.
var authErrors = []string{
	"invalid_auth",
	"not_authed",
	"account_inactive",
	"token_revoked",
	"token_expired",
}

// Slack API error strings for resources that do not exist.
var notFoundErrors = []string{
	"channel_not_found",
	"thread_not_found",
	"message_not_found",
}

// classifyErr maps slack-go errors onto the shared taxonomy. Anything that
// is not clearly an auth or not-found failure is treated as transient: the
// scan skips the item and the next run retries it.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		return errs.Transient(err)
	}

	msg := strings.ToLower(err.Error())
	for _, s := range authErrors {
		if strings.Contains(msg, s) {
			return errs.Auth(err)
		}
	}
	for _, s := range notFoundErrors {
		if strings.Contains(msg, s) {
			return errs.NotFound(err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return errs.Transient(err)
	}
	return errs.Transient(err)
}
