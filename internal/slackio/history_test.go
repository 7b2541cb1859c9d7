package slackio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slack-go/slack"

	"github.com/support-watchlist-bot/internal/errs"
)

func historyPage(cursor string, msgs ...slack.Message) *slack.GetConversationHistoryResponse {
	resp := &slack.GetConversationHistoryResponse{Messages: msgs}
	resp.ResponseMetaData.NextCursor = cursor
	return resp
}

func TestListRootMessagesFiltersAndPaginates(t *testing.T) {
	reply := botMessage("1700000300.000000", "B1", "a reply")
	reply.ThreadTimestamp = "1700000100.000000"

	userMsg := slack.Message{Msg: slack.Msg{Timestamp: "1700000400.000000", User: "U1", Text: "chat"}}
	otherBot := botMessage("1700000500.000000", "B9", "other integration")

	api := &fakeAPI{
		historyPages: []*slack.GetConversationHistoryResponse{
			historyPage("cursor-1",
				botMessage("1700000100.000000", "B1", "workflow one"),
				reply,
				userMsg,
			),
			historyPage("",
				otherBot,
				botMessage("1700000200.000000", "B1", "workflow two"),
			),
		},
	}

	r := NewHistoryReader(api, "B1")
	r.retry = fastRetry()

	oldest := time.Unix(1699990000, 0)
	threads, err := r.ListRootMessages(context.Background(), "C123", oldest)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(threads) != 2 {
		t.Fatalf("Expected 2 workflow threads, got %d", len(threads))
	}
	if threads[0].RootMessageID != "1700000100.000000" || threads[1].RootMessageID != "1700000200.000000" {
		t.Errorf("Unexpected threads: %+v", threads)
	}

	if len(api.historyCalls) != 2 {
		t.Fatalf("Expected 2 pages fetched, got %d", len(api.historyCalls))
	}
	if api.historyCalls[0].Cursor != "" || api.historyCalls[1].Cursor != "cursor-1" {
		t.Errorf("Cursor not threaded through pages: %+v", api.historyCalls)
	}
	if api.historyCalls[0].Oldest != "1699990000" {
		t.Errorf("Expected oldest bound on the API call, got %q", api.historyCalls[0].Oldest)
	}
	if api.historyCalls[0].ChannelID != "C123" {
		t.Errorf("Expected channel C123, got %q", api.historyCalls[0].ChannelID)
	}
}

func TestListRootMessagesAcceptsExplicitThreadStarter(t *testing.T) {
	starter := botMessage("1700000100.000000", "B1", "workflow")
	starter.ThreadTimestamp = "1700000100.000000" // own ts: still a root

	api := &fakeAPI{historyPages: []*slack.GetConversationHistoryResponse{historyPage("", starter)}}
	r := NewHistoryReader(api, "B1")
	r.retry = fastRetry()

	threads, err := r.ListRootMessages(context.Background(), "C123", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(threads) != 1 {
		t.Errorf("Expected the thread starter to be included, got %d threads", len(threads))
	}
}

func TestListRootMessagesClassifiesErrors(t *testing.T) {
	api := &fakeAPI{historyErr: errors.New("invalid_auth")}
	r := NewHistoryReader(api, "B1")
	r.retry = fastRetry()

	_, err := r.ListRootMessages(context.Background(), "C123", time.Unix(0, 0))
	if !errs.IsAuth(err) {
		t.Errorf("Expected auth error, got %v", err)
	}
}

func TestListRootMessagesRejectsMalformedTimestamp(t *testing.T) {
	api := &fakeAPI{historyPages: []*slack.GetConversationHistoryResponse{
		historyPage("", botMessage("not-a-ts", "B1", "workflow")),
	}}
	r := NewHistoryReader(api, "B1")
	r.retry = fastRetry()

	if _, err := r.ListRootMessages(context.Background(), "C123", time.Unix(0, 0)); err == nil {
		t.Error("Expected decode error for malformed timestamp")
	}
}
