package slackio

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/support-watchlist-bot/internal/errs"
	"github.com/support-watchlist-bot/internal/tracker"
)

func watchlistThread() Thread {
	return Thread{
		RootMessageID: "1700000100.000000",
		ChannelID:     "C123",
		CreatedAt:     time.Unix(1700000100, 0),
	}
}

func TestPostReferencesThreadAndIssue(t *testing.T) {
	api := &fakeAPI{permalink: "https://team.slack.com/archives/C123/p1700000100000000"}
	n := NewNotifier(api)
	n.retry = fastRetry()

	ref := tracker.Ref{Repo: "org/repo", Number: 42}
	if err := n.Post(context.Background(), "C456", watchlistThread(), ref); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(api.posts) != 1 {
		t.Fatalf("Expected one post, got %d", len(api.posts))
	}
	post := api.posts[0]
	if post.channel != "C456" {
		t.Errorf("Expected post in watchlist channel C456, got %q", post.channel)
	}
	if post.threadTS != "" {
		t.Errorf("Watchlist post must be a root message, got thread_ts %q", post.threadTS)
	}
	if !strings.Contains(post.text, api.permalink) {
		t.Errorf("Expected post to contain the permalink, got %q", post.text)
	}
	if !strings.Contains(post.text, "org/repo#42") {
		t.Errorf("Expected post to reference the issue, got %q", post.text)
	}
}

func TestPostFailsWhenPermalinkFails(t *testing.T) {
	api := &fakeAPI{permalinkErr: errors.New("message_not_found")}
	n := NewNotifier(api)
	n.retry = fastRetry()

	err := n.Post(context.Background(), "C456", watchlistThread(), tracker.Ref{Repo: "org/repo", Number: 1})
	if !errs.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
	if len(api.posts) != 0 {
		t.Errorf("No message must be posted without a permalink, got %d", len(api.posts))
	}
}

func TestReplyInThread(t *testing.T) {
	api := &fakeAPI{}
	n := NewNotifier(api)
	n.retry = fastRetry()

	err := n.ReplyInThread(context.Background(), "C123", "1700000100.000000", "monitoring this thread")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(api.posts) != 1 {
		t.Fatalf("Expected one post, got %d", len(api.posts))
	}
	post := api.posts[0]
	if post.channel != "C123" || post.threadTS != "1700000100.000000" {
		t.Errorf("Expected reply inside the thread, got %+v", post)
	}
	if post.text != "monitoring this thread" {
		t.Errorf("Unexpected reply text %q", post.text)
	}
}

func TestReplyInThreadClassifiesErrors(t *testing.T) {
	api := &fakeAPI{postErr: errors.New("invalid_auth")}
	n := NewNotifier(api)
	n.retry = fastRetry()

	err := n.ReplyInThread(context.Background(), "C123", "1.2", "text")
	if !errs.IsAuth(err) {
		t.Errorf("Expected auth error, got %v", err)
	}
}
