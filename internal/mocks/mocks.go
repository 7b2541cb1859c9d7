// Package mocks provides function-field mocks of the scan pipeline's
// collaborators for tests.
package mocks

import (
	"context"
	"time"

	"github.com/support-watchlist-bot/internal/slackio"
	"github.com/support-watchlist-bot/internal/tracker"
)

// MockHistoryReader is a mock implementation of watchlist.HistoryReader
type MockHistoryReader struct {
	ListRootMessagesFunc func(ctx context.Context, channelID string, oldest time.Time) ([]slackio.Thread, error)
}

func (m *MockHistoryReader) ListRootMessages(ctx context.Context, channelID string, oldest time.Time) ([]slackio.Thread, error) {
	if m.ListRootMessagesFunc != nil {
		return m.ListRootMessagesFunc(ctx, channelID, oldest)
	}
	return nil, nil
}

// MockInspector is a mock implementation of watchlist.Inspector
type MockInspector struct {
	ThreadDetailFunc func(ctx context.Context, th slackio.Thread) (slackio.Thread, error)
}

func (m *MockInspector) ThreadDetail(ctx context.Context, th slackio.Thread) (slackio.Thread, error) {
	if m.ThreadDetailFunc != nil {
		return m.ThreadDetailFunc(ctx, th)
	}
	return th, nil
}

// MockExtractor is a mock implementation of watchlist.Extractor
type MockExtractor struct {
	ExtractFunc func(text string) (tracker.Ref, bool)
}

func (m *MockExtractor) Extract(text string) (tracker.Ref, bool) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(text)
	}
	return tracker.Ref{}, false
}

// MockGateway is a mock implementation of tracker.Gateway
type MockGateway struct {
	IssueStatusFunc func(ctx context.Context, ref tracker.Ref) (tracker.IssueStatus, error)
	AddLabelFunc    func(ctx context.Context, ref tracker.Ref, label string) error
	CreateIssueFunc func(ctx context.Context, issue tracker.NewIssue) (tracker.Ref, string, error)
}

func (m *MockGateway) IssueStatus(ctx context.Context, ref tracker.Ref) (tracker.IssueStatus, error) {
	if m.IssueStatusFunc != nil {
		return m.IssueStatusFunc(ctx, ref)
	}
	return tracker.IssueStatus{Open: true}, nil
}

func (m *MockGateway) AddLabel(ctx context.Context, ref tracker.Ref, label string) error {
	if m.AddLabelFunc != nil {
		return m.AddLabelFunc(ctx, ref, label)
	}
	return nil
}

func (m *MockGateway) CreateIssue(ctx context.Context, issue tracker.NewIssue) (tracker.Ref, string, error) {
	if m.CreateIssueFunc != nil {
		return m.CreateIssueFunc(ctx, issue)
	}
	return tracker.Ref{Repo: issue.Repo, Number: 1}, "https://github.com/" + issue.Repo + "/issues/1", nil
}

// MockNotifier is a mock implementation of watchlist.Notifier
type MockNotifier struct {
	PostFunc          func(ctx context.Context, channelID string, th slackio.Thread, ref tracker.Ref) error
	ReplyInThreadFunc func(ctx context.Context, channelID, threadTS, text string) error
}

func (m *MockNotifier) Post(ctx context.Context, channelID string, th slackio.Thread, ref tracker.Ref) error {
	if m.PostFunc != nil {
		return m.PostFunc(ctx, channelID, th, ref)
	}
	return nil
}

func (m *MockNotifier) ReplyInThread(ctx context.Context, channelID, threadTS, text string) error {
	if m.ReplyInThreadFunc != nil {
		return m.ReplyInThreadFunc(ctx, channelID, threadTS, text)
	}
	return nil
}
