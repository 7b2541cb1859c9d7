// Package watchlist implements the scan-and-act pipeline: enumerate
// workflow threads inside the age window, resolve each to a tracker issue,
// and label-and-notify the ones whose issue is still open.
package watchlist

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/support-watchlist-bot/internal/errs"
	"github.com/support-watchlist-bot/internal/slackio"
	"github.com/support-watchlist-bot/internal/tracker"
)

// monitoredNotice is posted into a thread when it enters the watchlist.
const monitoredNotice = "This thread is now being monitored in the watchlist channel due to inactivity."

// HistoryReader enumerates workflow root messages no older than the bound.
type HistoryReader interface {
	ListRootMessages(ctx context.Context, channelID string, oldest time.Time) ([]slackio.Thread, error)
}

// Inspector resolves a thread's replies and concatenated text.
type Inspector interface {
	ThreadDetail(ctx context.Context, th slackio.Thread) (slackio.Thread, error)
}

// Extractor finds an issue reference in free text.
type Extractor interface {
	Extract(text string) (tracker.Ref, bool)
}

// Notifier posts the watchlist notification and the in-thread notice.
type Notifier interface {
	Post(ctx context.Context, channelID string, th slackio.Thread, ref tracker.Ref) error
	ReplyInThread(ctx context.Context, channelID, threadTS, text string) error
}

// Window is the thread age range eligible for a run: threads between
// OlderThanDays and WithinLastDays old, both bounds inclusive.
type Window struct {
	OlderThanDays  int
	WithinLastDays int
}

// Bounds returns the window as absolute times relative to now. A thread is
// eligible when its creation time lies in [lower, upper].
func (w Window) Bounds(now time.Time) (lower, upper time.Time) {
	lower = now.AddDate(0, 0, -w.WithinLastDays)
	upper = now.AddDate(0, 0, -w.OlderThanDays)
	return lower, upper
}

// Contains reports whether t falls inside [lower, upper].
func (w Window) Contains(t, now time.Time) bool {
	lower, upper := w.Bounds(now)
	return !t.Before(lower) && !t.After(upper)
}

// Summary counts the outcomes of one run.
type Summary struct {
	Scanned  int // workflow threads enumerated
	Matched  int // threads with an open referenced issue
	Labeled  int // threads labeled and notified
	Skipped  int // outside window, no reference, closed or missing issue
	Failed   int // threads abandoned on transient errors
}

// Params wires a Scanner's collaborators and policy.
type Params struct {
	History            HistoryReader
	Inspector          Inspector
	Extractor          Extractor
	Tracker            tracker.Gateway
	Notifier           Notifier
	Window             Window
	ChannelID          string
	WatchlistChannelID string
	Label              string
	Now                func() time.Time // nil means time.Now
}

// Scanner drives one bounded pass over the source channel. It holds no
// state between runs: eligibility is re-derived from current time and
// thread timestamps on every invocation.
type Scanner struct {
	history   HistoryReader
	inspector Inspector
	extractor Extractor
	tracker   tracker.Gateway
	notifier  Notifier

	window             Window
	channelID          string
	watchlistChannelID string
	label              string
	now                func() time.Time
}

// New creates a Scanner from its parameters.
func New(p Params) *Scanner {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	label := p.Label
	if label == "" {
		label = "watchlist"
	}
	return &Scanner{
		history:            p.History,
		inspector:          p.Inspector,
		extractor:          p.Extractor,
		tracker:            p.Tracker,
		notifier:           p.Notifier,
		window:             p.Window,
		channelID:          p.ChannelID,
		watchlistChannelID: p.WatchlistChannelID,
		label:              label,
		now:                now,
	}
}

// Run performs one scan. Per-thread transient failures are logged and the
// thread is abandoned for this run; an auth failure anywhere aborts
// immediately. The returned Summary is valid even on error and reflects the
// work done up to the abort.
func (s *Scanner) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	now := s.now()
	lower, upper := s.window.Bounds(now)
	logrus.Infof("Scanning channel %s for threads created between %s and %s",
		s.channelID, lower.Format(time.RFC3339), upper.Format(time.RFC3339))

	threads, err := s.history.ListRootMessages(ctx, s.channelID, lower)
	if err != nil {
		// Failing to enumerate at all is fatal regardless of class: there
		// is nothing to continue with.
		return summary, fmt.Errorf("scan aborted: %w", err)
	}

	for _, th := range threads {
		summary.Scanned++

		if th.CreatedAt.Before(lower) || th.CreatedAt.After(upper) {
			summary.Skipped++
			continue
		}

		fatal, err := s.processThread(ctx, th, &summary)
		if fatal {
			return summary, err
		}
	}

	logrus.Infof("Scan complete: %d scanned, %d matched, %d labeled, %d skipped, %d failed",
		summary.Scanned, summary.Matched, summary.Labeled, summary.Skipped, summary.Failed)
	return summary, nil
}

// processThread runs the inspect-extract-check-act sequence for one thread.
// The bool result reports whether the whole run must abort.
func (s *Scanner) processThread(ctx context.Context, th slackio.Thread, summary *Summary) (bool, error) {
	detail, err := s.inspector.ThreadDetail(ctx, th)
	if err != nil {
		return s.threadFailed(th, "inspect", err, summary)
	}

	ref, ok := s.extractor.Extract(detail.Text)
	if !ok {
		logrus.Debugf("Thread %s has no issue reference, skipping", th.RootMessageID)
		summary.Skipped++
		return false, nil
	}

	status, err := s.tracker.IssueStatus(ctx, ref)
	if err != nil {
		if errs.IsNotFound(err) {
			logrus.Debugf("Issue %s no longer exists, skipping thread %s", ref, th.RootMessageID)
			summary.Skipped++
			return false, nil
		}
		return s.threadFailed(th, "check issue", err, summary)
	}

	if !status.Open {
		logrus.Infof("Issue %s is not open, no label added for thread %s", ref, th.RootMessageID)
		summary.Skipped++
		return false, nil
	}
	summary.Matched++

	if err := s.tracker.AddLabel(ctx, ref, s.label); err != nil {
		return s.threadFailed(th, "label", err, summary)
	}

	// The in-thread notice is best effort: the watchlist post is the
	// artifact that matters.
	if err := s.notifier.ReplyInThread(ctx, th.ChannelID, th.RootMessageID, monitoredNotice); err != nil {
		if errs.IsAuth(err) {
			return true, err
		}
		logrus.Warnf("Failed to post notice in thread %s: %v", th.RootMessageID, err)
	}

	if err := s.notifier.Post(ctx, s.watchlistChannelID, th, ref); err != nil {
		return s.threadFailed(th, "notify", err, summary)
	}

	summary.Labeled++
	return false, nil
}

// threadFailed records a per-thread failure. Auth errors abort the run;
// everything else skips the thread, to be reconsidered next run if it is
// still inside the window.
func (s *Scanner) threadFailed(th slackio.Thread, stage string, err error, summary *Summary) (bool, error) {
	if errs.IsAuth(err) {
		return true, fmt.Errorf("scan aborted at thread %s (%s): %w", th.RootMessageID, stage, err)
	}
	logrus.Warnf("Skipping thread %s after %s failure: %v", th.RootMessageID, stage, err)
	summary.Failed++
	return false, nil
}
