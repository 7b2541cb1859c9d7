// Package workflow reacts to Slack workflow submissions by opening a
// tracker issue and replying in the originating thread with the issue link.
package workflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/support-watchlist-bot/internal/tracker"
)

const maxTitleLength = 80

var mentionPattern = regexp.MustCompile(`<@([A-Z0-9]+)>`)

// Replier posts a reply into a Slack thread.
type Replier interface {
	ReplyInThread(ctx context.Context, channelID, threadTS, text string) error
}

// Config holds the creator's policy.
type Config struct {
	ChannelID     string   // channel the workflow posts into
	WorkflowBotID string   // bot ID of the workflow integration
	Repo          string   // "owner/name" for created issues
	Labels        []string // labels applied to created issues
	Assignees     []string
}

// Creator handles workflow submission events. Each event is independent and
// stateless: one submission creates at most one issue, and nothing is
// shared between events.
type Creator struct {
	socket  *socketmode.Client
	replier Replier
	tracker tracker.Gateway
	cfg     Config
}

// New creates a Creator. socket may be nil when events are delivered
// directly through HandleMessage, as in tests.
func New(socket *socketmode.Client, replier Replier, gateway tracker.Gateway, cfg Config) *Creator {
	return &Creator{
		socket:  socket,
		replier: replier,
		tracker: gateway,
		cfg:     cfg,
	}
}

// Run connects to Slack over Socket Mode and dispatches events until ctx is
// canceled.
func (c *Creator) Run(ctx context.Context) error {
	go c.dispatch(ctx)
	return c.socket.RunContext(ctx)
}

func (c *Creator) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-c.socket.Events:
			if !ok {
				return
			}
			switch evt.Type {
			case socketmode.EventTypeConnecting:
				logrus.Debug("Connecting to Slack over Socket Mode")
			case socketmode.EventTypeConnected:
				logrus.Info("Connected to Slack over Socket Mode")
			case socketmode.EventTypeConnectionError:
				logrus.Warnf("Socket Mode connection error: %v", evt.Data)
			case socketmode.EventTypeEventsAPI:
				apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				if evt.Request != nil {
					c.socket.Ack(*evt.Request)
				}
				c.handleEventsAPI(ctx, apiEvent)
			}
		}
	}
}

func (c *Creator) handleEventsAPI(ctx context.Context, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	ev, ok := event.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		return
	}
	if err := c.HandleMessage(ctx, ev); err != nil {
		logrus.Errorf("Failed to handle workflow submission %s: %v", ev.TimeStamp, err)
	}
}

// HandleMessage creates an issue for a workflow submission message and
// replies in its thread. Messages from other channels, other bots or thread
// replies are ignored.
func (c *Creator) HandleMessage(ctx context.Context, ev *slackevents.MessageEvent) error {
	if ev.Channel != c.cfg.ChannelID {
		return nil
	}
	if ev.BotID == "" || ev.BotID != c.cfg.WorkflowBotID {
		return nil
	}
	if ev.ThreadTimeStamp != "" && ev.ThreadTimeStamp != ev.TimeStamp {
		return nil
	}

	title, body := splitSubmission(ev.Text)
	if title == "" {
		logrus.Debugf("Workflow message %s has no text, ignoring", ev.TimeStamp)
		return nil
	}

	ref, url, err := c.tracker.CreateIssue(ctx, tracker.NewIssue{
		Repo:      c.cfg.Repo,
		Title:     title,
		Body:      body,
		Labels:    c.cfg.Labels,
		Assignees: c.cfg.Assignees,
	})
	if err != nil {
		return fmt.Errorf("create issue for submission %s: %w", ev.TimeStamp, err)
	}

	reply := formatReply(submitterMention(ev.Text), url, title, ref)
	if err := c.replier.ReplyInThread(ctx, ev.Channel, ev.TimeStamp, reply); err != nil {
		return fmt.Errorf("reply for submission %s: %w", ev.TimeStamp, err)
	}

	logrus.Infof("Created issue %s for workflow submission %s", ref, ev.TimeStamp)
	return nil
}

// splitSubmission derives the issue title from the first line of the
// submission text; the body is the full text.
func splitSubmission(text string) (title, body string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ""
	}
	title = trimmed
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		title = strings.TrimSpace(trimmed[:idx])
	}
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength-3] + "..."
	}
	return title, trimmed
}

// submitterMention returns the first user mention in the submission text.
// Workflow posts carry the submitting user as a mention in the rendered
// message.
func submitterMention(text string) string {
	if m := mentionPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func formatReply(userID, url, title string, ref tracker.Ref) string {
	link := fmt.Sprintf("<%s|%s>", url, title)
	if url == "" {
		link = ref.String()
	}
	if userID != "" {
		return fmt.Sprintf("Hi there, <@%s>! We created GitHub issue %s for you!", userID, link)
	}
	return fmt.Sprintf("We created GitHub issue %s for this submission.", link)
}
