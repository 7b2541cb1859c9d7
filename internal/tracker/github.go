package tracker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/go-github/v56/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/support-watchlist-bot/internal/errs"
	"github.com/support-watchlist-bot/internal/utils"
)

// GitHub implements Gateway against the GitHub issues API.
type GitHub struct {
	client *github.Client
	retry  utils.RetryConfig
}

// NewGitHub creates a gateway authenticated with the given token.
func NewGitHub(token string) (*GitHub, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &GitHub{
		client: github.NewClient(tc),
		retry:  utils.DefaultRetryConfig(),
	}, nil
}

// IssueStatus fetches the current state of the referenced issue.
func (g *GitHub) IssueStatus(ctx context.Context, ref Ref) (IssueStatus, error) {
	owner, name, err := splitRepo(ref.Repo)
	if err != nil {
		return IssueStatus{}, err
	}

	var issue *github.Issue
	err = utils.RetryWithBackoff(ctx, g.retry, func() error {
		var apiErr error
		issue, _, apiErr = g.client.Issues.Get(ctx, owner, name, ref.Number)
		return classifyErr(apiErr)
	})
	if err != nil {
		return IssueStatus{}, fmt.Errorf("issue %s: %w", ref, err)
	}

	status := IssueStatus{Open: issue.GetState() == "open"}
	for _, l := range issue.Labels {
		status.Labels = append(status.Labels, l.GetName())
	}
	return status, nil
}

// AddLabel applies the label to the issue. GitHub treats adding an
// already-present label as a no-op, so the call is idempotent.
func (g *GitHub) AddLabel(ctx context.Context, ref Ref, label string) error {
	owner, name, err := splitRepo(ref.Repo)
	if err != nil {
		return err
	}

	err = utils.RetryWithBackoff(ctx, g.retry, func() error {
		_, _, apiErr := g.client.Issues.AddLabelsToIssue(ctx, owner, name, ref.Number, []string{label})
		return classifyErr(apiErr)
	})
	if err != nil {
		return fmt.Errorf("add label %q to issue %s: %w", label, ref, err)
	}

	logrus.Infof("Added label %q to issue %s", label, ref)
	return nil
}

// CreateIssue opens a new issue and returns its reference and HTML URL.
func (g *GitHub) CreateIssue(ctx context.Context, issue NewIssue) (Ref, string, error) {
	owner, name, err := splitRepo(issue.Repo)
	if err != nil {
		return Ref{}, "", err
	}

	req := &github.IssueRequest{
		Title: github.String(issue.Title),
		Body:  github.String(issue.Body),
	}
	if len(issue.Labels) > 0 {
		req.Labels = &issue.Labels
	}
	if len(issue.Assignees) > 0 {
		req.Assignees = &issue.Assignees
	}

	var created *github.Issue
	err = utils.RetryWithBackoff(ctx, g.retry, func() error {
		var apiErr error
		created, _, apiErr = g.client.Issues.Create(ctx, owner, name, req)
		return classifyErr(apiErr)
	})
	if err != nil {
		return Ref{}, "", fmt.Errorf("create issue %q: %w", issue.Title, err)
	}

	ref := Ref{Repo: issue.Repo, Number: created.GetNumber()}
	logrus.Infof("Created issue %s: %s", ref, created.GetHTMLURL())
	return ref, created.GetHTMLURL(), nil
}

func splitRepo(repo string) (string, string, error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format %q, expected 'owner/repo'", repo)
	}
	return parts[0], parts[1], nil
}

// classifyErr maps go-github errors onto the shared taxonomy.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return errs.Transient(err)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return errs.Transient(err)
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch code := ghErr.Response.StatusCode; {
		case code == http.StatusUnauthorized:
			return errs.Auth(err)
		case code == http.StatusForbidden:
			// 403 is both "bad credentials" and "rate limit exceeded".
			if strings.Contains(strings.ToLower(ghErr.Message), "rate limit") {
				return errs.Transient(err)
			}
			return errs.Auth(err)
		case code == http.StatusNotFound || code == http.StatusGone:
			return errs.NotFound(err)
		case code == http.StatusTooManyRequests || code >= 500:
			return errs.Transient(err)
		default:
			return err
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return errs.Transient(err)
	}
	return errs.Transient(err)
}
