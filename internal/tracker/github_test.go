package tracker

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-github/v56/github"

	"github.com/support-watchlist-bot/internal/errs"
)

func TestNewGitHub(t *testing.T) {
	if _, err := NewGitHub(""); err == nil {
		t.Errorf("Expected error for missing token")
	}
	g, err := NewGitHub("ghp_test")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if g == nil {
		t.Fatal("Expected gateway but got nil")
	}
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		repo        string
		owner, name string
		expectError bool
	}{
		{repo: "org/repo", owner: "org", name: "repo"},
		{repo: "invalid-repo", expectError: true},
		{repo: "too/many/parts", expectError: true},
		{repo: "/repo", expectError: true},
		{repo: "org/", expectError: true},
		{repo: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.repo, func(t *testing.T) {
			owner, name, err := splitRepo(tt.repo)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %q", tt.repo)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if owner != tt.owner || name != tt.name {
				t.Errorf("splitRepo(%q) = %q, %q", tt.repo, owner, name)
			}
		})
	}
}

func ghResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Request:    &http.Request{Method: http.MethodGet, URL: &url.URL{Path: "/repos/org/repo/issues/42"}},
	}
}

func ghError(status int, message string) error {
	return &github.ErrorResponse{
		Response: ghResponse(status),
		Message:  message,
	}
}

func TestClassifyErr(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"nil stays nil", nil, func(err error) bool { return err == nil }},
		{"401 is auth", ghError(http.StatusUnauthorized, "Bad credentials"), errs.IsAuth},
		{"403 credentials is auth", ghError(http.StatusForbidden, "Resource not accessible"), errs.IsAuth},
		{"403 rate limit is transient", ghError(http.StatusForbidden, "API rate limit exceeded"), errs.IsTransient},
		{"404 is not found", ghError(http.StatusNotFound, "Not Found"), errs.IsNotFound},
		{"410 is not found", ghError(http.StatusGone, "Issue was deleted"), errs.IsNotFound},
		{"429 is transient", ghError(http.StatusTooManyRequests, "too many requests"), errs.IsTransient},
		{"502 is transient", ghError(http.StatusBadGateway, "bad gateway"), errs.IsTransient},
		{"rate limit error is transient", &github.RateLimitError{Response: ghResponse(http.StatusForbidden)}, errs.IsTransient},
		{"abuse rate limit error is transient", &github.AbuseRateLimitError{Response: ghResponse(http.StatusForbidden)}, errs.IsTransient},
		{"plain network error is transient", errors.New("connection reset"), errs.IsTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyErr(tt.err); !tt.check(got) {
				t.Errorf("classifyErr(%v) = %v, wrong class", tt.err, got)
			}
		})
	}
}

func TestClassifyErrValidationPassesThrough(t *testing.T) {
	err := classifyErr(ghError(http.StatusUnprocessableEntity, "Validation Failed"))
	if errs.IsAuth(err) || errs.IsNotFound(err) || errs.IsTransient(err) {
		t.Errorf("Validation errors must keep their own class, got %v", err)
	}
	if err == nil {
		t.Error("Expected error to pass through")
	}
}
