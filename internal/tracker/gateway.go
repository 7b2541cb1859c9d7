// Package tracker talks to the issue tracker: checking issue state,
// applying labels and creating issues.
package tracker

import (
	"context"
	"fmt"
)

// Ref identifies an issue in a repository.
type Ref struct {
	Repo   string // "owner/name"
	Number int
}

func (r Ref) String() string {
	return fmt.Sprintf("%s#%d", r.Repo, r.Number)
}

// IssueStatus is the open/closed state and label set of an issue, fetched
// fresh per scan and never cached.
type IssueStatus struct {
	Open   bool
	Labels []string
}

// NewIssue holds the fields of an issue to create.
type NewIssue struct {
	Repo      string // "owner/name"
	Title     string
	Body      string
	Labels    []string
	Assignees []string
}

// Gateway defines the issue tracker operations. IssueStatus fails with
// errs.ErrNotFound when the issue no longer exists; AddLabel is idempotent,
// applying an already-present label is a no-op.
type Gateway interface {
	IssueStatus(ctx context.Context, ref Ref) (IssueStatus, error)
	AddLabel(ctx context.Context, ref Ref, label string) error
	CreateIssue(ctx context.Context, issue NewIssue) (Ref, string, error)
}
