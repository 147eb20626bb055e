package domain

import (
	"fmt"
	"strings"
)

// Comment is the free-text body of an issue or PR comment together with
// the login of its author. Read-only once constructed.
type Comment struct {
	Body        string
	AuthorLogin string
}

// IssueRef locates a single issue or pull request on the tracker.
type IssueRef struct {
	Owner  string
	Repo   string
	Number int
}

// String renders the ref as owner/repo#number for logging.
func (r IssueRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// ParseIssueRef extracts owner and repo from a repository API URL of the
// fixed shape https://api.github.com/repos/{owner}/{repo}. A URL that does
// not carry both segments is an error; the caller drops the command.
func ParseIssueRef(repositoryURL string, number int) (IssueRef, error) {
	parts := strings.Split(repositoryURL, "/")

	// scheme, empty, host, "repos" precede the owner segment
	if len(parts) < 6 {
		return IssueRef{}, fmt.Errorf("malformed repository url %q", repositoryURL)
	}

	owner, repo := parts[4], parts[5]
	if owner == "" || repo == "" {
		return IssueRef{}, fmt.Errorf("malformed repository url %q", repositoryURL)
	}

	return IssueRef{Owner: owner, Repo: repo, Number: number}, nil
}

// Review is a bot-visible review record on a pull request. Fetched fresh
// from the tracker on every invocation, never cached.
type Review struct {
	ID          int64
	AuthorLogin string
}
