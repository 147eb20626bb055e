package sync_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/thearesia/internal/domain"
	"github.com/bkyoung/thearesia/internal/usecase/sync"
)

type fakeLister struct {
	issues []domain.AssignedIssue
	err    error
}

func (f *fakeLister) ListAssignedIssues(ctx context.Context) ([]domain.AssignedIssue, error) {
	return f.issues, f.err
}

// createResult scripts one CreateRecord response.
type createResult struct {
	status int
	body   []byte
	err    error
}

type fakeTable struct {
	records []domain.TrackedIssue
	listErr error

	// responses are consumed per create call; when exhausted, creates
	// succeed with 200.
	responses []createResult
	created   []domain.TrackedIssue
	attempts  int
}

func (f *fakeTable) ListRecords(ctx context.Context) ([]domain.TrackedIssue, error) {
	return f.records, f.listErr
}

func (f *fakeTable) CreateRecord(ctx context.Context, record domain.TrackedIssue) (int, []byte, error) {
	f.attempts++
	if len(f.responses) > 0 {
		resp := f.responses[0]
		f.responses = f.responses[1:]
		if resp.status >= 200 && resp.status < 300 && resp.err == nil {
			f.created = append(f.created, record)
		}
		return resp.status, resp.body, resp.err
	}
	f.created = append(f.created, record)
	return http.StatusOK, nil, nil
}

func issue(url string) domain.AssignedIssue {
	return domain.AssignedIssue{
		HTMLURL:      url,
		CreatedAt:    "2024-01-15T10:00:00Z",
		RepoFullName: "octocat/hello-world",
		Title:        "something broke",
	}
}

func TestRun_CreatesOnlyMissingRecords(t *testing.T) {
	lister := &fakeLister{issues: []domain.AssignedIssue{
		issue("https://github.com/octocat/hello-world/issues/1"),
		issue("https://github.com/octocat/hello-world/issues/2"),
	}}
	table := &fakeTable{records: []domain.TrackedIssue{
		{Status: domain.TrackedStatusAssigned, IssueURL: "https://github.com/octocat/hello-world/issues/1"},
	}}

	reconciler := sync.NewReconciler(lister, table)
	require.NoError(t, reconciler.Run(context.Background()))

	require.Len(t, table.created, 1)
	assert.Equal(t, "https://github.com/octocat/hello-world/issues/2", table.created[0].IssueURL)
	assert.Equal(t, domain.TrackedStatusAssigned, table.created[0].Status)
	assert.Empty(t, table.created[0].Closed)
}

func TestRun_ExcludesPullRequests(t *testing.T) {
	lister := &fakeLister{issues: []domain.AssignedIssue{
		issue("https://github.com/octocat/hello-world/pull/3"),
		issue("https://github.com/octocat/hello-world/issues/4"),
	}}
	table := &fakeTable{}

	reconciler := sync.NewReconciler(lister, table)
	require.NoError(t, reconciler.Run(context.Background()))

	require.Len(t, table.created, 1)
	assert.Equal(t, "https://github.com/octocat/hello-world/issues/4", table.created[0].IssueURL)
}

func TestRun_CompletedRecordsAreNotInTrackedSet(t *testing.T) {
	// A record flipped to Completed leaves the differencing set, so a
	// still-open issue with the same URL is re-created. Status ownership
	// lives with the table's operators; this is intended behavior.
	url := "https://github.com/octocat/hello-world/issues/5"
	lister := &fakeLister{issues: []domain.AssignedIssue{issue(url)}}
	table := &fakeTable{records: []domain.TrackedIssue{
		{Status: domain.TrackedStatusCompleted, IssueURL: url},
	}}

	reconciler := sync.NewReconciler(lister, table)
	require.NoError(t, reconciler.Run(context.Background()))

	require.Len(t, table.created, 1)
	assert.Equal(t, url, table.created[0].IssueURL)
}

func TestRun_RateLimitRetriesUntilSuccess(t *testing.T) {
	lister := &fakeLister{issues: []domain.AssignedIssue{
		issue("https://github.com/octocat/hello-world/issues/6"),
	}}
	table := &fakeTable{responses: []createResult{
		{status: http.StatusTooManyRequests},
		{status: http.StatusTooManyRequests},
		{status: http.StatusTooManyRequests},
		{status: http.StatusOK},
	}}

	reconciler := sync.NewReconciler(lister, table)
	reconciler.SetRetryInterval(time.Millisecond)
	require.NoError(t, reconciler.Run(context.Background()))

	assert.Equal(t, 4, table.attempts)
	assert.Len(t, table.created, 1)
}

func TestRun_UnexpectedStatusIsFatal(t *testing.T) {
	lister := &fakeLister{issues: []domain.AssignedIssue{
		issue("https://github.com/octocat/hello-world/issues/7"),
	}}
	table := &fakeTable{responses: []createResult{
		{status: http.StatusUnprocessableEntity, body: []byte(`{"error":"INVALID_VALUE_FOR_COLUMN"}`)},
	}}

	reconciler := sync.NewReconciler(lister, table)
	err := reconciler.Run(context.Background())

	var statusErr *sync.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.StatusCode)
	assert.Equal(t, []byte(`{"error":"INVALID_VALUE_FOR_COLUMN"}`), statusErr.Body)
	assert.Equal(t, 1, table.attempts)
}

func TestRun_FatalStatusKeepsEarlierCreations(t *testing.T) {
	lister := &fakeLister{issues: []domain.AssignedIssue{
		issue("https://github.com/octocat/hello-world/issues/8"),
		issue("https://github.com/octocat/hello-world/issues/9"),
	}}
	table := &fakeTable{responses: []createResult{
		{status: http.StatusOK},
		{status: http.StatusForbidden, body: []byte("nope")},
	}}

	reconciler := sync.NewReconciler(lister, table)
	err := reconciler.Run(context.Background())

	var statusErr *sync.StatusError
	require.ErrorAs(t, err, &statusErr)
	// The record created before the fatal response stays created.
	assert.Len(t, table.created, 1)
}

func TestRun_ContextCancelStopsRetryLoop(t *testing.T) {
	lister := &fakeLister{issues: []domain.AssignedIssue{
		issue("https://github.com/octocat/hello-world/issues/10"),
	}}
	table := &fakeTable{responses: []createResult{
		{status: http.StatusTooManyRequests},
		{status: http.StatusTooManyRequests},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reconciler := sync.NewReconciler(lister, table)
	reconciler.SetRetryInterval(time.Hour)
	err := reconciler.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_ListerFailureIsFatal(t *testing.T) {
	lister := &fakeLister{err: errors.New("boom")}
	table := &fakeTable{}

	reconciler := sync.NewReconciler(lister, table)
	err := reconciler.Run(context.Background())

	require.Error(t, err)
	assert.Zero(t, table.attempts)
}

func TestRun_UpToDateTableMakesNoCreates(t *testing.T) {
	url := "https://github.com/octocat/hello-world/issues/11"
	lister := &fakeLister{issues: []domain.AssignedIssue{issue(url)}}
	table := &fakeTable{records: []domain.TrackedIssue{
		{Status: domain.TrackedStatusAssigned, IssueURL: url, Title: "different title is fine"},
	}}

	reconciler := sync.NewReconciler(lister, table)
	require.NoError(t, reconciler.Run(context.Background()))

	assert.Zero(t, table.attempts)
}
