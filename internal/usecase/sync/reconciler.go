// Package sync reconciles GitHub's assigned, open issues into the
// external tracking table by creating the records the table is missing.
package sync

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bkyoung/thearesia/internal/domain"
)

// DefaultRetryInterval is the fixed wait between attempts when the
// tracking table answers 429. The retry is deliberately unbounded: a
// rate-limited pass blocks until the table accepts the write.
const DefaultRetryInterval = 5 * time.Second

// IssueLister yields every open, assigned issue visible to the bot.
// Pagination is the lister's problem; the engine sees all pages' items.
type IssueLister interface {
	ListAssignedIssues(ctx context.Context) ([]domain.AssignedIssue, error)
}

// TrackingTable is the external table surface. CreateRecord hands back
// the raw status and body so the engine owns the retry policy.
type TrackingTable interface {
	ListRecords(ctx context.Context) ([]domain.TrackedIssue, error)
	CreateRecord(ctx context.Context, record domain.TrackedIssue) (statusCode int, body []byte, err error)
}

// StatusError is a fatal, non-rate-limit response from the tracking
// table. It carries the status and body unchanged for the caller.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tracking table returned %d: %s", e.StatusCode, e.Body)
}

// Reconciler computes and closes the gap between the live issue set and
// the tracking table.
type Reconciler struct {
	issues        IssueLister
	table         TrackingTable
	retryInterval time.Duration
}

// NewReconciler wires a reconciler over the two remote collaborators.
func NewReconciler(issues IssueLister, table TrackingTable) *Reconciler {
	return &Reconciler{
		issues:        issues,
		table:         table,
		retryInterval: DefaultRetryInterval,
	}
}

// SetRetryInterval overrides the rate-limit backoff (for testing).
func (r *Reconciler) SetRetryInterval(d time.Duration) {
	r.retryInterval = d
}

// Run executes one reconciliation pass.
//
// Live issues whose URL contains /pull are excluded (the assigned query
// also returns pull requests); tracked records already marked Completed
// are excluded from the differencing set. The difference is keyed on the
// issue URL alone. Records created before a fatal response stay created;
// there is no rollback.
func (r *Reconciler) Run(ctx context.Context) error {
	live, err := r.issues.ListAssignedIssues(ctx)
	if err != nil {
		return fmt.Errorf("list assigned issues: %w", err)
	}

	tracked, err := r.table.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("list tracked records: %w", err)
	}

	missing := diffRecords(liveSet(live), trackedSet(tracked))
	if len(missing) == 0 {
		log.Printf("sync: tracking table is up to date (%d live issues)", len(live))
		return nil
	}

	for _, record := range missing {
		if err := r.createWithRetry(ctx, record); err != nil {
			return err
		}
		log.Printf("sync: tracked %s", record.IssueURL)
	}

	return nil
}

// createWithRetry blocks on 429 responses, sleeping a fixed interval and
// retrying the same record without an attempt cap. Any other non-2xx
// status aborts the whole pass.
func (r *Reconciler) createWithRetry(ctx context.Context, record domain.TrackedIssue) error {
	for {
		status, body, err := r.table.CreateRecord(ctx, record)
		if err != nil {
			return fmt.Errorf("create record for %s: %w", record.IssueURL, err)
		}

		switch {
		case status == http.StatusTooManyRequests:
			log.Printf("sync: rate limited creating %s, retrying in %s", record.IssueURL, r.retryInterval)
			select {
			case <-time.After(r.retryInterval):
			case <-ctx.Done():
				return ctx.Err()
			}
		case status >= 200 && status < 300:
			return nil
		default:
			return &StatusError{StatusCode: status, Body: body}
		}
	}
}

// liveSet maps open, assigned, non-PR issues into would-be table rows
// keyed on issue URL.
func liveSet(issues []domain.AssignedIssue) map[string]domain.TrackedIssue {
	set := make(map[string]domain.TrackedIssue, len(issues))
	for _, issue := range issues {
		if strings.Contains(issue.HTMLURL, "/pull") {
			continue
		}
		set[issue.HTMLURL] = domain.TrackedIssue{
			Status:   domain.TrackedStatusAssigned,
			IssueURL: issue.HTMLURL,
			Opened:   issue.CreatedAt,
			Repo:     issue.RepoFullName,
			Title:    issue.Title,
		}
	}
	return set
}

// trackedSet keys the table's current rows on issue URL, dropping rows
// already marked Completed. A completed issue that is still open on the
// tracker will therefore be re-created; status transitions belong to the
// table's operators, not to this engine.
func trackedSet(records []domain.TrackedIssue) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for _, record := range records {
		if record.Status == domain.TrackedStatusCompleted {
			continue
		}
		set[record.Key()] = struct{}{}
	}
	return set
}

// diffRecords returns live − tracked. Iteration order of the result is
// unspecified; records are independent and keyed uniquely.
func diffRecords(live map[string]domain.TrackedIssue, tracked map[string]struct{}) []domain.TrackedIssue {
	var missing []domain.TrackedIssue
	for key, record := range live {
		if _, ok := tracked[key]; !ok {
			missing = append(missing, record)
		}
	}
	return missing
}
