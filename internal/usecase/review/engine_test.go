package review_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/thearesia/internal/domain"
	"github.com/bkyoung/thearesia/internal/usecase/review"
)

// fakeTracker records every mutation and serves canned lookups.
type fakeTracker struct {
	permission    string
	permissionErr error
	reviews       []domain.Review
	listErr       error

	removeErr error
	addErr    error
	deleteErr error
	createErr error

	removed [][]string
	added   [][]string
	deleted []int64
	created []createdReview
}

type createdReview struct {
	event string
	body  string
}

func (f *fakeTracker) AddAssignees(ctx context.Context, ref domain.IssueRef, logins []string) error {
	f.added = append(f.added, logins)
	return f.addErr
}

func (f *fakeTracker) RemoveAssignees(ctx context.Context, ref domain.IssueRef, logins []string) error {
	f.removed = append(f.removed, logins)
	return f.removeErr
}

func (f *fakeTracker) GetPermissionLevel(ctx context.Context, ref domain.IssueRef, login string) (string, error) {
	return f.permission, f.permissionErr
}

func (f *fakeTracker) ListReviews(ctx context.Context, ref domain.IssueRef) ([]domain.Review, error) {
	return f.reviews, f.listErr
}

func (f *fakeTracker) DeleteReview(ctx context.Context, ref domain.IssueRef, reviewID int64) error {
	f.deleted = append(f.deleted, reviewID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	// Mimic the tracker: a deleted review disappears from later lists.
	var remaining []domain.Review
	for _, r := range f.reviews {
		if r.ID != reviewID {
			remaining = append(remaining, r)
		}
	}
	f.reviews = remaining
	return nil
}

func (f *fakeTracker) CreateReview(ctx context.Context, ref domain.IssueRef, event, body string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, createdReview{event: event, body: body})
	f.reviews = append(f.reviews, domain.Review{ID: int64(1000 + len(f.created)), AuthorLogin: "thearesia"})
	return nil
}

func testRef() domain.IssueRef {
	return domain.IssueRef{Owner: "octocat", Repo: "hello-world", Number: 42}
}

func TestChangeReviewer_ReplacesAssigneeSet(t *testing.T) {
	tracker := &fakeTracker{}
	engine := review.NewEngine(tracker, "thearesia")

	engine.HandleCommand(context.Background(), review.CommandRequest{
		Command:   domain.Command{Kind: domain.CommandChangeReviewer, Reviewer: "alice"},
		Ref:       testRef(),
		Comment:   domain.Comment{AuthorLogin: "bob"},
		Assignees: []string{"carol", "dave"},
	})

	require.Len(t, tracker.removed, 1)
	assert.Equal(t, []string{"carol", "dave"}, tracker.removed[0])
	require.Len(t, tracker.added, 1)
	assert.Equal(t, []string{"alice"}, tracker.added[0])
}

func TestChangeReviewer_NoCurrentAssignees(t *testing.T) {
	tracker := &fakeTracker{}
	engine := review.NewEngine(tracker, "thearesia")

	engine.HandleCommand(context.Background(), review.CommandRequest{
		Command: domain.Command{Kind: domain.CommandChangeReviewer, Reviewer: "alice"},
		Ref:     testRef(),
	})

	assert.Empty(t, tracker.removed)
	require.Len(t, tracker.added, 1)
	assert.Equal(t, []string{"alice"}, tracker.added[0])
}

func TestChangeReviewer_AssignAttemptedAfterRemoveFailure(t *testing.T) {
	tracker := &fakeTracker{removeErr: errors.New("boom")}
	engine := review.NewEngine(tracker, "thearesia")

	engine.HandleCommand(context.Background(), review.CommandRequest{
		Command:   domain.Command{Kind: domain.CommandChangeReviewer, Reviewer: "alice"},
		Ref:       testRef(),
		Assignees: []string{"carol"},
	})

	require.Len(t, tracker.added, 1)
	assert.Equal(t, []string{"alice"}, tracker.added[0])
}

func TestAccept_ReplacesBotReview(t *testing.T) {
	tracker := &fakeTracker{
		permission: "write",
		reviews: []domain.Review{
			{ID: 7, AuthorLogin: "human"},
			{ID: 9, AuthorLogin: "thearesia"},
		},
	}
	engine := review.NewEngine(tracker, "thearesia")

	engine.HandleCommand(context.Background(), review.CommandRequest{
		Command: domain.Command{Kind: domain.CommandAcceptPr},
		Ref:     testRef(),
		Comment: domain.Comment{AuthorLogin: "alice"},
	})

	require.Equal(t, []int64{9}, tracker.deleted)
	require.Len(t, tracker.created, 1)
	assert.Equal(t, string(review.VerdictApprove), tracker.created[0].event)
	assert.Contains(t, tracker.created[0].body, "`alice`")
}

func TestAccept_PicksMostRecentBotReview(t *testing.T) {
	tracker := &fakeTracker{
		permission: "admin",
		reviews: []domain.Review{
			{ID: 3, AuthorLogin: "thearesia"},
			{ID: 5, AuthorLogin: "human"},
			{ID: 8, AuthorLogin: "thearesia"},
		},
	}
	engine := review.NewEngine(tracker, "thearesia")

	engine.HandleCommand(context.Background(), review.CommandRequest{
		Command: domain.Command{Kind: domain.CommandAcceptPr},
		Ref:     testRef(),
		Comment: domain.Comment{AuthorLogin: "alice"},
	})

	assert.Equal(t, []int64{8}, tracker.deleted)
}

func TestAccept_IdempotentAcrossRedelivery(t *testing.T) {
	tracker := &fakeTracker{
		permission: "write",
		reviews:    []domain.Review{{ID: 9, AuthorLogin: "thearesia"}},
	}
	engine := review.NewEngine(tracker, "thearesia")

	req := review.CommandRequest{
		Command: domain.Command{Kind: domain.CommandAcceptPr},
		Ref:     testRef(),
		Comment: domain.Comment{AuthorLogin: "alice"},
	}
	engine.HandleCommand(context.Background(), req)
	engine.HandleCommand(context.Background(), req)

	// Two invocations each delete the current bot review and create a
	// replacement: net result is exactly one bot review.
	var botReviews int
	for _, r := range tracker.reviews {
		if r.AuthorLogin == "thearesia" {
			botReviews++
		}
	}
	assert.Equal(t, 1, botReviews)
	assert.Len(t, tracker.created, 2)
	assert.Len(t, tracker.deleted, 2)
}

func TestReject_UsesRequestChanges(t *testing.T) {
	tracker := &fakeTracker{
		permission: "write",
		reviews:    []domain.Review{{ID: 4, AuthorLogin: "thearesia"}},
	}
	engine := review.NewEngine(tracker, "thearesia")

	engine.HandleCommand(context.Background(), review.CommandRequest{
		Command: domain.Command{Kind: domain.CommandRejectPr},
		Ref:     testRef(),
		Comment: domain.Comment{AuthorLogin: "alice"},
	})

	require.Len(t, tracker.created, 1)
	assert.Equal(t, string(review.VerdictRequestChanges), tracker.created[0].event)
	assert.Contains(t, tracker.created[0].body, "denied")
}

func TestVerdict_AuthorizationGate(t *testing.T) {
	for _, kind := range []domain.CommandKind{domain.CommandAcceptPr, domain.CommandRejectPr} {
		t.Run(kind.String(), func(t *testing.T) {
			tracker := &fakeTracker{
				permission: "read",
				reviews:    []domain.Review{{ID: 4, AuthorLogin: "thearesia"}},
			}
			engine := review.NewEngine(tracker, "thearesia")

			engine.HandleCommand(context.Background(), review.CommandRequest{
				Command: domain.Command{Kind: kind},
				Ref:     testRef(),
				Comment: domain.Comment{AuthorLogin: "mallory"},
			})

			assert.Empty(t, tracker.deleted)
			assert.Empty(t, tracker.created)
		})
	}
}

func TestVerdict_PermissionLookupFailureStopsBranch(t *testing.T) {
	tracker := &fakeTracker{permissionErr: errors.New("boom")}
	engine := review.NewEngine(tracker, "thearesia")

	engine.HandleCommand(context.Background(), review.CommandRequest{
		Command: domain.Command{Kind: domain.CommandAcceptPr},
		Ref:     testRef(),
		Comment: domain.Comment{AuthorLogin: "alice"},
	})

	assert.Empty(t, tracker.deleted)
	assert.Empty(t, tracker.created)
}

func TestVerdict_NoPriorBotReviewIsNoOp(t *testing.T) {
	tracker := &fakeTracker{
		permission: "write",
		reviews:    []domain.Review{{ID: 7, AuthorLogin: "human"}},
	}
	engine := review.NewEngine(tracker, "thearesia")

	engine.HandleCommand(context.Background(), review.CommandRequest{
		Command: domain.Command{Kind: domain.CommandAcceptPr},
		Ref:     testRef(),
		Comment: domain.Comment{AuthorLogin: "alice"},
	})

	assert.Empty(t, tracker.deleted)
	assert.Empty(t, tracker.created)
}

func TestRollup_IsExplicitNoOp(t *testing.T) {
	// Even with full permission and a replaceable bot review in place,
	// the rollup production mutates nothing.
	tracker := &fakeTracker{
		permission: "write",
		reviews:    []domain.Review{{ID: 4, AuthorLogin: "thearesia"}},
	}
	engine := review.NewEngine(tracker, "thearesia")

	engine.HandleCommand(context.Background(), review.CommandRequest{
		Command: domain.Command{Kind: domain.CommandRollup},
		Ref:     testRef(),
		Comment: domain.Comment{AuthorLogin: "alice"},
	})

	assert.Empty(t, tracker.added)
	assert.Empty(t, tracker.removed)
	assert.Empty(t, tracker.deleted)
	assert.Empty(t, tracker.created)
}

func TestClose_IsExplicitNoOp(t *testing.T) {
	tracker := &fakeTracker{}
	engine := review.NewEngine(tracker, "thearesia")

	engine.HandleCommand(context.Background(), review.CommandRequest{
		Command: domain.Command{Kind: domain.CommandClosePr},
		Ref:     testRef(),
		Comment: domain.Comment{AuthorLogin: "alice"},
	})

	assert.Empty(t, tracker.added)
	assert.Empty(t, tracker.removed)
	assert.Empty(t, tracker.deleted)
	assert.Empty(t, tracker.created)
}
