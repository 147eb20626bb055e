// Package review turns recognized operator commands into authorized,
// idempotent mutations against the issue tracker.
package review

import (
	"context"
	"fmt"
	"log"

	"github.com/bkyoung/thearesia/internal/domain"
)

// Verdict is the review event submitted to the tracker.
type Verdict string

const (
	VerdictApprove        Verdict = "APPROVE"
	VerdictRequestChanges Verdict = "REQUEST_CHANGES"
)

// TrackerClient is the tracker surface the engine mutates through.
// Implemented by the GitHub adapter; faked in tests.
type TrackerClient interface {
	AddAssignees(ctx context.Context, ref domain.IssueRef, logins []string) error
	RemoveAssignees(ctx context.Context, ref domain.IssueRef, logins []string) error
	GetPermissionLevel(ctx context.Context, ref domain.IssueRef, login string) (string, error)
	ListReviews(ctx context.Context, ref domain.IssueRef) ([]domain.Review, error)
	DeleteReview(ctx context.Context, ref domain.IssueRef, reviewID int64) error
	CreateReview(ctx context.Context, ref domain.IssueRef, event, body string) error
}

// CommandRequest carries one parsed command together with its originating
// issue and comment. Assignees is the current assignee list as reported
// by the webhook delivery.
type CommandRequest struct {
	Command   domain.Command
	Ref       domain.IssueRef
	Comment   domain.Comment
	Assignees []string
}

// Engine is the review state machine. Each invocation performs at most
// one class of side effect; every branch is independently idempotent, so
// webhook re-delivery never creates duplicate state.
type Engine struct {
	client   TrackerClient
	botLogin string
}

// NewEngine creates an engine mutating through client. botLogin is the
// bot's own tracker account, used to find its prior review.
func NewEngine(client TrackerClient, botLogin string) *Engine {
	return &Engine{client: client, botLogin: botLogin}
}

// HandleCommand executes the state transition for one command. Remote
// failures are logged and stop only the branch they occur in; nothing
// here aborts the process.
func (e *Engine) HandleCommand(ctx context.Context, req CommandRequest) {
	switch req.Command.Kind {
	case domain.CommandChangeReviewer:
		e.changeReviewer(ctx, req)
	case domain.CommandAcceptPr:
		e.submitVerdict(ctx, req, VerdictApprove)
	case domain.CommandRollup:
		// Recognized production with no mutating handler.
		log.Printf("%s: rollup requested by %s (not implemented)", req.Ref, req.Comment.AuthorLogin)
	case domain.CommandRejectPr:
		e.submitVerdict(ctx, req, VerdictRequestChanges)
	case domain.CommandClosePr:
		// Recognized production with no mutating handler.
		log.Printf("%s: close requested by %s (not implemented)", req.Ref, req.Comment.AuthorLogin)
	default:
		log.Printf("%s: comment ignored, no command recognized", req.Ref)
	}
}

// changeReviewer replaces the entire assignee set with the named login.
// Unassign-before-assign is intentional: the reviewer set must end up as
// exactly {login}, never a superset. Both steps are best-effort.
func (e *Engine) changeReviewer(ctx context.Context, req CommandRequest) {
	if len(req.Assignees) > 0 {
		if err := e.client.RemoveAssignees(ctx, req.Ref, req.Assignees); err != nil {
			log.Printf("%s: failed to remove assignees: %v", req.Ref, err)
		}
	}

	if err := e.client.AddAssignees(ctx, req.Ref, []string{req.Command.Reviewer}); err != nil {
		log.Printf("%s: failed to assign %s: %v", req.Ref, req.Command.Reviewer, err)
		return
	}

	log.Printf("%s: assigned reviewer %s", req.Ref, req.Command.Reviewer)
}

// submitVerdict gates on the commenter's repository permission, then
// replaces the bot's prior review with one carrying the new verdict.
//
// Delete-then-create is deliberate: review verdicts cannot be edited in
// place, so replacing collapses any history of flip-flopped verdicts into
// the single current one. When no prior bot review exists the command is
// a silent no-op.
func (e *Engine) submitVerdict(ctx context.Context, req CommandRequest, verdict Verdict) {
	user := req.Comment.AuthorLogin

	level, err := e.client.GetPermissionLevel(ctx, req.Ref, user)
	if err != nil {
		log.Printf("%s: permission lookup for %s failed: %v", req.Ref, user, err)
		return
	}
	if level != "admin" && level != "write" {
		log.Printf("%s: %s lacks permission for review commands (has %q)", req.Ref, user, level)
		return
	}

	reviews, err := e.client.ListReviews(ctx, req.Ref)
	if err != nil {
		log.Printf("%s: listing reviews failed: %v", req.Ref, err)
		return
	}

	prior, ok := latestBotReview(reviews, e.botLogin)
	if !ok {
		log.Printf("%s: no prior bot review, %s is a no-op", req.Ref, req.Command.Kind)
		return
	}

	// A failed delete is logged but does not stop the create: the new
	// verdict must land even if the stale review could not be removed.
	if err := e.client.DeleteReview(ctx, req.Ref, prior.ID); err != nil {
		log.Printf("%s: failed to delete review %d: %v", req.Ref, prior.ID, err)
	}

	if err := e.client.CreateReview(ctx, req.Ref, string(verdict), verdictBody(verdict, user)); err != nil {
		log.Printf("%s: failed to create %s review: %v", req.Ref, verdict, err)
		return
	}

	log.Printf("%s: review %s submitted on behalf of %s", req.Ref, verdict, user)
}

// latestBotReview returns the most recent review authored by the bot.
// Reviews arrive oldest first, so the last match wins.
func latestBotReview(reviews []domain.Review, botLogin string) (domain.Review, bool) {
	var found domain.Review
	var ok bool
	for _, r := range reviews {
		if r.AuthorLogin == botLogin {
			found = r
			ok = true
		}
	}
	return found, ok
}

func verdictBody(verdict Verdict, user string) string {
	if verdict == VerdictApprove {
		return fmt.Sprintf("PR has been approved by `%s`", user)
	}
	return fmt.Sprintf("PR has been denied by `%s`. Please take a look at their comments as to why it was denied.", user)
}
