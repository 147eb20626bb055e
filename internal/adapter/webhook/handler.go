// Package webhook is the HTTP listener for tracker event deliveries. It
// validates the delivery envelope, classifies the event, and routes
// comment events into the review engine.
package webhook

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bkyoung/thearesia/internal/domain"
	"github.com/bkyoung/thearesia/internal/usecase/command"
	"github.com/bkyoung/thearesia/internal/usecase/review"
)

// hookshotPrefix is the User-Agent prefix GitHub stamps on every
// webhook delivery.
const hookshotPrefix = "GitHub-Hookshot/"

// CommandHandler consumes one parsed command in the context of its
// delivery. Implemented by the review engine.
type CommandHandler interface {
	HandleCommand(ctx context.Context, req review.CommandRequest)
}

// Handler terminates webhook deliveries.
type Handler struct {
	engine CommandHandler
}

// NewHandler creates a handler dispatching commands into engine.
func NewHandler(engine CommandHandler) *Handler {
	return &Handler{engine: engine}
}

// Routes builds the listener's router. The only route is the delivery
// endpoint; chi answers 405 for other methods on it.
func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Post("/", h.handleDelivery)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return router
}

// handleDelivery validates one delivery and dispatches it by event type.
// A rejected delivery gets a 400 so the sender surfaces it as failed;
// an accepted one always gets an empty 200, even when it results in no
// action.
func (h *Handler) handleDelivery(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.UserAgent(), hookshotPrefix) {
		http.Error(w, "unexpected User-Agent", http.StatusBadRequest)
		return
	}

	name := r.Header.Get("X-GitHub-Event")
	if name == "" {
		http.Error(w, "missing X-GitHub-Event header", http.StatusBadRequest)
		return
	}

	event, err := domain.ParseEventType(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch event {
	case domain.EventIssueComment:
		if !h.handleIssueComment(w, r) {
			return
		}
	case domain.EventCommitComment:
		if !h.handleCommitComment(w, r) {
			return
		}
	default:
		log.Printf("webhook: ignoring %s event", event)
	}

	w.WriteHeader(http.StatusOK)
}

// handleIssueComment runs the command pipeline for one issue_comment
// delivery. Returns false when a response has already been written.
func (h *Handler) handleIssueComment(w http.ResponseWriter, r *http.Request) bool {
	var payload issueCommentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return false
	}

	// Edited and deleted comments never re-trigger commands.
	if payload.Action != "created" {
		log.Printf("webhook: ignoring issue_comment action %q", payload.Action)
		return true
	}

	cmd := command.Parse([]byte(payload.Comment.Body))
	if cmd.Kind == domain.CommandNone {
		log.Printf("webhook: comment by %s carries no command", payload.Comment.User.Login)
		return true
	}

	// A command on an issue the bot cannot locate is dropped, not
	// rejected; the delivery itself was well-formed.
	ref, err := domain.ParseIssueRef(payload.Issue.RepositoryURL, payload.Issue.Number)
	if err != nil {
		log.Printf("webhook: dropping %s command: %v", cmd.Kind, err)
		return true
	}

	assignees := make([]string, 0, len(payload.Issue.Assignees))
	for _, a := range payload.Issue.Assignees {
		assignees = append(assignees, a.Login)
	}

	h.engine.HandleCommand(r.Context(), review.CommandRequest{
		Command: cmd,
		Ref:     ref,
		Comment: domain.Comment{
			Body:        payload.Comment.Body,
			AuthorLogin: payload.Comment.User.Login,
		},
		Assignees: assignees,
	})
	return true
}

// handleCommitComment acknowledges commit comments. They carry no
// commands; the delivery is logged and accepted.
func (h *Handler) handleCommitComment(w http.ResponseWriter, r *http.Request) bool {
	var payload commitCommentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return false
	}

	log.Printf("webhook: commit comment by %s on %s",
		payload.Comment.User.Login, payload.Repository.FullName)
	return true
}
