// Package command implements the grammar that extracts operator commands
// from free-text comment bodies.
//
// The grammar is five fixed literal triggers, tried in priority order with
// first-match-wins. Each trigger has its own scan function over raw bytes
// so the rules stay independently testable; there is no combinator
// framework behind this.
package command

import (
	"bytes"

	"github.com/bkyoung/thearesia/internal/domain"
)

// Triggers recognized in comment text.
const (
	triggerReviewer = "r?"
	triggerAccept   = "@thearesia r+"
	triggerReject   = "@thearesia r-"
	triggerClose    = "@thearesia close"
	rollupWord      = "rollup"
)

// Parse extracts at most one command from a comment body. It is total
// over all byte sequences: malformed or unrecognized input yields
// domain.NoCommand, never an error.
//
// Priority order (first match wins): reviewer change, accept, reject,
// close. A comment containing several triggers only ever acts on the
// highest-priority one.
func Parse(body []byte) domain.Command {
	if login, ok := scanReviewer(body); ok {
		return domain.Command{Kind: domain.CommandChangeReviewer, Reviewer: login}
	}
	if rollup, ok := scanAccept(body); ok {
		if rollup {
			return domain.Command{Kind: domain.CommandRollup}
		}
		return domain.Command{Kind: domain.CommandAcceptPr}
	}
	if scanReject(body) {
		return domain.Command{Kind: domain.CommandRejectPr}
	}
	if scanClose(body) {
		return domain.Command{Kind: domain.CommandClosePr}
	}
	return domain.NoCommand
}

// scanReviewer matches "r?" followed (anywhere later in the body) by an
// "@" and a non-empty run of non-whitespace bytes forming the login.
func scanReviewer(body []byte) (string, bool) {
	i := bytes.Index(body, []byte(triggerReviewer))
	if i < 0 {
		return "", false
	}

	rest := body[i+len(triggerReviewer):]
	j := bytes.IndexByte(rest, '@')
	if j < 0 {
		return "", false
	}

	login := rest[j+1:]
	end := 0
	for end < len(login) && !isWhitespace(login[end]) {
		end++
	}
	if end == 0 {
		return "", false
	}

	return string(login[:end]), true
}

// scanAccept matches the accept trigger and reports whether the rollup
// word appears anywhere after it.
func scanAccept(body []byte) (rollup, ok bool) {
	i := bytes.Index(body, []byte(triggerAccept))
	if i < 0 {
		return false, false
	}
	rest := body[i+len(triggerAccept):]
	return bytes.Contains(rest, []byte(rollupWord)), true
}

func scanReject(body []byte) bool {
	return bytes.Contains(body, []byte(triggerReject))
}

func scanClose(body []byte) bool {
	return bytes.Contains(body, []byte(triggerClose))
}

// isWhitespace reports whether b delimits a login: space, tab, carriage
// return, or line feed.
func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}
