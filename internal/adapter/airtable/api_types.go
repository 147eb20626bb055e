package airtable

import "github.com/bkyoung/thearesia/internal/domain"

// listResponse is the body of GET {tableURL}. Offset is the pagination
// token for the next page; empty on the last page.
type listResponse struct {
	Records []recordEnvelope `json:"records"`
	Offset  string           `json:"offset"`
}

// recordEnvelope wraps a row: Airtable nests the column values under
// "fields" next to its own record metadata.
type recordEnvelope struct {
	ID     string              `json:"id"`
	Fields domain.TrackedIssue `json:"fields"`
}

// createRequest is the body for POST {tableURL}.
type createRequest struct {
	Fields domain.TrackedIssue `json:"fields"`
}

// errorResponse represents an error response from the Airtable API.
type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
