package github

// GitHub REST API request and response shapes, limited to the fields
// the bot reads or writes.

// assigneesRequest is the body for POST/DELETE
// /repos/{owner}/{repo}/issues/{number}/assignees.
type assigneesRequest struct {
	Assignees []string `json:"assignees"`
}

// permissionResponse is the body of GET
// /repos/{owner}/{repo}/collaborators/{login}/permission.
type permissionResponse struct {
	Permission string `json:"permission"`
}

// reviewResponse is one element of GET
// /repos/{owner}/{repo}/pulls/{number}/reviews.
type reviewResponse struct {
	ID   int64 `json:"id"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
}

// createReviewRequest is the body for POST
// /repos/{owner}/{repo}/pulls/{number}/reviews.
type createReviewRequest struct {
	Event string `json:"event"`
	Body  string `json:"body"`
}

// issueResponse is one element of GET /issues. The repository object is
// only populated on this endpoint, not on per-repo issue listings.
type issueResponse struct {
	HTMLURL    string `json:"html_url"`
	Title      string `json:"title"`
	CreatedAt  string `json:"created_at"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// errorResponse represents an error response from the GitHub API.
type errorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}
