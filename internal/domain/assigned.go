package domain

// AssignedIssue is one raw record from the tracker's open, assigned
// issue query. The query also returns pull requests; reconciliation
// filters those out by URL shape.
type AssignedIssue struct {
	HTMLURL      string
	CreatedAt    string
	RepoFullName string
	Title        string
}
