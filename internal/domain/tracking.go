package domain

// Tracking-table status values the bot knows about. The table owns all
// other lifecycle transitions; the bot only ever creates Assigned records.
const (
	TrackedStatusAssigned  = "Assigned"
	TrackedStatusCompleted = "Completed"
)

// TrackedIssue is one row of the external tracking table. JSON field
// names are the table's column names.
//
// Identity is the issue URL alone: two records with the same IssueURL are
// the same issue regardless of any other field. Use Key when building
// sets for reconciliation.
type TrackedIssue struct {
	Status   string `json:"Status"`
	IssueURL string `json:"Issue"`
	Opened   string `json:"Opened"`
	Closed   string `json:"Closed,omitempty"`
	Repo     string `json:"Repo"`
	Title    string `json:"Issue Title"`
}

// Key returns the uniqueness key for set membership.
func (t TrackedIssue) Key() string {
	return t.IssueURL
}
