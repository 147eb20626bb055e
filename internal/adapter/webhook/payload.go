package webhook

// Delivery payload shapes, limited to the fields the bot reads.

// issueCommentPayload is the body of an issue_comment delivery. The
// repository_url on the issue is the canonical source for owner and
// repo; the top-level repository object is not read.
type issueCommentPayload struct {
	Action string `json:"action"`
	Issue  struct {
		Number        int    `json:"number"`
		RepositoryURL string `json:"repository_url"`
		Assignees     []struct {
			Login string `json:"login"`
		} `json:"assignees"`
	} `json:"issue"`
	Comment struct {
		Body string `json:"body"`
		User struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"comment"`
}

// commitCommentPayload is the body of a commit_comment delivery.
type commitCommentPayload struct {
	Comment struct {
		Body string `json:"body"`
		User struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"comment"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}
