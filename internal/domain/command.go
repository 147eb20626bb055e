package domain

// CommandKind discriminates the operator commands recognized in comments.
type CommandKind int

const (
	// CommandNone means no recognized command was present.
	CommandNone CommandKind = iota

	// CommandChangeReviewer reassigns the review to a named login ("r? @login").
	CommandChangeReviewer

	// CommandAcceptPr approves the PR on behalf of the commenter ("@thearesia r+").
	CommandAcceptPr

	// CommandRollup tags the PR for a batch merge ("@thearesia r+ rollup").
	// Recognized but currently a no-op.
	CommandRollup

	// CommandRejectPr requests changes on the PR ("@thearesia r-").
	CommandRejectPr

	// CommandClosePr asks the bot to close the PR ("@thearesia close").
	// Recognized but currently a no-op.
	CommandClosePr
)

// String returns the command name for logging.
func (k CommandKind) String() string {
	switch k {
	case CommandChangeReviewer:
		return "change-reviewer"
	case CommandAcceptPr:
		return "accept"
	case CommandRollup:
		return "accept-rollup"
	case CommandRejectPr:
		return "reject"
	case CommandClosePr:
		return "close"
	default:
		return "none"
	}
}

// Command is the result of parsing a single comment body. At most one
// command is produced per comment; Reviewer is set only for
// CommandChangeReviewer.
type Command struct {
	Kind     CommandKind
	Reviewer string
}

// NoCommand is the zero Command, returned when nothing matched.
var NoCommand = Command{Kind: CommandNone}
