// Package domain contains the platform-agnostic types shared by the
// command engine and the reconciliation engine.
package domain

import "fmt"

// EventType identifies a GitHub webhook event by its X-GitHub-Event name.
type EventType string

// The closed set of webhook events the bot recognizes. Anything outside
// this list is a protocol error at the boundary, never a default bucket.
const (
	EventCommitComment            EventType = "commit_comment"
	EventCreate                   EventType = "create"
	EventDelete                   EventType = "delete"
	EventDeployment               EventType = "deployment"
	EventDeploymentStatus         EventType = "deployment_status"
	EventFork                     EventType = "fork"
	EventGollum                   EventType = "gollum"
	EventInstallation             EventType = "installation"
	EventInstallationRepositories EventType = "installation_repositories"
	EventIssueComment             EventType = "issue_comment"
	EventIssues                   EventType = "issues"
	EventLabel                    EventType = "label"
	EventMarketplacePurchase      EventType = "marketplace_purchase"
	EventMember                   EventType = "member"
	EventMembership               EventType = "membership"
	EventMilestone                EventType = "milestone"
	EventOrganization             EventType = "organization"
	EventOrgBlock                 EventType = "org_block"
	EventPageBuild                EventType = "page_build"
	EventProject                  EventType = "project"
	EventProjectCard              EventType = "project_card"
	EventProjectColumn            EventType = "project_column"
	EventPublic                   EventType = "public"
	EventPullRequest              EventType = "pull_request"
	EventPullRequestReview        EventType = "pull_request_review"
	EventPullRequestReviewComment EventType = "pull_request_review_comment"
	EventPush                     EventType = "push"
	EventRelease                  EventType = "release"
	EventRepository               EventType = "repository"
	EventStatus                   EventType = "status"
	EventTeam                     EventType = "team"
	EventTeamAdd                  EventType = "team_add"
	EventWatch                    EventType = "watch"
)

var knownEvents = map[EventType]struct{}{
	EventCommitComment:            {},
	EventCreate:                   {},
	EventDelete:                   {},
	EventDeployment:               {},
	EventDeploymentStatus:         {},
	EventFork:                     {},
	EventGollum:                   {},
	EventInstallation:             {},
	EventInstallationRepositories: {},
	EventIssueComment:             {},
	EventIssues:                   {},
	EventLabel:                    {},
	EventMarketplacePurchase:      {},
	EventMember:                   {},
	EventMembership:               {},
	EventMilestone:                {},
	EventOrganization:             {},
	EventOrgBlock:                 {},
	EventPageBuild:                {},
	EventProject:                  {},
	EventProjectCard:              {},
	EventProjectColumn:            {},
	EventPublic:                   {},
	EventPullRequest:              {},
	EventPullRequestReview:        {},
	EventPullRequestReviewComment: {},
	EventPush:                     {},
	EventRelease:                  {},
	EventRepository:               {},
	EventStatus:                   {},
	EventTeam:                     {},
	EventTeamAdd:                  {},
	EventWatch:                    {},
}

// ParseEventType validates an event name against the closed set.
// Unknown names are an error so the webhook boundary can answer 400
// instead of silently dropping deliveries.
func ParseEventType(name string) (EventType, error) {
	et := EventType(name)
	if _, ok := knownEvents[et]; !ok {
		return "", fmt.Errorf("unrecognized event type %q", name)
	}
	return et, nil
}
