// Package github is the REST client for the issue tracker. It covers
// exactly the operations the command and reconciliation engines need:
// assignee mutation, permission lookup, review CRUD, and the paginated
// assigned-issues query.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bkyoung/thearesia/internal/adapter/httpx"
	"github.com/bkyoung/thearesia/internal/domain"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second

	// perPage is the page size for the assigned-issues query.
	perPage = 100
)

// Client is an HTTP client for the GitHub REST API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	retryConf  httpx.RetryConfig
	logger     httpx.Logger
}

// NewClient creates a new GitHub API client with the given token.
// The token should be a personal access token for the bot account.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf:  httpx.DefaultRetryConfig(),
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetRetryConfig overrides the retry behavior for transient failures.
func (c *Client) SetRetryConfig(conf httpx.RetryConfig) {
	c.retryConf = conf
}

// SetLogger wires structured call logging.
func (c *Client) SetLogger(logger httpx.Logger) {
	c.logger = logger
}

// AddAssignees adds logins to the issue's assignee list.
func (c *Client) AddAssignees(ctx context.Context, ref domain.IssueRef, logins []string) error {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/assignees", ref.Owner, ref.Repo, ref.Number)
	return c.do(ctx, http.MethodPost, path, assigneesRequest{Assignees: logins}, nil)
}

// RemoveAssignees removes logins from the issue's assignee list.
func (c *Client) RemoveAssignees(ctx context.Context, ref domain.IssueRef, logins []string) error {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/assignees", ref.Owner, ref.Repo, ref.Number)
	return c.do(ctx, http.MethodDelete, path, assigneesRequest{Assignees: logins}, nil)
}

// GetPermissionLevel returns the collaborator permission level ("admin",
// "write", "read", "none") the login holds on the repository.
func (c *Client) GetPermissionLevel(ctx context.Context, ref domain.IssueRef, login string) (string, error) {
	path := fmt.Sprintf("/repos/%s/%s/collaborators/%s/permission", ref.Owner, ref.Repo, login)

	var resp permissionResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Permission, nil
}

// ListReviews fetches all reviews on the pull request, oldest first.
func (c *Client) ListReviews(ctx context.Context, ref domain.IssueRef) ([]domain.Review, error) {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", ref.Owner, ref.Repo, ref.Number)

	var raw []reviewResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(raw))
	for _, r := range raw {
		reviews = append(reviews, domain.Review{ID: r.ID, AuthorLogin: r.User.Login})
	}
	return reviews, nil
}

// DeleteReview removes a pending or submitted review from the pull request.
func (c *Client) DeleteReview(ctx context.Context, ref domain.IssueRef, reviewID int64) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews/%d", ref.Owner, ref.Repo, ref.Number, reviewID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CreateReview submits a review with the given event (APPROVE or
// REQUEST_CHANGES) and body on the pull request.
func (c *Client) CreateReview(ctx context.Context, ref domain.IssueRef, event, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", ref.Owner, ref.Repo, ref.Number)
	req := createReviewRequest{Event: event, Body: body}
	return c.do(ctx, http.MethodPost, path, req, nil)
}

// ListAssignedIssues returns every open issue assigned to the
// authenticated bot account, walking all pages. Items include pull
// requests; filtering those out belongs to the caller.
func (c *Client) ListAssignedIssues(ctx context.Context) ([]domain.AssignedIssue, error) {
	var all []domain.AssignedIssue

	for page := 1; ; page++ {
		path := fmt.Sprintf("/issues?filter=assigned&state=open&per_page=%d&page=%d", perPage, page)

		var raw []issueResponse
		if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
			return nil, err
		}

		for _, issue := range raw {
			all = append(all, domain.AssignedIssue{
				HTMLURL:      issue.HTMLURL,
				CreatedAt:    issue.CreatedAt,
				RepoFullName: issue.Repository.FullName,
				Title:        issue.Title,
			})
		}

		if len(raw) < perPage {
			return all, nil
		}
	}
}

// do runs one API call with retries, marshaling payload (when non-nil)
// and unmarshaling the response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var jsonData []byte
	if payload != nil {
		var err error
		jsonData, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	url := c.baseURL + path
	start := time.Now()

	var resp *http.Response
	err := httpx.RetryWithBackoff(ctx, func(ctx context.Context) error {
		var reqBody io.Reader
		if jsonData != nil {
			reqBody = bytes.NewReader(jsonData)
		}

		req, reqErr := http.NewRequestWithContext(ctx, method, url, reqBody)
		if reqErr != nil {
			return &httpx.Error{
				Type:      httpx.ErrTypeUnknown,
				Message:   reqErr.Error(),
				Retryable: false,
				Service:   serviceName,
			}
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if jsonData != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		var callErr error
		resp, callErr = c.httpClient.Do(req)
		if callErr != nil {
			// Could be timeout or network error.
			return &httpx.Error{
				Type:      httpx.ErrTypeTimeout,
				Message:   callErr.Error(),
				Retryable: true,
				Service:   serviceName,
			}
		}

		if resp.StatusCode >= 400 {
			bodyBytes, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return &httpx.Error{
					Type:       httpx.ErrTypeUnknown,
					Message:    fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, readErr),
					StatusCode: resp.StatusCode,
					Retryable:  resp.StatusCode >= 500,
					Service:    serviceName,
				}
			}
			return MapHTTPError(resp.StatusCode, bodyBytes)
		}

		return nil
	}, c.retryConf)

	if err != nil {
		c.logError(method, path, time.Since(start), err)
		return err
	}
	defer resp.Body.Close()

	c.logCall(method, path, time.Since(start), resp.StatusCode)

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) logCall(method, path string, duration time.Duration, status int) {
	if c.logger == nil {
		return
	}
	c.logger.LogCall(httpx.CallLog{
		Service:    serviceName,
		Method:     method,
		Path:       path,
		Duration:   duration,
		StatusCode: status,
	})
}

func (c *Client) logError(method, path string, duration time.Duration, err error) {
	if c.logger == nil {
		return
	}
	errLog := httpx.ErrorLog{
		Service:  serviceName,
		Method:   method,
		Path:     path,
		Duration: duration,
		Err:      err,
	}
	if httpErr, ok := err.(*httpx.Error); ok {
		errLog.ErrorType = httpErr.Type
		errLog.StatusCode = httpErr.StatusCode
		errLog.Retryable = httpErr.Retryable
	}
	c.logger.LogError(errLog)
}
