// Package airtable is the REST client for the tracking table. The table
// URL already names the base and table; the client only adds auth,
// pagination, and record encoding.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bkyoung/thearesia/internal/adapter/httpx"
	"github.com/bkyoung/thearesia/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client is an HTTP client for the Airtable records API.
type Client struct {
	apiKey     string
	tableURL   string
	httpClient *http.Client
	retryConf  httpx.RetryConfig
	logger     httpx.Logger
}

// NewClient creates a client for one table. tableURL is the full records
// endpoint, e.g. https://api.airtable.com/v0/{baseID}/{tableName}.
func NewClient(apiKey, tableURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		tableURL:   tableURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf:  httpx.DefaultRetryConfig(),
	}
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetRetryConfig overrides the retry behavior for list calls.
func (c *Client) SetRetryConfig(conf httpx.RetryConfig) {
	c.retryConf = conf
}

// SetLogger wires structured call logging.
func (c *Client) SetLogger(logger httpx.Logger) {
	c.logger = logger
}

// ListRecords fetches every row of the table, following offset tokens
// until the response carries none.
func (c *Client) ListRecords(ctx context.Context) ([]domain.TrackedIssue, error) {
	var all []domain.TrackedIssue
	offset := ""

	for {
		page, nextOffset, err := c.listPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		if nextOffset == "" {
			return all, nil
		}
		offset = nextOffset
	}
}

func (c *Client) listPage(ctx context.Context, offset string) ([]domain.TrackedIssue, string, error) {
	pageURL := c.tableURL
	if offset != "" {
		pageURL += "?offset=" + url.QueryEscape(offset)
	}

	start := time.Now()

	var resp listResponse
	err := httpx.RetryWithBackoff(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if reqErr != nil {
			return &httpx.Error{
				Type:      httpx.ErrTypeUnknown,
				Message:   reqErr.Error(),
				Retryable: false,
				Service:   serviceName,
			}
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		httpResp, callErr := c.httpClient.Do(req)
		if callErr != nil {
			return &httpx.Error{
				Type:      httpx.ErrTypeTimeout,
				Message:   callErr.Error(),
				Retryable: true,
				Service:   serviceName,
			}
		}
		defer httpResp.Body.Close()

		if httpResp.StatusCode >= 400 {
			bodyBytes, _ := io.ReadAll(httpResp.Body)
			return MapHTTPError(httpResp.StatusCode, bodyBytes)
		}

		if decErr := json.NewDecoder(httpResp.Body).Decode(&resp); decErr != nil {
			return &httpx.Error{
				Type:      httpx.ErrTypeUnknown,
				Message:   fmt.Sprintf("failed to parse response: %v", decErr),
				Retryable: false,
				Service:   serviceName,
			}
		}
		return nil
	}, c.retryConf)

	if err != nil {
		c.logError(http.MethodGet, time.Since(start), err)
		return nil, "", err
	}
	c.logCall(http.MethodGet, time.Since(start), http.StatusOK)

	records := make([]domain.TrackedIssue, 0, len(resp.Records))
	for _, rec := range resp.Records {
		records = append(records, rec.Fields)
	}
	return records, resp.Offset, nil
}

// CreateRecord inserts one row and hands the caller the raw status and
// body: the reconciler decides what a 429 or a 422 means, not the client.
// Only transport-level failures surface as err.
func (c *Client) CreateRecord(ctx context.Context, record domain.TrackedIssue) (int, []byte, error) {
	payload, err := json.Marshal(createRequest{Fields: record})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tableURL, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logError(http.MethodPost, time.Since(start), err)
		return 0, nil, fmt.Errorf("create record: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	c.logCall(http.MethodPost, time.Since(start), resp.StatusCode)
	return resp.StatusCode, body, nil
}

func (c *Client) logCall(method string, duration time.Duration, status int) {
	if c.logger == nil {
		return
	}
	c.logger.LogCall(httpx.CallLog{
		Service:    serviceName,
		Method:     method,
		Path:       c.tableURL,
		Duration:   duration,
		StatusCode: status,
	})
}

func (c *Client) logError(method string, duration time.Duration, err error) {
	if c.logger == nil {
		return
	}
	errLog := httpx.ErrorLog{
		Service:  serviceName,
		Method:   method,
		Path:     c.tableURL,
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
