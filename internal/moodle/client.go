package moodle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
)

// wsPath is the REST endpoint every web service function goes through
const wsPath = "/webservice/rest/server.php"

// Doer executes HTTP requests. Satisfied by *http.Client and by the retrying
// infrastructure client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to a Moodle instance's web service API. URL assembly is
// centralized here so every call carries the same required parameters.
type Client struct {
	baseURL string
	token   string
	http    Doer
	logger  observability.Logger
	metrics observability.Metrics
}

// NewClient creates a Moodle API client for the given site and token
func NewClient(baseURL, token string, httpClient Doer, logger observability.Logger, metrics observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
		logger:  logger.WithFields(map[string]interface{}{"component": "moodle_client"}),
		metrics: metrics.WithTags(map[string]string{"component": "moodle_client"}),
	}
}

// endpoint builds the server.php URL for a function call. The token rides as
// the wstoken query parameter here because that is the protocol Moodle
// defines for web service calls; file downloads use a header instead.
func (c *Client) endpoint(function string, params url.Values) string {
	values := url.Values{}
	values.Set("wstoken", c.token)
	values.Set("wsfunction", function)
	values.Set("moodlewsrestformat", "json")

	for key, vals := range params {
		for _, val := range vals {
			values.Add(key, val)
		}
	}

	return c.baseURL + wsPath + "?" + values.Encode()
}

// Call invokes a web service function and decodes the JSON response into out.
// It returns *APIError when the HTTP status is not 2xx, the body is not valid
// JSON, or the payload carries a Moodle exception object.
func (c *Client) Call(ctx context.Context, function string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(function, params), nil)
	if err != nil {
		return newTransportError(function, fmt.Errorf("failed to create request: %w", err))
	}

	c.metrics.IncrementCounter("moodle.api.calls", map[string]string{"function": function})

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.IncrementCounter("moodle.api.errors", map[string]string{"function": function, "error": "transport"})
		return newTransportError(function, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncrementCounter("moodle.api.errors", map[string]string{"function": function, "error": "read"})
		return newTransportError(function, fmt.Errorf("failed to read response: %w", err))
	}

	// Log the function, never the URL: the URL embeds the token
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("API call returned unexpected status",
			"function", function,
			"status", resp.StatusCode)
		c.metrics.IncrementCounter("moodle.api.errors", map[string]string{"function": function, "error": "status"})
		return newStatusError(function, resp.StatusCode, string(body))
	}

	if apiErr := detectException(function, body); apiErr != nil {
		c.logger.Error("API call returned exception payload",
			"function", function,
			"errorcode", apiErr.ErrorCode)
		c.metrics.IncrementCounter("moodle.api.errors", map[string]string{"function": function, "error": "exception"})
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.metrics.IncrementCounter("moodle.api.errors", map[string]string{"function": function, "error": "parse"})
		return newParseError(function, err)
	}

	return nil
}

// detectException checks whether the payload is a Moodle exception object.
// Array responses can never carry one, so a failed probe means no exception.
func detectException(function string, body []byte) *APIError {
	var probe struct {
		Exception string `json:"exception"`
		ErrorCode string `json:"errorcode"`
		Message   string `json:"message"`
	}

	if err := json.Unmarshal(body, &probe); err != nil {
		return nil
	}
	if probe.Exception == "" {
		return nil
	}

	return &APIError{
		Function:  function,
		Status:    200,
		Exception: probe.Exception,
		ErrorCode: probe.ErrorCode,
		Message:   probe.Message,
	}
}
