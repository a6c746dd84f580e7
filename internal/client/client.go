package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kelsos/crab-monitor/internal/logger"
	"github.com/kelsos/crab-monitor/internal/models"
)

// RequestIDHeader carries a unique id per request so gateway logs can be
// matched with ours
const RequestIDHeader = "X-Request-ID"

// APIClient handles all HTTP communication with the job manager gateway
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewAPIClient creates a new API client for baseURL
func NewAPIClient(baseURL string, timeout time.Duration, log *logger.Logger) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// BuildURL constructs a full URL for the given endpoint
func (c *APIClient) BuildURL(endpoint string) string {
	return fmt.Sprintf("%s/api/v1%s", c.baseURL, endpoint)
}

// Get makes a GET request to the specified endpoint
func (c *APIClient) Get(ctx context.Context, endpoint string, result interface{}) error {
	return c.request(ctx, http.MethodGet, endpoint, nil, result)
}

// Post makes a POST request to the specified endpoint
func (c *APIClient) Post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	return c.request(ctx, http.MethodPost, endpoint, body, result)
}

// request is the core HTTP request method
func (c *APIClient) request(ctx context.Context, method, endpoint string, body interface{}, result interface{}) error {
	url := c.BuildURL(endpoint)
	requestID := uuid.NewString()
	start := time.Now()
	c.log.Debug("Starting %s request to %s (%s)", method, url, requestID)

	var requestBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshaling request body: %w", err)
		}
		requestBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, requestBody)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		c.log.Error("Request to %s failed after %v: %v", url, elapsed, err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	c.log.Debug("Request to %s completed in %v with status %d", url, elapsed, resp.StatusCode)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.log.Error("%s: HTTP error %d: %s", url, resp.StatusCode, string(bodyBytes))
		return fmt.Errorf("HTTP error %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			c.log.Error("%s: Error decoding response: %v", url, err)
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	return nil
}

// CrabAPI implements the job manager operations over the REST gateway
type CrabAPI struct {
	client *APIClient
}

func NewCrabAPI(client *APIClient) *CrabAPI {
	return &CrabAPI{client: client}
}

// Submit creates and queues a task built from cfg
func (a *CrabAPI) Submit(ctx context.Context, cfg models.TaskConfig) error {
	var response models.APIResponse[models.SubmitResponse]
	if err := a.client.Post(ctx, "/tasks", cfg, &response); err != nil {
		return fmt.Errorf("failed to submit task %s: %w", cfg.General.RequestName, err)
	}

	if response.Result.TaskName != "" {
		a.client.log.Debug("Job manager accepted %s as %s", cfg.General.RequestName, response.Result.TaskName)
	}
	return nil
}

// Status returns the job states of the task with the given handle
func (a *CrabAPI) Status(ctx context.Context, handle string) (*models.StatusResponse, error) {
	var response models.APIResponse[models.StatusResponse]
	endpoint := fmt.Sprintf("/tasks/%s/status", url.PathEscape(handle))
	if err := a.client.Get(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to get status of %s: %w", handle, err)
	}

	return &response.Result, nil
}
