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

	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/pkg/requestid"
)

// APIError is returned when the server answers with a non success status.
type APIError struct {
	StatusCode int
	api.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// Client is an HTTP client for the model server api.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) CreateImport(ctx context.Context, locator api.Locator) (api.ImportJobID, error) {
	var id api.ImportJobID
	err := c.do(ctx, http.MethodPost, "/v1/imports", locator, http.StatusCreated, &id)
	return id, err
}

func (c *Client) GetImport(ctx context.Context, id api.ImportJobID) (*api.ImportJobStatus, error) {
	var status api.ImportJobStatus
	if err := c.do(ctx, http.MethodGet, "/v1/imports/"+id.String(), nil, http.StatusOK, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) ListImports(ctx context.Context) (*api.GetAllJobStatusResponse, error) {
	var resp api.GetAllJobStatusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/imports", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListModels(ctx context.Context) (*api.GetRegisteredModelsResponse, error) {
	var resp api.GetRegisteredModelsResponse
	if err := c.do(ctx, http.MethodGet, "/v1/models", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetModel(ctx context.Context, name string) (*api.RegisteredModel, error) {
	var m api.RegisteredModel
	if err := c.do(ctx, http.MethodGet, modelPath(name), nil, http.StatusOK, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) GetDescription(ctx context.Context, name string) (string, error) {
	var desc string
	err := c.do(ctx, http.MethodGet, modelPath(name)+"/description", nil, http.StatusOK, &desc)
	return desc, err
}

func (c *Client) UpdateDescription(ctx context.Context, name, description string) error {
	req := api.UpdateDescriptionRequest{Description: description}
	return c.do(ctx, http.MethodPut, modelPath(name)+"/description", req, http.StatusNoContent, nil)
}

func (c *Client) RenameModel(ctx context.Context, name, newName string) error {
	req := api.RenameModelRequest{Name: newName}
	return c.do(ctx, http.MethodPost, modelPath(name)+"/name", req, http.StatusNoContent, nil)
}

func (c *Client) DeleteModel(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, modelPath(name), nil, http.StatusNoContent, nil)
}

func (c *Client) DeleteVersion(ctx context.Context, name, version string) error {
	return c.do(ctx, http.MethodDelete, modelPath(name)+"/versions/"+url.PathEscape(version), nil, http.StatusNoContent, nil)
}

func (c *Client) ListHubFiles(ctx context.Context, repo string) (*api.ListHubFilesResponse, error) {
	community, name, ok := strings.Cut(repo, "/")
	if !ok {
		return nil, fmt.Errorf("repository must be <owner>/<name>, got %q", repo)
	}

	var resp api.ListHubFilesResponse
	if err := c.do(ctx, http.MethodGet, "/hf/ls/"+url.PathEscape(community)+"/"+url.PathEscape(name), nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, expected int, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call model server: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expected {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(bodyBytes, &apiErr.ErrorResponse)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func modelPath(name string) string {
	return "/v1/models/" + url.PathEscape(name)
}
