// API service for making raw HTTP requests to the Data API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// APIService provides raw GET access to Data API resources, appending the API key to every request.
type APIService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAPIService creates a new raw API service instance.
func NewAPIService(baseURL, apiKey string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = DefaultYouTubeBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs a GET request to the specified path (e.g. "/videos?part=snippet&id=abc") and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	fullURL, err := a.resolve(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// resolve joins path onto the base URL and sets the key query parameter.
func (a *APIService) resolve(path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u, err := url.Parse(a.baseURL + path)
	if err != nil {
		return "", err
	}

	if a.apiKey != "" {
		q := u.Query()
		q.Set("key", a.apiKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
