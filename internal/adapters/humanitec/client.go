// Package humanitec provides the Humanitec platform client used to fetch
// registry credentials and to register new builds.
package humanitec

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

	"github.com/cockroachdb/errors"

	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
)

// UserAgent identifies this tool in API requests.
const UserAgent = "build-push-humanitec/1.0"

const defaultTimeout = 30 * time.Second

// HTTPDoer performs HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError represents an error response from the Humanitec API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

// Error returns a string representation of the APIError.
func (e *APIError) Error() string {
	return fmt.Sprintf("Humanitec API error (%d): %s -- %s", e.StatusCode, e.Message, string(e.Body))
}

// Client implements domain.CredentialProvider and domain.BuildNotifier.
type Client struct {
	baseURL    string
	token      string
	orgID      string
	httpClient HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// NewClient creates a Client for the organization orgID on apiHost.
// apiHost is a bare host (api.humanitec.io), in which case https is used, or a full base URL.
func NewClient(token, orgID, apiHost string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("humanitec token must be set")
	}
	if strings.TrimSpace(orgID) == "" {
		return nil, errors.New("humanitec organization must be set")
	}

	baseURL := strings.TrimSpace(apiHost)
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.Wrapf(err, "invalid Humanitec API host %q", apiHost)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		orgID:      orgID,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetRegistryCredentials fetches the credentials of the organization's Humanitec registry.
func (c *Client) GetRegistryCredentials(ctx context.Context) (*domain.RegistryCredentials, error) {
	path := fmt.Sprintf("/orgs/%s/registries/humanitec/creds", url.PathEscape(c.orgID))
	respData, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch registry credentials")
	}

	var creds domain.RegistryCredentials
	if err := json.Unmarshal(respData, &creds); err != nil {
		return nil, errors.Wrap(err, "failed to decode registry credentials")
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, errors.New("registry credentials response is incomplete")
	}
	return &creds, nil
}

// AddNewBuild registers payload as a new build of imageName.
func (c *Client) AddNewBuild(ctx context.Context, imageName string, payload domain.BuildNotificationPayload) error {
	if payload.Tags == nil {
		payload.Tags = []string{}
	}
	path := fmt.Sprintf("/orgs/%s/images/%s/builds", url.PathEscape(c.orgID), url.PathEscape(imageName))
	if _, err := c.doRequest(ctx, http.MethodPost, path, payload); err != nil {
		return errors.Wrap(err, "failed to register build")
	}
	return nil
}

// doRequest sends an HTTP request to the Humanitec API and returns the response body.
// Authentication failures carry a hint about the token secret.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request body")
		}
		reqBody = bytes.NewReader(jsonBytes)
	}

	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request [%s %s]", method, fullURL)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "HTTP request failed [%s %s]", method, fullURL)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       respData,
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, errors.WithHint(apiErr,
				"The Humanitec token was rejected. Check the humanitec-token secret and its organization access.")
		}
		return nil, apiErr
	}

	return respData, nil
}
