package polygon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wonny/mag7-collector/pkg/httputil"
	"github.com/wonny/mag7-collector/pkg/logger"
)

// DefaultBaseURL is the production REST endpoint
const DefaultBaseURL = "https://api.polygon.io"

// ErrNotFound is returned when the provider has no record for a symbol/date
var ErrNotFound = errors.New("polygon: not found")

// Client handles communication with the Polygon.io REST API
// ⭐ SSOT: 시세/종목 정보 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Polygon client.
// The API key is sent as a bearer token on every request.
func NewClient(httpClient *httputil.Client, apiKey, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if apiKey != "" {
		httpClient.WithHeader("Authorization", "Bearer "+apiKey)
	}

	return &Client{
		httpClient: httpClient,
		logger:     log.WithModule("polygon"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// getJSON performs a GET against path and decodes the body into dest
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	err := c.httpClient.GetJSON(ctx, fullURL, dest)
	if err == nil {
		return nil
	}

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return err
}
