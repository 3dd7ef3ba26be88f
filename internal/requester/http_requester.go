package requester

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brizzai/loopback-login/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single outbound request
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read
const maxBodySize = 1 << 20

// HTTPRequester executes outbound requests and reads their bodies
type HTTPRequester struct {
	client *http.Client
}

type HTTPRequesterParams struct {
	fx.In

	Client *http.Client `optional:"true"`
}

// NewHTTPRequester creates a new HTTPRequester, using a client with
// DefaultTimeout when none is provided
func NewHTTPRequester(params HTTPRequesterParams) *HTTPRequester {
	client := params.Client
	if client == nil {
		client = &http.Client{
			Timeout: DefaultTimeout,
		}
	}
	return &HTTPRequester{
		client: client,
	}
}

// SetTimeout sets the timeout for the HTTP client
func (r *HTTPRequester) SetTimeout(timeout time.Duration) {
	r.client.Timeout = timeout
}

// Client returns the underlying HTTP client
func (r *HTTPRequester) Client() *http.Client {
	return r.client
}

// PostForm sends form as an application/x-www-form-urlencoded POST to endpoint.
// Non-2xx responses are not errors; the caller inspects the status code.
func (r *HTTPRequester) PostForm(ctx context.Context, endpoint string, form url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	// form may carry credentials, only the target is logged
	logger.Debug("request route", zap.String("method", req.Method), zap.String("url", endpoint))

	return r.execute(req)
}

// execute performs the actual HTTP request execution
func (r *HTTPRequester) execute(req *http.Request) (resp *Response, err error) {
	httpResp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil {
			logger.Warn("Failed to close response body", zap.Error(closeErr))
		}
	}()

	bodyBytes, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	logger.Debug("response received",
		zap.String("url", req.URL.String()),
		zap.Int("status", httpResp.StatusCode),
		zap.Int("bytes", len(bodyBytes)),
	)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       bodyBytes,
		Headers:    httpResp.Header,
	}, nil
}
