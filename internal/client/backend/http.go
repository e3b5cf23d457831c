package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/connecthub/internal/common"
	"github.com/dmitrijs2005/connecthub/internal/logging"
)

// NewHTTPClient returns the pooled HTTP client shared by the REST parts of
// the backend handle. Per-request deadlines come from the caller's context.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{Transport: transport}
}

// restClient issues JSON requests against one backend project.
type restClient struct {
	baseURL string
	anonKey string
	http    *http.Client
	log     logging.Logger
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	token   string
	headers map[string]string
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// do sends req and returns the response for 2xx statuses. Non-2xx statuses
// become *APIError; transport failures wrap common.ErrUnavailable.
func (c *restClient) do(ctx context.Context, req request) (*response, error) {
	u := strings.TrimRight(c.baseURL, "/") + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshal error: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}

	httpReq.Header.Set(common.AnonKeyHeaderName, c.anonKey)
	token := req.token
	if token == "" {
		token = c.anonKey
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	c.log.Debug(ctx, "backend request", "method", req.method, "path", req.path, "token", logging.MaskToken(token))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", common.ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp.StatusCode, data)
		c.log.Debug(ctx, "backend error", "path", req.path, "status", resp.StatusCode, "code", apiErr.Code)
		return nil, apiErr
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// decode unmarshals a JSON response body into out.
func (r *response) decode(out any) error {
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	return nil
}
