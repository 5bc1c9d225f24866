package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// HTTPClient is safe for concurrent use.
type HTTPClient struct {
	baseURL string
	timeout time.Duration

	mu          sync.RWMutex
	http        *http.Client
	accessToken string
}

// NewHTTPClient builds a client for baseURL. timeout bounds every request.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	hc, err := newHTTP(timeout)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    hc,
	}, nil
}

func newHTTP(timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &http.Client{Jar: jar, Timeout: timeout}, nil
}

func (c *HTTPClient) httpClient() *http.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.http
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *HTTPClient) setToken(t string) {
	c.mu.Lock()
	c.accessToken = t
	c.mu.Unlock()
}

// LoggedIn reports whether an access token is held.
func (c *HTTPClient) LoggedIn() bool {
	return c.token() != ""
}

func (c *HTTPClient) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	var out SignupResult
	if _, err := c.do(ctx, http.MethodPost, "/signup", req, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login signs in and keeps the returned access token. The refresh cookie is
// stored by the jar.
func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) error {
	var out tokenResponse
	resp, err := c.do(ctx, http.MethodPost, "/sign", req, false, &out)
	if err != nil {
		return err
	}
	c.setToken(tokenFrom(resp, out))
	return nil
}

// Reissue trades the refresh cookie for a new access token.
func (c *HTTPClient) Reissue(ctx context.Context) error {
	var out tokenResponse
	resp, err := c.do(ctx, http.MethodPost, "/access-token/reissue", nil, false, &out)
	if err != nil {
		return err
	}
	c.setToken(tokenFrom(resp, out))
	return nil
}

// Me returns the identity behind the held access token. On a 401 the access
// token is reissued once and the call retried.
func (c *HTTPClient) Me(ctx context.Context) (*Principal, error) {
	if !c.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	var out Principal
	_, err := c.do(ctx, http.MethodGet, "/users/me", nil, true, &out)
	if err == nil {
		return &out, nil
	}

	if !errors.Is(err, ErrUnauthorized) {
		return nil, err
	}

	if err := c.Reissue(ctx); err != nil {
		return nil, err
	}
	if _, err := c.do(ctx, http.MethodGet, "/users/me", nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout drops the access token and the refresh cookie.
func (c *HTTPClient) Logout() error {
	hc, err := newHTTP(c.timeout)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.accessToken = ""
	c.http = hc
	c.mu.Unlock()
	return nil
}

func tokenFrom(resp *http.Response, body tokenResponse) string {
	if h := resp.Header.Get(common.AuthorizationHeaderName); strings.HasPrefix(h, common.BearerPrefix) {
		return strings.TrimPrefix(h, common.BearerPrefix)
	}
	return body.Token
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in any, auth bool, out any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token())
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return resp, &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp, nil
}
