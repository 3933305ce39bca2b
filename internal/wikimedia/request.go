package wikimedia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Requester performs HTTP calls against MediaWiki Action API endpoints.
// Every call is a single best-effort attempt; slow upstreams are bounded
// only by the client timeout.
type Requester struct {
	httpClient *http.Client
	userAgent  string
}

// NewRequester creates a new Requester.
func NewRequester(userAgent string, timeout time.Duration) *Requester {
	return &Requester{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// WithSession returns a Requester that carries cookies across calls.
// Login flows need the session cookie set by action=login.
func (r *Requester) WithSession() *Requester {
	jar, _ := cookiejar.New(nil)
	return &Requester{
		httpClient: &http.Client{
			Timeout: r.httpClient.Timeout,
			Jar:     jar,
		},
		userAgent: r.userAgent,
	}
}

// Get performs a GET request and returns the response body.
func (r *Requester) Get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return r.do(req)
}

// PostForm performs an application/x-www-form-urlencoded POST request.
func (r *Requester) PostForm(ctx context.Context, u string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r.do(req)
}

func (r *Requester) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("api error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}
	return body, nil
}
