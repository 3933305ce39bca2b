package wikimedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// APIError is an error payload reported by the MediaWiki API itself.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return e.Info
}

// ClaimWriter posts new depicts statements to Commons as a bot account.
// Every AddDepicts call performs a fresh login, which is wasteful but
// stateless: concurrent requests share no session.
type ClaimWriter struct {
	request     *Requester
	APIEndpoint string
	username    string
	password    string
}

// NewClaimWriter creates a new claim writer.
func NewClaimWriter(r *Requester, endpoint, username, password string) *ClaimWriter {
	return &ClaimWriter{
		request:     r,
		APIEndpoint: endpoint,
		username:    username,
		password:    password,
	}
}

// AddDepicts creates a P180 claim on a MediaInfo entity pointing at qid.
// Returns the raw upstream response on success. Upstream-reported failures
// come back as *APIError.
func (w *ClaimWriter) AddDepicts(ctx context.Context, mid, qid string) (json.RawMessage, error) {
	numericID, err := parseNumericQID(qid)
	if err != nil {
		return nil, err
	}

	// Fresh cookie session per call: login token -> login -> csrf token -> edit
	session := w.request.WithSession()

	loginToken, err := w.fetchToken(ctx, session, "login")
	if err != nil {
		return nil, fmt.Errorf("failed to get login token: %w", err)
	}

	if err := w.login(ctx, session, loginToken); err != nil {
		return nil, err
	}

	csrfToken, err := w.fetchToken(ctx, session, "csrf")
	if err != nil {
		return nil, fmt.Errorf("failed to get csrf token: %w", err)
	}

	value, err := json.Marshal(map[string]interface{}{
		"entity-type": "item",
		"numeric-id":  numericID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode claim value: %w", err)
	}

	form := url.Values{}
	form.Add("action", "wbcreateclaim")
	form.Add("entity", mid)
	form.Add("property", DepictsProperty)
	form.Add("snaktype", "value")
	form.Add("value", string(value))
	form.Add("bot", "1")
	form.Add("token", csrfToken)
	form.Add("format", "json")

	body, err := session.PostForm(ctx, w.APIEndpoint, form)
	if err != nil {
		return nil, err
	}

	var result struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return body, nil
}

// fetchToken requests a token of the given type (login, csrf).
func (w *ClaimWriter) fetchToken(ctx context.Context, session *Requester, tokenType string) (string, error) {
	u, err := url.Parse(w.APIEndpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}

	q := u.Query()
	q.Add("action", "query")
	q.Add("meta", "tokens")
	q.Add("type", tokenType)
	q.Add("format", "json")
	u.RawQuery = q.Encode()

	body, err := session.Get(ctx, u.String())
	if err != nil {
		return "", err
	}

	var result struct {
		Query struct {
			Tokens map[string]string `json:"tokens"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode json: %w", err)
	}

	token, ok := result.Query.Tokens[tokenType+"token"]
	if !ok || token == "" {
		return "", fmt.Errorf("no %s token in response", tokenType)
	}
	return token, nil
}

func (w *ClaimWriter) login(ctx context.Context, session *Requester, loginToken string) error {
	form := url.Values{}
	form.Add("action", "login")
	form.Add("lgname", w.username)
	form.Add("lgpassword", w.password)
	form.Add("lgtoken", loginToken)
	form.Add("format", "json")

	body, err := session.PostForm(ctx, w.APIEndpoint, form)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}

	var result struct {
		Login struct {
			Result string `json:"result"`
			Reason string `json:"reason"`
		} `json:"login"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to decode json: %w", err)
	}

	if result.Login.Result != "Success" {
		if result.Login.Reason != "" {
			return fmt.Errorf("login failed: %s", result.Login.Reason)
		}
		return fmt.Errorf("login failed: %s", result.Login.Result)
	}
	return nil
}

// parseNumericQID converts "Q146" to 146.
func parseNumericQID(qid string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(qid, "Q"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid entity id: %s", qid)
	}
	return n, nil
}
