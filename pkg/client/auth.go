package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Credential is the opaque login token Reddit hands back: a session
// cookie plus the anti-forgery modhash. It is passed through as request
// headers unchanged and never inspected beyond the success check.
type Credential struct {
	Name    string
	Cookie  string
	Modhash string
}

// Valid reports whether the credential carries a usable session. Callers
// must check this (or the Login error) before treating the credential as
// a logged-in session.
func (cr *Credential) Valid() bool {
	return cr != nil && cr.Cookie != "" && cr.Modhash != ""
}

// loginResponse is the wire shape of /api/login with api_type=json.
type loginResponse struct {
	JSON struct {
		Errors [][]string `json:"errors"`
		Data   struct {
			Modhash string `json:"modhash"`
			Cookie  string `json:"cookie"`
		} `json:"data"`
	} `json:"json"`
}

// Login authenticates against the API. A rejected attempt yields a
// *LoginError carrying the failure reasons rather than a panic; on
// success the credential is installed on the client for later calls.
func (c *Client) Login(ctx context.Context, user, passwd string) (*Credential, error) {
	form := url.Values{
		"user":     {user},
		"passwd":   {passwd},
		"api_type": {"json"},
	}

	body, err := c.postForm(ctx, "/api/login/"+user, form)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}

	var parsed loginResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}

	if len(parsed.JSON.Errors) > 0 {
		reasons := make([]string, 0, len(parsed.JSON.Errors))
		for _, e := range parsed.JSON.Errors {
			reasons = append(reasons, strings.Join(e, " "))
		}
		c.logger.Warn().Str("user", user).Strs("reasons", reasons).Msg("Login rejected")
		return nil, &LoginError{Reasons: reasons}
	}

	// The success marker is the session data itself.
	cred := &Credential{
		Name:    user,
		Cookie:  parsed.JSON.Data.Cookie,
		Modhash: parsed.JSON.Data.Modhash,
	}
	if !cred.Valid() {
		return nil, &LoginError{Reasons: []string{"response missing session data"}}
	}

	c.UseCredential(cred)
	c.logger.Info().Str("user", user).Msg("Logged in")
	return cred, nil
}

// UseCredential installs a credential for subsequent requests. Passing
// nil reverts to anonymous calls.
func (c *Client) UseCredential(cred *Credential) {
	c.mu.Lock()
	c.cred = cred
	c.mu.Unlock()
}

// postForm sends a throttled, uncached form POST and returns the body.
func (c *Client) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrThrottleWait, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolveURL(path),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{Class: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()
		return nil, &APIError{StatusCode: resp.StatusCode, Class: class, Message: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{Class: ErrorClassNetwork, Message: "read response body", Err: err}
	}
	return body, nil
}
