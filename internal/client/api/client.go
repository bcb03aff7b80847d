// Package api is a typed client for the onboarding HTTP API. It reads the
// bearer token from a session.Store on every call and clears the store when
// the server rejects the token.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/client/session"
	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/netx"
	"github.com/dmitrijs2005/onboarding/internal/steps"
	"github.com/goccy/go-json"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 16 << 20

type Client struct {
	baseURL string
	http    *http.Client
	session session.Store
}

// New returns a client for the API at baseURL (e.g. http://localhost:4000).
// A nil httpClient gets one with the given timeout.
func New(baseURL string, httpClient *http.Client, store session.Store, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		session: store,
	}
}

// Signup creates an account and stores the returned session.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*User, error) {
	var out authResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", false, body, &out); err != nil {
		return nil, err
	}
	return &out.User, c.remember(ctx, out)
}

// Login authenticates and stores the returned session.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var out authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", false, body, &out); err != nil {
		return nil, err
	}
	return &out.User, c.remember(ctx, out)
}

// Logout forgets the stored session. There is no server call.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out meResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", true, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) GetForm(ctx context.Context) (*FormEntry, error) {
	var out formResponse
	if err := c.do(ctx, http.MethodGet, "/api/form", true, nil, &out); err != nil {
		return nil, err
	}
	return &out.FormEntry, nil
}

// GetStep returns the saved fields of step n; never nil on success.
func (c *Client) GetStep(ctx context.Context, n steps.Number) (map[string]any, error) {
	var out stepResponse
	if err := c.do(ctx, http.MethodGet, "/api/form/step/"+n.String(), true, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = map[string]any{}
	}
	return out.Data, nil
}

// UpdateStep merges data into step n on the server and returns the merged
// step.
func (c *Client) UpdateStep(ctx context.Context, n steps.Number, data map[string]any) (map[string]any, error) {
	var out stepResponse
	req := stepRequest{StepNumber: int(n), Data: data}
	if err := c.do(ctx, http.MethodPost, "/api/form/step", true, req, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) SubmitForm(ctx context.Context) (*FormEntry, error) {
	var out formResponse
	if err := c.do(ctx, http.MethodPost, "/api/form/submit", true, nil, &out); err != nil {
		return nil, err
	}
	return &out.FormEntry, nil
}

// UploadProfileImage asks for a presigned URL, uploads img to it and returns
// the object key to store in the career step.
func (c *Client) UploadProfileImage(ctx context.Context, contentType string, img []byte) (string, error) {
	var ticket UploadTicket
	if err := c.do(ctx, http.MethodPost, "/api/form/profile-image", true, nil, &ticket); err != nil {
		return "", err
	}
	if err := netx.UploadPresigned(ctx, c.http, ticket.UploadURL, contentType, img); err != nil {
		return "", fmt.Errorf("upload profile image: %w", err)
	}
	return ticket.Key, nil
}

// ProfileImageURL returns a short-lived download URL for the stored image.
func (c *Client) ProfileImageURL(ctx context.Context) (string, error) {
	var out urlResponse
	if err := c.do(ctx, http.MethodGet, "/api/form/profile-image", true, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Health returns the server's reported status.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out healthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", false, nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) remember(ctx context.Context, res authResponse) error {
	return c.session.Set(ctx, session.Session{
		Token:  res.Token,
		UserID: res.User.ID,
		Name:   res.User.Name,
		Email:  res.User.Email,
	})
}

// do sends one request. With auth set, a missing session fails fast with
// common.ErrSessionExpired and a 401 clears the stored session.
func (c *Client) do(ctx context.Context, method, path string, auth bool, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if auth {
		sess, err := c.session.Get(ctx)
		if err != nil {
			return fmt.Errorf("read session: %w", err)
		}
		if !sess.Valid() {
			return common.ErrSessionExpired
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil {
			apiErr.Message = er.Message
		}
		if auth && resp.StatusCode == http.StatusUnauthorized {
			if cerr := c.session.Clear(ctx); cerr != nil {
				return errors.Join(common.ErrSessionExpired, apiErr, cerr)
			}
			return errors.Join(common.ErrSessionExpired, apiErr)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
