// Package mirror is the client for the optional hosted table store that
// mirrors the local ledger. The engine never depends on it: failures are
// surfaced to the caller as opaque errors, never recovered here.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to a Supabase-style REST table store: /auth/v1 for
// email/password sessions, /rest/v1/<table> for row CRUD.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client

	token  string
	userID string
}

func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// UserID returns the authenticated user's id, empty before sign in.
func (c *Client) UserID() string {
	return c.userID
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new account and keeps the returned session.
func (c *Client) SignUp(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/signup", credentials{email, password}, &s)
	if err != nil {
		return Session{}, err
	}
	c.token, c.userID = s.AccessToken, s.User.ID
	return s, nil
}

// SignIn opens a session with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", credentials{email, password}, &s)
	if err != nil {
		return Session{}, err
	}
	c.token, c.userID = s.AccessToken, s.User.ID
	return s, nil
}

// SignOut revokes the current session.
func (c *Client) SignOut(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil); err != nil {
		return err
	}
	c.token, c.userID = "", ""
	return nil
}

// CurrentUser fetches the user behind the current session.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// UpsertProfile mirrors the profile row. Merge-on-conflict keeps repeated
// saves idempotent.
func (c *Client) UpsertProfile(ctx context.Context, row ProfileRow) error {
	return c.doPrefer(ctx, http.MethodPost, "/rest/v1/user_profiles?on_conflict=user_id", []ProfileRow{row}, nil, "resolution=merge-duplicates")
}

// ReplaceFixedExpenses deletes the user's fixed expense rows and writes
// the new list, matching the local replace-all semantics.
func (c *Client) ReplaceFixedExpenses(ctx context.Context, userID string, rows []FixedExpenseRow) error {
	path := "/rest/v1/fixed_expenses?user_id=eq." + url.QueryEscape(userID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/rest/v1/fixed_expenses", rows, nil)
}

// UpsertTransaction mirrors one transaction row. The pending sweep may
// replay a row the worker already wrote, so conflicts merge instead of
// failing.
func (c *Client) UpsertTransaction(ctx context.Context, row TransactionRow) error {
	return c.doPrefer(ctx, http.MethodPost, "/rest/v1/expenses?on_conflict=id", []TransactionRow{row}, nil, "resolution=merge-duplicates")
}

// DeleteTransaction removes one transaction row by id.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rest/v1/expenses?id=eq."+url.QueryEscape(id), nil, nil)
}

// UpsertGoal mirrors one goal row, merging on id so creates and amount
// updates go through the same path.
func (c *Client) UpsertGoal(ctx context.Context, row GoalRow) error {
	return c.doPrefer(ctx, http.MethodPost, "/rest/v1/goals?on_conflict=id", []GoalRow{row}, nil, "resolution=merge-duplicates")
}

// DeleteGoal removes one goal row by id.
func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rest/v1/goals?id=eq."+url.QueryEscape(id), nil, nil)
}

// do performs one JSON round trip. Non-2xx responses come back as opaque
// errors; callers surface them, they never retry here.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doPrefer(ctx, method, path, body, out, "")
}

func (c *Client) doPrefer(ctx context.Context, method, path string, body, out any, prefer string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("mirror: marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("mirror: build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	token := c.token
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mirror: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mirror: %s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("mirror: decode response: %w", err)
	}
	return nil
}
