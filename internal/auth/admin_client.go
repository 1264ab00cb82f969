package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUserNotFound is returned when no Supabase user has the requested email
var ErrUserNotFound = errors.New("user not found")

// AdminClient calls the Supabase Admin API. The seeder uses it to provision the
// library's admin account; request handling never does.
type AdminClient struct {
	supabaseURL string
	serviceKey  string
	httpClient  *http.Client
}

// NewAdminClient creates an Admin API client. serviceKey must be the service role key.
func NewAdminClient(supabaseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		supabaseURL: strings.TrimSuffix(supabaseURL, "/"),
		serviceKey:  serviceKey,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

type adminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// EnsureUser returns the id of the user with email, creating a confirmed account
// with password when none exists
func (c *AdminClient) EnsureUser(ctx context.Context, email, password string) (id string, created bool, err error) {
	id, err = c.FindUserID(ctx, email)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return "", false, err
	}

	payload, err := json.Marshal(map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	})
	if err != nil {
		return "", false, err
	}

	var user adminUser
	if err := c.do(ctx, http.MethodPost, "/auth/v1/admin/users", payload, &user); err != nil {
		return "", false, fmt.Errorf("create user: %w", err)
	}
	return user.ID, true, nil
}

// FindUserID looks a user up by email
func (c *AdminClient) FindUserID(ctx context.Context, email string) (string, error) {
	var list struct {
		Users []adminUser `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/v1/admin/users", nil, &list); err != nil {
		return "", fmt.Errorf("list users: %w", err)
	}
	for _, u := range list.Users {
		if strings.EqualFold(u.Email, email) {
			return u.ID, nil
		}
	}
	return "", ErrUserNotFound
}

// DeleteUserByEmail deletes the user with email. A missing user is not an error.
func (c *AdminClient) DeleteUserByEmail(ctx context.Context, email string) error {
	id, err := c.FindUserID(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (c *AdminClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.supabaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
