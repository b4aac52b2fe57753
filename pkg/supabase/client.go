// Package supabase is a thin client for the Supabase PostgREST and Auth APIs.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client represents a Supabase client
type Client struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// NewClient creates a new Supabase client
func NewClient(url, serviceKey string) *Client {
	return &Client{
		URL:        url,
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Error is a non-2xx response from Supabase
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("supabase error (status %d): %s", e.StatusCode, e.Body)
}

// IsConflict reports whether err is a unique constraint violation (409)
func IsConflict(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.StatusCode == http.StatusConflict
}

// User represents a Supabase user
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Query executes a query on a Supabase table
func (c *Client) Query(ctx context.Context, table string, query map[string]interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodGet, table, query, nil, "")
}

// Insert inserts a record into a Supabase table
func (c *Client) Insert(ctx context.Context, table string, data interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPost, table, nil, data, "return=representation")
}

// Upsert inserts or updates a record in a Supabase table.
// onConflict names the columns that detect conflicts (e.g. "id").
func (c *Client) Upsert(ctx context.Context, table string, data interface{}, onConflict string) ([]byte, error) {
	query := map[string]interface{}{"on_conflict": onConflict}
	return c.do(ctx, http.MethodPost, table, query, data, "return=representation,resolution=merge-duplicates")
}

// InsertIgnoringDuplicates inserts a record unless a row matching the
// onConflict columns already exists, in which case the existing row is kept.
func (c *Client) InsertIgnoringDuplicates(ctx context.Context, table string, data interface{}, onConflict string) ([]byte, error) {
	query := map[string]interface{}{"on_conflict": onConflict}
	return c.do(ctx, http.MethodPost, table, query, data, "return=representation,resolution=ignore-duplicates")
}

// Update updates the record with the given id
func (c *Client) Update(ctx context.Context, table, id string, data interface{}) ([]byte, error) {
	return c.UpdateWhere(ctx, table, map[string]interface{}{"id": "eq." + id}, data)
}

// UpdateWhere updates records matching a query
func (c *Client) UpdateWhere(ctx context.Context, table string, query map[string]interface{}, data interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPatch, table, query, data, "return=representation")
}

// Delete deletes the record with the given id
func (c *Client) Delete(ctx context.Context, table, id string) error {
	return c.DeleteWhere(ctx, table, map[string]interface{}{"id": "eq." + id})
}

// DeleteWhere deletes records matching a query
func (c *Client) DeleteWhere(ctx context.Context, table string, query map[string]interface{}) error {
	_, err := c.do(ctx, http.MethodDelete, table, query, nil, "")
	return err
}

// VerifyToken verifies a JWT token with Supabase
func (c *Client) VerifyToken(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}

func (c *Client) do(ctx context.Context, method, table string, query map[string]interface{}, data interface{}, prefer string) ([]byte, error) {
	var payload io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s/rest/v1/%s", c.URL, table), payload)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	for key, value := range query {
		q.Add(key, fmt.Sprintf("%v", value))
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
