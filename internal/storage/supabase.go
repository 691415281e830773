// Package storage is a minimal client for the Supabase Storage REST API.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrObjectNotFound is returned when the object or bucket does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Error is a non-2xx response from the storage API.
type Error struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Config holds storage client configuration.
type Config struct {
	// BaseURL is the project URL, e.g. https://xyz.supabase.co.
	BaseURL string
	// ServiceKey is the service-role key; it bypasses row level security.
	ServiceKey string
	Bucket     string
	HTTPClient *http.Client
}

// Client uploads, signs and removes objects in one bucket.
type Client struct {
	endpoint   string
	key        string
	bucket     string
	httpClient *http.Client
}

// New creates a storage client.
func New(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		endpoint:   strings.TrimSuffix(cfg.BaseURL, "/") + "/storage/v1",
		key:        cfg.ServiceKey,
		bucket:     cfg.Bucket,
		httpClient: client,
	}
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// Upload stores data at path. Existing objects are not overwritten.
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/object/"+c.bucket+"/"+escapePath(path), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")
	req.Header.Set("Cache-Control", "max-age=3600")

	return c.do(req, "upload", nil)
}

type signRequest struct {
	ExpiresIn int `json:"expiresIn"`
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
}

// SignedURL returns a URL granting read access to path for ttl.
func (c *Client) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	body, err := json.Marshal(signRequest{ExpiresIn: int(ttl / time.Second)})
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/object/sign/"+c.bucket+"/"+escapePath(path), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp signResponse
	if err := c.do(req, "sign", &resp); err != nil {
		return "", err
	}
	if resp.SignedURL == "" {
		return "", &Error{Op: "sign", StatusCode: http.StatusOK, Message: "empty signed url"}
	}

	if strings.HasPrefix(resp.SignedURL, "http://") || strings.HasPrefix(resp.SignedURL, "https://") {
		return resp.SignedURL, nil
	}
	return c.endpoint + resp.SignedURL, nil
}

type removeRequest struct {
	Prefixes []string `json:"prefixes"`
}

// Remove deletes the objects at paths.
func (c *Client) Remove(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	body, err := json.Marshal(removeRequest{Prefixes: paths})
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodDelete, "/object/"+c.bucket, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "remove", nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("build storage request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("apikey", c.key)
	return req, nil
}

type errorBody struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("storage %s: read body: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		// Storage reports missing objects as 400 with statusCode "404".
		if resp.StatusCode == http.StatusNotFound || eb.StatusCode == "404" {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, msg)
		}
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("storage %s: decode response: %w", op, err)
		}
	}
	return nil
}

func escapePath(p string) string {
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
