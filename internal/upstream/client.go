// Package upstream is the portal's client for the marketplace REST API.
// It attaches the session's bearer token to outgoing requests, normalizes
// non-2xx responses into HTTPError, and destroys the calling session when
// the marketplace answers 401.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/estately/portal-server-go/internal/model"
)

// HTTPError is a non-2xx marketplace response. RawBody keeps the body
// text verbatim; upstream error bodies are sometimes plain text and
// sometimes JSON-encoded, so callers parse a second time via Message.
type HTTPError struct {
	Status  int
	RawBody string
}

func (e *HTTPError) Error() string {
	if e.RawBody == "" {
		return fmt.Sprintf("upstream error: status %d", e.Status)
	}
	return fmt.Sprintf("upstream error: status %d: %s", e.Status, e.RawBody)
}

// Message extracts a human-readable message from the error body. JSON
// bodies of the form {"message": ...} are unwrapped; anything else is
// returned as-is.
func (e *HTTPError) Message() string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(e.RawBody), &body); err == nil && body.Message != "" {
		return body.Message
	}
	if e.RawBody != "" {
		return e.RawBody
	}
	return fmt.Sprintf("Error: %d", e.Status)
}

// UnauthorizedHook is invoked when any marketplace call returns 401.
// It runs regardless of whether the caller handles the returned error.
type UnauthorizedHook func(ctx context.Context)

type Client struct {
	baseURL        string
	client         *http.Client
	onUnauthorized UnauthorizedHook
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetUnauthorizedHook registers the session-invalidation side effect.
// Wired after construction because the session store itself depends on
// this client.
func (c *Client) SetUnauthorizedHook(hook UnauthorizedHook) {
	c.onUnauthorized = hook
}

// JSON performs a request with an optional JSON payload and decodes the
// standard {message, data, meta} envelope. A 403 is reported to the
// caller without touching the session: being forbidden is not the same
// as not being logged in.
func (c *Client) JSON(ctx context.Context, method, endpoint, token string, payload any) (*model.Envelope, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	raw, err := c.do(ctx, method, endpoint, token, body, "application/json")
	if err != nil {
		return nil, err
	}

	var envelope model.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &envelope, nil
}

// UploadFile is one part of a multipart media upload.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// Upload posts files to the marketplace media endpoint and returns the
// stored URLs.
func (c *Client) Upload(ctx context.Context, token string, files []UploadFile) ([]string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("copy file content: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/media/upload", token, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Message string `json:"message"`
		Data    struct {
			URL []string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return envelope.Data.URL, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, token string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().
			Err(err).
			Str("method", method).
			Str("endpoint", endpoint).
			Dur("elapsed", elapsed).
			Msg("marketplace request failed")
		return nil, fmt.Errorf("marketplace request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().
			Str("method", method).
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("marketplace request rejected")

		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}

		return nil, &HTTPError{Status: resp.StatusCode, RawBody: string(raw)}
	}

	log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("marketplace request completed")

	return raw, nil
}
