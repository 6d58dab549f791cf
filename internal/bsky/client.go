// Package bsky is a minimal Bluesky XRPC client covering what the bot needs:
// app-password sessions, blob upload, and posting with link facets and an
// optional image embed.
package bsky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to one PDS. Not safe for concurrent use; the bot posts
// sequentially.
type Client struct {
	pdsURL string
	http   *http.Client

	session *Session
}

// Session holds the credentials returned by createSession.
type Session struct {
	AccessJwt string `json:"accessJwt"`
	DID       string `json:"did"`
	Handle    string `json:"handle"`
}

// NewClient creates a client for the given PDS, e.g. "https://bsky.social".
func NewClient(pdsURL string) *Client {
	return &Client{
		pdsURL: pdsURL,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateSession logs in with a handle and app password and stores the
// resulting session on the client.
func (c *Client) CreateSession(ctx context.Context, handle, appPassword string) error {
	body, err := json.Marshal(map[string]string{
		"identifier": handle,
		"password":   appPassword,
	})
	if err != nil {
		return err
	}

	var session Session
	if err := c.call(ctx, "com.atproto.server.createSession", "application/json", body, "", &session); err != nil {
		return err
	}
	if session.AccessJwt == "" || session.DID == "" {
		return fmt.Errorf("createSession returned incomplete session")
	}
	c.session = &session
	return nil
}

// UploadBlob uploads raw bytes (e.g. a PNG) and returns the blob reference to
// embed in a record.
func (c *Client) UploadBlob(ctx context.Context, data []byte, contentType string) (json.RawMessage, error) {
	if c.session == nil {
		return nil, fmt.Errorf("no session, call CreateSession first")
	}
	var resp struct {
		Blob json.RawMessage `json:"blob"`
	}
	if err := c.call(ctx, "com.atproto.repo.uploadBlob", contentType, data, c.session.AccessJwt, &resp); err != nil {
		return nil, err
	}
	if len(resp.Blob) == 0 {
		return nil, fmt.Errorf("uploadBlob returned no blob reference")
	}
	return resp.Blob, nil
}

// Image pairs an uploaded blob with its alt text.
type Image struct {
	Alt  string
	Blob json.RawMessage
}

// CreatePost publishes an app.bsky.feed.post with link facets derived from
// the text and an optional image embed.
func (c *Client) CreatePost(ctx context.Context, text string, image *Image) error {
	if c.session == nil {
		return fmt.Errorf("no session, call CreateSession first")
	}

	record := map[string]any{
		"$type":     "app.bsky.feed.post",
		"text":      text,
		"createdAt": time.Now().UTC().Format("2006-01-02T15:04:05.999Z"),
	}
	if facets := ParseFacets(text); len(facets) > 0 {
		record["facets"] = facets
	}
	if image != nil {
		record["embed"] = map[string]any{
			"$type": "app.bsky.embed.images",
			"images": []map[string]any{{
				"alt":   image.Alt,
				"image": image.Blob,
			}},
		}
	}

	body, err := json.Marshal(map[string]any{
		"repo":       c.session.DID,
		"collection": "app.bsky.feed.post",
		"record":     record,
	})
	if err != nil {
		return err
	}
	return c.call(ctx, "com.atproto.repo.createRecord", "application/json", body, c.session.AccessJwt, nil)
}

// call performs one XRPC procedure. Non-2xx responses surface the error body.
func (c *Client) call(ctx context.Context, nsid, contentType string, body []byte, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pdsURL+"/xrpc/"+nsid, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", nsid, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", nsid, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: status %d: %s", nsid, resp.StatusCode, xrpcErrorMessage(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", nsid, err)
		}
	}
	return nil
}

func xrpcErrorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		if e.Message != "" {
			return e.Error + ": " + e.Message
		}
		return e.Error
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
