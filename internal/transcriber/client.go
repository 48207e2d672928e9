// Package transcriber talks to the transcription collaborator over HTTP.
// Transcription runs long; if the user replaces a media import before its
// transcription finishes, the superseded request is aborted so stale results
// are never applied.
package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Result is the collaborator's answer for one media file.
type Result struct {
	MediaName string          `json:"mediaName"`
	Text      string          `json:"text"`
	Segments  json.RawMessage `json:"segments,omitempty"`
}

// Client issues transcription requests, one in flight per media name.
type Client struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger

	mu       sync.Mutex
	inFlight map[string]context.CancelFunc
}

// NewClient creates a transcription client for the collaborator at baseURL.
func NewClient(baseURL string, log *logrus.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 10 * time.Minute},
		log:      log,
		inFlight: make(map[string]context.CancelFunc),
	}
}

// Transcribe requests a transcription for mediaName. A previous in-flight
// request for the same media is aborted first; its late result is dropped by
// virtue of its context being cancelled.
func (c *Client) Transcribe(ctx context.Context, projectName, mediaName string) (*Result, error) {
	reqCtx := c.replace(ctx, mediaName)
	defer c.finish(mediaName, reqCtx)

	payload, err := json.Marshal(map[string]string{
		"projectName": projectName,
		"mediaName":   mediaName,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost,
		c.baseURL+"/api/transcribe-video", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.Canceled {
			c.log.WithField("media", mediaName).Info("transcription superseded by a newer import")
			return nil, reqCtx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription failed: HTTP %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}
	if reqCtx.Err() != nil {
		// Cancelled while reading the body; treat as superseded.
		return nil, reqCtx.Err()
	}
	return &result, nil
}

// Cancel aborts any in-flight transcription for mediaName.
func (c *Client) Cancel(mediaName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cancel, ok := c.inFlight[mediaName]; ok {
		cancel()
		delete(c.inFlight, mediaName)
	}
}

// replace cancels the previous request for mediaName, if any, and registers a
// new cancellable context derived from ctx.
func (c *Client) replace(ctx context.Context, mediaName string) context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cancel, ok := c.inFlight[mediaName]; ok {
		cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.inFlight[mediaName] = cancel
	return reqCtx
}

// finish clears the in-flight slot unless a newer request already took it.
func (c *Client) finish(mediaName string, reqCtx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if reqCtx.Err() == nil {
		if cancel, ok := c.inFlight[mediaName]; ok {
			cancel()
			delete(c.inFlight, mediaName)
		}
	}
}
