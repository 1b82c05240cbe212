package fileservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Client talks to a running file service. It is the transport half of the
// view core's byte window reader and position decoder.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var eb struct {
			Error ErrorBody `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.Error.Message != "" {
			return fmt.Errorf("file service: %s", eb.Error.Message)
		}
		return fmt.Errorf("file service returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Open registers path with the service and returns its handle and size. The
// size is fixed for the session.
func (c *Client) Open(ctx context.Context, path string) (FileInfo, error) {
	payload, err := json.Marshal(OpenRequest{Path: path})
	if err != nil {
		return FileInfo{}, err
	}
	var info FileInfo
	if err := c.do(ctx, http.MethodPost, "/files", bytes.NewReader(payload), &info); err != nil {
		return FileInfo{}, fmt.Errorf("open %s: %w", path, err)
	}
	return info, nil
}

func (c *Client) List(ctx context.Context) ([]FileInfo, error) {
	var infos []FileInfo
	if err := c.do(ctx, http.MethodGet, "/files", nil, &infos); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return infos, nil
}

func (c *Client) Close(ctx context.Context, fileID int) error {
	path := fmt.Sprintf("/files/%d", fileID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("close file %d: %w", fileID, err)
	}
	return nil
}

// ReadWindow fetches one window of raw bytes starting at offset. The wire
// carries them base64-encoded; the decoded run preserves order and length
// exactly and may be short near end-of-file.
func (c *Client) ReadWindow(ctx context.Context, fileID int, offset int64) ([]byte, error) {
	var wr WindowResponse
	path := fmt.Sprintf("/files/%d/window?offset=%d", fileID, offset)
	if err := c.do(ctx, http.MethodGet, path, nil, &wr); err != nil {
		return nil, fmt.Errorf("read window at offset %d: %w", offset, err)
	}
	data, err := base64.StdEncoding.DecodeString(wr.Data)
	if err != nil {
		return nil, fmt.Errorf("decode window payload: %w", err)
	}
	return data, nil
}

// Inspect fetches the decoded bundle for one byte position.
func (c *Client) Inspect(ctx context.Context, fileID int, offset int64) (*Bundle, error) {
	var b Bundle
	path := fmt.Sprintf("/files/%d/inspect?offset=%d", fileID, offset)
	if err := c.do(ctx, http.MethodGet, path, nil, &b); err != nil {
		return nil, fmt.Errorf("inspect offset %d: %w", offset, err)
	}
	return &b, nil
}

// Find returns the offset of the next match, or -1 when there is none.
func (c *Client) Find(ctx context.Context, fileID int, pattern []byte, from int64, forward bool) (int64, error) {
	dir := "forward"
	if !forward {
		dir = "backward"
	}
	var fr FindResponse
	path := fmt.Sprintf("/files/%d/find?pattern=%s&from=%d&dir=%s",
		fileID, hex.EncodeToString(pattern), from, dir)
	if err := c.do(ctx, http.MethodGet, path, nil, &fr); err != nil {
		return -1, fmt.Errorf("find: %w", err)
	}
	return fr.Offset, nil
}
