// Package stats fetches the chat server's aggregate counters.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMalformed        = errors.New("malformed stats response")
)

// Stats mirrors GET /api/stats. Extra fields (uptime) are ignored.
type Stats struct {
	OnlineUsers   int `json:"online_users"`
	TotalMessages int `json:"total_messages"`
}

type Fetcher struct {
	url    string
	client *http.Client
}

func NewFetcher(url string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (f *Fetcher) Fetch(ctx context.Context) (Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("build stats request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return Stats{}, fmt.Errorf("get stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Stats{}, fmt.Errorf("get stats: %w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var body struct {
		OnlineUsers   *int `json:"online_users"`
		TotalMessages *int `json:"total_messages"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if body.OnlineUsers == nil || body.TotalMessages == nil {
		return Stats{}, fmt.Errorf("%w: missing counters", ErrMalformed)
	}
	return Stats{OnlineUsers: *body.OnlineUsers, TotalMessages: *body.TotalMessages}, nil
}
