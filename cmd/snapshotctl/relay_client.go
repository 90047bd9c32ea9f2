package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/session"
)

const httpCallTimeout = 10 * time.Second

// relayClient reads and writes snapshots through a running relay's HTTP API,
// so writes reach displays that are already connected.
type relayClient struct {
	baseURL string
}

func newRelayClient(server string) (*relayClient, error) {
	u, err := url.Parse(server)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", server)
	}
	return &relayClient{baseURL: strings.TrimRight(server, "/")}, nil
}

func (c *relayClient) snapshotURL(screenID domain.ScreenID) string {
	return c.baseURL + "/api/screens/" + url.PathEscape(screenID.String()) + "/snapshot"
}

func (c *relayClient) Get(ctx context.Context, screenID domain.ScreenID) (domain.Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.snapshotURL(screenID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot request: %w", err)
	}

	client := &http.Client{Timeout: httpCallTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute snapshot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrSnapshotNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot response: %w", err)
	}
	return domain.Content(data), nil
}

func (c *relayClient) Put(ctx context.Context, screenID domain.ScreenID, content domain.Content) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.snapshotURL(screenID), bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to create snapshot request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: httpCallTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute snapshot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}
	return nil
}

// List returns the screens the relay currently holds content for.
func (c *relayClient) List(ctx context.Context) ([]domain.ScreenID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/screens", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create screens request: %w", err)
	}

	client := &http.Client{Timeout: httpCallTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute screens request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	var screensResp struct {
		Screens []session.Info `json:"screens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&screensResp); err != nil {
		return nil, fmt.Errorf("failed to decode screens response: %w", err)
	}

	ids := make([]domain.ScreenID, 0, len(screensResp.Screens))
	for _, info := range screensResp.Screens {
		if info.HasContent {
			ids = append(ids, info.ScreenID)
		}
	}
	return ids, nil
}

func (c *relayClient) Close() {}
