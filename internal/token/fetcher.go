// Package token resolves and caches token metadata for airdrop display.
package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultFetchTimeout bounds off-chain metadata document fetches.
const DefaultFetchTimeout = 10 * time.Second

// maxDocumentBytes caps the off-chain document size; metadata JSONs are tiny
// and the URI points at arbitrary hosts.
const maxDocumentBytes = 1 << 20

// DocumentFetcher retrieves the off-chain metadata JSON a token URI points
// at.
type DocumentFetcher interface {
	GetJSON(ctx context.Context, uri string, out interface{}) error
}

// HTTPFetcher fetches metadata documents over HTTP.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a document fetcher.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &HTTPFetcher{client: client}
}

var _ DocumentFetcher = (*HTTPFetcher)(nil)

// GetJSON fetches the URI and decodes the body into out.
func (f *HTTPFetcher) GetJSON(ctx context.Context, uri string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch document: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	return nil
}
