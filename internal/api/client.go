// Package api implements the airdrop distribution API client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"solana-airdrop-client/internal/domain"
	"solana-airdrop-client/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://staging-api.streamflow.finance/v2/api"
	DefaultTimeout = 30 * time.Second
	DefaultLimit   = 100
	DefaultChain   = "SOLANA"
)

// ErrNotFound is returned when a requested campaign does not exist.
var ErrNotFound = errors.New("airdrop not found")

// Client is an HTTP client for the distribution API.
type Client struct {
	baseURL string
	client  *http.Client
	chain   string
	limit   int
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithChain sets the chain identifier used in campaign queries.
func WithChain(chain string) ClientOption {
	return func(c *Client) {
		c.chain = chain
	}
}

// WithDefaultLimit sets the page size used when callers pass limit <= 0.
func WithDefaultLimit(limit int) ClientOption {
	return func(c *Client) {
		c.limit = limit
	}
}

// NewClient creates a new distribution API client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
		chain:   DefaultChain,
		limit:   DefaultLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError carries the HTTP status alongside the human-readable message
// extracted from the response body.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return e.Message
}

// errorBody is the error payload shape used by the API. Some endpoints use
// "detail", others "message".
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// parseErrorBody extracts a display message from a failed response, degrading
// to the status text and finally the caller-supplied fallback.
func parseErrorBody(status int, body []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Detail != "" {
			return eb.Detail
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fallback
}

// doJSON performs the request and decodes a 2xx JSON response into result.
// Non-2xx responses are returned as *apiError.
func (c *Client) doJSON(req *http.Request, result interface{}, fallback string) error {
	start := time.Now()
	resp, err := c.client.Do(req)
	observability.RecordAPILatency(req.URL.Path, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", fallback, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{
			Status:  resp.StatusCode,
			Message: parseErrorBody(resp.StatusCode, body, fallback),
		}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("%s: unmarshal response: %w", fallback, err)
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, result interface{}, fallback string) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doJSON(req, result, fallback)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, result interface{}, fallback string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, result, fallback)
}

// listResponse is the paginated wrapper around claimable allocations.
type listResponse struct {
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
	Items  []domain.Allocation `json:"items"`
}

// ListClaimable fetches the allocations a wallet can still act on.
// limit <= 0 uses the client default; skimZeroValued asks the server to drop
// zero-valued entries.
func (c *Client) ListClaimable(ctx context.Context, address string, limit int, skimZeroValued bool) ([]domain.Allocation, error) {
	if limit <= 0 {
		limit = c.limit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("skimZeroValued", strconv.FormatBool(skimZeroValued))

	var out listResponse
	path := "/airdrops/claimable/" + url.PathEscape(address) + "/"
	if err := c.getJSON(ctx, path, query, &out, "Failed to fetch claimable airdrops"); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetAirdrops batch-fetches campaign records for the given distributor
// addresses. An empty address list short-circuits without a network call.
func (c *Client) GetAirdrops(ctx context.Context, addresses []string, chain string) ([]domain.Airdrop, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	if chain == "" {
		chain = c.chain
	}

	query := url.Values{}
	query.Set("chain", chain)
	query.Set("addresses", strings.Join(addresses, ","))

	var out []domain.Airdrop
	if err := c.getJSON(ctx, "/airdrops/", query, &out, "Failed to fetch airdrops"); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAirdrop fetches a single campaign by distributor address.
// Returns ErrNotFound when the campaign does not exist.
func (c *Client) GetAirdrop(ctx context.Context, id string) (*domain.Airdrop, error) {
	var out domain.Airdrop
	err := c.getJSON(ctx, "/airdrops/"+url.PathEscape(id), nil, &out, "Failed to fetch airdrop")
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// CheckEligibility returns the allocations the given wallets are eligible
// for. An empty wallet list short-circuits without a network call.
func (c *Client) CheckEligibility(ctx context.Context, claimantAddresses []string) ([]domain.Allocation, error) {
	if len(claimantAddresses) == 0 {
		return nil, nil
	}

	payload := map[string][]string{"claimantAddresses": claimantAddresses}

	var out []domain.Allocation
	if err := c.postJSON(ctx, "/airdrops/check-eligibility", payload, &out, "Failed to check eligibility"); err != nil {
		return nil, err
	}
	return out, nil
}

// GetClaimant fetches the authoritative claimant record, including the
// Merkle proof, for a (distributor, claimant) pair.
func (c *Client) GetClaimant(ctx context.Context, distributorAddress, claimantAddress string) (*domain.ClaimantInfo, error) {
	path := "/airdrops/" + url.PathEscape(distributorAddress) + "/claimants/" + url.PathEscape(claimantAddress)

	var out domain.ClaimantInfo
	if err := c.getJSON(ctx, path, nil, &out, "Failed to fetch claimant"); err != nil {
		return nil, err
	}
	return &out, nil
}
