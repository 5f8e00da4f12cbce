package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/okian/reciperank/internal/domain/types"
)

const (
	contentTypeJSON = "application/json"
	contentTypeCBOR = "application/cbor"
)

var cborEnc, _ = cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()

// HTTPClient wraps http.Client with the probe's encoding choice.
type HTTPClient struct {
	client *http.Client
	cbor   bool
}

func newHTTPClient(timeout time.Duration, useCBOR bool) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}, cbor: useCBOR}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// rankResponse mirrors the compact ranking response.
type rankResponse struct {
	Results  []types.Entry `json:"results" cbor:"results"`
	Count    int           `json:"count" cbor:"count"`
	Warnings []string      `json:"warnings,omitempty" cbor:"warnings,omitempty"`
}

// PostRank sends body to url and decodes the compact response.
func (c *HTTPClient) PostRank(ctx context.Context, url string, body any) (rankResponse, error) {
	var (
		data []byte
		err  error
		ct   = contentTypeJSON
	)
	if c.cbor {
		ct = contentTypeCBOR
		data, err = cborEnc.Marshal(body)
	} else {
		data, err = json.Marshal(body)
	}
	if err != nil {
		return rankResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return rankResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Accept", ct)

	resp, err := c.client.Do(req)
	if err != nil {
		return rankResponse{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return rankResponse{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return rankResponse{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var out rankResponse
	if c.cbor {
		err = cbor.Unmarshal(raw, &out)
	} else {
		err = json.Unmarshal(raw, &out)
	}
	if err != nil {
		return rankResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}
