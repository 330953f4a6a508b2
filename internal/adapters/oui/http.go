package oui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 5 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// MacLookupProvider queries the maclookup.app API. This is the paid tier:
// it requires an API key and is skipped entirely by the resolver setup when
// no key is configured.
type MacLookupProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewMacLookupProvider creates the paid provider. baseURL is overridable
// for tests; pass "" for the production endpoint.
func NewMacLookupProvider(apiKey, baseURL string, timeout time.Duration) *MacLookupProvider {
	if baseURL == "" {
		baseURL = "https://api.maclookup.app/v2/macs"
	}
	return &MacLookupProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  newHTTPClient(timeout),
	}
}

// Name implements Provider.
func (p *MacLookupProvider) Name() string { return "maclookup" }

// Lookup implements Provider.
func (p *MacLookupProvider) Lookup(ctx context.Context, mac MACAddress) (string, error) {
	url := fmt.Sprintf("%s/%s?apiKey=%s", p.baseURL, mac.String(), p.apiKey)
	body, err := fetch(ctx, p.client, p.Name(), url, nil)
	if err != nil {
		return "", err
	}

	var payload struct {
		Found   bool   `json:"found"`
		Company string `json:"company"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &TransportError{Provider: p.Name(), Err: err}
	}
	if !payload.Found || payload.Company == "" {
		return "", ErrNotFound
	}
	return payload.Company, nil
}

// Close is a no-op.
func (p *MacLookupProvider) Close() error { return nil }

// MacVendorsProvider queries the free macvendors.com API, which answers
// with the vendor name as plain text.
type MacVendorsProvider struct {
	baseURL string
	client  *http.Client
}

// NewMacVendorsProvider creates the free tier A provider.
func NewMacVendorsProvider(baseURL string, timeout time.Duration) *MacVendorsProvider {
	if baseURL == "" {
		baseURL = "https://api.macvendors.com"
	}
	return &MacVendorsProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

// Name implements Provider.
func (p *MacVendorsProvider) Name() string { return "macvendors" }

// Lookup implements Provider.
func (p *MacVendorsProvider) Lookup(ctx context.Context, mac MACAddress) (string, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, mac.String())
	body, err := fetch(ctx, p.client, p.Name(), url, nil)
	if err != nil {
		return "", err
	}

	vendor := strings.TrimSpace(string(body))
	if vendor == "" {
		return "", ErrNotFound
	}
	return vendor, nil
}

// Close is a no-op.
func (p *MacVendorsProvider) Close() error { return nil }

// MacVendorLookupProvider queries the free macvendorlookup.com API, which
// answers with a JSON array of matches.
type MacVendorLookupProvider struct {
	baseURL string
	client  *http.Client
}

// NewMacVendorLookupProvider creates the free tier B provider.
func NewMacVendorLookupProvider(baseURL string, timeout time.Duration) *MacVendorLookupProvider {
	if baseURL == "" {
		baseURL = "https://www.macvendorlookup.com/api/v2"
	}
	return &MacVendorLookupProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

// Name implements Provider.
func (p *MacVendorLookupProvider) Name() string { return "macvendorlookup" }

// Lookup implements Provider.
func (p *MacVendorLookupProvider) Lookup(ctx context.Context, mac MACAddress) (string, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, mac.String())
	body, err := fetch(ctx, p.client, p.Name(), url, nil)
	if err != nil {
		return "", err
	}

	var payload []struct {
		Company string `json:"company"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &TransportError{Provider: p.Name(), Err: err}
	}
	if len(payload) == 0 || payload[0].Company == "" {
		return "", ErrNotFound
	}
	return payload[0].Company, nil
}

// Close is a no-op.
func (p *MacVendorLookupProvider) Close() error { return nil }

// fetch performs one bounded GET. A 404 means the prefix is unknown to the
// service; every other non-2xx response counts as a transport failure and
// lets the chain fall through.
func fetch(ctx context.Context, client *http.Client, provider, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Provider: provider, Err: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Provider: provider,
			Err:      fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, &TransportError{Provider: provider, Err: err}
	}
	return body, nil
}
