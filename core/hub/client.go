package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrMalformedLockCodes reports that a device returned a lockCodes attribute
// that could not be parsed. Callers treat this as non-retryable: the device
// state is malformed and repeating the read will not help.
var ErrMalformedLockCodes = errors.New("malformed lockCodes attribute")

// Client defines the interface for device automation operations.
type Client interface {
	// Devices lists all devices exposed by the hub.
	Devices(ctx context.Context) ([]Device, error)
	// SetCode programs a code into the given slot of a lock device.
	// The name is stored alongside the code on the device.
	SetCode(ctx context.Context, deviceID, slot, code, name string) error
	// DeleteCode clears the given slot of a lock device.
	DeleteCode(ctx context.Context, deviceID, slot string) error
	// Refresh asks the hub to re-read the device's state.
	Refresh(ctx context.Context, deviceID string) error
	// LockCodes reads back a lock's code table, keyed by slot.
	LockCodes(ctx context.Context, deviceID string) (map[string]LockCode, error)
	// Modes lists all house modes.
	Modes(ctx context.Context) ([]Mode, error)
	// ActivateMode switches the house to the given mode.
	ActivateMode(ctx context.Context, modeID string) error
}

// httpClient talks to the hub's HTTP automation API using key-based auth.
type httpClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a hub client based on the configuration.
func NewClient(cfg Config) Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	// Custom transport with strict timeouts: a stuck hub request should fail
	// this one call, not wedge a retry sequence forever.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &httpClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.AccessToken,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeoutDuration,
		},
	}
}

// get performs an authenticated GET against the hub and returns the body.
func (c *httpClient) get(ctx context.Context, path string) ([]byte, error) {
	u := c.baseURL + path
	if c.token != "" {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + "access_token=" + url.QueryEscape(c.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hub request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read hub response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hub returned status %d for %s", resp.StatusCode, path)
	}

	return body, nil
}

func (c *httpClient) Devices(ctx context.Context) ([]Device, error) {
	body, err := c.get(ctx, "/devices")
	if err != nil {
		return nil, err
	}

	var devices []Device
	if err := json.Unmarshal(body, &devices); err != nil {
		return nil, fmt.Errorf("failed to parse device list: %w", err)
	}
	return devices, nil
}

func (c *httpClient) SetCode(ctx context.Context, deviceID, slot, code, name string) error {
	// The hub expects the code position, code and label joined by commas.
	path := fmt.Sprintf("/devices/%s/setCode/%s", url.PathEscape(deviceID),
		url.PathEscape(slot+","+code+","+name))
	_, err := c.get(ctx, path)
	return err
}

func (c *httpClient) DeleteCode(ctx context.Context, deviceID, slot string) error {
	path := fmt.Sprintf("/devices/%s/deleteCode/%s", url.PathEscape(deviceID), url.PathEscape(slot))
	_, err := c.get(ctx, path)
	return err
}

func (c *httpClient) Refresh(ctx context.Context, deviceID string) error {
	path := fmt.Sprintf("/devices/%s/refresh", url.PathEscape(deviceID))
	_, err := c.get(ctx, path)
	return err
}

func (c *httpClient) LockCodes(ctx context.Context, deviceID string) (map[string]LockCode, error) {
	path := fmt.Sprintf("/devices/%s/getCodes", url.PathEscape(deviceID))
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Attributes []attribute `json:"attributes"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLockCodes, err)
	}

	for _, attr := range payload.Attributes {
		if attr.Name != "lockCodes" {
			continue
		}
		// The code table is a JSON document embedded in the attribute value.
		codes := make(map[string]LockCode)
		if err := json.Unmarshal([]byte(attr.CurrentValue), &codes); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedLockCodes, err)
		}
		return codes, nil
	}

	return nil, fmt.Errorf("%w: no lockCodes attribute on device %s", ErrMalformedLockCodes, deviceID)
}

func (c *httpClient) Modes(ctx context.Context) ([]Mode, error) {
	body, err := c.get(ctx, "/modes")
	if err != nil {
		return nil, err
	}

	var modes []Mode
	if err := json.Unmarshal(body, &modes); err != nil {
		return nil, fmt.Errorf("failed to parse mode list: %w", err)
	}
	return modes, nil
}

func (c *httpClient) ActivateMode(ctx context.Context, modeID string) error {
	path := fmt.Sprintf("/modes/%s", url.PathEscape(modeID))
	_, err := c.get(ctx, path)
	return err
}
