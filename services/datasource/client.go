// Package datasource fetches outro input from the local event API.
package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"eosthanks/models"
	"eosthanks/utils"
)

// DefaultBaseURL is where the event API listens by default.
const DefaultBaseURL = "http://localhost:8000"

// ErrFetchFailed wraps every transport error and non-2xx response.
var ErrFetchFailed = errors.New("fetch failed")

// Client reads /check, /settings, /followers and /subscribers. Requests are
// sent once with no retry; the http.Client's own timeout applies.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for baseURL. A nil httpClient uses
// http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// Check pings the API. Any 2xx response is success; the body is ignored.
func (c *Client) Check(ctx context.Context) error {
	resp, err := c.get(ctx, "/check")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Settings fetches the run settings.
func (c *Client) Settings(ctx context.Context) (models.OverlaySettings, error) {
	var s models.ClientSettings
	if err := c.getJSON(ctx, "/settings", &s); err != nil {
		return models.OverlaySettings{}, err
	}
	return s.Overlay(), nil
}

// followerRecord accepts both the flat shape and the legacy shape that
// nests the name under UserData.
type followerRecord struct {
	DisplayName string `json:"display_name"`
	UserData    *struct {
		DisplayName string `json:"display_name"`
	} `json:"UserData,omitempty"`
}

func (r followerRecord) name() string {
	if r.DisplayName == "" && r.UserData != nil {
		return r.UserData.DisplayName
	}
	return r.DisplayName
}

// Followers fetches followers in API order.
func (c *Client) Followers(ctx context.Context) ([]models.EventItem, error) {
	var records []followerRecord
	if err := c.getJSON(ctx, "/followers", &records); err != nil {
		return nil, err
	}

	items := make([]models.EventItem, 0, len(records))
	for _, r := range records {
		items = append(items, models.EventItem{
			DisplayName: utils.NormalizeDisplayName(r.name()),
			Kind:        models.EventKindFollowed,
		})
	}
	return items, nil
}

type subscriberRecord struct {
	DisplayName string `json:"display_name"`
	Months      int    `json:"months"`
}

// Subscribers fetches subscribers in API order.
func (c *Client) Subscribers(ctx context.Context) ([]models.EventItem, error) {
	var records []subscriberRecord
	if err := c.getJSON(ctx, "/subscribers", &records); err != nil {
		return nil, err
	}

	items := make([]models.EventItem, 0, len(records))
	for _, r := range records {
		items = append(items, models.EventItem{
			DisplayName: utils.NormalizeDisplayName(r.DisplayName),
			Kind:        models.EventKindSubscribed,
			Months:      max(r.Months, 0),
		})
	}
	return items, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	resp, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrFetchFailed, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	u, err := utils.EndpointURL(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrFetchFailed, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s: %s - %s", ErrFetchFailed, path, resp.Status, string(body))
	}
	return resp, nil
}
