// Package provider implements the admin-status provider over HTTP. The
// client queries the bot gateway that fronts the chat transport; the caller
// (internal/auth) bounds every call with a timeout and treats any failure as
// "not admin".
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client is an HTTP AdminStatusProvider. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// New constructs a provider client for the gateway at baseURL. The timeout
// caps each HTTP call independently of the caller's context; token is an
// optional bearer credential.
func New(baseURL string, timeout time.Duration, token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// adminStatusResponse is the gateway's answer payload.
type adminStatusResponse struct {
	IsAdmin   bool `json:"is_admin"`
	IsCreator bool `json:"is_creator"`
}

// IsAdmin reports whether userID holds admin (or creator) status in chatID.
//
// Request: GET {base}/api/v1/chats/{chatID}/admins/{userID}. A 404 means the
// user is a plain member; any other non-200 status or transport error is a
// provider failure surfaced to the caller.
func (c *Client) IsAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	reqURL := fmt.Sprintf("%s/api/v1/chats/%d/admins/%d", c.baseURL, chatID, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("build admin-status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("admin-status request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body adminStatusResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false, fmt.Errorf("decode admin-status response: %w", err)
		}
		return body.IsAdmin || body.IsCreator, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("admin-status gateway returned %s", resp.Status)
	}
}
