package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// REST talks to the daemon's session HTTP API. It implements SessionClient.
type REST struct {
	baseURL   string
	sessionID int
	http      *http.Client
}

// NewREST creates a client bound to one session on the daemon at baseURL.
func NewREST(baseURL string, sessionID int) *REST {
	return &REST{
		baseURL:   baseURL,
		sessionID: sessionID,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *REST) sessionURL(parts string) string {
	return fmt.Sprintf("%s/sessions/%d%s", c.baseURL, c.sessionID, parts)
}

// GetLinks lists the links attached to a node.
func (c *REST) GetLinks(ctx context.Context, nodeID int) ([]LinkDescriptor, error) {
	var resp struct {
		Links []LinkDescriptor `json:"links"`
	}
	if err := c.do(ctx, http.MethodGet, c.sessionURL(fmt.Sprintf("/nodes/%d/links", nodeID)), nil, &resp); err != nil {
		return nil, fmt.Errorf("get links for node %d: %w", nodeID, err)
	}
	return resp.Links, nil
}

// CreateNode pushes one node to the daemon.
func (c *REST) CreateNode(ctx context.Context, node NodePayload) error {
	if err := c.do(ctx, http.MethodPost, c.sessionURL("/nodes"), node, nil); err != nil {
		return fmt.Errorf("create node %d: %w", node.ID, err)
	}
	return nil
}

// CreateLink pushes one link to the daemon.
func (c *REST) CreateLink(ctx context.Context, link LinkDescriptor) error {
	if err := c.do(ctx, http.MethodPost, c.sessionURL("/links"), link, nil); err != nil {
		return fmt.Errorf("create link %d-%d: %w", link.Node1ID, link.Node2ID, err)
	}
	return nil
}

// GetNodeIPs allocates a fresh address pair for a node.
func (c *REST) GetNodeIPs(ctx context.Context, nodeID int, ip4Prefix, ip6Prefix string) (NodeIPs, error) {
	q := url.Values{}
	q.Set("ip4", ip4Prefix)
	q.Set("ip6", ip6Prefix)

	var ips NodeIPs
	endpoint := c.sessionURL(fmt.Sprintf("/nodes/%d/addresses", nodeID)) + "?" + q.Encode()
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &ips); err != nil {
		return NodeIPs{}, fmt.Errorf("get addresses for node %d: %w", nodeID, err)
	}
	return ips, nil
}

// SetSessionState transitions the remote session.
func (c *REST) SetSessionState(ctx context.Context, state SessionState) error {
	body := map[string]int{"state": int(state)}
	if err := c.do(ctx, http.MethodPut, c.sessionURL("/state"), body, nil); err != nil {
		return fmt.Errorf("set session state %s: %w", state, err)
	}
	return nil
}

func (c *REST) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("daemon returned %s: %s", resp.Status, bytes.TrimSpace(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
