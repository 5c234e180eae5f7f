package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/corey/symdex/internal/domain/registry"
)

// Client connects to the symdex daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Ping reports whether a daemon is reachable on the socket.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Search sends a search request and returns the result.
func (c *Client) Search(params SearchParams) (*SearchResult, error) {
	var result SearchResult
	if err := c.callInto(MethodSearch, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Complete sends an autocomplete request.
func (c *Client) Complete(params CompleteParams) (*SearchResult, error) {
	var result SearchResult
	if err := c.callInto(MethodComplete, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Doc sends a doc request.
func (c *Client) Doc(params DocParams) (*DocResult, error) {
	var result DocResult
	if err := c.callInto(MethodDoc, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Usages sends a usages request.
func (c *Client) Usages(params UsagesParams) (*UsagesResult, error) {
	var result UsagesResult
	if err := c.callInto(MethodUsages, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Refresh sends a refresh request.
func (c *Client) Refresh(params RefreshParams) (*registry.RefreshResult, error) {
	var result registry.RefreshResult
	if err := c.callInto(MethodRefresh, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats sends a stats request.
func (c *Client) Stats() (*StatsResult, error) {
	var result StatsResult
	if err := c.callInto(MethodStats, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.callInto(MethodHealth, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Wipe sends a wipe request, clearing the daemon's registry.
func (c *Client) Wipe() error {
	_, err := c.call(Request{ID: "1", Method: MethodWipe})
	return err
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	_, err := c.call(Request{ID: "1", Method: MethodShutdown})
	return err
}

// callInto performs a request and decodes the result into target.
func (c *Client) callInto(method string, params interface{}, target interface{}) error {
	resp, err := c.call(Request{ID: "1", Method: method, Params: params})
	if err != nil {
		return err
	}
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) call(req Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	defer conn.Close()

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return nil, fmt.Errorf("connection closed before response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	return &resp, nil
}
