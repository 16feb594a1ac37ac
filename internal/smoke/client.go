// Package smoke drives a running preview server over its WebSocket and
// checks the maps it returns.
package smoke

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/landforge/internal/server"
)

// Client is one smoke connection.
type Client struct {
	conn    *websocket.Conn
	timeout time.Duration
}

// Dial connects to the server's /ws endpoint. origin may be empty.
func Dial(url, origin string, timeout time.Duration) (*Client, error) {
	var header http.Header
	if origin != "" {
		header = http.Header{"Origin": []string{origin}}
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, resp, err := dialer.Dial(url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect: %w (HTTP %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return &Client{conn: conn, timeout: timeout}, nil
}

// Do sends req and waits for its reply. A reply carrying an error is
// returned as-is; only transport failures produce err.
func (c *Client) Do(req server.Request) (server.Response, error) {
	var resp server.Response
	c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return resp, fmt.Errorf("failed to send request: %w", err)
	}
	c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	if err := c.conn.ReadJSON(&resp); err != nil {
		return resp, fmt.Errorf("failed to read reply: %w", err)
	}
	return resp, nil
}

// Generate requests one map and fails on error replies.
func (c *Client) Generate(size string, seed int64, style string) (server.Response, error) {
	resp, err := c.Do(server.Request{Size: size, Seed: seed, Style: style})
	if err != nil {
		return resp, err
	}
	if resp.Error != "" {
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

// Info asks for the supported sizes and styles.
func (c *Client) Info() (server.Response, error) {
	return c.Do(server.Request{Type: server.RequestInfo})
}

// Close closes the connection with a normal close frame.
func (c *Client) Close() error {
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
