package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
)

// Response is the reply envelope for one command. Data holds the
// command-specific result, still encoded; Error is set when Success is
// false.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type request struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// ScreenshotOptions narrows what TakeScreenshot captures. Zero values
// take the agent's defaults.
type ScreenshotOptions struct {
	WindowLabel     string `json:"window_label,omitempty"`
	ApplicationName string `json:"application_name,omitempty"`
	Quality         int    `json:"quality,omitempty"`
	MaxWidth        int    `json:"max_width,omitempty"`
}

// Screenshot is the result of a capture.
type Screenshot struct {
	ImageDataURL string `json:"image_data_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Strategy     string `json:"strategy"`
	Degraded     bool   `json:"degraded"`
}

// Client talks to a running agent over its command socket.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to the agent socket at path.
func Dial(path string) (*Client, error) {
	return DialTimeout(path, 0)
}

// DialTimeout is Dial with a connect timeout. A zero timeout never
// expires.
func DialTimeout(path string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial agent socket: %w", err)
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Call sends one command and waits for its reply. An error means the
// exchange itself broke; a command that failed comes back as a Response
// with Success false.
func (c *Client) Call(name string, payload any) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, err := json.Marshal(request{Name: name, Payload: payload})
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}
	if _, err := c.conn.Write(append(line, '\n')); err != nil {
		return Response{}, fmt.Errorf("send request: %w", err)
	}
	raw, err := c.r.ReadBytes('\n')
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, fmt.Errorf("parse response: %w", err)
	}
	return resp, nil
}

// Close closes the socket. In-flight calls fail.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Ping checks the agent is responsive.
func (c *Client) Ping() error {
	resp, err := c.Call("ping", nil)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("ping failed: %s", resp.Error)
	}
	return nil
}

// TakeScreenshot captures a window and returns the encoded image.
func (c *Client) TakeScreenshot(opts ScreenshotOptions) (Screenshot, error) {
	resp, err := c.Call("take_screenshot", opts)
	if err != nil {
		return Screenshot{}, err
	}
	if !resp.Success {
		return Screenshot{}, fmt.Errorf("take_screenshot failed: %s", resp.Error)
	}
	var shot Screenshot
	if err := json.Unmarshal(resp.Data, &shot); err != nil {
		return Screenshot{}, fmt.Errorf("parse screenshot result: %w", err)
	}
	return shot, nil
}

// GetDOM returns the serialized DOM of the named window. The agent has
// no default here; windowLabel must name a registered window.
func (c *Client) GetDOM(windowLabel string) (string, error) {
	resp, err := c.Call("get_dom", windowLabel)
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("get_dom failed: %s", resp.Error)
	}
	var dom string
	if err := json.Unmarshal(resp.Data, &dom); err != nil {
		return "", fmt.Errorf("parse dom result: %w", err)
	}
	return dom, nil
}
