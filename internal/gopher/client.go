package gopher

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"
)

const defaultTimeout = 10 * time.Second

// Dialer opens the single connection used by one request.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Client performs one request/response exchange per Fetch. It keeps no state
// between calls.
type Client struct {
	dialer  Dialer
	timeout time.Duration
}

func NewClient(timeout time.Duration, dialer Dialer) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if dialer == nil {
		dialer = &net.Dialer{Timeout: timeout}
	}
	return &Client{dialer: dialer, timeout: timeout}
}

// Fetch sends the selector followed by CRLF and returns the reply. Line-based
// replies stop at the lone "." terminator; binary replies are read until the
// peer closes. The timeout bounds the dial and each silent stretch of the
// exchange, so a slow but live transfer keeps going.
func (c *Client) Fetch(ctx context.Context, addr Address) ([]byte, error) {
	target := addr.HostPort()
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	raw, err := c.dialer.DialContext(dialCtx, "tcp", target)
	cancel()
	if err != nil {
		return nil, newConnectError(target, err)
	}
	conn := &idleConn{Conn: raw, idle: c.timeout}
	defer conn.Close()

	stop := context.AfterFunc(ctx, conn.abort)
	defer stop()

	if _, err := io.WriteString(conn, addr.Selector+"\r\n"); err != nil {
		return nil, c.streamError(ctx, target, err)
	}

	if addr.Type.IsBinary() {
		body, err := io.ReadAll(conn)
		if err != nil {
			return nil, c.streamError(ctx, target, err)
		}
		return body, nil
	}
	return c.readLines(ctx, conn, addr, target)
}

// idleConn pushes the deadline forward before every read and write. Once
// aborted the deadline stays in the past.
type idleConn struct {
	net.Conn
	idle time.Duration

	mu      sync.Mutex
	aborted bool
}

func (c *idleConn) Read(p []byte) (int, error) {
	c.extend()
	return c.Conn.Read(p)
}

func (c *idleConn) Write(p []byte) (int, error) {
	c.extend()
	return c.Conn.Write(p)
}

func (c *idleConn) extend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.aborted {
		_ = c.Conn.SetDeadline(time.Now().Add(c.idle))
	}
}

func (c *idleConn) abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aborted = true
	_ = c.Conn.SetDeadline(time.Now())
}

func (c *Client) readLines(ctx context.Context, conn net.Conn, addr Address, target string) ([]byte, error) {
	var buf bytes.Buffer
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadBytes('\n')
		buf.Write(line)
		if err == nil {
			if isTerminator(line) {
				return buf.Bytes(), nil
			}
			continue
		}
		if !errors.Is(err, io.EOF) {
			return nil, c.streamError(ctx, target, err)
		}
		// Peer closed. A partial final line only matters for menus.
		if len(line) > 0 && !isTerminator(line) && addr.Type.IsMenu() {
			return nil, &TruncatedResponseError{Addr: target, Received: buf.Len()}
		}
		return buf.Bytes(), nil
	}
}

// streamError prefers the context's reason over the raw I/O error so that
// deadlines and cancellation are reported consistently.
func (c *Client) streamError(ctx context.Context, target string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return newConnectError(target, ctxErr)
	}
	return newConnectError(target, err)
}

func isTerminator(line []byte) bool {
	return string(bytes.TrimRight(line, "\r\n")) == terminator
}
