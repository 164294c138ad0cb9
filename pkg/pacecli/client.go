// Package pacecli is the client library for the framepace daemon's
// JSON-RPC control endpoint. It hides the transport (unix socket,
// named pipe or TCP fallback) behind typed method wrappers.
package pacecli

import (
	"context"
	"fmt"
	"net"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
)

// Client is a connected control client. It is safe for concurrent use.
type Client struct {
	conn net.Conn
	rpc  *jrpc2.Client
}

// NewClient connects to the daemon over the platform transport.
func NewClient() (*Client, error) {
	conn, err := dial()
	if err != nil {
		return nil, fmt.Errorf("error connecting to daemon: %w", err)
	}
	return newClient(conn), nil
}

// newClient wraps an established connection. Split out so tests can
// drive the client over an in-memory pipe.
func newClient(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		rpc:  jrpc2.NewClient(channel.Line(conn, conn), nil),
	}
}

// Close terminates the session and the underlying connection.
func (c *Client) Close() error {
	err := c.rpc.Close()
	if cerr := c.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

func invoke[T any](ctx context.Context, c *Client, method string, params any) (*T, error) {
	var res T
	if err := c.rpc.CallResult(ctx, method, params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
