// Package timercli is the client side of the warptimer daemon protocol.
package timercli

import (
	"context"
	"fmt"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

// Client talks JSON-RPC to the daemon and receives its push notifications.
// Register handlers before issuing calls so no notification is missed.
type Client struct {
	rpc *jrpc2.Client
	d   *Dispatcher
}

// NewClient connects to the local daemon, spawning it first if nothing
// answers on the socket.
func NewClient() (*Client, error) {
	if err := ensureDaemonFunc(); err != nil {
		return nil, fmt.Errorf("error starting daemon: %w", err)
	}
	conn, err := dial()
	if err != nil {
		return nil, fmt.Errorf("error connecting to server: %w", err)
	}
	return NewClientWithChannel(channel.Line(conn, conn)), nil
}

// NewWebSocketClient connects to the daemon's viewer endpoint. Viewer
// connections count towards automatic visibility.
func NewWebSocketClient(ctx context.Context, url, secret string) (*Client, error) {
	opts := &cws.DialOptions{}
	if secret != "" {
		opts.HTTPHeader = map[string][]string{"Authorization": {"Bearer " + secret}}
	}
	conn, _, err := cws.Dial(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s: %w", url, err)
	}
	// the dial context may be short lived; the channel outlives it
	return NewClientWithChannel(&wsChannel{conn: conn, ctx: context.Background()}), nil
}

// NewClientWithChannel wraps an established channel. It is used by tests and
// by callers with custom transports.
func NewClientWithChannel(ch channel.Channel) *Client {
	d := &Dispatcher{}
	return &Client{
		rpc: jrpc2.NewClient(ch, &jrpc2.ClientOptions{OnNotify: d.process}),
		d:   d,
	}
}

// OnUpdated registers fn for timer.updated notifications.
func (c *Client) OnUpdated(fn func(timerlib.Projection)) { c.d.addUpdated(fn) }

// OnRemoved registers fn for timer.removed notifications.
func (c *Client) OnRemoved(fn func(id string)) { c.d.addRemoved(fn) }

// OnReordered registers fn for timer.reordered notifications.
func (c *Client) OnReordered(fn func(ids []string)) { c.d.addReordered(fn) }

// RemoveHandlers drops every registered notification handler.
func (c *Client) RemoveHandlers() { c.d.clear() }

// Close disconnects from the daemon.
func (c *Client) Close() error {
	return c.rpc.Close()
}

type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context
}

func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusNormalClosure, "")
}
