package ariarpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/creachadair/jrpc2/channel"
)

// Channel carries whole frames to and from the daemon.
type Channel = channel.Channel

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 6800
	DefaultPath = "/jsonrpc"

	// DefaultReadLimit bounds a single inbound frame. tellActive results
	// for a busy daemon are well over the websocket library's 32KiB default.
	DefaultReadLimit = 4 << 20
)

// Endpoint builds the websocket URL of a daemon.
func Endpoint(secure bool, host string, port uint16, path string) string {
	scheme := "ws"
	if secure {
		scheme = "wss"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, host, port, path)
}

// DialOpts tunes how the websocket is opened.
type DialOpts struct {
	// Proxy is an http, https or socks5 URL the connection is routed through.
	Proxy      string
	ReadLimit  int64
	HTTPHeader http.Header
}

// Dial opens a websocket to endpoint and blocks until the handshake has
// completed or failed. ctx bounds the handshake only.
func Dial(ctx context.Context, endpoint string, opts *DialOpts) (Channel, error) {
	if opts == nil {
		opts = &DialOpts{}
	}
	client, err := newHTTPClient(opts.Proxy)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.Dial(ctx, endpoint, &websocket.DialOptions{
		HTTPClient: client,
		HTTPHeader: opts.HTTPHeader,
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s: %w", endpoint, err)
	}
	limit := opts.ReadLimit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	conn.SetReadLimit(limit)
	return newWSChannel(conn), nil
}

// wsChannel adapts a coder/websocket.Conn to the jrpc2 Channel interface.
// Frames are sent as text messages.
type wsChannel struct {
	conn *websocket.Conn
	ctx  context.Context
	wmu  sync.Mutex
}

func newWSChannel(conn *websocket.Conn) *wsChannel {
	return &wsChannel{conn: conn, ctx: context.Background()}
}

// Send writes one frame.
func (c *wsChannel) Send(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.Write(c.ctx, websocket.MessageText, data)
}

// Recv reads one frame.
func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

// Close shuts down the connection with a normal closure status.
func (c *wsChannel) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// isClosed reports whether err only says the connection has gone away
// in an orderly fashion.
func isClosed(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
