package ariarpc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/warpdl/ariarpc/pkg/logger"
)

// ClientOpts configures a Client. The zero value is usable.
type ClientOpts struct {
	// Secret is the daemon's --rpc-secret. When set, every call carries
	// "token:"+Secret as its first parameter.
	Secret string
	Sink   EventSink
	Logger logger.Logger
	Codec  Codec
	// PendingTTL, when positive, expires pending ids this long after they
	// were sent. By default pending ids are kept forever.
	PendingTTL time.Duration
}

// Client is a connection to one aria2 daemon. Calls are fire-and-forget:
// each returns once the request is written, and the outcome arrives later
// through the EventSink while Listen is running. Call is safe for
// concurrent use.
type Client struct {
	mu        sync.Mutex
	ch        Channel
	connected atomic.Bool
	closed    atomic.Bool

	seq   *idSequence
	token string
	table pendingStore
	codec Codec
	sink  EventSink
	log   logger.Logger
	d     *Dispatcher
}

// NewClient creates a client in the not-connected state.
func NewClient(opts *ClientOpts) *Client {
	if opts == nil {
		opts = &ClientOpts{}
	}
	c := &Client{
		seq:   newIDSequence(),
		codec: opts.Codec,
		sink:  opts.Sink,
		log:   opts.Logger,
	}
	if opts.Secret != "" {
		c.token = "token:" + opts.Secret
	}
	if c.codec == nil {
		c.codec = JSONCodec{}
	}
	if c.sink == nil {
		c.sink = &Handlers{}
	}
	if c.log == nil {
		c.log = logger.NewNopLogger()
	}
	if opts.PendingTTL > 0 {
		c.table = newTTLTable(opts.PendingTTL)
	} else {
		c.table = NewCorrelationTable()
	}
	c.d = newDispatcher(c.table, c.codec, c.sink, c.log)
	return c
}

// Connect dials endpoint and blocks until the connection is open or the
// attempt failed. No timeout is applied beyond ctx.
func (c *Client) Connect(ctx context.Context, endpoint string, opts *DialOpts) error {
	if c.Connected() {
		return ErrAlreadyConnected
	}
	ch, err := Dial(ctx, endpoint, opts)
	if err != nil {
		return err
	}
	if err := c.ConnectChannel(ch); err != nil {
		ch.Close()
		return err
	}
	c.log.Info("connected to %s", endpoint)
	return nil
}

// ConnectChannel attaches an already open channel and moves the client to
// the connected state.
func (c *Client) ConnectChannel(ch Channel) error {
	c.mu.Lock()
	if c.ch != nil {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.ch = ch
	c.mu.Unlock()
	c.connected.Store(true)
	c.sink.OnConnected()
	return nil
}

// Connected reports whether the connection has been opened. It stays true
// after the connection is closed; sends then fail at the transport.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Pending returns the number of recorded in-flight ids.
func (c *Client) Pending() int {
	return c.table.Len()
}

func (c *Client) channel() Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ch
}

// Listen reads frames until the connection ends and dispatches each one in
// order. It returns nil when the connection was closed normally.
func (c *Client) Listen() error {
	ch := c.channel()
	if ch == nil {
		return ErrTransportUnavailable
	}
	for {
		buf, err := ch.Recv()
		if err != nil {
			if c.closed.Load() || isClosed(err) {
				c.log.Info("connection closed")
				return nil
			}
			return fmt.Errorf("error reading: %w", err)
		}
		c.log.Debug("<- %s", buf)
		c.d.Process(buf)
	}
}

// Close closes the connection and stops pending-id expiry.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	defer c.table.Close()
	ch := c.channel()
	if ch == nil {
		return nil
	}
	return ch.Close()
}

// CallOption customises a single call.
type CallOption func(*callOpts)

type callOpts struct {
	id    ID
	hasID bool
}

// WithID sends the call with a caller-chosen correlation id instead of the
// next generated one. The id must not still be pending.
func WithID(id ID) CallOption {
	return func(o *callOpts) {
		o.id = id
		o.hasID = true
	}
}

// Call sends method with params and returns the correlation id it was sent
// with. The id is recorded as pending once the request has been encoded and
// before the frame is written, so that a reply racing the write is still
// recognised. A call that fails to encode leaves no pending id behind.
func (c *Client) Call(method string, params []any, opts ...CallOption) (ID, error) {
	var o callOpts
	for _, opt := range opts {
		opt(&o)
	}
	ch := c.channel()
	if !c.Connected() || ch == nil {
		return ID{}, fmt.Errorf("failed to invoke %s: %w", method, ErrTransportUnavailable)
	}
	id := o.id
	if !o.hasID {
		id = c.seq.next()
	}
	buf, err := c.codec.Encode(&Request{
		JSONRPC: protocolVersion,
		Method:  method,
		Params:  params,
		ID:      id,
	})
	if err != nil {
		return ID{}, fmt.Errorf("failed to encode %s: %w", method, err)
	}
	if err := c.table.Register(id, method); err != nil {
		return ID{}, fmt.Errorf("failed to invoke %s with id %s: %w", method, id, err)
	}
	c.log.Debug("-> %s", buf)
	if err := ch.Send(buf); err != nil {
		return id, fmt.Errorf("failed to invoke %s: %w: %w", method, ErrTransportUnavailable, err)
	}
	return id, nil
}
