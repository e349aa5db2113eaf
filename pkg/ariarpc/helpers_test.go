package ariarpc

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
)

const (
	testSecret = "47bfbcf3"
	testGID    = "2089b05ecca3d829"
)

var errUnauthorized = &jrpc2.Error{Code: 1, Message: "Unauthorized"}

// daemonMethods is a minimal aria2 method set. Calls must carry
// "token:"+secret first when secret is set.
func daemonMethods(secret string) handler.Map {
	auth := func(req *jrpc2.Request) ([]json.RawMessage, error) {
		var params []json.RawMessage
		if req.HasParams() {
			if err := req.UnmarshalParams(&params); err != nil {
				return nil, err
			}
		}
		if secret == "" {
			return params, nil
		}
		if len(params) == 0 {
			return nil, errUnauthorized
		}
		var token string
		if err := json.Unmarshal(params[0], &token); err != nil || token != "token:"+secret {
			return nil, errUnauthorized
		}
		return params[1:], nil
	}
	return handler.Map{
		MethodGetVersion: func(_ context.Context, req *jrpc2.Request) (any, error) {
			if _, err := auth(req); err != nil {
				return nil, err
			}
			return map[string]any{
				"version":         "1.36.0",
				"enabledFeatures": []string{"Async DNS", "BitTorrent"},
			}, nil
		},
		MethodGetSessionInfo: func(_ context.Context, req *jrpc2.Request) (any, error) {
			if _, err := auth(req); err != nil {
				return nil, err
			}
			return map[string]string{"sessionId": "cd6a3bc6a1de28eb5bfa181e5f6b916d44af31a9"}, nil
		},
		MethodAddURI: func(_ context.Context, req *jrpc2.Request) (any, error) {
			params, err := auth(req)
			if err != nil {
				return nil, err
			}
			if len(params) == 0 {
				return nil, &jrpc2.Error{Code: 1, Message: "URI list is required"}
			}
			return testGID, nil
		},
		MethodTellStatus: func(_ context.Context, req *jrpc2.Request) (any, error) {
			params, err := auth(req)
			if err != nil {
				return nil, err
			}
			var gid string
			if len(params) > 0 {
				_ = json.Unmarshal(params[0], &gid)
			}
			return map[string]string{
				"gid":             gid,
				"status":          "active",
				"totalLength":     "1048576",
				"completedLength": "524288",
			}, nil
		},
		MethodTellActive: func(_ context.Context, req *jrpc2.Request) (any, error) {
			if _, err := auth(req); err != nil {
				return nil, err
			}
			return []map[string]string{
				{"gid": "a1", "status": "active", "totalLength": "100", "completedLength": "10"},
				{"gid": "a2", "status": "active", "totalLength": "200", "completedLength": "20"},
			}, nil
		},
	}
}

// newPipeDaemon starts a fake daemon behind an io.Pipe-based channel pair
// and returns the client end.
func newPipeDaemon(t *testing.T, secret string) (Channel, *jrpc2.Server) {
	t.Helper()
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()
	cli := channel.Line(cr, cw)
	srv := jrpc2.NewServer(daemonMethods(secret), &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(channel.Line(sr, sw))
	t.Cleanup(func() {
		cli.Close()
		srv.Stop()
	})
	return cli, srv
}

// events collects sink callbacks on buffered channels.
type events struct {
	connected chan struct{}
	statuses  chan *TaskStatus
	versions  chan *VersionInfo
	sessions  chan *SessionInfo
	created   chan createdEvent
	errors    chan *RemoteError
}

type createdEvent struct {
	id  ID
	gid string
}

func newEvents() *events {
	return &events{
		connected: make(chan struct{}, 4),
		statuses:  make(chan *TaskStatus, 64),
		versions:  make(chan *VersionInfo, 8),
		sessions:  make(chan *SessionInfo, 8),
		created:   make(chan createdEvent, 8),
		errors:    make(chan *RemoteError, 8),
	}
}

func (e *events) handlers() *Handlers {
	return &Handlers{
		ConnectedHandler:   func() { e.connected <- struct{}{} },
		TaskStatusHandler:  func(s *TaskStatus) { e.statuses <- s },
		VersionHandler:     func(v *VersionInfo) { e.versions <- v },
		SessionInfoHandler: func(s *SessionInfo) { e.sessions <- s },
		TaskCreatedHandler: func(id ID, gid string) { e.created <- createdEvent{id, gid} },
		RemoteErrorHandler: func(err *RemoteError) { e.errors <- err },
	}
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %T", *new(T))
	}
	var zero T
	return zero
}

func expectNone[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected event: %+v", v)
	case <-time.After(100 * time.Millisecond):
	}
}

// recordingChannel is a Channel that keeps every sent frame. onSend, when
// set, runs inside Send before it returns.
type recordingChannel struct {
	mu      sync.Mutex
	sent    [][]byte
	sendErr error
	onSend  func([]byte)
	recv    chan []byte
	closed  bool
}

func newRecordingChannel() *recordingChannel {
	return &recordingChannel{recv: make(chan []byte, 16)}
}

func (r *recordingChannel) Send(b []byte) error {
	if r.sendErr != nil {
		return r.sendErr
	}
	r.mu.Lock()
	r.sent = append(r.sent, append([]byte(nil), b...))
	r.mu.Unlock()
	if r.onSend != nil {
		r.onSend(b)
	}
	return nil
}

func (r *recordingChannel) Recv() ([]byte, error) {
	b, ok := <-r.recv
	if !ok {
		return nil, io.EOF
	}
	return b, nil
}

func (r *recordingChannel) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.recv)
	}
	return nil
}

func (r *recordingChannel) frames() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.sent...)
}

// decodeSent decodes the i-th sent frame as a generic JSON object.
func (r *recordingChannel) decodeSent(t *testing.T, i int) map[string]any {
	t.Helper()
	frames := r.frames()
	if len(frames) <= i {
		t.Fatalf("expected at least %d frames, got %d", i+1, len(frames))
	}
	var m map[string]any
	if err := json.Unmarshal(frames[i], &m); err != nil {
		t.Fatalf("unmarshal frame %d: %v", i, err)
	}
	return m
}
