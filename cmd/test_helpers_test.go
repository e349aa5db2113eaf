package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/spf13/afero"
	"github.com/zalando/go-keyring"
)

const testGID = "2089b05ecca3d829"

func TestMain(m *testing.M) {
	keyring.MockInit()
	configFs = afero.NewMemMapFs()
	logOutput = io.Discard
	os.Exit(m.Run())
}

// serverChannel carries jrpc2 frames over the daemon end of a websocket.
type serverChannel struct {
	conn *websocket.Conn
}

func (c serverChannel) Send(b []byte) error {
	return c.conn.Write(context.Background(), websocket.MessageText, b)
}

func (c serverChannel) Recv() ([]byte, error) {
	_, b, err := c.conn.Read(context.Background())
	return b, err
}

func (c serverChannel) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// fakeDaemon serves a small aria2 method set. addUri parameters are
// published on added.
type fakeDaemon struct {
	host, port string
	added      chan []json.RawMessage
}

func startFakeDaemon(t *testing.T, secret string) *fakeDaemon {
	return startPushingDaemon(t, secret)
}

// startPushingDaemon is startFakeDaemon whose tellStatus and tellActive
// handlers first push onDownloadStart for pushGIDs, the way aria2 reports
// other tasks to every connection.
func startPushingDaemon(t *testing.T, secret string, pushGIDs ...string) *fakeDaemon {
	t.Helper()
	fd := &fakeDaemon{added: make(chan []json.RawMessage, 8)}
	push := func(ctx context.Context) error {
		if len(pushGIDs) == 0 {
			return nil
		}
		var params []map[string]string
		for _, gid := range pushGIDs {
			params = append(params, map[string]string{"gid": gid})
		}
		return jrpc2.ServerFromContext(ctx).Notify(ctx, "aria2.onDownloadStart", params)
	}
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
		var token string
		if len(params) == 0 || json.Unmarshal(params[0], &token) != nil || token != "token:"+secret {
			return nil, &jrpc2.Error{Code: 1, Message: "Unauthorized"}
		}
		return params[1:], nil
	}
	methods := handler.Map{
		"aria2.getVersion": func(_ context.Context, req *jrpc2.Request) (any, error) {
			if _, err := auth(req); err != nil {
				return nil, err
			}
			// answer after anything sent before it
			time.Sleep(50 * time.Millisecond)
			return map[string]any{"version": "1.37.0", "enabledFeatures": []string{"Async DNS"}}, nil
		},
		"aria2.getSessionInfo": func(_ context.Context, req *jrpc2.Request) (any, error) {
			if _, err := auth(req); err != nil {
				return nil, err
			}
			return map[string]string{"sessionId": "cd6a3bc6a1de28eb"}, nil
		},
		"aria2.addUri": func(_ context.Context, req *jrpc2.Request) (any, error) {
			params, err := auth(req)
			if err != nil {
				return nil, err
			}
			fd.added <- params
			return testGID, nil
		},
		"aria2.tellStatus": func(ctx context.Context, req *jrpc2.Request) (any, error) {
			params, err := auth(req)
			if err != nil {
				return nil, err
			}
			gid := testGID
			if len(params) > 0 {
				json.Unmarshal(params[0], &gid)
			}
			if err := push(ctx); err != nil {
				return nil, err
			}
			return map[string]string{
				"gid": gid, "status": "active", "totalLength": "1048576", "completedLength": "524288",
			}, nil
		},
		"aria2.tellActive": func(ctx context.Context, req *jrpc2.Request) (any, error) {
			if _, err := auth(req); err != nil {
				return nil, err
			}
			if err := push(ctx); err != nil {
				return nil, err
			}
			return []map[string]string{
				{"gid": "a1a1a1a1a1a1a1a1", "status": "active", "totalLength": "1000", "completedLength": "100"},
				{"gid": "b2b2b2b2b2b2b2b2", "status": "active", "totalLength": "2000", "completedLength": "2000"},
			}, nil
		},
	}
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		srv := jrpc2.NewServer(methods, &jrpc2.ServerOptions{AllowPush: true})
		srv.Start(serverChannel{conn})
		srv.Wait()
	}))
	t.Cleanup(hs.Close)
	u, err := url.Parse(hs.URL)
	if err != nil {
		t.Fatal(err)
	}
	fd.host, fd.port = u.Hostname(), u.Port()
	return fd
}

// args returns global flags pointing at the daemon with an empty config.
func (fd *fakeDaemon) args(extra ...string) []string {
	args := []string{"ariactl", "--host", fd.host, "--port", fd.port, "--timeout", "3s", "--config", "/cfg/none.toml"}
	return append(args, extra...)
}

// runCLI runs ariactl with args and returns what it wrote to out.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	orig := out
	out = &buf
	defer func() { out = orig }()
	if err := Execute(args, BuildArgs{Version: "test"}); err != nil {
		t.Fatalf("Execute(%v): %v", args, err)
	}
	return buf.String()
}
