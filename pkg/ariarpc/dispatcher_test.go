package ariarpc

import (
	"strings"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/warpdl/ariarpc/pkg/logger"
)

// plainSink records callbacks. It does not implement ErrorSink.
type plainSink struct {
	connected int
	statuses  []*TaskStatus
	versions  []*VersionInfo
	sessions  []*SessionInfo
	created   []createdEvent
}

func (s *plainSink) OnConnected() { s.connected++ }

func (s *plainSink) OnTaskStatusUpdated(t *TaskStatus) { s.statuses = append(s.statuses, t) }

func (s *plainSink) OnVersion(v *VersionInfo) { s.versions = append(s.versions, v) }

func (s *plainSink) OnSessionInfo(si *SessionInfo) { s.sessions = append(s.sessions, si) }

func (s *plainSink) OnTaskCreated(id ID, gid string) {
	s.created = append(s.created, createdEvent{id, gid})
}

func (s *plainSink) total() int {
	return s.connected + len(s.statuses) + len(s.versions) + len(s.sessions) + len(s.created)
}

func newTestDispatcher() (*Dispatcher, *CorrelationTable, *plainSink, *logger.MockLogger) {
	tbl := NewCorrelationTable()
	sink := &plainSink{}
	l := logger.NewMockLogger()
	return newDispatcher(tbl, JSONCodec{}, sink, l), tbl, sink, l
}

func TestDispatcher_Notifications(t *testing.T) {
	tests := []struct {
		method string
		want   StatusValue
	}{
		{NotifyDownloadStart, StatusActive},
		{NotifyDownloadPause, StatusPaused},
		{NotifyDownloadComplete, StatusComplete},
		{NotifyDownloadError, StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			d, _, sink, _ := newTestDispatcher()
			d.Process([]byte(`{"jsonrpc":"2.0","method":"` + tt.method + `","params":[{"gid":"abc"}]}`))
			if len(sink.statuses) != 1 {
				t.Fatalf("expected 1 status, got %d", len(sink.statuses))
			}
			got := sink.statuses[0]
			if got.GID != "abc" || got.Status != tt.want {
				t.Fatalf("got %+v, want gid abc status %s", got, tt.want)
			}
			if got.TotalLength != nil || got.CompletedLength != nil {
				t.Fatalf("notification status should carry no lengths: %+v", got)
			}
		})
	}
}

func TestDispatcher_NotificationMultipleTasks(t *testing.T) {
	d, _, sink, _ := newTestDispatcher()
	d.Process([]byte(`{"jsonrpc":"2.0","method":"aria2.onDownloadError","params":[{"gid":"a"},{"gid":"b"}]}`))
	if len(sink.statuses) != 2 || sink.statuses[0].GID != "a" || sink.statuses[1].GID != "b" {
		t.Fatalf("unexpected statuses %+v", sink.statuses)
	}
}

func TestDispatcher_UnknownNotification(t *testing.T) {
	d, _, sink, l := newTestDispatcher()
	d.Process([]byte(`{"jsonrpc":"2.0","method":"aria2.onBtDownloadComplete","params":[{"gid":"abc"}]}`))
	if sink.total() != 0 {
		t.Fatalf("expected no callbacks, got %d", sink.total())
	}
	if len(l.Warnings()) != 1 {
		t.Fatalf("expected one warning, got %v", l.Warnings())
	}
}

func TestDispatcher_NotificationBadParams(t *testing.T) {
	d, _, sink, l := newTestDispatcher()
	d.Process([]byte(`{"jsonrpc":"2.0","method":"aria2.onDownloadStart","params":{"gid":"abc"}}`))
	if sink.total() != 0 {
		t.Fatalf("expected no callbacks, got %d", sink.total())
	}
	if len(l.Warnings()) != 1 {
		t.Fatalf("expected one warning, got %v", l.Warnings())
	}
}

func TestDispatcher_VersionResult(t *testing.T) {
	d, tbl, sink, _ := newTestDispatcher()
	if err := tbl.Register(IntID(42), MethodGetVersion); err != nil {
		t.Fatal(err)
	}
	d.Process([]byte(`{"jsonrpc":"2.0","id":42,"result":{"version":"1.36.0","enabledFeatures":["Async DNS"]}}`))
	if len(sink.versions) != 1 || sink.versions[0].Version != "1.36.0" {
		t.Fatalf("unexpected versions %+v", sink.versions)
	}
	if len(sink.versions[0].EnabledFeatures) != 1 {
		t.Fatalf("unexpected features %v", sink.versions[0].EnabledFeatures)
	}
}

func TestDispatcher_UnresolvedResult(t *testing.T) {
	d, _, sink, l := newTestDispatcher()
	d.Process([]byte(`{"jsonrpc":"2.0","id":42,"result":{"version":"1.36.0"}}`))
	if sink.total() != 0 {
		t.Fatalf("expected no callbacks, got %d", sink.total())
	}
	w := l.Warnings()
	if len(w) != 1 || !strings.Contains(w[0], "42") {
		t.Fatalf("expected warning naming the id, got %v", w)
	}
}

func TestDispatcher_MissingVersionDropped(t *testing.T) {
	d, tbl, sink, l := newTestDispatcher()
	if err := tbl.Register(IntID(42), MethodGetVersion); err != nil {
		t.Fatal(err)
	}
	d.Process([]byte(`{"id":42,"result":{"version":"1.36.0"}}`))
	d.Process([]byte(`{"method":"aria2.onDownloadStart","params":[{"gid":"abc"}]}`))
	if sink.total() != 0 {
		t.Fatalf("expected no callbacks, got %d", sink.total())
	}
	if len(l.Warnings()) != 2 {
		t.Fatalf("expected two warnings, got %v", l.Warnings())
	}
}

func TestDispatcher_UnsupportedResult(t *testing.T) {
	d, tbl, sink, l := newTestDispatcher()
	if err := tbl.Register(IntID(5), "aria2.pause"); err != nil {
		t.Fatal(err)
	}
	d.Process([]byte(`{"jsonrpc":"2.0","id":5,"result":"2089b05ecca3d829"}`))
	if sink.total() != 0 {
		t.Fatalf("expected no callbacks, got %d", sink.total())
	}
	if len(l.Infos()) != 1 || len(l.Warnings()) != 0 {
		t.Fatalf("expected a single info line, got infos=%v warnings=%v", l.Infos(), l.Warnings())
	}
}

func TestDispatcher_SessionAndAddURI(t *testing.T) {
	d, tbl, sink, _ := newTestDispatcher()
	_ = tbl.Register(IntID(1), MethodGetSessionInfo)
	_ = tbl.Register(StringID("NH9907_P12"), MethodAddURI)

	d.Process([]byte(`{"jsonrpc":"2.0","id":1,"result":{"sessionId":"cd6a"}}`))
	d.Process([]byte(`{"jsonrpc":"2.0","id":"NH9907_P12","result":"2089b05ecca3d829"}`))

	if len(sink.sessions) != 1 || sink.sessions[0].SessionID != "cd6a" {
		t.Fatalf("unexpected sessions %+v", sink.sessions)
	}
	if len(sink.created) != 1 {
		t.Fatalf("expected one created task, got %d", len(sink.created))
	}
	if c := sink.created[0]; c.id != StringID("NH9907_P12") || c.gid != "2089b05ecca3d829" {
		t.Fatalf("unexpected created event %+v", c)
	}
}

func TestDispatcher_StatusResults(t *testing.T) {
	d, tbl, sink, _ := newTestDispatcher()
	_ = tbl.Register(IntID(1), MethodTellStatus)
	_ = tbl.Register(IntID(2), MethodTellActive)

	d.Process([]byte(`{"jsonrpc":"2.0","id":1,"result":{"gid":"g","status":"active","totalLength":"100","completedLength":"40"}}`))
	d.Process([]byte(`{"jsonrpc":"2.0","id":2,"result":[{"gid":"a1","status":"active"},{"gid":"a2","status":"waiting"}]}`))

	if len(sink.statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(sink.statuses))
	}
	if got := sink.statuses[0].String(); got != "g active 40/100" {
		t.Fatalf("unexpected tellStatus result %q", got)
	}
	if sink.statuses[1].GID != "a1" || sink.statuses[2].Status != StatusWaiting {
		t.Fatalf("unexpected tellActive results %+v %+v", sink.statuses[1], sink.statuses[2])
	}
}

func TestDispatcher_BadResultDropped(t *testing.T) {
	d, tbl, sink, l := newTestDispatcher()
	_ = tbl.Register(IntID(1), MethodTellStatus)
	d.Process([]byte(`{"jsonrpc":"2.0","id":1,"result":{"gid":"g","status":"exploded"}}`))
	if sink.total() != 0 {
		t.Fatalf("expected no callbacks, got %d", sink.total())
	}
	if len(l.Warnings()) != 1 {
		t.Fatalf("expected one warning, got %v", l.Warnings())
	}
}

func TestDispatcher_ErrorResponse(t *testing.T) {
	tbl := NewCorrelationTable()
	ev := newEvents()
	l := logger.NewMockLogger()
	d := newDispatcher(tbl, JSONCodec{}, ev.handlers(), l)
	_ = tbl.Register(IntID(9), MethodAddURI)

	d.Process([]byte(`{"jsonrpc":"2.0","id":9,"error":{"code":1,"message":"Unauthorized"}}`))
	rerr := waitFor(t, ev.errors)
	if rerr.ID != IntID(9) || rerr.Method != MethodAddURI || rerr.Code != jrpc2.Code(1) || rerr.Message != "Unauthorized" {
		t.Fatalf("unexpected remote error %+v", rerr)
	}
	if want := "aria2.addUri (id 9) failed: [1] Unauthorized"; rerr.Error() != want {
		t.Fatalf("Error() = %q, want %q", rerr.Error(), want)
	}

	d.Process([]byte(`{"jsonrpc":"2.0","id":10,"error":{"code":-32601,"message":"Method not found"}}`))
	rerr = waitFor(t, ev.errors)
	if rerr.Method != "" {
		t.Fatalf("unresolved error should have no method, got %q", rerr.Method)
	}
	if want := "request 10 failed: [-32601] Method not found"; rerr.Error() != want {
		t.Fatalf("Error() = %q, want %q", rerr.Error(), want)
	}
	if len(l.Warnings()) != 2 {
		t.Fatalf("expected every error response to be logged, got %v", l.Warnings())
	}
}

func TestDispatcher_ErrorResponseWithoutErrorSink(t *testing.T) {
	d, tbl, sink, l := newTestDispatcher()
	_ = tbl.Register(IntID(9), MethodAddURI)
	d.Process([]byte(`{"jsonrpc":"2.0","id":9,"error":{"code":1,"message":"Unauthorized"}}`))
	if sink.total() != 0 {
		t.Fatalf("expected no callbacks, got %d", sink.total())
	}
	if w := l.Warnings(); len(w) != 1 || !strings.Contains(w[0], "Unauthorized") {
		t.Fatalf("expected the error to be logged, got %v", w)
	}
}
