package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli"
	"github.com/warpdl/ariarpc/internal/config"
	"github.com/warpdl/ariarpc/internal/history"
	"github.com/warpdl/ariarpc/pkg/ariarpc"
	"github.com/warpdl/ariarpc/pkg/logger"
)

var (
	ErrTimeout    = errors.New("timed out waiting for the daemon")
	ErrConnClosed = errors.New("connection closed by the daemon")
)

type created struct {
	id  ariarpc.ID
	gid string
}

// waiter forwards client callbacks to channels so that a command can block
// on the one it is interested in. Sends never block the receive loop.
// statuses carries both pushed and requested statuses; see isSnapshot.
type waiter struct {
	log      logger.Logger
	statuses chan *ariarpc.TaskStatus
	versions chan *ariarpc.VersionInfo
	sessions chan *ariarpc.SessionInfo
	created  chan created
	errors   chan *ariarpc.RemoteError
}

func newWaiter(l logger.Logger) *waiter {
	return &waiter{
		log:      l,
		statuses: make(chan *ariarpc.TaskStatus, 256),
		versions: make(chan *ariarpc.VersionInfo, 4),
		sessions: make(chan *ariarpc.SessionInfo, 4),
		created:  make(chan created, 16),
		errors:   make(chan *ariarpc.RemoteError, 16),
	}
}

func forward[T any](l logger.Logger, ch chan T, v T) {
	select {
	case ch <- v:
	default:
		l.Warning("dropping %T: nothing is reading", v)
	}
}

func (w *waiter) OnConnected() {}

func (w *waiter) OnTaskStatusUpdated(s *ariarpc.TaskStatus) {
	forward(w.log, w.statuses, s)
}

func (w *waiter) OnVersion(v *ariarpc.VersionInfo) {
	forward(w.log, w.versions, v)
}

func (w *waiter) OnSessionInfo(s *ariarpc.SessionInfo) {
	forward(w.log, w.sessions, s)
}

func (w *waiter) OnRemoteError(err *ariarpc.RemoteError) {
	forward(w.log, w.errors, err)
}

func (w *waiter) OnTaskCreated(id ariarpc.ID, gid string) {
	forward(w.log, w.created, created{id: id, gid: gid})
}

var (
	_ ariarpc.EventSink = (*waiter)(nil)
	_ ariarpc.ErrorSink = (*waiter)(nil)
)

// session is one connected client plus everything a command needs around
// it.
type session struct {
	cfg     *config.Config
	client  *ariarpc.Client
	w       *waiter
	log     logger.Logger
	timeout time.Duration
	// done receives the result of the receive loop.
	done chan error
}

// openSession loads the configuration, connects to the daemon and starts
// the receive loop.
func openSession(ctx *cli.Context) (*session, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	l, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	secret, err := config.ResolveSecret(cfg, config.NewSecretStore())
	if err != nil {
		l.Warning("reading secret from keyring: %v", err)
	}
	s, err := connectSession(cfg, secret, l, ctx.GlobalDuration("timeout"))
	if err != nil {
		l.Close()
		return nil, err
	}
	return s, nil
}

func connectSession(cfg *config.Config, secret string, l logger.Logger, timeout time.Duration) (*session, error) {
	if timeout <= 0 {
		timeout = DEF_TIMEOUT
	}
	w := newWaiter(l)
	client := ariarpc.NewClient(&ariarpc.ClientOpts{
		Secret:     secret,
		Sink:       w,
		Logger:     l,
		PendingTTL: cfg.RPC.PendingTTL.Duration,
	})
	dctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Connect(dctx, cfg.Endpoint(), &ariarpc.DialOpts{Proxy: cfg.RPC.Proxy}); err != nil {
		return nil, err
	}
	s := &session{
		cfg:     cfg,
		client:  client,
		w:       w,
		log:     l,
		timeout: timeout,
		done:    make(chan error, 1),
	}
	go func() { s.done <- client.Listen() }()
	return s, nil
}

func (s *session) Close() error {
	err := s.client.Close()
	s.log.Close()
	return err
}

// openHistory opens the configured history database.
func (s *session) openHistory() (*history.Store, error) {
	store, err := openHistory(s.cfg)
	if err != nil {
		return nil, err
	}
	s.log.Debug("recording history to %s", store.Path())
	return store, nil
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(path)
	if err != nil {
		return nil, err
	}
	if err := store.Init(context.Background()); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// await blocks until ch yields, the daemon reports an error, the
// connection ends or the session timeout passes.
func await[T any](s *session, ch <-chan T) (T, error) {
	return awaitMatch(s, ch, func(T) bool { return true })
}

// awaitMatch is await for the first value match accepts. Values it rejects
// are dropped.
func awaitMatch[T any](s *session, ch <-chan T, match func(T) bool) (T, error) {
	var zero T
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	for {
		select {
		case v := <-ch:
			if match(v) {
				return v, nil
			}
		case rerr := <-s.w.errors:
			return zero, rerr
		case err := <-s.done:
			if err == nil {
				err = ErrConnClosed
			}
			return zero, err
		case <-timer.C:
			return zero, ErrTimeout
		}
	}
}

// isSnapshot reports whether ts answers a status request. Statuses pushed
// by the daemon carry no lengths and may belong to any task.
func isSnapshot(ts *ariarpc.TaskStatus) bool {
	return ts.TotalLength != nil || ts.CompletedLength != nil
}

// collectStatuses gathers requested task statuses until a version result
// arrives. aria2 answers the requests of one connection in order, so a
// getVersion sent after tellActive marks the end of its statuses. Pushed
// statuses are skipped and each gid is listed once.
func collectStatuses(s *session) ([]*ariarpc.TaskStatus, error) {
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	var list []*ariarpc.TaskStatus
	seen := make(map[string]int)
	add := func(st *ariarpc.TaskStatus) {
		if !isSnapshot(st) {
			return
		}
		if i, ok := seen[st.GID]; ok {
			list[i] = st
			return
		}
		seen[st.GID] = len(list)
		list = append(list, st)
	}
	for {
		select {
		case st := <-s.w.statuses:
			add(st)
		case <-s.w.versions:
			// statuses delivered before the version are already buffered
			for {
				select {
				case st := <-s.w.statuses:
					add(st)
				default:
					return list, nil
				}
			}
		case rerr := <-s.w.errors:
			return nil, rerr
		case err := <-s.done:
			if err == nil {
				err = ErrConnClosed
			}
			return nil, err
		case <-timer.C:
			return nil, ErrTimeout
		}
	}
}

// parseID reads a correlation id given on the command line. Integers
// become integer ids, anything else a string id.
func parseID(s string) ariarpc.ID {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ariarpc.IntID(n)
	}
	return ariarpc.StringID(s)
}

func percent(ts *ariarpc.TaskStatus) string {
	if ts.TotalLength == nil || ts.CompletedLength == nil || *ts.TotalLength <= 0 {
		return "-"
	}
	done, total := *ts.CompletedLength, *ts.TotalLength
	return fmt.Sprintf("%d%%", done*100/total)
}
