package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	cmdCommon "github.com/warpdl/ariarpc/cmd/common"
	"github.com/warpdl/ariarpc/common"
	"github.com/warpdl/ariarpc/internal/history"
	"github.com/warpdl/ariarpc/pkg/ariarpc"
)

var watchFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "record, r",
		Usage: "store every observed status in the history",
	},
	cli.DurationFlag{
		Name:  "interval, i",
		Usage: "how often to poll the active downloads",
		Value: DEF_POLL_INTERVAL,
	},
}

// eventKind tells polled snapshots, which carry lengths, from pushed
// notifications, which do not.
func eventKind(ts *ariarpc.TaskStatus) common.EventKind {
	if isSnapshot(ts) {
		return common.EVENT_STATUS
	}
	return common.EVENT_NOTIFY
}

func watch(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	s, err := openSession(ctx)
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "watch", "connect", err)
		return nil
	}
	defer s.Close()

	var store *history.Store
	if ctx.Bool("record") {
		store, err = s.openHistory()
		if err != nil {
			cmdCommon.PrintRuntimeErr(ctx, "watch", "open_history", err)
			return nil
		}
		defer store.Close()
	}
	interval := ctx.Duration("interval")
	if interval <= 0 {
		interval = DEF_POLL_INTERVAL
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return watchLoop(sigCtx, s, store, interval)
}

func watchLoop(ctx context.Context, s *session, store *history.Store, interval time.Duration) error {
	p := mpb.New(mpb.WithOutput(out), mpb.WithWidth(40))
	tr := newTracker(p)
	defer func() {
		tr.abortAll()
		p.Wait()
	}()

	poll := func() {
		if _, err := s.client.TellActive(nil); err != nil {
			s.log.Warning("polling active downloads: %v", err)
		}
	}
	poll()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			poll()
		case ts := <-s.w.statuses:
			tr.update(ts)
			if store == nil {
				continue
			}
			if _, err := store.Record(context.Background(), eventKind(ts), ts); err != nil {
				s.log.Warning("%v", err)
			}
		case rerr := <-s.w.errors:
			s.log.Warning("%v", rerr)
		case err := <-s.done:
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "ariactl: connection closed by the daemon")
			return nil
		}
	}
}
