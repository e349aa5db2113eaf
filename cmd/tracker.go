package cmd

import (
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/warpdl/ariarpc/cmd/common"
	"github.com/warpdl/ariarpc/pkg/ariarpc"
)

// taskBar is the progress bar of one gid.
type taskBar struct {
	bar   *mpb.Bar
	total int64
	// time of the last length update, for the speed estimate
	last time.Time
}

// tracker keeps one bar per gid and feeds it task statuses. It is only
// used from the watch loop and is not safe for concurrent use.
type tracker struct {
	p    *mpb.Progress
	bars map[string]*taskBar
	now  func() time.Time
}

func newTracker(p *mpb.Progress) *tracker {
	return &tracker{
		p:    p,
		bars: make(map[string]*taskBar),
		now:  time.Now,
	}
}

// update applies ts to its bar, creating the bar on first sight. A
// terminal status finishes the bar and forgets the gid.
func (t *tracker) update(ts *ariarpc.TaskStatus) {
	tb, ok := t.bars[ts.GID]
	if !ok {
		if isTerminal(ts.Status) {
			return
		}
		var total int64
		if ts.TotalLength != nil {
			total = *ts.TotalLength
		}
		tb = &taskBar{
			bar:   common.NewTaskBar(t.p, ts.GID, total),
			total: total,
			last:  t.now(),
		}
		t.bars[ts.GID] = tb
	}
	if tb.total <= 0 && ts.TotalLength != nil && *ts.TotalLength > 0 {
		tb.total = *ts.TotalLength
		common.SetBarTotal(tb.bar, tb.total)
	}
	if ts.CompletedLength != nil {
		now := t.now()
		tb.bar.EwmaSetCurrent(*ts.CompletedLength, now.Sub(tb.last))
		tb.last = now
	}
	switch ts.Status {
	case ariarpc.StatusComplete:
		if tb.total > 0 {
			tb.bar.SetCurrent(tb.total)
		} else {
			tb.bar.SetTotal(-1, true)
		}
		delete(t.bars, ts.GID)
	case ariarpc.StatusError, ariarpc.StatusRemoved:
		tb.bar.Abort(false)
		delete(t.bars, ts.GID)
	}
}

// abortAll stops every bar still running.
func (t *tracker) abortAll() {
	for gid, tb := range t.bars {
		tb.bar.Abort(false)
		delete(t.bars, gid)
	}
}

func (t *tracker) len() int {
	return len(t.bars)
}

func isTerminal(s ariarpc.StatusValue) bool {
	switch s {
	case ariarpc.StatusComplete, ariarpc.StatusError, ariarpc.StatusRemoved:
		return true
	}
	return false
}
