package ariarpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Remote method names.
const (
	MethodAddURI         = "aria2.addUri"
	MethodTellStatus     = "aria2.tellStatus"
	MethodTellActive     = "aria2.tellActive"
	MethodGetVersion     = "aria2.getVersion"
	MethodGetSessionInfo = "aria2.getSessionInfo"
)

// Notification method names pushed by the daemon.
const (
	NotifyDownloadStart    = "aria2.onDownloadStart"
	NotifyDownloadPause    = "aria2.onDownloadPause"
	NotifyDownloadComplete = "aria2.onDownloadComplete"
	NotifyDownloadError    = "aria2.onDownloadError"
)

// DefaultKeys is the key set requested by TellStatus and TellActive when
// the caller does not name any.
var DefaultKeys = []string{"gid", "status", "totalLength", "completedLength"}

// StatusValue is the lifecycle state of a download task.
type StatusValue string

const (
	StatusActive   StatusValue = "active"
	StatusWaiting  StatusValue = "waiting"
	StatusPaused   StatusValue = "paused"
	StatusError    StatusValue = "error"
	StatusComplete StatusValue = "complete"
	StatusRemoved  StatusValue = "removed"
)

func (s *StatusValue) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch sv := StatusValue(v); sv {
	case "", StatusActive, StatusWaiting, StatusPaused, StatusError, StatusComplete, StatusRemoved:
		*s = sv
		return nil
	}
	return fmt.Errorf("unknown task status %q", v)
}

// TaskStatus is a snapshot of one download task. Lengths are nil when the
// daemon did not report them.
type TaskStatus struct {
	GID             string      `json:"gid"`
	Status          StatusValue `json:"status,omitempty"`
	TotalLength     *int64      `json:"totalLength,omitempty"`
	CompletedLength *int64      `json:"completedLength,omitempty"`
}

// UnmarshalJSON decodes a task status, ignoring unknown fields. aria2
// reports lengths as decimal strings; bare numbers are accepted too.
func (t *TaskStatus) UnmarshalJSON(b []byte) error {
	var aux struct {
		GID             string          `json:"gid"`
		Status          StatusValue     `json:"status"`
		TotalLength     json.RawMessage `json:"totalLength"`
		CompletedLength json.RawMessage `json:"completedLength"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	total, err := parseLength(aux.TotalLength)
	if err != nil {
		return fmt.Errorf("totalLength: %w", err)
	}
	completed, err := parseLength(aux.CompletedLength)
	if err != nil {
		return fmt.Errorf("completedLength: %w", err)
	}
	*t = TaskStatus{
		GID:             aux.GID,
		Status:          aux.Status,
		TotalLength:     total,
		CompletedLength: completed,
	}
	return nil
}

func parseLength(raw json.RawMessage) (*int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (t *TaskStatus) String() string {
	var sb strings.Builder
	sb.WriteString(t.GID)
	if t.Status != "" {
		sb.WriteString(" ")
		sb.WriteString(string(t.Status))
	}
	switch {
	case t.CompletedLength != nil && t.TotalLength != nil:
		fmt.Fprintf(&sb, " %d/%d", *t.CompletedLength, *t.TotalLength)
	case t.CompletedLength != nil:
		fmt.Fprintf(&sb, " %d loaded.", *t.CompletedLength)
	case t.TotalLength != nil:
		fmt.Fprintf(&sb, " unknown/%d", *t.TotalLength)
	}
	return sb.String()
}

// Options are per-download settings sent with addUri.
type Options struct {
	Dir   string
	Out   string
	Proxy string
}

// ToMap converts o to the option mapping aria2 expects. Unset fields are
// left out. A nil receiver yields nil.
func (o *Options) ToMap() map[string]string {
	if o == nil {
		return nil
	}
	m := make(map[string]string)
	if o.Dir != "" {
		m["dir"] = o.Dir
	}
	if o.Out != "" {
		m["out"] = o.Out
	}
	if o.Proxy != "" {
		m["all-proxy"] = o.Proxy
	}
	return m
}

// VersionInfo is the result of aria2.getVersion.
type VersionInfo struct {
	Version         string   `json:"version"`
	EnabledFeatures []string `json:"enabledFeatures,omitempty"`
}

// SessionInfo is the result of aria2.getSessionInfo.
type SessionInfo struct {
	SessionID string `json:"sessionId"`
}
