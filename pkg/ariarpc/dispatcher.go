package ariarpc

import (
	"encoding/json"
	"fmt"

	"github.com/warpdl/ariarpc/pkg/logger"
)

// notificationStatus maps pushed event names to the status they announce.
var notificationStatus = map[string]StatusValue{
	NotifyDownloadStart:    StatusActive,
	NotifyDownloadPause:    StatusPaused,
	NotifyDownloadComplete: StatusComplete,
	NotifyDownloadError:    StatusError,
}

// resultDecoder decodes the result of one method and hands it to the sink.
type resultDecoder func(id ID, result json.RawMessage) error

// Dispatcher classifies inbound frames and routes them to the EventSink.
// It keeps no state between frames apart from the shared pending table.
// Nothing it observes is fatal: problems are logged and the frame dropped.
type Dispatcher struct {
	table    pendingStore
	codec    Codec
	sink     EventSink
	log      logger.Logger
	decoders map[string]resultDecoder
}

func newDispatcher(table pendingStore, codec Codec, sink EventSink, l logger.Logger) *Dispatcher {
	d := &Dispatcher{
		table: table,
		codec: codec,
		sink:  sink,
		log:   l,
	}
	d.decoders = map[string]resultDecoder{
		MethodGetVersion:     d.decodeVersion,
		MethodGetSessionInfo: d.decodeSessionInfo,
		MethodAddURI:         d.decodeAddURI,
		MethodTellStatus:     d.decodeTellStatus,
		MethodTellActive:     d.decodeTellActive,
	}
	return d
}

// Process handles one inbound frame.
func (d *Dispatcher) Process(buf []byte) {
	switch m := d.codec.Decode(buf).(type) {
	case *Notification:
		d.notification(m)
	case *Result:
		d.result(m)
	case *ErrorResponse:
		d.remoteError(m)
	case *Malformed:
		d.log.Warning("dropping message: %v: %s", m.Reason, m.Raw)
	default:
		d.log.Warning("dropping message of unexpected type %T", m)
	}
}

func (d *Dispatcher) notification(n *Notification) {
	status, ok := notificationStatus[n.Method]
	if !ok {
		d.log.Warning("dropping notification: %v: %s", ErrUnknownNotification, n.Method)
		return
	}
	var tasks []TaskStatus
	if err := json.Unmarshal(n.Params, &tasks); err != nil {
		d.log.Warning("dropping notification %s: bad params: %v", n.Method, err)
		return
	}
	for _, t := range tasks {
		d.sink.OnTaskStatusUpdated(&TaskStatus{GID: t.GID, Status: status})
	}
}

func (d *Dispatcher) result(r *Result) {
	method, ok := d.table.Resolve(r.ID)
	if !ok {
		d.log.Warning("dropping result: %v %s", ErrUnresolvedCorrelation, r.ID)
		return
	}
	decode, ok := d.decoders[method]
	if !ok {
		d.log.Info("dropping result for id %s: %v %s", r.ID, ErrUnsupportedResult, method)
		return
	}
	if err := decode(r.ID, r.Result); err != nil {
		d.log.Warning("dropping %s result for id %s: %v", method, r.ID, err)
	}
}

func (d *Dispatcher) remoteError(e *ErrorResponse) {
	method, _ := d.table.Resolve(e.ID)
	rerr := &RemoteError{
		ID:      e.ID,
		Method:  method,
		Code:    e.Err.Code,
		Message: e.Err.Message,
	}
	d.log.Warning("%v", rerr)
	if es, ok := d.sink.(ErrorSink); ok {
		es.OnRemoteError(rerr)
	}
}

func (d *Dispatcher) decodeVersion(_ ID, raw json.RawMessage) error {
	var v VersionInfo
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	d.sink.OnVersion(&v)
	return nil
}

func (d *Dispatcher) decodeSessionInfo(_ ID, raw json.RawMessage) error {
	var s SessionInfo
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	d.sink.OnSessionInfo(&s)
	return nil
}

func (d *Dispatcher) decodeAddURI(id ID, raw json.RawMessage) error {
	var gid string
	if err := json.Unmarshal(raw, &gid); err != nil {
		return fmt.Errorf("gid: %w", err)
	}
	d.sink.OnTaskCreated(id, gid)
	return nil
}

func (d *Dispatcher) decodeTellStatus(_ ID, raw json.RawMessage) error {
	var t TaskStatus
	if err := json.Unmarshal(raw, &t); err != nil {
		return err
	}
	d.sink.OnTaskStatusUpdated(&t)
	return nil
}

func (d *Dispatcher) decodeTellActive(_ ID, raw json.RawMessage) error {
	var tasks []TaskStatus
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return err
	}
	for i := range tasks {
		d.sink.OnTaskStatusUpdated(&tasks[i])
	}
	return nil
}
