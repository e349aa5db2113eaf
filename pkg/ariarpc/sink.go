package ariarpc

// EventSink receives the asynchronous outcomes of a Client: connection
// state, pushed task events and decoded results. Callbacks run on the
// goroutine that calls Listen (OnConnected runs on the connecting one) and
// should not block.
type EventSink interface {
	OnConnected()
	OnTaskStatusUpdated(status *TaskStatus)
	OnVersion(version *VersionInfo)
	OnSessionInfo(session *SessionInfo)
	// OnTaskCreated reports the gid assigned to the addUri call sent with id.
	OnTaskCreated(id ID, gid string)
}

// ErrorSink is implemented by sinks that want remote error payloads in
// addition to the log line the dispatcher always writes.
type ErrorSink interface {
	OnRemoteError(err *RemoteError)
}

type (
	// ConnectedHandlerFunc is called once the connection is open.
	ConnectedHandlerFunc func()
	// TaskStatusHandlerFunc is called for every task status update, pushed or
	// requested.
	TaskStatusHandlerFunc func(status *TaskStatus)
	// VersionHandlerFunc is called with the result of aria2.getVersion.
	VersionHandlerFunc func(version *VersionInfo)
	// SessionInfoHandlerFunc is called with the result of aria2.getSessionInfo.
	SessionInfoHandlerFunc func(session *SessionInfo)
	// TaskCreatedHandlerFunc is called with the gid returned for an addUri
	// call and the id that call was sent with.
	TaskCreatedHandlerFunc func(id ID, gid string)
	// RemoteErrorHandlerFunc is called when the daemon answers with an error.
	RemoteErrorHandlerFunc func(err *RemoteError)
)

// Handlers is an EventSink built from optional callbacks. Nil handlers are
// skipped.
type Handlers struct {
	ConnectedHandler   ConnectedHandlerFunc
	TaskStatusHandler  TaskStatusHandlerFunc
	VersionHandler     VersionHandlerFunc
	SessionInfoHandler SessionInfoHandlerFunc
	TaskCreatedHandler TaskCreatedHandlerFunc
	RemoteErrorHandler RemoteErrorHandlerFunc
}

func (h *Handlers) OnConnected() {
	if h.ConnectedHandler != nil {
		h.ConnectedHandler()
	}
}

func (h *Handlers) OnTaskStatusUpdated(status *TaskStatus) {
	if h.TaskStatusHandler != nil {
		h.TaskStatusHandler(status)
	}
}

func (h *Handlers) OnVersion(version *VersionInfo) {
	if h.VersionHandler != nil {
		h.VersionHandler(version)
	}
}

func (h *Handlers) OnSessionInfo(session *SessionInfo) {
	if h.SessionInfoHandler != nil {
		h.SessionInfoHandler(session)
	}
}

func (h *Handlers) OnTaskCreated(id ID, gid string) {
	if h.TaskCreatedHandler != nil {
		h.TaskCreatedHandler(id, gid)
	}
}

func (h *Handlers) OnRemoteError(err *RemoteError) {
	if h.RemoteErrorHandler != nil {
		h.RemoteErrorHandler(err)
	}
}

var (
	_ EventSink = (*Handlers)(nil)
	_ ErrorSink = (*Handlers)(nil)
)
