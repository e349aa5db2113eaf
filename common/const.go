package common

// EventKind is the kind of a recorded task event.
type EventKind string

const (
	// EVENT_CREATED is recorded when addUri returns a gid.
	EVENT_CREATED EventKind = "created"
	// EVENT_STATUS is recorded for a polled tellStatus/tellActive snapshot.
	EVENT_STATUS EventKind = "status"
	// EVENT_NOTIFY is recorded for a status pushed by the daemon.
	EVENT_NOTIFY EventKind = "notify"
)

// AppName is used for the config directory and the keyring service.
const AppName = "ariarpc"
