// Package ariarpc is a client for the JSON-RPC interface of the aria2
// download daemon over a websocket.
//
// A Client sends calls without waiting for their answers. Every call is
// tagged with a correlation id and recorded as pending before it is
// written; the Dispatcher matches each inbound response to the pending
// method by id, decodes the result for that method and reports it to the
// EventSink. Download events pushed by the daemon (start, pause, complete,
// error) reach the same sink as task status updates.
//
//	c := ariarpc.NewClient(&ariarpc.ClientOpts{Secret: "s3cret", Sink: &ariarpc.Handlers{
//		VersionHandler: func(v *ariarpc.VersionInfo) { fmt.Println(v.Version) },
//	}})
//	if err := c.Connect(ctx, ariarpc.Endpoint(false, "127.0.0.1", 6800, "/jsonrpc"), nil); err != nil {
//		return err
//	}
//	go c.Listen()
//	c.GetVersion()
//
// There is no retry, reconnection or request timeout; callers that need
// them build them on top.
package ariarpc
