package ariarpc

func (c *Client) params(args ...any) []any {
	return buildParams(c.token, args...)
}

// AddURI submits a new download of uris, which must all point at the same
// file. A nil position appends the task to the end of the queue.
func (c *Client) AddURI(uris []string, opts *Options, position *int, callOpts ...CallOption) (ID, error) {
	if opts == nil {
		opts = &Options{}
	}
	return c.Call(MethodAddURI, c.params(uris, opts.ToMap(), position), callOpts...)
}

// TellStatus requests the status of gid. A nil or empty keys selects
// DefaultKeys.
func (c *Client) TellStatus(gid string, keys []string, callOpts ...CallOption) (ID, error) {
	return c.Call(MethodTellStatus, c.params(gid, orDefaultKeys(keys)), callOpts...)
}

// TellActive requests the status of every active download.
func (c *Client) TellActive(keys []string, callOpts ...CallOption) (ID, error) {
	return c.Call(MethodTellActive, c.params(orDefaultKeys(keys)), callOpts...)
}

// GetVersion requests the daemon's version and enabled features.
func (c *Client) GetVersion(callOpts ...CallOption) (ID, error) {
	return c.Call(MethodGetVersion, c.params(), callOpts...)
}

// GetSessionInfo requests the daemon's session id.
func (c *Client) GetSessionInfo(callOpts ...CallOption) (ID, error) {
	return c.Call(MethodGetSessionInfo, c.params(), callOpts...)
}

func orDefaultKeys(keys []string) []string {
	if len(keys) == 0 {
		return DefaultKeys
	}
	return keys
}
