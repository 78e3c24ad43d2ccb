package ipc

import (
	"encoding/json"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Rejourney.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests daemon shutdown.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Rejourney.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionList returns summaries for all archived sessions.
func (c *Client) SessionList() (*SessionListResponse, error) {
	var resp SessionListResponse
	if err := c.client.Call("Rejourney.SessionList", SessionListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionDescribe returns the summary for a single session.
func (c *Client) SessionDescribe(id string) (*SessionDescribeResponse, error) {
	var resp SessionDescribeResponse
	if err := c.client.Call("Rejourney.SessionDescribe", SessionDescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionIngest archives a raw capture payload.
func (c *Client) SessionIngest(payload json.RawMessage) (*SessionIngestResponse, error) {
	var resp SessionIngestResponse
	if err := c.client.Call("Rejourney.SessionIngest", SessionIngestRequest{Payload: payload}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionDelete removes an archived session.
func (c *Client) SessionDelete(id string) (*SessionDeleteResponse, error) {
	var resp SessionDeleteResponse
	if err := c.client.Call("Rejourney.SessionDelete", SessionDeleteRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Load makes an archived session the active replay.
func (c *Client) Load(id string) (*PlaybackResponse, error) {
	var resp PlaybackResponse
	if err := c.client.Call("Rejourney.Load", LoadRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Unload discards the active replay.
func (c *Client) Unload() (*UnloadResponse, error) {
	var resp UnloadResponse
	if err := c.client.Call("Rejourney.Unload", UnloadRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Play resumes the active replay clock.
func (c *Client) Play() (*PlaybackResponse, error) {
	var resp PlaybackResponse
	if err := c.client.Call("Rejourney.Play", PlayRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pause halts the active replay clock.
func (c *Client) Pause() (*PlaybackResponse, error) {
	var resp PlaybackResponse
	if err := c.client.Call("Rejourney.Pause", PauseRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Seek jumps to an absolute position in seconds.
func (c *Client) Seek(seconds float64) (*PlaybackResponse, error) {
	var resp PlaybackResponse
	if err := c.client.Call("Rejourney.Seek", SeekRequest{Seconds: seconds}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Skip moves by a relative number of seconds.
func (c *Client) Skip(seconds float64) (*PlaybackResponse, error) {
	var resp PlaybackResponse
	if err := c.client.Call("Rejourney.Skip", SkipRequest{Seconds: seconds}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetRate changes the playback speed multiplier.
func (c *Client) SetRate(rate float64) (*PlaybackResponse, error) {
	var resp PlaybackResponse
	if err := c.client.Call("Rejourney.SetRate", RateRequest{Rate: rate}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Restart rewinds to the beginning and plays.
func (c *Client) Restart() (*PlaybackResponse, error) {
	var resp PlaybackResponse
	if err := c.client.Call("Rejourney.Restart", RestartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Scrub toggles scrub mode on the active replay clock.
func (c *Client) Scrub(active bool) (*PlaybackResponse, error) {
	var resp PlaybackResponse
	if err := c.client.Call("Rejourney.Scrub", ScrubRequest{Active: active}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// State fetches the clock state without mutating it.
func (c *Client) State() (*PlaybackResponse, error) {
	var resp PlaybackResponse
	if err := c.client.Call("Rejourney.State", StateRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Overlay fetches the gesture overlay at the current position.
func (c *Client) Overlay() (*OverlayResponse, error) {
	var resp OverlayResponse
	if err := c.client.Call("Rejourney.Overlay", OverlayRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Timeline fetches the normalized timeline for a session. An empty id
// targets the active replay.
func (c *Client) Timeline(id string) (*TimelineResponse, error) {
	var resp TimelineResponse
	if err := c.client.Call("Rejourney.Timeline", TimelineRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Density fetches the density strip for a session. An empty id targets the
// active replay.
func (c *Client) Density(id string) (*DensityResponse, error) {
	var resp DensityResponse
	if err := c.client.Call("Rejourney.Density", DensityRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Rejourney.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
