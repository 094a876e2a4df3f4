package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

const dialTimeout = 2 * time.Second

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
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
		_ = c.conn.Close()
	}
	return nil
}

func call[T any](c *Client, method string, req any) (*T, error) {
	var resp T
	if err := c.client.Call(serviceName+"."+method, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon process to exit.
func (c *Client) Stop() (*StopResponse, error) {
	return call[StopResponse](c, "Stop", StopRequest{})
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	return call[StatusResponse](c, "Status", StatusRequest{})
}

// Enqueue queues analysis of a meeting.
func (c *Client) Enqueue(meetingID, kind string) (*EnqueueResponse, error) {
	return call[EnqueueResponse](c, "Enqueue", EnqueueRequest{MeetingID: meetingID, Kind: kind})
}

// Cancel removes a pending or processing job.
func (c *Client) Cancel(jobID string) (*CancelResponse, error) {
	return call[CancelResponse](c, "Cancel", JobRequest{ID: jobID})
}

// Retry queues a new job for an errored one.
func (c *Client) Retry(jobID string) (*RetryResponse, error) {
	return call[RetryResponse](c, "Retry", JobRequest{ID: jobID})
}

// ListJobs lists jobs, optionally filtered by status.
func (c *Client) ListJobs(statuses []string) (*ListJobsResponse, error) {
	return call[ListJobsResponse](c, "ListJobs", ListJobsRequest{Statuses: statuses})
}

// ShowJob returns one job.
func (c *Client) ShowJob(jobID string) (*ShowJobResponse, error) {
	return call[ShowJobResponse](c, "ShowJob", JobRequest{ID: jobID})
}

// ClearFinished removes completed and errored jobs.
func (c *Client) ClearFinished() (*ClearFinishedResponse, error) {
	return call[ClearFinishedResponse](c, "ClearFinished", ClearFinishedRequest{})
}

// AddMeeting records a meeting.
func (c *Client) AddMeeting(req AddMeetingRequest) (*AddMeetingResponse, error) {
	return call[AddMeetingResponse](c, "AddMeeting", req)
}

// ListMeetings lists meetings, newest first.
func (c *Client) ListMeetings() (*ListMeetingsResponse, error) {
	return call[ListMeetingsResponse](c, "ListMeetings", ListMeetingsRequest{})
}

// ShowMeeting returns a meeting with its tasks and jobs.
func (c *Client) ShowMeeting(meetingID string) (*ShowMeetingResponse, error) {
	return call[ShowMeetingResponse](c, "ShowMeeting", ShowMeetingRequest{ID: meetingID})
}

// AddPerson adds a person to the directory.
func (c *Client) AddPerson(name, role string) (*AddPersonResponse, error) {
	return call[AddPersonResponse](c, "AddPerson", AddPersonRequest{Name: name, Role: role})
}

// ListPeople lists the person directory.
func (c *Client) ListPeople() (*ListPeopleResponse, error) {
	return call[ListPeopleResponse](c, "ListPeople", ListPeopleRequest{})
}

// DatabaseHealth retrieves job database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	return call[DatabaseHealthResponse](c, "DatabaseHealth", DatabaseHealthRequest{})
}

// TestNotify sends a test notification.
func (c *Client) TestNotify() (*TestNotifyResponse, error) {
	return call[TestNotifyResponse](c, "TestNotify", TestNotifyRequest{})
}
