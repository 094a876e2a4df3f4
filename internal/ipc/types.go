package ipc

import "minutes/internal/api"

// serviceName is the RPC namespace registered by the server.
const serviceName = "Minutes"

// StopRequest asks the daemon process to exit.
type StopRequest struct{}

// StopResponse acknowledges a stop request.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest requests daemon status.
type StatusRequest struct{}

// StatusResponse describes daemon state.
type StatusResponse struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	QueueDBPath   string             `json:"queueDbPath"`
	RecordsDBPath string             `json:"recordsDbPath"`
	LockPath      string             `json:"lockPath"`
	Workflow      api.WorkflowStatus `json:"workflow"`
}

// EnqueueRequest queues analysis for a meeting.
type EnqueueRequest struct {
	MeetingID string `json:"meetingId"`
	Kind      string `json:"kind"`
}

// EnqueueResponse returns the queued job id.
type EnqueueResponse struct {
	JobID string `json:"jobId"`
}

// JobRequest identifies a single job.
type JobRequest struct {
	ID string `json:"id"`
}

// CancelResponse acknowledges a cancel.
type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// RetryResponse returns the id of the new job.
type RetryResponse struct {
	JobID string `json:"jobId"`
}

// ListJobsRequest filters jobs by status. Empty means all.
type ListJobsRequest struct {
	Statuses []string `json:"statuses"`
}

// ListJobsResponse wraps a job list.
type ListJobsResponse struct {
	Jobs []api.Job `json:"jobs"`
}

// ShowJobResponse returns a single job.
type ShowJobResponse struct {
	Job api.Job `json:"job"`
}

// ClearFinishedRequest removes completed and errored jobs.
type ClearFinishedRequest struct{}

// ClearFinishedResponse reports removed rows.
type ClearFinishedResponse struct {
	Removed int64 `json:"removed"`
}

// AddMeetingRequest records a meeting.
type AddMeetingRequest struct {
	Title        string            `json:"title"`
	HeldAt       string            `json:"heldAt,omitempty"`
	Participants []api.Participant `json:"participants,omitempty"`
	AudioPath    string            `json:"audioPath,omitempty"`
	Transcript   string            `json:"transcript,omitempty"`
	Analyze      bool              `json:"analyze"`
}

// AddMeetingResponse returns the recorded meeting and any queued job.
type AddMeetingResponse struct {
	Meeting api.Meeting `json:"meeting"`
	JobID   string      `json:"jobId,omitempty"`
}

// ListMeetingsRequest lists meetings.
type ListMeetingsRequest struct{}

// ListMeetingsResponse wraps a meeting list.
type ListMeetingsResponse struct {
	Meetings []api.Meeting `json:"meetings"`
}

// ShowMeetingRequest identifies a meeting.
type ShowMeetingRequest struct {
	ID string `json:"id"`
}

// ShowMeetingResponse returns a meeting with tasks and jobs.
type ShowMeetingResponse struct {
	Meeting api.Meeting `json:"meeting"`
}

// AddPersonRequest creates a person.
type AddPersonRequest struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// AddPersonResponse returns the created person.
type AddPersonResponse struct {
	Person api.Person `json:"person"`
}

// ListPeopleRequest lists people.
type ListPeopleRequest struct{}

// ListPeopleResponse wraps the person directory.
type ListPeopleResponse struct {
	People []api.Person `json:"people"`
}

// DatabaseHealthRequest requests job database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse reports job database diagnostics.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"dbPath"`
	DatabaseExists   bool     `json:"databaseExists"`
	DatabaseReadable bool     `json:"databaseReadable"`
	SchemaVersion    int      `json:"schemaVersion"`
	TableExists      bool     `json:"tableExists"`
	MissingColumns   []string `json:"missingColumns,omitempty"`
	IntegrityCheck   bool     `json:"integrityCheck"`
	TotalJobs        int      `json:"totalJobs"`
	Error            string   `json:"error,omitempty"`
}

// TestNotifyRequest sends a test notification.
type TestNotifyRequest struct{}

// TestNotifyResponse reports the notification outcome.
type TestNotifyResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
