package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Job describes a queue job in a transport-friendly format.
type Job struct {
	ID          string `json:"id"`
	SubjectID   string `json:"subjectId"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	StartedAt   string `json:"startedAt,omitempty"`
	CompletedAt string `json:"completedAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Participant is a meeting attendee.
type Participant struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Segment is a timed transcript segment.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// Task is an action item extracted from a meeting.
type Task struct {
	ID           string `json:"id"`
	MeetingID    string `json:"meetingId"`
	JobID        string `json:"jobId,omitempty"`
	Title        string `json:"title"`
	AssigneeID   string `json:"assigneeId,omitempty"`
	AssigneeName string `json:"assigneeName,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// Person is a directory entry that tasks can be assigned to.
type Person struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Meeting describes a meeting record and its analysis output.
type Meeting struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	HeldAt       string        `json:"heldAt,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
	AudioPath    string        `json:"audioPath,omitempty"`
	Transcript   string        `json:"transcript,omitempty"`
	Segments     []Segment     `json:"segments,omitempty"`
	Summary      string        `json:"summary,omitempty"`
	Decisions    []string      `json:"decisions,omitempty"`
	Processed    bool          `json:"processed"`
	Tasks        []Task        `json:"tasks,omitempty"`
	Jobs         []Job         `json:"jobs,omitempty"`
	CreatedAt    string        `json:"createdAt,omitempty"`
	UpdatedAt    string        `json:"updatedAt,omitempty"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running    bool           `json:"running"`
	Draining   bool           `json:"draining"`
	QueueStats map[string]int `json:"queueStats"`
	LastError  string         `json:"lastError,omitempty"`
	CurrentJob *Job           `json:"currentJob,omitempty"`
}
