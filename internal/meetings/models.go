package meetings

import (
	"time"

	"minutes/internal/analysis"
)

// Participant lists an attendee name and optional role.
type Participant = analysis.Participant

// Segment is one slice of a stored transcript.
type Segment = analysis.Segment

// Meeting is a recorded or transcribed meeting.
type Meeting struct {
	ID             string
	Title          string
	HeldAt         time.Time
	Participants   []Participant
	AudioPath      string
	TranscriptText string
	Segments       []Segment
	Summary        string
	Decisions      []string
	Processed      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasContent reports whether the meeting has audio or text to analyze.
func (m *Meeting) HasContent() bool {
	return m != nil && (m.AudioPath != "" || m.TranscriptText != "" || len(m.Segments) > 0)
}

// Person is someone tasks can be assigned to.
type Person struct {
	ID        string
	Name      string
	Role      string
	CreatedAt time.Time
}

// Task is an action item derived from a meeting.
type Task struct {
	ID           string
	MeetingID    string
	JobID        string
	Title        string
	AssigneeID   string
	AssigneeName string
	CreatedAt    time.Time
}
