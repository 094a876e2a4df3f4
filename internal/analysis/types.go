package analysis

import (
	"context"
	"time"

	"minutes/internal/queue"
)

// ProgressFunc receives advisory progress reports from an Analyzer.
type ProgressFunc func(percent int, message string)

// Analyzer produces structured results for one meeting.
type Analyzer interface {
	Analyze(ctx context.Context, req Request, progress ProgressFunc) (*Result, error)
}

// Participant is a named attendee used for prompting and speaker labels.
type Participant struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Request carries the meeting content reference and prompting metadata.
type Request struct {
	Kind         queue.Kind
	MeetingID    string
	Title        string
	HeldAt       time.Time
	Participants []Participant
	AudioPath    string
	Transcript   string
}

// Segment is one slice of transcript.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// ProposedTask is a delegated action item. Assignee is a free-form name to be
// resolved against known people.
type ProposedTask struct {
	Title    string `json:"title"`
	Assignee string `json:"assignee,omitempty"`
}

// Result is the structured output of an analysis run.
type Result struct {
	Segments  []Segment      `json:"segments"`
	Summary   string         `json:"summary"`
	Decisions []string       `json:"decisions"`
	Tasks     []ProposedTask `json:"tasks"`
}

func report(progress ProgressFunc, percent int, message string) {
	if progress != nil {
		progress(percent, message)
	}
}
