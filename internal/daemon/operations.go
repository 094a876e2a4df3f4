package daemon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"minutes/internal/logging"
	"minutes/internal/meetings"
	"minutes/internal/notifications"
	"minutes/internal/queue"
	"minutes/internal/services"
)

// MeetingInput describes a meeting to record.
type MeetingInput struct {
	Title        string
	HeldAt       time.Time
	Participants []meetings.Participant
	AudioPath    string
	Transcript   string
	Analyze      bool
}

// MeetingDetail bundles a meeting with its tasks and jobs.
type MeetingDetail struct {
	Meeting *meetings.Meeting
	Tasks   []*meetings.Task
	Jobs    []*queue.Job
}

// Enqueue validates that meetingID can be analyzed as kind and queues a job.
func (d *Daemon) Enqueue(ctx context.Context, meetingID string, kind queue.Kind) (string, error) {
	if !d.cfg.HasLLMCredential() {
		return "", services.Wrap(services.ErrConfiguration, "daemon", "enqueue",
			"analysis API key not configured", nil)
	}
	meeting, err := d.records.GetMeeting(ctx, meetingID)
	if err != nil {
		return "", err
	}
	if meeting == nil {
		return "", services.Wrap(services.ErrNotFound, "daemon", "enqueue", fmt.Sprintf("meeting %s", meetingID), nil)
	}
	if err := checkContent(meeting, kind); err != nil {
		return "", err
	}
	return d.workflow.Enqueue(ctx, meetingID, kind)
}

func checkContent(meeting *meetings.Meeting, kind queue.Kind) error {
	switch kind {
	case queue.KindAudioAnalysis:
		if meeting.AudioPath == "" {
			return services.Wrap(services.ErrValidation, "daemon", "enqueue",
				fmt.Sprintf("meeting %s has no audio recording", meeting.ID), nil)
		}
	case queue.KindTextReanalysis:
		if strings.TrimSpace(meeting.TranscriptText) == "" && len(meeting.Segments) == 0 {
			return services.Wrap(services.ErrValidation, "daemon", "enqueue",
				fmt.Sprintf("meeting %s has no transcript", meeting.ID), nil)
		}
	default:
		return services.Wrap(services.ErrValidation, "daemon", "enqueue", fmt.Sprintf("unknown job kind %q", kind), nil)
	}
	return nil
}

// Cancel removes an active job.
func (d *Daemon) Cancel(ctx context.Context, jobID string) error {
	return d.workflow.Cancel(ctx, jobID)
}

// Retry queues a fresh job for an errored one.
func (d *Daemon) Retry(ctx context.Context, jobID string) (string, error) {
	if !d.cfg.HasLLMCredential() {
		return "", services.Wrap(services.ErrConfiguration, "daemon", "retry",
			"analysis API key not configured", nil)
	}
	return d.workflow.Retry(ctx, jobID)
}

// ListJobs returns jobs filtered by optional statuses.
func (d *Daemon) ListJobs(ctx context.Context, statuses []queue.Status) ([]*queue.Job, error) {
	return d.store.List(ctx, statuses...)
}

// ShowJob returns a single job.
func (d *Daemon) ShowJob(ctx context.Context, jobID string) (*queue.Job, error) {
	job, err := d.store.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "daemon", "show job", fmt.Sprintf("job %s", jobID), nil)
	}
	return job, nil
}

// ClearFinished removes completed and errored jobs.
func (d *Daemon) ClearFinished(ctx context.Context) (int64, error) {
	return d.store.ClearFinished(ctx)
}

// AddMeeting records a meeting and, when requested, queues its analysis.
// Audio takes precedence over a transcript when choosing the job kind.
func (d *Daemon) AddMeeting(ctx context.Context, input MeetingInput) (*meetings.Meeting, string, error) {
	meeting, err := d.records.CreateMeeting(ctx, meetings.Meeting{
		Title:          input.Title,
		HeldAt:         input.HeldAt,
		Participants:   input.Participants,
		AudioPath:      input.AudioPath,
		TranscriptText: input.Transcript,
	})
	if err != nil {
		return nil, "", err
	}
	d.logger.Info("meeting recorded",
		logging.String(logging.FieldEventType, "meeting_created"),
		logging.String(logging.FieldSubjectID, meeting.ID),
		logging.Bool("has_audio", meeting.AudioPath != ""),
	)
	if !input.Analyze {
		return meeting, "", nil
	}
	kind := queue.KindTextReanalysis
	if meeting.AudioPath != "" {
		kind = queue.KindAudioAnalysis
	}
	jobID, err := d.Enqueue(ctx, meeting.ID, kind)
	if err != nil {
		return meeting, "", err
	}
	return meeting, jobID, nil
}

// ListMeetings returns all meetings, newest first.
func (d *Daemon) ListMeetings(ctx context.Context) ([]*meetings.Meeting, error) {
	return d.records.ListMeetings(ctx)
}

// ShowMeeting returns a meeting with its tasks and jobs.
func (d *Daemon) ShowMeeting(ctx context.Context, meetingID string) (*MeetingDetail, error) {
	meeting, err := d.records.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, services.Wrap(services.ErrNotFound, "daemon", "show meeting", fmt.Sprintf("meeting %s", meetingID), nil)
	}
	tasks, err := d.records.TasksForMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	jobs, err := d.store.ListBySubject(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return &MeetingDetail{Meeting: meeting, Tasks: tasks, Jobs: jobs}, nil
}

// AddPerson adds a directory entry that tasks can be assigned to.
func (d *Daemon) AddPerson(ctx context.Context, name, role string) (*meetings.Person, error) {
	return d.records.AddPerson(ctx, name, role)
}

// ListPeople returns the person directory.
func (d *Daemon) ListPeople(ctx context.Context) ([]*meetings.Person, error) {
	return d.records.ListPeople(ctx)
}

// DatabaseHealth returns job database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	return d.store.CheckHealth(ctx)
}

// TestNotification sends a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "", err
	}
	return true, "test notification sent", nil
}
