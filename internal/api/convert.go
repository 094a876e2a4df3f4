package api

import (
	"time"

	"minutes/internal/meetings"
	"minutes/internal/queue"
	"minutes/internal/workflow"
)

// FromJob converts a queue job to its API representation.
func FromJob(job *queue.Job) Job {
	if job == nil {
		return Job{}
	}
	return Job{
		ID:          job.ID,
		SubjectID:   job.SubjectID,
		Kind:        string(job.Kind),
		Status:      string(job.Status),
		Progress:    job.Progress,
		Message:     job.Message,
		Error:       job.Error,
		CreatedAt:   formatTime(job.CreatedAt),
		StartedAt:   formatTimePtr(job.StartedAt),
		CompletedAt: formatTimePtr(job.CompletedAt),
		UpdatedAt:   formatTime(job.UpdatedAt),
	}
}

// FromJobs converts a slice of queue jobs into API DTOs.
func FromJobs(jobs []*queue.Job) []Job {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// FromMeeting converts a meeting record along with its tasks and jobs.
func FromMeeting(meeting *meetings.Meeting, tasks []*meetings.Task, jobs []*queue.Job) Meeting {
	if meeting == nil {
		return Meeting{}
	}
	dto := Meeting{
		ID:         meeting.ID,
		Title:      meeting.Title,
		HeldAt:     formatTime(meeting.HeldAt),
		AudioPath:  meeting.AudioPath,
		Transcript: meeting.TranscriptText,
		Summary:    meeting.Summary,
		Decisions:  append([]string(nil), meeting.Decisions...),
		Processed:  meeting.Processed,
		Tasks:      FromTasks(tasks),
		Jobs:       FromJobs(jobs),
		CreatedAt:  formatTime(meeting.CreatedAt),
		UpdatedAt:  formatTime(meeting.UpdatedAt),
	}
	for _, p := range meeting.Participants {
		dto.Participants = append(dto.Participants, Participant{Name: p.Name, Role: p.Role})
	}
	for _, s := range meeting.Segments {
		dto.Segments = append(dto.Segments, Segment{Start: s.Start, End: s.End, Text: s.Text, Speaker: s.Speaker})
	}
	return dto
}

// FromMeetings converts meeting records without tasks or jobs.
func FromMeetings(list []*meetings.Meeting) []Meeting {
	if len(list) == 0 {
		return nil
	}
	out := make([]Meeting, 0, len(list))
	for _, m := range list {
		out = append(out, FromMeeting(m, nil, nil))
	}
	return out
}

// FromTask converts a task record.
func FromTask(task *meetings.Task) Task {
	if task == nil {
		return Task{}
	}
	return Task{
		ID:           task.ID,
		MeetingID:    task.MeetingID,
		JobID:        task.JobID,
		Title:        task.Title,
		AssigneeID:   task.AssigneeID,
		AssigneeName: task.AssigneeName,
		CreatedAt:    formatTime(task.CreatedAt),
	}
}

// FromTasks converts a slice of task records.
func FromTasks(tasks []*meetings.Task) []Task {
	if len(tasks) == 0 {
		return nil
	}
	out := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, FromTask(task))
	}
	return out
}

// FromPerson converts a person record.
func FromPerson(person *meetings.Person) Person {
	if person == nil {
		return Person{}
	}
	return Person{
		ID:        person.ID,
		Name:      person.Name,
		Role:      person.Role,
		CreatedAt: formatTime(person.CreatedAt),
	}
}

// FromPeople converts a slice of person records.
func FromPeople(people []*meetings.Person) []Person {
	if len(people) == 0 {
		return nil
	}
	out := make([]Person, 0, len(people))
	for _, p := range people {
		out = append(out, FromPerson(p))
	}
	return out
}

// FromStatusSummary converts a workflow status summary.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	status := WorkflowStatus{
		Running:    summary.Running,
		Draining:   summary.Draining,
		LastError:  summary.LastError,
		QueueStats: make(map[string]int, len(summary.QueueStats)),
	}
	for s, count := range summary.QueueStats {
		status.QueueStats[string(s)] = count
	}
	if summary.CurrentJob != nil {
		job := FromJob(summary.CurrentJob)
		status.CurrentJob = &job
	}
	return status
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
