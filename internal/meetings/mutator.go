package meetings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"minutes/internal/analysis"
	"minutes/internal/queue"
	"minutes/internal/services"
	"minutes/internal/storage"
)

var errMeetingMissing = errors.New("meeting does not exist")

// AnalysisRequest builds adapter input for a stored meeting. Audio analysis
// needs an audio path; text reanalysis uses the stored transcript, or the
// stored segments when no raw transcript was imported.
func (s *Store) AnalysisRequest(ctx context.Context, meetingID string, kind queue.Kind) (analysis.Request, error) {
	meeting, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return analysis.Request{}, mutationError("load meeting", meetingID, err)
	}
	if meeting == nil {
		return analysis.Request{}, mutationError("load meeting", meetingID, errMeetingMissing)
	}
	req := analysis.Request{
		Kind:         kind,
		MeetingID:    meeting.ID,
		Title:        meeting.Title,
		HeldAt:       meeting.HeldAt,
		Participants: meeting.Participants,
	}
	switch kind {
	case queue.KindTextReanalysis:
		req.Transcript = transcriptFor(meeting)
		if req.Transcript == "" {
			return analysis.Request{}, mutationError("load meeting", meetingID, errors.New("meeting has no transcript"))
		}
	default:
		if meeting.AudioPath == "" {
			return analysis.Request{}, mutationError("load meeting", meetingID, errors.New("meeting has no audio recording"))
		}
		req.AudioPath = meeting.AudioPath
	}
	return req, nil
}

func transcriptFor(meeting *Meeting) string {
	if text := strings.TrimSpace(meeting.TranscriptText); text != "" {
		return text
	}
	lines := make([]string, 0, len(meeting.Segments))
	for _, seg := range meeting.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if seg.Speaker != "" {
			text = seg.Speaker + ": " + text
		}
		lines = append(lines, text)
	}
	return strings.Join(lines, "\n")
}

// ApplyResult merges the result of job jobID into the meeting and creates one
// task per proposed task, all in a single transaction. Tasks an earlier run of
// the same job committed are replaced, so re-running a recovered job does not
// duplicate them. Assignees are resolved by exact name match under Unicode
// case folding; unknown names leave the task unassigned. Stored segments are
// kept when the result carries none.
func (s *Store) ApplyResult(ctx context.Context, jobID, meetingID string, result *analysis.Result) error {
	if result == nil {
		return mutationError("apply result", meetingID, errors.New("result is nil"))
	}
	segments, err := marshalList(result.Segments)
	if err != nil {
		return mutationError("apply result", meetingID, err)
	}
	decisions, err := marshalList(result.Decisions)
	if err != nil {
		return mutationError("apply result", meetingID, err)
	}

	err = storage.InTx(ctx, s.db, func(tx *sql.Tx) error {
		now := storage.FormatTime(time.Now())
		res, err := tx.ExecContext(ctx,
			`UPDATE meetings
             SET segments = CASE WHEN ? THEN ? ELSE segments END,
                 summary = ?, decisions = ?, processed = 1, updated_at = ?
             WHERE id = ?`,
			len(result.Segments) > 0, segments,
			storage.NullableString(strings.TrimSpace(result.Summary)), decisions, now, meetingID,
		)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return errMeetingMissing
		}

		if jobID != "" {
			if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE job_id = ?`, jobID); err != nil {
				return fmt.Errorf("clear tasks of job %s: %w", jobID, err)
			}
		}

		people, err := listPeople(ctx, tx)
		if err != nil {
			return err
		}
		for _, proposed := range result.Tasks {
			title := strings.TrimSpace(proposed.Title)
			if title == "" {
				continue
			}
			var assigneeID any
			if person := matchPerson(people, proposed.Assignee); person != nil {
				assigneeID = person.ID
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tasks (id, meeting_id, job_id, title, assignee_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
				uuid.NewString(), meetingID, storage.NullableString(jobID), title, assigneeID, now,
			); err != nil {
				return fmt.Errorf("insert task %q: %w", title, err)
			}
		}
		return nil
	})
	if err != nil {
		return mutationError("apply result", meetingID, err)
	}
	return nil
}

// SetProcessed sets the meeting's processed flag. A missing meeting is not an
// error so cancelling a job for a deleted meeting still succeeds.
func (s *Store) SetProcessed(ctx context.Context, meetingID string, processed bool) error {
	if _, err := storage.Exec(ctx, s.db,
		`UPDATE meetings SET processed = ?, updated_at = ? WHERE id = ?`,
		storage.BoolToInt(processed), storage.FormatTime(time.Now()), meetingID,
	); err != nil {
		return mutationError("set processed", meetingID, err)
	}
	return nil
}

// matchPerson returns the first person whose name equals name under Unicode
// case folding, or nil.
func matchPerson(people []*Person, name string) *Person {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	fold := cases.Fold()
	want := fold.String(name)
	for _, person := range people {
		if fold.String(strings.TrimSpace(person.Name)) == want {
			return person
		}
	}
	return nil
}

func mutationError(operation, meetingID string, err error) error {
	return services.Wrap(services.ErrMutation, "meetings", operation, "meeting "+meetingID, err)
}
