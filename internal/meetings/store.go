package meetings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"minutes/internal/config"
	"minutes/internal/services"
	"minutes/internal/storage"
)

// Store manages meeting, people and task records backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the records database in the configured data directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.RecordsDBPath())
}

// OpenPath opens the records database at an explicit location.
func OpenPath(path string) (*Store, error) {
	db, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const meetingColumns = `id, title, held_at, participants, audio_path, transcript_text,
    segments, summary, decisions, processed, created_at, updated_at`

// CreateMeeting stores a new meeting. ID, HeldAt and timestamps are filled in
// when empty; Processed always starts false.
func (s *Store) CreateMeeting(ctx context.Context, meeting Meeting) (*Meeting, error) {
	meeting.Title = strings.TrimSpace(meeting.Title)
	if meeting.Title == "" {
		return nil, services.Wrap(services.ErrValidation, "meetings", "create meeting", "title is required", nil)
	}
	meeting.AudioPath = strings.TrimSpace(meeting.AudioPath)
	if meeting.ID == "" {
		meeting.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if meeting.HeldAt.IsZero() {
		meeting.HeldAt = now
	}
	meeting.Processed = false
	meeting.CreatedAt = now
	meeting.UpdatedAt = now

	participants, err := marshalList(meeting.Participants)
	if err != nil {
		return nil, recordsError("create meeting", err)
	}
	segments, err := marshalList(meeting.Segments)
	if err != nil {
		return nil, recordsError("create meeting", err)
	}
	decisions, err := marshalList(meeting.Decisions)
	if err != nil {
		return nil, recordsError("create meeting", err)
	}
	timestamp := storage.FormatTime(now)
	if _, err := storage.Exec(ctx, s.db,
		`INSERT INTO meetings (`+meetingColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		meeting.ID, meeting.Title, storage.FormatTime(meeting.HeldAt), participants,
		storage.NullableString(meeting.AudioPath), storage.NullableString(meeting.TranscriptText),
		segments, storage.NullableString(meeting.Summary), decisions, timestamp, timestamp,
	); err != nil {
		return nil, recordsError("create meeting", err)
	}
	return &meeting, nil
}

// GetMeeting fetches a meeting by identifier. A missing meeting returns nil, nil.
func (s *Store) GetMeeting(ctx context.Context, id string) (*Meeting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id)
	meeting, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, recordsError("get meeting", err)
	}
	return meeting, nil
}

// ListMeetings returns every meeting, most recently held first.
func (s *Store) ListMeetings(ctx context.Context) ([]*Meeting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+meetingColumns+` FROM meetings ORDER BY held_at DESC, rowid DESC`)
	if err != nil {
		return nil, recordsError("list meetings", err)
	}
	defer rows.Close()

	var meetings []*Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, recordsError("list meetings", err)
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, recordsError("list meetings", err)
	}
	return meetings, nil
}

// AddPerson registers someone tasks can be assigned to. Names must be unique
// under case folding so assignee resolution stays unambiguous.
func (s *Store) AddPerson(ctx context.Context, name, role string) (*Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "meetings", "add person", "name is required", nil)
	}
	people, err := s.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	if existing := matchPerson(people, name); existing != nil {
		return nil, services.Wrap(services.ErrValidation, "meetings", "add person",
			fmt.Sprintf("%q already exists as %q", name, existing.Name), nil)
	}
	person := &Person{
		ID:        uuid.NewString(),
		Name:      name,
		Role:      strings.TrimSpace(role),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := storage.Exec(ctx, s.db,
		`INSERT INTO people (id, name, role, created_at) VALUES (?, ?, ?, ?)`,
		person.ID, person.Name, storage.NullableString(person.Role), storage.FormatTime(person.CreatedAt),
	); err != nil {
		return nil, recordsError("add person", err)
	}
	return person, nil
}

// ListPeople returns every person in insertion order.
func (s *Store) ListPeople(ctx context.Context) ([]*Person, error) {
	return listPeople(ctx, s.db)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listPeople(ctx context.Context, q querier) ([]*Person, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, role, created_at FROM people ORDER BY rowid`)
	if err != nil {
		return nil, recordsError("list people", err)
	}
	defer rows.Close()

	var people []*Person
	for rows.Next() {
		var (
			person     Person
			role       sql.NullString
			createdRaw string
		)
		if err := rows.Scan(&person.ID, &person.Name, &role, &createdRaw); err != nil {
			return nil, recordsError("list people", err)
		}
		person.Role = role.String
		if created, err := storage.ParseTime(createdRaw); err == nil {
			person.CreatedAt = created
		}
		people = append(people, &person)
	}
	if err := rows.Err(); err != nil {
		return nil, recordsError("list people", err)
	}
	return people, nil
}

// TasksForMeeting returns the tasks derived from a meeting with assignee names resolved.
func (s *Store) TasksForMeeting(ctx context.Context, meetingID string) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.meeting_id, t.job_id, t.title, t.assignee_id, p.name, t.created_at
         FROM tasks t LEFT JOIN people p ON p.id = t.assignee_id
         WHERE t.meeting_id = ? ORDER BY t.rowid`, meetingID)
	if err != nil {
		return nil, recordsError("list tasks", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		var (
			task         Task
			jobID        sql.NullString
			assigneeID   sql.NullString
			assigneeName sql.NullString
			createdRaw   string
		)
		if err := rows.Scan(&task.ID, &task.MeetingID, &jobID, &task.Title, &assigneeID, &assigneeName, &createdRaw); err != nil {
			return nil, recordsError("list tasks", err)
		}
		task.JobID = jobID.String
		task.AssigneeID = assigneeID.String
		task.AssigneeName = assigneeName.String
		if created, err := storage.ParseTime(createdRaw); err == nil {
			task.CreatedAt = created
		}
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, recordsError("list tasks", err)
	}
	return tasks, nil
}

func scanMeeting(scanner interface{ Scan(dest ...any) error }) (*Meeting, error) {
	var (
		meeting        Meeting
		heldRaw        sql.NullString
		participants   string
		audioPath      sql.NullString
		transcriptText sql.NullString
		segments       string
		summary        sql.NullString
		decisions      string
		processed      int
		createdRaw     string
		updatedRaw     string
	)
	if err := scanner.Scan(
		&meeting.ID,
		&meeting.Title,
		&heldRaw,
		&participants,
		&audioPath,
		&transcriptText,
		&segments,
		&summary,
		&decisions,
		&processed,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	meeting.AudioPath = audioPath.String
	meeting.TranscriptText = transcriptText.String
	meeting.Summary = summary.String
	meeting.Processed = processed != 0
	if held, err := storage.ParseTime(heldRaw.String); err == nil {
		meeting.HeldAt = held
	}
	if created, err := storage.ParseTime(createdRaw); err == nil {
		meeting.CreatedAt = created
	}
	if updated, err := storage.ParseTime(updatedRaw); err == nil {
		meeting.UpdatedAt = updated
	}
	if err := unmarshalList(participants, &meeting.Participants); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	if err := unmarshalList(segments, &meeting.Segments); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	if err := unmarshalList(decisions, &meeting.Decisions); err != nil {
		return nil, fmt.Errorf("decode decisions: %w", err)
	}
	return &meeting, nil
}

func marshalList[T any](values []T) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalList[T any](raw string, target *[]T) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" || raw == "null" {
		*target = nil
		return nil
	}
	return json.Unmarshal([]byte(raw), target)
}

func recordsError(operation string, err error) error {
	return services.Wrap(services.ErrStore, "meetings", operation, "", err)
}
