package testsupport

import (
	"context"
	"testing"

	"minutes/internal/config"
	"minutes/internal/meetings"
	"minutes/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenRecords opens a meetings.Store for tests and registers cleanup.
func MustOpenRecords(t testing.TB, cfg *config.Config) *meetings.Store {
	t.Helper()

	records, err := meetings.Open(cfg)
	if err != nil {
		t.Fatalf("meetings.Open: %v", err)
	}
	t.Cleanup(func() {
		records.Close()
	})
	return records
}

// NewMeeting creates a meeting record for tests.
func NewMeeting(t testing.TB, records *meetings.Store, meeting meetings.Meeting) *meetings.Meeting {
	t.Helper()

	created, err := records.CreateMeeting(context.Background(), meeting)
	if err != nil {
		t.Fatalf("records.CreateMeeting: %v", err)
	}
	return created
}

// NewPerson creates a person record for tests.
func NewPerson(t testing.TB, records *meetings.Store, name, role string) *meetings.Person {
	t.Helper()

	person, err := records.AddPerson(context.Background(), name, role)
	if err != nil {
		t.Fatalf("records.AddPerson: %v", err)
	}
	return person
}
