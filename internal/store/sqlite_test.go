package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xiaot623/autopilot/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecording(name string) *domain.Recording {
	return &domain.Recording{
		RecordingID: uuid.New().String(),
		Name:        name,
		MapName:     "TestLevel",
		Document:    []byte(`{"metadata":{"recordingName":"` + name + `"},"actions":[]}`),
		ActionCount: 0,
		Duration:    0,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestSaveAndGetRecording(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecording("run-01")
	rec.ActionCount = 42
	rec.Duration = 12.5
	if err := s.SaveRecording(ctx, rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.GetRecording(ctx, rec.RecordingID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatalf("recording not found")
	}
	if got.Name != "run-01" || got.MapName != "TestLevel" {
		t.Fatalf("unexpected recording: %+v", got)
	}
	if got.ActionCount != 42 || got.Duration != 12.5 {
		t.Fatalf("catalog fields lost: %+v", got)
	}
	if string(got.Document) != string(rec.Document) {
		t.Fatalf("document mismatch: %s", got.Document)
	}
}

func TestGetMissingRecordingReturnsNil(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetRecording(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing recording, got %+v", got)
	}
}

func TestSaveRecordingRequiresID(t *testing.T) {
	s := newTestStore(t)

	rec := testRecording("bad")
	rec.RecordingID = ""
	if err := s.SaveRecording(context.Background(), rec); err == nil {
		t.Fatalf("save without id must fail")
	}
}

func TestSaveRecordingReplacesByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecording("run-01")
	if err := s.SaveRecording(ctx, rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	rec.Name = "run-01-fixed"
	rec.ActionCount = 7
	if err := s.SaveRecording(ctx, rec); err != nil {
		t.Fatalf("resave failed: %v", err)
	}

	got, err := s.GetRecording(ctx, rec.RecordingID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "run-01-fixed" || got.ActionCount != 7 {
		t.Fatalf("replace did not take: %+v", got)
	}

	list, err := s.ListRecordings(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("replace must not duplicate rows, got %d", len(list))
	}
}

func TestGetRecordingByNamePicksNewest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := testRecording("daily")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := testRecording("daily")
	if err := s.SaveRecording(ctx, older); err != nil {
		t.Fatalf("save older: %v", err)
	}
	if err := s.SaveRecording(ctx, newer); err != nil {
		t.Fatalf("save newer: %v", err)
	}

	got, err := s.GetRecordingByName(ctx, "daily")
	if err != nil {
		t.Fatalf("get by name failed: %v", err)
	}
	if got == nil || got.RecordingID != newer.RecordingID {
		t.Fatalf("expected newest recording, got %+v", got)
	}
}

func TestListRecordingsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, name := range []string{"a", "b", "c"} {
		rec := testRecording(name)
		rec.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
		if err := s.SaveRecording(ctx, rec); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}

	list, err := s.ListRecordings(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 recordings, got %d", len(list))
	}
	if list[0].Name != "c" || list[2].Name != "a" {
		t.Fatalf("unexpected order: %+v", list)
	}
}

func TestDeleteRecording(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecording("doomed")
	if err := s.SaveRecording(ctx, rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	deleted, err := s.DeleteRecording(ctx, rec.RecordingID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !deleted {
		t.Fatalf("delete should report an affected row")
	}

	got, err := s.GetRecording(ctx, rec.RecordingID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("recording still present after delete")
	}

	deleted, err = s.DeleteRecording(ctx, rec.RecordingID)
	if err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	if deleted {
		t.Fatalf("second delete must report no affected row")
	}
}
