package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAssignsIDAndCreationTime(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)
	rec, err := s.Append(ctx, Input{Duration: 25, Completed: true, Mode: ModeTimer})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	after := time.Now().UTC().Add(time.Second)

	if rec.ID == "" {
		t.Error("record id not assigned")
	}
	if rec.CreatedAt.Before(before) || rec.CreatedAt.After(after) {
		t.Errorf("created at %v, want store-assigned write time", rec.CreatedAt)
	}

	records, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	got := records[0]
	if got.ID != rec.ID || got.Duration != 25 || !got.Completed || got.Mode != ModeTimer {
		t.Errorf("round trip = %+v", got)
	}
	if got.Tag != nil {
		t.Errorf("tag = %+v, want nil for untagged session", got.Tag)
	}
}

func TestAppendRejectsNegativeDuration(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Append(context.Background(), Input{Duration: -1}); err == nil {
		t.Error("negative duration accepted")
	}
}

func TestAppendPreservesFractionalDuration(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, Input{Duration: 12.75, Mode: ModeStopwatch}); err != nil {
		t.Fatal(err)
	}
	records, err := s.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Duration != 12.75 {
		t.Errorf("duration = %v, want 12.75", records[0].Duration)
	}
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, Input{Duration: 10, Mode: ModeTimer}); err != nil {
		t.Fatal(err)
	}

	var snapshots [][]Record
	cancel, err := s.Subscribe(func(records []Record) {
		snapshots = append(snapshots, records)
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if len(snapshots) != 1 || len(snapshots[0]) != 1 {
		t.Fatalf("initial snapshot = %v, want the existing record immediately", snapshots)
	}

	if _, err := s.Append(ctx, Input{Duration: 20, Mode: ModeTimer}); err != nil {
		t.Fatal(err)
	}
	if len(snapshots) != 2 || len(snapshots[1]) != 2 {
		t.Fatalf("after append snapshots = %d, want full 2-record set", len(snapshots))
	}

	cancel()
	if _, err := s.Append(ctx, Input{Duration: 30, Mode: ModeTimer}); err != nil {
		t.Fatal(err)
	}
	if len(snapshots) != 2 {
		t.Error("subscriber notified after cancel")
	}
}

func TestTagCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.AddTag(ctx, "Deep Work", "#8B5CF6")
	if err != nil {
		t.Fatalf("add tag: %v", err)
	}
	if created.ID == "" {
		t.Error("tag id not assigned")
	}

	if _, err := s.AddTag(ctx, "", "#10B981"); err == nil {
		t.Error("empty tag name accepted")
	}

	created.Name = "Deep Focus"
	created.Color = "#10B981"
	if err := s.UpdateTag(ctx, created); err != nil {
		t.Fatalf("update tag: %v", err)
	}

	tags, err := s.Tags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0].Name != "Deep Focus" || tags[0].Color != "#10B981" {
		t.Errorf("tags = %+v", tags)
	}

	if err := s.UpdateTag(ctx, Tag{ID: "missing", Name: "x"}); err == nil {
		t.Error("update of unknown tag succeeded")
	}

	if err := s.DeleteTag(ctx, created.ID); err != nil {
		t.Fatalf("delete tag: %v", err)
	}
	tags, err = s.Tags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 0 {
		t.Errorf("tags after delete = %+v", tags)
	}
}

func TestTagEditsDoNotRewriteHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tag, err := s.AddTag(ctx, "Old Name", "#8B5CF6")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append(ctx, Input{
		Duration: 25,
		Tag:      &TagRef{Name: tag.Name, Color: tag.Color},
		Mode:     ModeTimer,
	}); err != nil {
		t.Fatal(err)
	}

	tag.Name = "New Name"
	if err := s.UpdateTag(ctx, tag); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTag(ctx, tag.ID); err != nil {
		t.Fatal(err)
	}

	records, err := s.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Tag == nil || records[0].Tag.Name != "Old Name" {
		t.Errorf("record tag = %+v, want the snapshot taken at save time", records[0].Tag)
	}
}

func TestAllOrdersNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Append(ctx, Input{Duration: 5, Mode: ModeTimer})
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(1100 * time.Millisecond) // created_at has second precision
	second, err := s.Append(ctx, Input{Duration: 10, Mode: ModeTimer})
	if err != nil {
		t.Fatal(err)
	}

	records, err := s.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].ID != second.ID || records[1].ID != first.ID {
		t.Errorf("order = [%s %s], want newest first", records[0].ID, records[1].ID)
	}
}
