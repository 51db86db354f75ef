package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func intPtr(n int) *int { return &n }

func TestParseItemType(t *testing.T) {
	tests := []struct {
		in   string
		want ItemType
	}{
		{"video", ItemVideo},
		{"Reading", ItemReading},
		{" quiz ", ItemQuiz},
		{"assignment", ItemAssignment},
		{"podcast", ItemOther},
		{"", ItemOther},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseItemType(tt.in); got != tt.want {
				t.Errorf("ParseItemType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUserValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := NewUser(1, "ada@example.com", "Ada").Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("bad email", func(t *testing.T) {
		if err := NewUser(1, "not-an-email", "Ada").Validate(); err == nil {
			t.Error("expected error for invalid email")
		}
	})

	t.Run("missing name", func(t *testing.T) {
		if err := NewUser(1, "ada@example.com", " ").Validate(); err == nil {
			t.Error("expected error for empty name")
		}
	})
}

func TestCourseValidate(t *testing.T) {
	c := NewCourse(1, "u1", "Go basics", "")
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.OwnedBy("u1") || c.OwnedBy("u2") {
		t.Error("OwnedBy did not match owner")
	}

	c.SetTitle("")
	if err := c.Validate(); err == nil {
		t.Error("expected error for empty title")
	}
}

func TestCourseItemValidate(t *testing.T) {
	base := CourseItemDraft{Title: "Intro", ItemType: ItemVideo, OrderIndex: 0}

	tests := []struct {
		name    string
		mutate  func(*CourseItemDraft)
		wantErr bool
	}{
		{"valid", func(*CourseItemDraft) {}, false},
		{"unknown duration is fine", func(d *CourseItemDraft) { d.DurationMinutes = nil }, false},
		{"zero duration is fine", func(d *CourseItemDraft) { d.DurationMinutes = intPtr(0) }, false},
		{"empty title", func(d *CourseItemDraft) { d.Title = "" }, true},
		{"bad type", func(d *CourseItemDraft) { d.ItemType = "lecture" }, true},
		{"negative order", func(d *CourseItemDraft) { d.OrderIndex = -1 }, true},
		{"negative duration", func(d *CourseItemDraft) { d.DurationMinutes = intPtr(-3) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := base
			tt.mutate(&draft)
			err := NewCourseItem(1, "c1", "u1", draft).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProgressNormalize(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("completed forces 100 percent", func(t *testing.T) {
		p := Progress{Status: StatusCompleted, ProgressPercentage: 40}
		p.Normalize(now)
		if p.ProgressPercentage != 100 {
			t.Errorf("percentage = %d, want 100", p.ProgressPercentage)
		}
		if p.CompletedAt == nil || !p.CompletedAt.Equal(now) {
			t.Errorf("completed_at = %v, want %v", p.CompletedAt, now)
		}
	})

	t.Run("keeps existing completion time", func(t *testing.T) {
		earlier := now.Add(-time.Hour)
		p := Progress{Status: StatusCompleted, CompletedAt: &earlier}
		p.Normalize(now)
		if !p.CompletedAt.Equal(earlier) {
			t.Errorf("completed_at changed to %v", p.CompletedAt)
		}
	})

	t.Run("in progress clears completion and clamps", func(t *testing.T) {
		p := Progress{Status: StatusInProgress, ProgressPercentage: 140, CompletedAt: &now, TimeSpentMinutes: -2}
		p.Normalize(now)
		if p.CompletedAt != nil {
			t.Error("expected completed_at to be cleared")
		}
		if p.ProgressPercentage != 100 || p.TimeSpentMinutes != 0 {
			t.Errorf("got percentage=%d time=%d", p.ProgressPercentage, p.TimeSpentMinutes)
		}
	})
}

func TestParseProgressStatus(t *testing.T) {
	if _, err := ParseProgressStatus("completed"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseProgressStatus("done"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestCalculateProgressStats(t *testing.T) {
	mk := func(id string, d *int) *CourseItem {
		item := NewCourseItem(1, "c1", "u1", CourseItemDraft{Title: id, ItemType: ItemVideo, DurationMinutes: d})
		item.SetID(id)
		return item
	}
	items := []*CourseItem{mk("a", intPtr(10)), mk("b", intPtr(20)), mk("c", nil), mk("d", intPtr(5))}
	records := []Progress{
		{CourseItemID: "a", Status: StatusCompleted, TimeSpentMinutes: 12},
		{CourseItemID: "b", Status: StatusInProgress, TimeSpentMinutes: 4},
	}

	got := CalculateProgressStats(items, records)
	want := ProgressStats{
		TotalItems:         4,
		CompletedItems:     1,
		InProgressItems:    1,
		NotStartedItems:    2,
		PercentComplete:    25,
		TotalTimeMinutes:   16,
		EstimatedRemaining: 25,
	}
	if got != want {
		t.Errorf("CalculateProgressStats() = %+v, want %+v", got, want)
	}

	twoOfThree := CalculateProgressStats(items[:3], []Progress{
		{CourseItemID: "a", Status: StatusCompleted},
		{CourseItemID: "b", Status: StatusCompleted},
	})
	if twoOfThree.PercentComplete != 67 {
		t.Errorf("expected 2 of 3 to round to 67%%, got %d", twoOfThree.PercentComplete)
	}

	if empty := CalculateProgressStats(nil, nil); empty.PercentComplete != 0 || empty.TotalItems != 0 {
		t.Errorf("empty stats = %+v", empty)
	}
}

func TestUnavailableCount(t *testing.T) {
	p := YouTubePlaylist{Videos: []Video{{ID: "a"}, {ID: "b", Unavailable: true}, {ID: "c", Unavailable: true}}}
	if got := p.UnavailableCount(); got != 2 {
		t.Errorf("UnavailableCount() = %d, want 2", got)
	}
}

func TestImportJobLifecycle(t *testing.T) {
	now := time.Now()
	job := NewImportJob(1, "u1", "c1", "https://www.youtube.com/playlist?list=PL1")
	if job.Status() != ImportPending || job.IsFinished() {
		t.Fatalf("unexpected initial state: %s", job.Status())
	}
	if err := job.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job.Start(now)
	if job.Status() != ImportRunning || job.StartedAt() == nil {
		t.Errorf("expected running with start time, got %s", job.Status())
	}

	job.Complete(now, 10, 2)
	if job.Status() != ImportCompleted || !job.IsFinished() || job.ItemsTotal() != 10 || job.ItemsUnavailable() != 2 {
		t.Errorf("unexpected completed state: %+v", job)
	}

	failed := NewImportJob(2, "u1", "c1", "x")
	failed.Fail(now, fmt.Errorf("boom"))
	if failed.Status() != ImportFailed || failed.ErrorMessage() != "boom" {
		t.Errorf("unexpected failed state: %s %q", failed.Status(), failed.ErrorMessage())
	}

	bad := RestoreImportJob(3, "u1", "c1", "PL1", "x", ImportCompleted, 1, 5, "", nil, nil)
	if err := bad.Validate(); err == nil {
		t.Error("expected error when unavailable exceeds total")
	}
}

func TestCourseItemJSON(t *testing.T) {
	item := NewCourseItem(1, "course-1", "user-1", CourseItemDraft{
		Title:      "Intro",
		ItemType:   ItemVideo,
		OrderIndex: 2,
		Metadata:   ItemMetadata{ExternalVideoID: "abc"},
	})
	item.SetID("item-1")

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	out := string(data)
	for _, want := range []string{
		`"id":"item-1"`,
		`"course_id":"course-1"`,
		`"order_index":2`,
		`"duration_minutes":null`,
		`"youtube_video_id":"abc"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON missing %s, got %s", want, out)
		}
	}
}

func TestNoteValidate(t *testing.T) {
	tests := []struct {
		name    string
		note    *Note
		wantErr bool
	}{
		{"valid", NewNote(1, "u", "c", "i", NoteDraft{Content: "remember defer order"}), false},
		{"pinned", NewNote(1, "u", "c", "i", NoteDraft{Content: "see here", TimestampSeconds: intPtr(95)}), false},
		{"blank content", NewNote(1, "u", "c", "i", NoteDraft{Content: "  \n"}), true},
		{"missing item", NewNote(1, "u", "c", "", NoteDraft{Content: "x"}), true},
		{"negative timestamp", NewNote(1, "u", "c", "i", NoteDraft{Content: "x", TimestampSeconds: intPtr(-3)}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.note.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNoteDraft(t *testing.T) {
	n := NewNote(1, "u", "c", "i", NoteDraft{Title: "  Loops ", Content: "for range", TimestampSeconds: intPtr(0)})
	if n.Title() != "Loops" {
		t.Errorf("expected trimmed title, got %q", n.Title())
	}
	if n.IsPinned() {
		t.Error("expected zero timestamp to leave the note unpinned")
	}

	n.Edit(NoteDraft{Content: "for i := range n", TimestampSeconds: intPtr(42)})
	if n.Title() != "" || n.Content() != "for i := range n" || *n.TimestampSeconds() != 42 {
		t.Errorf("unexpected note after edit: %+v", n.Draft())
	}

	n.SetID("note-1")
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	for _, want := range []string{`"id":"note-1"`, `"title":null`, `"course_item_id":"i"`, `"timestamp_seconds":42`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON missing %s, got %s", want, data)
		}
	}
}
