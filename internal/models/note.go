package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// NoteDraft holds the editable fields of a [Note].
//
// A nil TimestampSeconds means the note is not pinned to a point in the video.
type NoteDraft struct {
	Title            string
	Content          string
	TimestampSeconds *int
}

// Note is a learner's free-form note on one course item.
type Note struct {
	entity
	userID           string
	courseID         string
	courseItemID     string
	title            string
	content          string
	timestampSeconds *int
}

// NewNote creates a note by userID on the item courseItemID of courseID.
func NewNote(sequence int, userID, courseID, courseItemID string, draft NoteDraft) *Note {
	n := &Note{
		entity:       newEntity(sequence),
		userID:       userID,
		courseID:     courseID,
		courseItemID: courseItemID,
	}
	n.apply(draft)
	return n
}

func (n *Note) UserID() string         { return n.userID }
func (n *Note) CourseID() string       { return n.courseID }
func (n *Note) CourseItemID() string   { return n.courseItemID }
func (n *Note) Title() string          { return n.title }
func (n *Note) Content() string        { return n.content }
func (n *Note) TimestampSeconds() *int { return n.timestampSeconds }
func (n *Note) Draft() NoteDraft       { return NoteDraft{n.title, n.content, n.timestampSeconds} }
func (n *Note) Edit(draft NoteDraft)   { n.apply(draft) }
func (n *Note) IsPinned() bool         { return n.timestampSeconds != nil }

// apply copies draft, treating a zero timestamp as unpinned.
func (n *Note) apply(draft NoteDraft) {
	n.title = strings.TrimSpace(draft.Title)
	n.content = draft.Content
	n.timestampSeconds = nil
	if ts := draft.TimestampSeconds; ts != nil && *ts != 0 {
		v := *ts
		n.timestampSeconds = &v
	}
}

// Validate checks the note's references, content and timestamp.
func (n *Note) Validate() error {
	if n.userID == "" || n.courseID == "" || n.courseItemID == "" {
		return fmt.Errorf("note must reference a user, course and course item")
	}
	if strings.TrimSpace(n.content) == "" {
		return fmt.Errorf("note content is required")
	}
	if n.timestampSeconds != nil && *n.timestampSeconds < 0 {
		return fmt.Errorf("timestamp must not be negative: %d", *n.timestampSeconds)
	}
	return nil
}

type noteJSON struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	CourseID         string    `json:"course_id"`
	CourseItemID     string    `json:"course_item_id"`
	Title            *string   `json:"title"`
	Content          string    `json:"content"`
	TimestampSeconds *int      `json:"timestamp_seconds"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MarshalJSON implements [json.Marshaler]. An empty title encodes as null.
func (n *Note) MarshalJSON() ([]byte, error) {
	var title *string
	if n.title != "" {
		title = &n.title
	}
	return json.Marshal(noteJSON{
		ID:               n.ID(),
		UserID:           n.userID,
		CourseID:         n.courseID,
		CourseItemID:     n.courseItemID,
		Title:            title,
		Content:          n.content,
		TimestampSeconds: n.timestampSeconds,
		CreatedAt:        n.CreatedAt(),
		UpdatedAt:        n.UpdatedAt(),
	})
}
