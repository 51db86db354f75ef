package models

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ItemType classifies a course item.
type ItemType string

const (
	ItemVideo      ItemType = "video"
	ItemReading    ItemType = "reading"
	ItemAssignment ItemType = "assignment"
	ItemQuiz       ItemType = "quiz"
	ItemOther      ItemType = "other"
)

// ParseItemType maps s onto a known [ItemType], falling back to [ItemOther].
func ParseItemType(s string) ItemType {
	switch t := ItemType(strings.ToLower(strings.TrimSpace(s))); t {
	case ItemVideo, ItemReading, ItemAssignment, ItemQuiz, ItemOther:
		return t
	default:
		return ItemOther
	}
}

// ItemMetadata links an item back to the source it was imported from.
type ItemMetadata struct {
	ExternalVideoID string `json:"youtube_video_id,omitempty"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	PlaylistID      string `json:"playlist_id,omitempty"`
}

// CourseItemDraft is a course item that has not been persisted yet.
//
// A nil DurationMinutes means the duration is unknown, which is distinct from a zero-length item.
type CourseItemDraft struct {
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	ItemType        ItemType     `json:"item_type"`
	ContentURL      string       `json:"content_url"`
	DurationMinutes *int         `json:"duration_minutes"`
	OrderIndex      int          `json:"order_index"`
	Metadata        ItemMetadata `json:"metadata"`
}

// User owns courses and progress records.
type User struct {
	entity
	email string
	name  string
}

// NewUser creates a new [User] with the given sequence, email and display name.
func NewUser(sequence int, email, name string) *User {
	return &User{entity: newEntity(sequence), email: email, name: name}
}

func (u *User) Email() string { return u.email }
func (u *User) Name() string  { return u.name }

// Validate checks the email address and name.
func (u *User) Validate() error {
	if strings.TrimSpace(u.name) == "" {
		return fmt.Errorf("user name is required")
	}
	if _, err := mail.ParseAddress(u.email); err != nil {
		return fmt.Errorf("invalid email %q: %w", u.email, err)
	}
	return nil
}

// Course is an ordered collection of items owned by one user.
type Course struct {
	entity
	userID      string
	title       string
	description string
	sourceURL   string
}

// NewCourse creates a new [Course] owned by userID.
func NewCourse(sequence int, userID, title, description string) *Course {
	return &Course{entity: newEntity(sequence), userID: userID, title: title, description: description}
}

func (c *Course) UserID() string             { return c.userID }
func (c *Course) Title() string              { return c.title }
func (c *Course) Description() string        { return c.description }
func (c *Course) SourceURL() string          { return c.sourceURL }
func (c *Course) SetTitle(title string)      { c.title = title }
func (c *Course) SetDescription(d string)    { c.description = d }
func (c *Course) SetSourceURL(u string)      { c.sourceURL = u }
func (c *Course) OwnedBy(userID string) bool { return c.userID == userID }

// Validate checks that the course has an owner and a title.
func (c *Course) Validate() error {
	if c.userID == "" {
		return fmt.Errorf("course owner is required")
	}
	if strings.TrimSpace(c.title) == "" {
		return fmt.Errorf("course title is required")
	}
	return nil
}

// CourseItem is a persisted learning component inside a course.
type CourseItem struct {
	entity
	courseID        string
	userID          string
	title           string
	description     string
	itemType        ItemType
	contentURL      string
	durationMinutes *int
	orderIndex      int
	metadata        ItemMetadata
}

// NewCourseItem creates a [CourseItem] for courseID from a draft.
func NewCourseItem(sequence int, courseID, userID string, draft CourseItemDraft) *CourseItem {
	return &CourseItem{
		entity:          newEntity(sequence),
		courseID:        courseID,
		userID:          userID,
		title:           draft.Title,
		description:     draft.Description,
		itemType:        draft.ItemType,
		contentURL:      draft.ContentURL,
		durationMinutes: draft.DurationMinutes,
		orderIndex:      draft.OrderIndex,
		metadata:        draft.Metadata,
	}
}

func (i *CourseItem) CourseID() string       { return i.courseID }
func (i *CourseItem) UserID() string         { return i.userID }
func (i *CourseItem) Title() string          { return i.title }
func (i *CourseItem) Description() string    { return i.description }
func (i *CourseItem) ItemType() ItemType     { return i.itemType }
func (i *CourseItem) ContentURL() string     { return i.contentURL }
func (i *CourseItem) DurationMinutes() *int  { return i.durationMinutes }
func (i *CourseItem) OrderIndex() int        { return i.orderIndex }
func (i *CourseItem) Metadata() ItemMetadata { return i.metadata }
func (i *CourseItem) SetOrderIndex(idx int)  { i.orderIndex = idx }

// Draft returns the item's content fields as a [CourseItemDraft].
func (i *CourseItem) Draft() CourseItemDraft {
	return CourseItemDraft{
		Title:           i.title,
		Description:     i.description,
		ItemType:        i.itemType,
		ContentURL:      i.contentURL,
		DurationMinutes: i.durationMinutes,
		OrderIndex:      i.orderIndex,
		Metadata:        i.metadata,
	}
}

// Validate checks ownership, title, type and ordering.
func (i *CourseItem) Validate() error {
	if i.courseID == "" || i.userID == "" {
		return fmt.Errorf("course item must belong to a course and user")
	}
	if strings.TrimSpace(i.title) == "" {
		return fmt.Errorf("course item title is required")
	}
	if ParseItemType(string(i.itemType)) != i.itemType {
		return fmt.Errorf("unknown item type %q", i.itemType)
	}
	if i.orderIndex < 0 {
		return fmt.Errorf("order index must not be negative: %d", i.orderIndex)
	}
	if i.durationMinutes != nil && *i.durationMinutes < 0 {
		return fmt.Errorf("duration must not be negative: %d", *i.durationMinutes)
	}
	return nil
}

type courseJSON struct {
	ID          string    `json:"id"`
	Sequence    int       `json:"sequence"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SourceURL   string    `json:"source_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MarshalJSON implements [json.Marshaler].
func (c *Course) MarshalJSON() ([]byte, error) {
	return json.Marshal(courseJSON{
		ID:          c.ID(),
		Sequence:    c.Sequence(),
		UserID:      c.userID,
		Title:       c.title,
		Description: c.description,
		SourceURL:   c.sourceURL,
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	})
}

type courseItemJSON struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	UserID   string `json:"user_id"`
	CourseItemDraft
	CreatedAt time.Time `json:"created_at"`
}

// MarshalJSON implements [json.Marshaler].
func (i *CourseItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(courseItemJSON{
		ID:              i.ID(),
		CourseID:        i.courseID,
		UserID:          i.userID,
		CourseItemDraft: i.Draft(),
		CreatedAt:       i.CreatedAt(),
	})
}
