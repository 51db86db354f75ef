package models

import (
	"fmt"
	"time"
)

// ImportStatus is the lifecycle state of an [ImportJob].
type ImportStatus string

const (
	ImportPending   ImportStatus = "pending"
	ImportRunning   ImportStatus = "running"
	ImportCompleted ImportStatus = "completed"
	ImportNotFound  ImportStatus = "not_found"
	ImportFailed    ImportStatus = "failed"
)

// ImportJob records one playlist import into a course.
type ImportJob struct {
	entity
	userID           string
	courseID         string
	playlistID       string
	sourceURL        string
	status           ImportStatus
	itemsTotal       int
	itemsUnavailable int
	errorMessage     string
	startedAt        *time.Time
	completedAt      *time.Time
}

// NewImportJob creates a pending job for importing sourceURL into courseID.
func NewImportJob(sequence int, userID, courseID, sourceURL string) *ImportJob {
	return &ImportJob{
		entity:    newEntity(sequence),
		userID:    userID,
		courseID:  courseID,
		sourceURL: sourceURL,
		status:    ImportPending,
	}
}

// RestoreImportJob rebuilds a job from stored columns.
func RestoreImportJob(
	sequence int, userID, courseID, playlistID, sourceURL string, status ImportStatus,
	itemsTotal, itemsUnavailable int, errorMessage string, startedAt, completedAt *time.Time,
) *ImportJob {
	j := NewImportJob(sequence, userID, courseID, sourceURL)
	j.playlistID = playlistID
	j.status = status
	j.itemsTotal = itemsTotal
	j.itemsUnavailable = itemsUnavailable
	j.errorMessage = errorMessage
	j.startedAt = startedAt
	j.completedAt = completedAt
	return j
}

func (j *ImportJob) UserID() string          { return j.userID }
func (j *ImportJob) CourseID() string        { return j.courseID }
func (j *ImportJob) PlaylistID() string      { return j.playlistID }
func (j *ImportJob) SourceURL() string       { return j.sourceURL }
func (j *ImportJob) Status() ImportStatus    { return j.status }
func (j *ImportJob) ItemsTotal() int         { return j.itemsTotal }
func (j *ImportJob) ItemsUnavailable() int   { return j.itemsUnavailable }
func (j *ImportJob) ErrorMessage() string    { return j.errorMessage }
func (j *ImportJob) StartedAt() *time.Time   { return j.startedAt }
func (j *ImportJob) CompletedAt() *time.Time { return j.completedAt }
func (j *ImportJob) SetPlaylistID(id string) { j.playlistID = id }
func (j *ImportJob) IsFinished() bool        { return j.completedAt != nil }

// Start marks the job running.
func (j *ImportJob) Start(now time.Time) {
	j.status = ImportRunning
	j.startedAt = &now
}

// Complete marks the job finished with the number of items written.
func (j *ImportJob) Complete(now time.Time, total, unavailable int) {
	j.status = ImportCompleted
	j.itemsTotal = total
	j.itemsUnavailable = unavailable
	j.completedAt = &now
}

// NotFound marks the job finished because the platform had no such playlist.
func (j *ImportJob) NotFound(now time.Time) {
	j.status = ImportNotFound
	j.completedAt = &now
}

// Fail marks the job finished with err.
func (j *ImportJob) Fail(now time.Time, err error) {
	j.status = ImportFailed
	if err != nil {
		j.errorMessage = err.Error()
	}
	j.completedAt = &now
}

// Validate checks the job's references and status.
func (j *ImportJob) Validate() error {
	if j.userID == "" || j.courseID == "" {
		return fmt.Errorf("import job must reference a user and course")
	}
	if j.sourceURL == "" {
		return fmt.Errorf("import job source URL is required")
	}
	switch j.status {
	case ImportPending, ImportRunning, ImportCompleted, ImportNotFound, ImportFailed:
	default:
		return fmt.Errorf("unknown import status %q", j.status)
	}
	if j.itemsUnavailable > j.itemsTotal {
		return fmt.Errorf("unavailable items (%d) exceed total (%d)", j.itemsUnavailable, j.itemsTotal)
	}
	return nil
}
