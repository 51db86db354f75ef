package models

import (
	"fmt"
	"time"
)

// ProgressStatus is the learner's state for one course item.
type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

// ParseProgressStatus validates s as a [ProgressStatus].
func ParseProgressStatus(s string) (ProgressStatus, error) {
	switch st := ProgressStatus(s); st {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("unknown progress status %q", s)
	}
}

// Progress tracks one user's state on one course item.
type Progress struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"user_id"`
	CourseID           string         `json:"course_id"`
	CourseItemID       string         `json:"course_item_id"`
	Status             ProgressStatus `json:"status"`
	ProgressPercentage int            `json:"progress_percentage"`
	TimeSpentMinutes   int            `json:"time_spent_minutes"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Normalize enforces the status invariants: completed items sit at 100% with a completion time,
// anything else has no completion time and a percentage clamped to [0, 100].
func (p *Progress) Normalize(now time.Time) {
	switch {
	case p.Status == StatusCompleted:
		p.ProgressPercentage = 100
		if p.CompletedAt == nil {
			p.CompletedAt = &now
		}
	default:
		p.CompletedAt = nil
		p.ProgressPercentage = min(max(p.ProgressPercentage, 0), 100)
	}
	if p.TimeSpentMinutes < 0 {
		p.TimeSpentMinutes = 0
	}
	p.UpdatedAt = now
}

// ProgressStats summarises progress over a course.
type ProgressStats struct {
	TotalItems         int `json:"total_items"`
	CompletedItems     int `json:"completed_items"`
	InProgressItems    int `json:"in_progress_items"`
	NotStartedItems    int `json:"not_started_items"`
	PercentComplete    int `json:"percent_complete"`
	TotalTimeMinutes   int `json:"total_time_minutes"`
	EstimatedRemaining int `json:"estimated_remaining_minutes"`
}

// CalculateProgressStats aggregates records against the course's items.
//
// Items without a progress record count as not started. The completion percentage is rounded half up.
// Remaining time sums the known durations of items that are not completed.
func CalculateProgressStats(items []*CourseItem, records []Progress) ProgressStats {
	byItem := make(map[string]Progress, len(records))
	for _, r := range records {
		byItem[r.CourseItemID] = r
	}

	stats := ProgressStats{TotalItems: len(items)}
	for _, item := range items {
		rec, ok := byItem[item.ID()]
		status := StatusNotStarted
		if ok {
			status = rec.Status
			stats.TotalTimeMinutes += rec.TimeSpentMinutes
		}

		switch status {
		case StatusCompleted:
			stats.CompletedItems++
			continue
		case StatusInProgress:
			stats.InProgressItems++
		default:
			stats.NotStartedItems++
		}

		if d := item.DurationMinutes(); d != nil {
			stats.EstimatedRemaining += *d
		}
	}

	if stats.TotalItems > 0 {
		stats.PercentComplete = (stats.CompletedItems*200 + stats.TotalItems) / (stats.TotalItems * 2)
	}
	return stats
}
