package models

import "time"

// CourseSummary is the serializable header of a course export.
type CourseSummary struct {
	ID           string    `json:"id"`
	Sequence     int       `json:"sequence"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	SourceURL    string    `json:"source_url,omitempty"`
	ItemCount    int       `json:"item_count"`
	TotalMinutes int       `json:"total_minutes"`
	CreatedAt    time.Time `json:"created_at"`
}

// CourseExport is a course with its items in order, ready for the formatters.
type CourseExport struct {
	Course CourseSummary     `json:"course"`
	Items  []CourseItemDraft `json:"items"`
}

// NewCourseExport snapshots course and its items. Items must already be ordered.
//
// TotalMinutes only counts items with a known duration.
func NewCourseExport(course *Course, items []*CourseItem) *CourseExport {
	export := &CourseExport{
		Course: CourseSummary{
			ID:          course.ID(),
			Sequence:    course.Sequence(),
			Title:       course.Title(),
			Description: course.Description(),
			SourceURL:   course.SourceURL(),
			ItemCount:   len(items),
			CreatedAt:   course.CreatedAt(),
		},
		Items: make([]CourseItemDraft, 0, len(items)),
	}

	for _, item := range items {
		draft := item.Draft()
		if draft.DurationMinutes != nil {
			export.Course.TotalMinutes += *draft.DurationMinutes
		}
		export.Items = append(export.Items, draft)
	}
	return export
}

// CoverImage returns the first thumbnail found among the items, or "".
func (e *CourseExport) CoverImage() string {
	for _, item := range e.Items {
		if item.Metadata.ThumbnailURL != "" {
			return item.Metadata.ThumbnailURL
		}
	}
	return ""
}
