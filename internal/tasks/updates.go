package tasks

import (
	"fmt"

	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase; 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	VerifyCourse Phase = iota
	FetchMetadata
	FetchMembers
	FetchDetails
	SaveItems
	UpdateCourse
	ImportDone
	ExportCourse
)

func (p Phase) String() string {
	switch p {
	case VerifyCourse:
		return "verify_course"
	case FetchMetadata:
		return "fetch_metadata"
	case FetchMembers:
		return "fetch_members"
	case FetchDetails:
		return "fetch_details"
	case SaveItems:
		return "save_items"
	case UpdateCourse:
		return "update_course"
	case ImportDone:
		return "import_done"
	case ExportCourse:
		return "export_course"
	default:
		return ""
	}
}

var fetchPhases = map[services.FetchPhase]Phase{
	services.PhaseMetadata: FetchMetadata,
	services.PhaseMembers:  FetchMembers,
	services.PhaseDetails:  FetchDetails,
}

func fetchUpdate(ev services.FetchEvent) ProgressUpdate {
	return ProgressUpdate{
		Phase:   fetchPhases[ev.Phase],
		Step:    ev.Step,
		Total:   ev.Total,
		Message: ev.Message + "...",
	}
}

func verifyCourseUpdate(courseID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   VerifyCourse,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Checking course %s...", courseID),
	}
}

func saveItemsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveItems,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving %d course items...", count),
	}
}

func updateCourseUpdate(course *models.Course) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UpdateCourse,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Updating course: %s", course.Title()),
	}
}

func importDoneUpdate(result *ImportResult) ProgressUpdate {
	msg := fmt.Sprintf("Imported %d items from %q", len(result.Items), result.Playlist.Title)
	if result.Unavailable > 0 {
		msg += fmt.Sprintf(" (%d unavailable)", result.Unavailable)
	}
	return ProgressUpdate{
		Phase:   ImportDone,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    result,
	}
}

func exportingCourseUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCourse,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, title),
	}
}

func exportCompletedUpdate(step, total int, title string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCourse,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, title, filesCount),
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCourse,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
