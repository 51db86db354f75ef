package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrForbidden        = fmt.Errorf("not permitted")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Persistence errors
	ErrNotFound       = fmt.Errorf("record not found")
	ErrCourseNotFound = fmt.Errorf("course not found")
	ErrItemNotFound   = fmt.Errorf("course item not found")
	ErrNoteNotFound   = fmt.Errorf("note not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidURL      = fmt.Errorf("invalid YouTube playlist URL")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
