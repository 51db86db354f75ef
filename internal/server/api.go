package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/services"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/desertthunder/coursetube/internal/tasks"
)

// Importer runs playlist imports.
type Importer interface {
	Import(ctx context.Context, req tasks.ImportRequest, progress chan<- tasks.ProgressUpdate) (*tasks.ImportResult, error)
}

// CourseFinder looks up courses by owner.
type CourseFinder interface {
	GetOwned(id, userID string) (*models.Course, error)
}

// ItemStore is the subset of the course item repository used by the API.
type ItemStore interface {
	Get(id string) (*models.CourseItem, error)
	Append(item *models.CourseItem) error
	ListByCourse(courseID string) ([]*models.CourseItem, error)
}

// ProgressStore is the subset of the progress repository used by the API.
type ProgressStore interface {
	Get(userID, itemID string) (*models.Progress, error)
	Upsert(p *models.Progress) error
	ListByCourse(userID, courseID string) ([]models.Progress, error)
}

// APIOpts configures an [APIHandler].
type APIOpts struct {
	Importer Importer
	Courses  CourseFinder
	Items    ItemStore
	Progress ProgressStore
	Notes    NoteStore
	Logger   *log.Logger
}

// APIHandler serves the JSON endpoints for imports, manual course items, progress and notes.
//
// Every route expects [Authenticate] to have run.
type APIHandler struct {
	importer Importer
	courses  CourseFinder
	items    ItemStore
	progress ProgressStore
	notes    NoteStore
	logger   *log.Logger
}

// NewAPIHandler creates an [APIHandler].
func NewAPIHandler(opts APIOpts) *APIHandler {
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &APIHandler{
		importer: opts.Importer,
		courses:  opts.Courses,
		items:    opts.Items,
		progress: opts.Progress,
		notes:    opts.Notes,
		logger:   opts.Logger,
	}
}

// Register adds the API routes to r.
func (h *APIHandler) Register(r Router) {
	r.Handle(http.MethodPost, "/api/youtube/playlist", http.HandlerFunc(h.ImportPlaylist))
	r.Handle(http.MethodPost, "/api/course-items", http.HandlerFunc(h.CreateCourseItem))
	r.Handle(http.MethodPost, "/api/progress", http.HandlerFunc(h.UpdateProgress))
	r.Handle(http.MethodGet, "/api/progress", http.HandlerFunc(h.GetProgress))
	if h.notes != nil {
		r.Handle(http.MethodPost, "/api/notes", http.HandlerFunc(h.CreateNote))
		r.Handle(http.MethodGet, "/api/notes", http.HandlerFunc(h.ListNotes))
		r.Handle(http.MethodPut, "/api/notes/{id}", http.HandlerFunc(h.UpdateNote))
		r.Handle(http.MethodDelete, "/api/notes/{id}", http.HandlerFunc(h.DeleteNote))
	}
}

func (h *APIHandler) user(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, shared.ErrNotAuthenticated)
	}
	return user, ok
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

type importRequest struct {
	PlaylistURL string `json:"playlistUrl"`
	CourseID    string `json:"courseId"`
}

type importResponse struct {
	Playlist    models.PlaylistMetadata `json:"playlist"`
	CourseItems []*models.CourseItem    `json:"courseItems"`
	Unavailable int                     `json:"unavailable"`
	JobID       string                  `json:"jobId,omitempty"`
}

// ImportPlaylist handles POST /api/youtube/playlist.
func (h *APIHandler) ImportPlaylist(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	var body importRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(body.PlaylistURL) == "" || strings.TrimSpace(body.CourseID) == "" {
		writeError(w, fmt.Errorf("%w: playlist URL and course ID are required", shared.ErrMissingArgument))
		return
	}

	result, err := h.importer.Import(r.Context(), tasks.ImportRequest{
		UserID:      user.ID(),
		CourseID:    body.CourseID,
		PlaylistURL: body.PlaylistURL,
	}, nil)
	if err != nil {
		h.logger.Error("playlist import failed",
			"course", body.CourseID, "url", body.PlaylistURL, "upstream_status", services.StatusCode(err), "error", err)
		writeError(w, err)
		return
	}

	resp := importResponse{
		Playlist:    result.Playlist,
		CourseItems: result.Items,
		Unavailable: result.Unavailable,
	}
	if result.Job != nil {
		resp.JobID = result.Job.ID()
	}
	writeJSON(w, http.StatusOK, successBody{Success: true, Data: resp})
}

type courseItemRequest struct {
	CourseID        string `json:"course_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ItemType        string `json:"item_type"`
	ContentURL      string `json:"content_url"`
	DurationMinutes *int   `json:"duration_minutes"`
}

// CreateCourseItem handles POST /api/course-items. The item is placed after the course's last item.
func (h *APIHandler) CreateCourseItem(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	var body courseItemRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.CourseID == "" || strings.TrimSpace(body.Title) == "" || body.ItemType == "" {
		writeError(w, fmt.Errorf("%w: title, item_type and course_id are required", shared.ErrMissingArgument))
		return
	}

	if _, err := h.courses.GetOwned(body.CourseID, user.ID()); err != nil {
		writeError(w, err)
		return
	}

	item := models.NewCourseItem(0, body.CourseID, user.ID(), models.CourseItemDraft{
		Title:           body.Title,
		Description:     body.Description,
		ItemType:        models.ParseItemType(body.ItemType),
		ContentURL:      body.ContentURL,
		DurationMinutes: body.DurationMinutes,
	})
	if err := h.items.Append(item); err != nil {
		h.logger.Error("failed to create course item", "course", body.CourseID, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"courseItem": item})
}

type progressRequest struct {
	CourseItemID       string `json:"courseItemId"`
	Status             string `json:"status"`
	ProgressPercentage int    `json:"progressPercentage"`
	TimeSpentMinutes   *int   `json:"timeSpentMinutes"`
}

// UpdateProgress handles POST /api/progress.
//
// An omitted timeSpentMinutes keeps the stored value.
func (h *APIHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	var body progressRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.CourseItemID == "" || body.Status == "" {
		writeError(w, fmt.Errorf("%w: course item ID and status are required", shared.ErrMissingArgument))
		return
	}

	status, err := models.ParseProgressStatus(body.Status)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err))
		return
	}

	item, err := h.items.Get(body.CourseItemID)
	if err != nil {
		writeError(w, err)
		return
	}
	if item.UserID() != user.ID() {
		writeError(w, fmt.Errorf("%w: %s", shared.ErrItemNotFound, body.CourseItemID))
		return
	}

	record := &models.Progress{
		UserID:             user.ID(),
		CourseID:           item.CourseID(),
		CourseItemID:       item.ID(),
		Status:             status,
		ProgressPercentage: body.ProgressPercentage,
	}
	switch existing, err := h.progress.Get(user.ID(), item.ID()); {
	case err == nil:
		record.TimeSpentMinutes = existing.TimeSpentMinutes
	case !errors.Is(err, shared.ErrNotFound):
		writeError(w, err)
		return
	}
	if body.TimeSpentMinutes != nil {
		record.TimeSpentMinutes = *body.TimeSpentMinutes
	}

	if err := h.progress.Upsert(record); err != nil {
		h.logger.Error("failed to update progress", "item", item.ID(), "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successBody{Success: true, Data: record})
}

type progressItem struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	ItemType        models.ItemType `json:"item_type"`
	DurationMinutes *int            `json:"duration_minutes"`
	OrderIndex      int             `json:"order_index"`
}

type progressRow struct {
	models.Progress
	CourseItem progressItem `json:"course_items"`
}

type progressResponse struct {
	Success bool                 `json:"success"`
	Data    []progressRow        `json:"data"`
	Stats   models.ProgressStats `json:"stats"`
}

// GetProgress handles GET /api/progress?courseId=.
//
// Rows are ordered by their item's position in the course.
func (h *APIHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	courseID := r.URL.Query().Get("courseId")
	if courseID == "" {
		writeError(w, fmt.Errorf("%w: course ID is required", shared.ErrMissingArgument))
		return
	}

	if _, err := h.courses.GetOwned(courseID, user.ID()); err != nil {
		writeError(w, err)
		return
	}

	items, err := h.items.ListByCourse(courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	records, err := h.progress.ListByCourse(user.ID(), courseID)
	if err != nil {
		writeError(w, err)
		return
	}

	byID := make(map[string]*models.CourseItem, len(items))
	for _, item := range items {
		byID[item.ID()] = item
	}

	rows := make([]progressRow, 0, len(records))
	for _, rec := range records {
		item, ok := byID[rec.CourseItemID]
		if !ok {
			continue
		}
		rows = append(rows, progressRow{
			Progress: rec,
			CourseItem: progressItem{
				ID:              item.ID(),
				Title:           item.Title(),
				ItemType:        item.ItemType(),
				DurationMinutes: item.DurationMinutes(),
				OrderIndex:      item.OrderIndex(),
			},
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CourseItem.OrderIndex < rows[j].CourseItem.OrderIndex
	})

	writeJSON(w, http.StatusOK, progressResponse{
		Success: true,
		Data:    rows,
		Stats:   models.CalculateProgressStats(items, records),
	})
}
