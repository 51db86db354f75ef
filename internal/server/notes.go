package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/gorilla/mux"
)

// NoteStore is the subset of the note repository used by the API.
type NoteStore interface {
	Create(note *models.Note) error
	GetOwned(id, userID string) (*models.Note, error)
	Update(note *models.Note) error
	DeleteOwned(id, userID string) error
	ListByItem(userID, itemID string) ([]*models.Note, error)
	ListByCourse(userID, courseID string) ([]*models.Note, error)
}

type noteRequest struct {
	CourseItemID     string `json:"courseItemId"`
	Title            string `json:"title"`
	Content          string `json:"content"`
	TimestampSeconds *int   `json:"timestampSeconds"`
}

func (b noteRequest) draft() models.NoteDraft {
	return models.NoteDraft{Title: b.Title, Content: b.Content, TimestampSeconds: b.TimestampSeconds}
}

// CreateNote handles POST /api/notes. The note inherits its course from the item.
func (h *APIHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	var body noteRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.CourseItemID == "" || strings.TrimSpace(body.Content) == "" {
		writeError(w, fmt.Errorf("%w: course item ID and content are required", shared.ErrMissingArgument))
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

	note := models.NewNote(0, user.ID(), item.CourseID(), item.ID(), body.draft())
	if err := h.notes.Create(note); err != nil {
		h.logger.Error("failed to create note", "item", item.ID(), "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successBody{Success: true, Data: note})
}

// ListNotes handles GET /api/notes?courseItemId= or ?courseId=. The item filter wins when both are given.
func (h *APIHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var (
		notes []*models.Note
		err   error
	)
	switch {
	case q.Get("courseItemId") != "":
		notes, err = h.notes.ListByItem(user.ID(), q.Get("courseItemId"))
	case q.Get("courseId") != "":
		notes, err = h.notes.ListByCourse(user.ID(), q.Get("courseId"))
	default:
		err = fmt.Errorf("%w: course item ID or course ID is required", shared.ErrMissingArgument)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successBody{Success: true, Data: notes})
}

// UpdateNote handles PUT /api/notes/{id}. Title and timestamp are replaced, so omitting them clears them.
func (h *APIHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	var body noteRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		writeError(w, fmt.Errorf("%w: content is required", shared.ErrMissingArgument))
		return
	}

	note, err := h.notes.GetOwned(mux.Vars(r)["id"], user.ID())
	if err != nil {
		writeError(w, err)
		return
	}

	note.Edit(body.draft())
	if err := h.notes.Update(note); err != nil {
		h.logger.Error("failed to update note", "note", note.ID(), "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successBody{Success: true, Data: note})
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *APIHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	if err := h.notes.DeleteOwned(mux.Vars(r)["id"], user.ID()); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
