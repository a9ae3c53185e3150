package handlers

import (
	"encoding/json"
	"net/http"

	"notes-api/middleware"
	"notes-api/models"
	"notes-api/service"
)

type noteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func notFound(msg string) error {
	return &service.Error{Kind: service.ErrNotFound, Message: msg}
}

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.ListOwnNotes(middleware.ActorFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if !actor.Authenticated() {
		// checked before the body so anonymous callers always see 401
		h.writeError(w, r, &service.Error{Kind: service.ErrUnauthorized, Message: "Unauthorized"})
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == nil || req.Content == nil {
		h.logger.Warn("note creation rejected", "reason", "missing required fields", "user_id", actor.UserID)
		h.writeError(w, r, &service.Error{Kind: service.ErrBadRequest, Message: "Missing required fields"})
		return
	}

	note, err := h.svc.CreateNote(actor, *req.Title, *req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Note created successfully",
		"note_id":  note.ID,
		"title":    note.Title,
		"content":  note.Content,
		"owner_id": note.OwnerID,
	})
}

func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, notFound("Note not found"))
		return
	}

	note, err := h.svc.GetNote(actor, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"note": note})
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, notFound("Note not found"))
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// the service reports the empty update after its existence and
		// ownership checks
		req = noteRequest{}
	}

	note, err := h.svc.UpdateNote(actor, id, models.NoteUpdate{Title: req.Title, Content: req.Content})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Note updated successfully",
		"note":    note,
	})
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, notFound("Note not found"))
		return
	}

	if err := h.svc.DeleteNote(actor, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Note deleted successfully")
}
