package handlers

import (
	"net/http"

	"notes-api/middleware"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(middleware.ActorFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, notFound("User not found"))
		return
	}

	if err := h.svc.DeleteUser(actor, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "User deleted successfully")
}
