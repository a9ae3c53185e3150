package handlers

import "net/http"

const Version = "1.0.0"

var endpoints = []string{
	"/api/register",
	"/api/login",
	"/api/logout",
	"/api/notes",
	"/api/notes/{id}",
	"/api/admin/users",
	"/api/admin/users/{id}",
	"/api/status",
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Welcome to Notes API",
		"version":   Version,
		"endpoints": endpoints,
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Status()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
