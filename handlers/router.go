package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	appmw "notes-api/middleware"
)

// NewRouter wires every route of the API. Sessions are resolved for all
// requests; each handler decides what an anonymous caller gets.
func NewRouter(h *Handler, sessions appmw.Resolver) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(appmw.CORS)
	r.Use(appmw.Session(sessions))

	r.Get("/", h.Root)
	r.Get("/api/status", h.Status)

	r.Post("/api/register", h.Register)
	r.Post("/api/login", h.Login)
	r.Post("/api/logout", h.Logout)

	r.Get("/api/notes", h.ListNotes)
	r.Post("/api/notes", h.CreateNote)
	r.Get("/api/notes/{id}", h.GetNote)
	r.Put("/api/notes/{id}", h.UpdateNote)
	r.Patch("/api/notes/{id}", h.UpdateNote)
	r.Delete("/api/notes/{id}", h.DeleteNote)

	r.Get("/api/admin/users", h.ListUsers)
	r.Delete("/api/admin/users/{id}", h.DeleteUser)

	return r
}
