package handlers

import (
	"encoding/json"
	"net/http"

	"notes-api/middleware"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	UserID  int    `json:"user_id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
	Token   string `json:"token"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	// an unreadable body leaves the fields empty and fails validation
	json.NewDecoder(r.Body).Decode(&req)

	id, err := h.svc.Register(req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user_id": id,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	json.NewDecoder(r.Body).Decode(&req)

	sess, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		UserID:  sess.User.ID,
		Name:    sess.User.Name,
		IsAdmin: sess.User.IsAdmin,
		Token:   sess.Token,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(middleware.TokenFromRequest(r))

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeMessage(w, http.StatusOK, "Logout successful")
}
