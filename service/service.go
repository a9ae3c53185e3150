package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"notes-api/auth"
	"notes-api/db"
	"notes-api/models"
	"notes-api/policy"
)

// Service implements every use case of the notes API. Handlers pass it an
// already resolved actor; it consults the policy and then the store.
type Service struct {
	store    db.Store
	sessions *auth.Manager
	logger   *slog.Logger
	now      func() time.Time
}

func New(store db.Store, sessions *auth.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, sessions: sessions, logger: logger, now: time.Now}
}

type Session struct {
	Token string
	User  models.User
}

type StatusReport struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	UserCount int       `json:"user_count"`
	NoteCount int       `json:"note_count"`
}

// authorize turns a policy decision into a failure kind. Note actions by an
// anonymous actor are Unauthorized; the admin actions answer Forbidden to
// everyone who is not an admin.
func (s *Service) authorize(actor models.Actor, action policy.Action, res policy.Resource) error {
	switch policy.Decide(actor, action, res) {
	case policy.Allow:
		return nil
	case policy.Reject:
		return fail(ErrBadRequest, "Cannot delete your own admin account")
	}
	if !actor.Authenticated() && action != policy.ListUsers && action != policy.DeleteUser {
		return fail(ErrUnauthorized, "Unauthorized")
	}
	return fail(ErrForbidden, "Unauthorized")
}

func requireActor(actor models.Actor) error {
	if !actor.Authenticated() {
		return fail(ErrUnauthorized, "Unauthorized")
	}
	return nil
}

func (s *Service) Register(name, email, password string) (int, error) {
	if name == "" || email == "" || password == "" {
		s.logger.Warn("registration failed", "reason", "missing required fields")
		return 0, fail(ErrBadRequest, "Missing required fields")
	}

	if _, found, err := s.store.FindUserByEmail(email); err != nil {
		return 0, err
	} else if found {
		s.logger.Warn("registration failed", "reason", "email exists", "email", email)
		return 0, fail(ErrDuplicateEmail, "Email already exists")
	}
	if _, found, err := s.store.FindUserByName(name); err != nil {
		return 0, err
	} else if found {
		s.logger.Warn("registration failed", "reason", "name exists", "name", name)
		return 0, fail(ErrDuplicateName, "Username already exists")
	}

	stored, err := s.sessions.Scheme().Hash(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.store.InsertUser(name, email, stored, false)
	if err != nil {
		// lost a race with a concurrent registration
		var cerr *db.ConstraintError
		if errors.As(err, &cerr) {
			s.logger.Warn("registration failed", "reason", "concurrent duplicate", "field", cerr.Field)
			if cerr.Field == "email" {
				return 0, fail(ErrDuplicateEmail, "Email already exists")
			}
			return 0, fail(ErrDuplicateName, "Username already exists")
		}
		return 0, err
	}

	s.logger.Info("user registered", "user_id", id, "name", name)
	return id, nil
}

func (s *Service) Login(email, password string) (Session, error) {
	if email == "" || password == "" {
		s.logger.Warn("login failed", "reason", "missing required fields")
		return Session{}, fail(ErrBadRequest, "Missing required fields")
	}

	token, user, err := s.sessions.Login(email, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.logger.Warn("login failed", "reason", "invalid credentials", "email", email)
		return Session{}, fail(ErrInvalidCredentials, "Invalid credentials")
	}
	if err != nil {
		return Session{}, err
	}

	s.logger.Info("user logged in", "user_id", user.ID, "name", user.Name)
	return Session{Token: token, User: user}, nil
}

func (s *Service) Logout(token string) {
	s.sessions.Logout(token)
	s.logger.Info("user logged out")
}

func (s *Service) CreateNote(actor models.Actor, title, content string) (models.Note, error) {
	if err := s.authorize(actor, policy.CreateNote, policy.Resource{}); err != nil {
		s.logger.Warn("note creation rejected", "reason", err)
		return models.Note{}, err
	}

	id, err := s.store.InsertNote(title, content, actor.UserID)
	if errors.Is(err, db.ErrConstraintViolation) {
		// the session outlived its user
		s.logger.Warn("note creation rejected", "reason", "owner no longer exists", "user_id", actor.UserID)
		return models.Note{}, fail(ErrUnauthorized, "Unauthorized")
	}
	if err != nil {
		return models.Note{}, err
	}

	s.logger.Info("note created", "note_id", id, "user_id", actor.UserID)
	return models.Note{ID: id, Title: title, Content: content, OwnerID: actor.UserID}, nil
}

func (s *Service) ListOwnNotes(actor models.Actor) ([]models.Note, error) {
	if err := s.authorize(actor, policy.ListNotes, policy.Resource{}); err != nil {
		s.logger.Warn("note listing rejected", "reason", err)
		return nil, err
	}
	notes, err := s.store.FindNotesByOwner(actor.UserID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("notes listed", "user_id", actor.UserID, "count", len(notes))
	return notes, nil
}

// loadNote fetches a note for action, checking the session first so an
// anonymous caller cannot probe which ids exist.
func (s *Service) loadNote(actor models.Actor, id int, action policy.Action) (models.Note, error) {
	if err := requireActor(actor); err != nil {
		return models.Note{}, err
	}
	note, found, err := s.store.FindNoteByID(id)
	if err != nil {
		return models.Note{}, err
	}
	if !found {
		return models.Note{}, fail(ErrNotFound, "Note not found")
	}
	if err := s.authorize(actor, action, policy.OnNote(note)); err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (s *Service) GetNote(actor models.Actor, id int) (models.Note, error) {
	note, err := s.loadNote(actor, id, policy.ReadNote)
	if err != nil {
		s.logger.Warn("note read rejected", "note_id", id, "user_id", actor.UserID, "reason", err)
		return models.Note{}, err
	}
	s.logger.Info("note read", "note_id", id, "user_id", actor.UserID)
	return note, nil
}

func (s *Service) UpdateNote(actor models.Actor, id int, upd models.NoteUpdate) (models.Note, error) {
	note, err := s.loadNote(actor, id, policy.UpdateNote)
	if err == nil && upd.Empty() {
		err = fail(ErrBadRequest, "No valid fields to update")
	}
	if err != nil {
		s.logger.Warn("note update rejected", "note_id", id, "user_id", actor.UserID, "reason", err)
		return models.Note{}, err
	}

	ok, err := s.store.UpdateNote(id, upd)
	if err != nil {
		return models.Note{}, err
	}
	if !ok {
		return models.Note{}, fail(ErrNotFound, "Note not found")
	}

	if upd.Title != nil {
		note.Title = *upd.Title
	}
	if upd.Content != nil {
		note.Content = *upd.Content
	}
	s.logger.Info("note updated", "note_id", id, "user_id", actor.UserID)
	return note, nil
}

func (s *Service) DeleteNote(actor models.Actor, id int) error {
	if _, err := s.loadNote(actor, id, policy.DeleteNote); err != nil {
		s.logger.Warn("note deletion rejected", "note_id", id, "user_id", actor.UserID, "reason", err)
		return err
	}
	ok, err := s.store.DeleteNote(id)
	if err != nil {
		return err
	}
	if !ok {
		return fail(ErrNotFound, "Note not found")
	}
	s.logger.Info("note deleted", "note_id", id, "user_id", actor.UserID)
	return nil
}

func (s *Service) ListUsers(actor models.Actor) ([]models.UserSummary, error) {
	if err := s.authorize(actor, policy.ListUsers, policy.Resource{}); err != nil {
		s.logger.Warn("user listing rejected", "user_id", actor.UserID, "reason", err)
		return nil, err
	}
	users, err := s.store.ListUsers()
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	s.logger.Info("users listed", "user_id", actor.UserID, "count", len(out))
	return out, nil
}

func (s *Service) DeleteUser(actor models.Actor, targetID int) error {
	if err := s.authorize(actor, policy.DeleteUser, policy.OnUser(targetID)); err != nil {
		s.logger.Warn("user deletion rejected", "target_id", targetID, "user_id", actor.UserID, "reason", err)
		return err
	}

	ok, err := s.store.DeleteUser(targetID)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("user deletion rejected", "target_id", targetID, "reason", "not found")
		return fail(ErrNotFound, "User not found")
	}
	s.logger.Info("user deleted", "target_id", targetID, "user_id", actor.UserID)
	return nil
}

func (s *Service) Status() (StatusReport, error) {
	stats, err := s.store.Stats()
	if err != nil {
		return StatusReport{}, err
	}
	return StatusReport{
		Status:    "online",
		Timestamp: s.now(),
		UserCount: stats.Users,
		NoteCount: stats.Notes,
	}, nil
}
