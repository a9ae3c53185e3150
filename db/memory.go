package db

import (
	"sync"

	"notes-api/models"
)

// MemoryStore keeps users and notes in insertion-ordered slices behind a
// single RWMutex. Mutations take the write lock for their whole duration, so
// a cascading delete is never observed half-applied.
type MemoryStore struct {
	mu sync.RWMutex

	users []models.User
	notes []models.Note

	// highest ids ever handed out; ids are not reused after a delete
	lastUserID int
	lastNoteID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) FindUserByEmail(email string) (models.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

func (s *MemoryStore) FindUserByName(name string) (models.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUser(func(u models.User) bool { return u.Name == name })
}

func (s *MemoryStore) FindUserByID(id int) (models.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUser(func(u models.User) bool { return u.ID == id })
}

func (s *MemoryStore) findUser(match func(models.User) bool) (models.User, bool, error) {
	for _, u := range s.users {
		if match(u) {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

func (s *MemoryStore) InsertUser(name, email, password string, isAdmin bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok, _ := s.findUser(func(u models.User) bool { return u.Email == email }); ok {
		return 0, &ConstraintError{Field: "email"}
	}
	if _, ok, _ := s.findUser(func(u models.User) bool { return u.Name == name }); ok {
		return 0, &ConstraintError{Field: "name"}
	}

	s.lastUserID++
	s.users = append(s.users, models.User{
		ID:       s.lastUserID,
		Name:     name,
		Email:    email,
		Password: password,
		IsAdmin:  isAdmin,
	})
	return s.lastUserID, nil
}

func (s *MemoryStore) ListUsers() ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *MemoryStore) DeleteUser(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, u := range s.users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	s.users = append(s.users[:idx], s.users[idx+1:]...)

	kept := s.notes[:0]
	for _, n := range s.notes {
		if n.OwnerID != id {
			kept = append(kept, n)
		}
	}
	s.notes = kept
	return true, nil
}

func (s *MemoryStore) FindNotesByOwner(ownerID int) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Note{}
	for _, n := range s.notes {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *MemoryStore) FindNoteByID(id int) (models.Note, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.noteIndex(id); i >= 0 {
		return s.notes[i], true, nil
	}
	return models.Note{}, false, nil
}

func (s *MemoryStore) noteIndex(id int) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) InsertNote(title, content string, ownerID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok, _ := s.findUser(func(u models.User) bool { return u.ID == ownerID }); !ok {
		return 0, &ConstraintError{Field: "owner_id"}
	}
	s.lastNoteID++
	s.notes = append(s.notes, models.Note{
		ID:      s.lastNoteID,
		Title:   title,
		Content: content,
		OwnerID: ownerID,
	})
	return s.lastNoteID, nil
}

func (s *MemoryStore) UpdateNote(id int, upd models.NoteUpdate) (bool, error) {
	if upd.Empty() {
		return false, ErrEmptyUpdate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.noteIndex(id)
	if i < 0 {
		return false, nil
	}
	if upd.Title != nil {
		s.notes[i].Title = *upd.Title
	}
	if upd.Content != nil {
		s.notes[i].Content = *upd.Content
	}
	return true, nil
}

func (s *MemoryStore) DeleteNote(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.noteIndex(id)
	if i < 0 {
		return false, nil
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	return true, nil
}

func (s *MemoryStore) Stats() (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Stats{Users: len(s.users), Notes: len(s.notes)}, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
