package db

import (
	"errors"
	"fmt"

	"notes-api/models"
)

var (
	// ErrConstraintViolation marks a write the store refused because it would
	// break a uniqueness rule. Callers are expected to pre-check.
	ErrConstraintViolation = errors.New("constraint violation")
	ErrEmptyUpdate         = errors.New("update has no fields")
)

// ConstraintError reports which unique field a refused insert collided on.
type ConstraintError struct {
	Field string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: duplicate %s", ErrConstraintViolation, e.Field)
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}

// Store is the persistence contract for users and notes. Implementations hold
// no authorization logic and must make each method atomic with respect to
// concurrent callers.
type Store interface {
	FindUserByEmail(email string) (models.User, bool, error)
	FindUserByName(name string) (models.User, bool, error)
	FindUserByID(id int) (models.User, bool, error)
	InsertUser(name, email, password string, isAdmin bool) (int, error)
	ListUsers() ([]models.User, error)
	// DeleteUser removes the user and every note it owns. It reports false
	// when no such user existed.
	DeleteUser(id int) (bool, error)

	FindNotesByOwner(ownerID int) ([]models.Note, error)
	FindNoteByID(id int) (models.Note, bool, error)
	// InsertNote refuses an owner id that matches no user.
	InsertNote(title, content string, ownerID int) (int, error)
	UpdateNote(id int, upd models.NoteUpdate) (bool, error)
	DeleteNote(id int) (bool, error)

	Stats() (models.Stats, error)
	Close() error
}

const DriverMemory = "memory"

// Open returns the store for the given driver. "memory" ignores dsn; every
// other driver name is handed to database/sql.
func Open(driver, dsn string) (Store, error) {
	if driver == DriverMemory {
		return NewMemoryStore(), nil
	}
	return OpenSQL(driver, dsn)
}
