package service

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-api/auth"
	"notes-api/db"
	"notes-api/models"
)

var (
	admin = models.Actor{UserID: 1, IsAdmin: true}
	user  = models.Actor{UserID: 2}
)

func strPtr(s string) *string { return &s }

// newTestService returns a service over a fresh memory store holding the
// default seed: admin (1) and user (2), each owning one note.
func newTestService(t *testing.T) (*Service, db.Store) {
	t.Helper()
	store := db.NewMemoryStore()
	seed, err := db.LoadSeed("")
	require.NoError(t, err)
	_, err = db.ApplySeed(store, seed, auth.PlainScheme{}.Hash)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := auth.NewManager(auth.Options{Store: store, Secret: "test", TTL: time.Hour, Logger: logger})
	return New(store, sessions, logger), store
}

func TestRegister(t *testing.T) {
	svc, store := newTestService(t)

	t.Run("Creates non-admin user", func(t *testing.T) {
		id, err := svc.Register("u1", "u1@x.com", "p")
		require.NoError(t, err)
		assert.Equal(t, 3, id)

		u, found, _ := store.FindUserByID(id)
		require.True(t, found)
		assert.False(t, u.IsAdmin)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		_, err := svc.Register("fresh", "u1@x.com", "p")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("Duplicate name", func(t *testing.T) {
		_, err := svc.Register("u1", "fresh@x.com", "p")
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("Email checked before name", func(t *testing.T) {
		_, err := svc.Register("u1", "u1@x.com", "p")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("Missing fields", func(t *testing.T) {
		for _, args := range [][3]string{{"", "a@x.com", "p"}, {"a", "", "p"}, {"a", "a@x.com", ""}} {
			_, err := svc.Register(args[0], args[1], args[2])
			assert.ErrorIs(t, err, ErrBadRequest)
		}
	})

	t.Run("Ids keep increasing", func(t *testing.T) {
		prev := 3
		for i := 0; i < 3; i++ {
			id, err := svc.Register(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d@x.com", i), "p")
			require.NoError(t, err)
			assert.Greater(t, id, prev)
			prev = id
		}
	})
}

func TestRegisterConcurrentDuplicates(t *testing.T) {
	svc, _ := newTestService(t)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(fmt.Sprintf("racer%d", i), "race@x.com", "p")
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	}
	assert.Equal(t, 1, ok)
}

func TestRegisterHashesWithConfiguredScheme(t *testing.T) {
	store := db.NewMemoryStore()
	sessions := auth.NewManager(auth.Options{Store: store, Scheme: auth.BcryptScheme{Cost: 4}, Secret: "test"})
	svc := New(store, sessions, slog.New(slog.NewTextHandler(io.Discard, nil)))

	id, err := svc.Register("b", "b@x.com", "pw")
	require.NoError(t, err)
	u, _, _ := store.FindUserByID(id)
	assert.NotEqual(t, "pw", u.Password)

	sess, err := svc.Login("b@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, id, sess.User.ID)
}

func TestLoginLogout(t *testing.T) {
	svc, _ := newTestService(t)

	sess, err := svc.Login("user@example.com", "user123")
	require.NoError(t, err)
	assert.Equal(t, 2, sess.User.ID)
	assert.Equal(t, user, svc.sessions.Resolve(sess.Token))

	_, err = svc.Login("user@example.com", "bad")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("nobody@example.com", "user123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("", "user123")
	assert.ErrorIs(t, err, ErrBadRequest)

	svc.Logout(sess.Token)
	assert.Equal(t, models.Anonymous, svc.sessions.Resolve(sess.Token))
	svc.Logout(sess.Token)
}

func TestNotesRequireSession(t *testing.T) {
	svc, _ := newTestService(t)
	anon := models.Anonymous

	_, err := svc.CreateNote(anon, "t", "c")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.ListOwnNotes(anon)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.GetNote(anon, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.GetNote(anon, 999)
	assert.ErrorIs(t, err, ErrUnauthorized, "session is checked before existence")
	_, err = svc.UpdateNote(anon, 1, models.NoteUpdate{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, svc.DeleteNote(anon, 1), ErrUnauthorized)
}

func TestOwnershipGate(t *testing.T) {
	svc, _ := newTestService(t)
	otherID, err := svc.Register("other", "other@x.com", "p")
	require.NoError(t, err)
	other := models.Actor{UserID: otherID}

	// note 2 belongs to user 2
	_, err = svc.GetNote(other, 2)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.UpdateNote(other, 2, models.NoteUpdate{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.DeleteNote(other, 2), ErrForbidden)

	n, err := svc.GetNote(admin, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n.OwnerID)

	_, err = svc.UpdateNote(admin, 2, models.NoteUpdate{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrForbidden, "admins do not bypass the owner check on update")

	require.NoError(t, svc.DeleteNote(admin, 2))
	_, err = svc.GetNote(user, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoteLifecycle(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.CreateNote(user, "T", "C")
	require.NoError(t, err)
	assert.Equal(t, models.Note{ID: 3, Title: "T", Content: "C", OwnerID: 2}, n)

	notes, err := svc.ListOwnNotes(user)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, []int{2, 3}, []int{notes[0].ID, notes[1].ID})

	got, err := svc.GetNote(user, 3)
	require.NoError(t, err)
	assert.Equal(t, n, got)

	_, err = svc.GetNote(user, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteNote(user, 404), ErrNotFound)

	require.NoError(t, svc.DeleteNote(user, 3))
	_, err = svc.GetNote(user, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPartialUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	n, err := svc.CreateNote(user, "title", "content")
	require.NoError(t, err)

	got, err := svc.UpdateNote(user, n.ID, models.NoteUpdate{Title: strPtr("new")})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "content", got.Content)

	got, err = svc.UpdateNote(user, n.ID, models.NoteUpdate{Content: strPtr("body")})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "body", got.Content)

	stored, err := svc.GetNote(user, n.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)

	_, err = svc.UpdateNote(user, n.ID, models.NoteUpdate{})
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = svc.UpdateNote(user, 404, models.NoteUpdate{})
	assert.ErrorIs(t, err, ErrNotFound, "existence is checked before the payload")
}

func TestListUsersRedactsPasswords(t *testing.T) {
	svc, _ := newTestService(t)

	users, err := svc.ListUsers(admin)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.UserSummary{ID: 1, Name: "admin", Email: "admin@example.com", IsAdmin: true}, users[0])

	_, err = svc.ListUsers(user)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ListUsers(models.Anonymous)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteUser(t *testing.T) {
	svc, store := newTestService(t)

	t.Run("Non-admin forbidden", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteUser(user, 1), ErrForbidden)
		assert.ErrorIs(t, svc.DeleteUser(user, 2), ErrForbidden)
		assert.ErrorIs(t, svc.DeleteUser(models.Anonymous, 2), ErrForbidden)
	})

	t.Run("Self delete guard", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteUser(admin, 1), ErrBadRequest)
		_, found, _ := store.FindUserByID(1)
		assert.True(t, found)
	})

	t.Run("Missing target", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteUser(admin, 404), ErrNotFound)
	})

	t.Run("Cascades to notes", func(t *testing.T) {
		require.NoError(t, svc.DeleteUser(admin, 2))
		_, err := svc.GetNote(admin, 2)
		assert.ErrorIs(t, err, ErrNotFound)

		// admin's own note survives
		_, err = svc.GetNote(admin, 1)
		assert.NoError(t, err)
	})

	t.Run("Stale session cannot create notes", func(t *testing.T) {
		_, err := svc.CreateNote(user, "orphan", "x")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestScenario(t *testing.T) {
	svc, _ := newTestService(t)

	id, err := svc.Register("u1", "u1@x.com", "p")
	require.NoError(t, err)
	require.Equal(t, 3, id)

	sess, err := svc.Login("u1@x.com", "p")
	require.NoError(t, err)
	u1 := svc.sessions.Resolve(sess.Token)
	require.Equal(t, models.Actor{UserID: 3, IsAdmin: false}, u1)

	note, err := svc.CreateNote(u1, "T", "C")
	require.NoError(t, err)
	require.Equal(t, 3, note.ID)
	require.Equal(t, 3, note.OwnerID)

	_, err = svc.GetNote(user, 3)
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteUser(admin, 3))

	for _, actor := range []models.Actor{admin, user, u1} {
		_, err := svc.GetNote(actor, 3)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestStatus(t *testing.T) {
	svc, _ := newTestService(t)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	report, err := svc.Status()
	require.NoError(t, err)
	assert.Equal(t, StatusReport{Status: "online", Timestamp: fixed, UserCount: 2, NoteCount: 2}, report)
}
