package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"

	"notes-api/models"
)

// SQLStore implements Store on database/sql. Every mutation runs in its own
// transaction; ids are drawn from the id_sequences table inside that
// transaction and the unique indexes on users back up the duplicate checks.
type SQLStore struct {
	db     *sql.DB
	driver string
}

func OpenSQL(driver, dsn string) (*SQLStore, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	if dsn == "" {
		return nil, errors.New("store dsn is required")
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// sqlite allows one writer; a single connection avoids SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := &SQLStore{db: conn, driver: driver}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	for _, stmt := range schemas[s.driver] {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	for _, table := range []string{"users", "notes"} {
		var n int
		if err := s.db.QueryRow(s.q("SELECT COUNT(*) FROM id_sequences WHERE name = ?"), table).Scan(&n); err != nil {
			return fmt.Errorf("read %s sequence: %w", table, err)
		}
		if n > 0 {
			continue
		}
		var maxID int
		if err := s.db.QueryRow("SELECT COALESCE(MAX(id), 0) FROM " + table).Scan(&maxID); err != nil {
			return fmt.Errorf("read max %s id: %w", table, err)
		}
		_, err := s.db.Exec(s.q("INSERT INTO id_sequences (name, last_id) VALUES (?, ?)"), table, maxID)
		if err != nil && !isUniqueViolation(err) {
			return fmt.Errorf("init %s sequence: %w", table, err)
		}
	}
	return nil
}

func (s *SQLStore) q(query string) string {
	return rebind(s.driver, query)
}

func (s *SQLStore) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) nextID(tx *sql.Tx, table string) (int, error) {
	if _, err := tx.Exec(s.q("UPDATE id_sequences SET last_id = last_id + 1 WHERE name = ?"), table); err != nil {
		return 0, fmt.Errorf("advance %s sequence: %w", table, err)
	}
	var id int
	if err := tx.QueryRow(s.q("SELECT last_id FROM id_sequences WHERE name = ?"), table).Scan(&id); err != nil {
		return 0, fmt.Errorf("read %s sequence: %w", table, err)
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.IsAdmin)
	return u, err
}

func scanNote(row rowScanner) (models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.OwnerID)
	return n, err
}

const (
	userColumns = "SELECT id, name, email, password, is_admin FROM users"
	noteColumns = "SELECT id, title, content, owner_id FROM notes"
)

func (s *SQLStore) findUser(where string, arg any) (models.User, bool, error) {
	u, err := scanUser(s.db.QueryRow(s.q(userColumns+" WHERE "+where+" = ?"), arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("find user by %s: %w", where, err)
	}
	return u, true, nil
}

func (s *SQLStore) FindUserByEmail(email string) (models.User, bool, error) {
	return s.findUser("email", email)
}

func (s *SQLStore) FindUserByName(name string) (models.User, bool, error) {
	return s.findUser("name", name)
}

func (s *SQLStore) FindUserByID(id int) (models.User, bool, error) {
	return s.findUser("id", id)
}

func (s *SQLStore) InsertUser(name, email, password string, isAdmin bool) (int, error) {
	var id int
	err := s.withTx(func(tx *sql.Tx) error {
		for _, field := range []struct{ column, value string }{{"email", email}, {"name", name}} {
			var n int
			err := tx.QueryRow(s.q("SELECT COUNT(*) FROM users WHERE "+field.column+" = ?"), field.value).Scan(&n)
			if err != nil {
				return fmt.Errorf("check %s: %w", field.column, err)
			}
			if n > 0 {
				return &ConstraintError{Field: field.column}
			}
		}

		var err error
		if id, err = s.nextID(tx, "users"); err != nil {
			return err
		}
		_, err = tx.Exec(s.q("INSERT INTO users (id, name, email, password, is_admin) VALUES (?, ?, ?, ?, ?)"),
			id, name, email, password, isAdmin)
		return err
	})
	if err != nil {
		return 0, uniqueError(err)
	}
	return id, nil
}

func (s *SQLStore) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query(userColumns + " ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLStore) DeleteUser(id int) (bool, error) {
	var deleted bool
	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(s.q("DELETE FROM notes WHERE owner_id = ?"), id); err != nil {
			return fmt.Errorf("delete notes of user %d: %w", id, err)
		}
		res, err := tx.Exec(s.q("DELETE FROM users WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = affected > 0
		if !deleted {
			return sql.ErrNoRows
		}
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return deleted, err
}

func (s *SQLStore) FindNotesByOwner(ownerID int) ([]models.Note, error) {
	rows, err := s.db.Query(s.q(noteColumns+" WHERE owner_id = ? ORDER BY id"), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notes of user %d: %w", ownerID, err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *SQLStore) FindNoteByID(id int) (models.Note, bool, error) {
	n, err := scanNote(s.db.QueryRow(s.q(noteColumns+" WHERE id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, false, nil
	}
	if err != nil {
		return models.Note{}, false, fmt.Errorf("find note %d: %w", id, err)
	}
	return n, true, nil
}

func (s *SQLStore) InsertNote(title, content string, ownerID int) (int, error) {
	var id int
	err := s.withTx(func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRow(s.q("SELECT COUNT(*) FROM users WHERE id = ?"), ownerID).Scan(&n); err != nil {
			return fmt.Errorf("check owner %d: %w", ownerID, err)
		}
		if n == 0 {
			return &ConstraintError{Field: "owner_id"}
		}

		var err error
		if id, err = s.nextID(tx, "notes"); err != nil {
			return err
		}
		_, err = tx.Exec(s.q("INSERT INTO notes (id, title, content, owner_id) VALUES (?, ?, ?, ?)"),
			id, title, content, ownerID)
		if err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLStore) UpdateNote(id int, upd models.NoteUpdate) (bool, error) {
	if upd.Empty() {
		return false, ErrEmptyUpdate
	}

	var sets []string
	var args []any
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *upd.Content)
	}
	args = append(args, id)

	var found bool
	err := s.withTx(func(tx *sql.Tx) error {
		// mysql reports changed rows, not matched ones, so existence is checked first
		var n int
		if err := tx.QueryRow(s.q("SELECT COUNT(*) FROM notes WHERE id = ?"), id).Scan(&n); err != nil {
			return fmt.Errorf("find note %d: %w", id, err)
		}
		if n == 0 {
			return nil
		}
		found = true
		_, err := tx.Exec(s.q("UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ?"), args...)
		if err != nil {
			return fmt.Errorf("update note %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (s *SQLStore) DeleteNote(id int) (bool, error) {
	res, err := s.db.Exec(s.q("DELETE FROM notes WHERE id = ?"), id)
	if err != nil {
		return false, fmt.Errorf("delete note %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *SQLStore) Stats() (models.Stats, error) {
	var st models.Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&st.Users); err != nil {
		return st, fmt.Errorf("count users: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&st.Notes); err != nil {
		return st, fmt.Errorf("count notes: %w", err)
	}
	return st, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// uniqueError converts a driver-level unique violation that slipped past the
// pre-check (a concurrent insert) into a ConstraintError.
func uniqueError(err error) error {
	if !isUniqueViolation(err) {
		return err
	}
	field := "name"
	if strings.Contains(strings.ToLower(err.Error()), "email") {
		field = "email"
	}
	return &ConstraintError{Field: field}
}

func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Store = (*SQLStore)(nil)
