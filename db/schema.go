package db

import (
	"strconv"
	"strings"
)

const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
)

var schemas = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT 0
	);`,
		`CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		owner_id INTEGER NOT NULL,
		FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
	);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_owner ON notes(owner_id);`,
		`CREATE TABLE IF NOT EXISTS id_sequences (
		name VARCHAR(32) PRIMARY KEY,
		last_id INTEGER NOT NULL
	);`,
	},
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS users (
		id INT PRIMARY KEY,
		name VARCHAR(255) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE
	) ENGINE=InnoDB;`,
		`CREATE TABLE IF NOT EXISTS notes (
		id INT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		owner_id INT NOT NULL,
		FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB;`,
		`CREATE TABLE IF NOT EXISTS id_sequences (
		name VARCHAR(32) PRIMARY KEY,
		last_id INT NOT NULL
	) ENGINE=InnoDB;`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE
	);`,
		`CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
	);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_owner ON notes(owner_id);`,
		`CREATE TABLE IF NOT EXISTS id_sequences (
		name VARCHAR(32) PRIMARY KEY,
		last_id INTEGER NOT NULL
	);`,
	},
}

// rebind rewrites ? placeholders into the $n form postgres expects.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
