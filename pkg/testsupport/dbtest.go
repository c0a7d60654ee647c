// Package testsupport holds helpers shared by storage integration tests.
package testsupport

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteMemoryDB opens a process-shared in-memory SQLite database. Tests
// in the same binary see the same store, so each package keeps a single
// lifecycle test against it.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file::memory:?cache=shared")
}
