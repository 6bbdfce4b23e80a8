package database

import "strings"

// IsUniqueViolation reports whether err is a SQLite unique constraint failure.
// Works with both mattn/go-sqlite3 and modernc.org/sqlite error strings.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed: UNIQUE") ||
		strings.Contains(errStr, "(2067)") // SQLITE_CONSTRAINT_UNIQUE
}

// IsForeignKeyViolation reports whether err is a SQLite foreign key constraint
// failure, such as deleting a row that other rows still reference.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "FOREIGN KEY constraint failed") ||
		strings.Contains(errStr, "(787)") // SQLITE_CONSTRAINT_FOREIGNKEY
}
