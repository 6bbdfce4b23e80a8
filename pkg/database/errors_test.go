package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.username")))
	assert.True(t, IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: loans.book_instance_id (2067)")))
	assert.False(t, IsUniqueViolation(errors.New("database is locked")))
}

func TestIsForeignKeyViolation(t *testing.T) {
	t.Parallel()

	assert.False(t, IsForeignKeyViolation(nil))
	assert.True(t, IsForeignKeyViolation(errors.New("FOREIGN KEY constraint failed (787)")))
	assert.False(t, IsForeignKeyViolation(errors.New("UNIQUE constraint failed: users.username")))
}
