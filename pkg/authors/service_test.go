package authors

import (
	"context"
	"database/sql"
	"testing"

	"github.com/openshelf/openshelf/pkg/migrations"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestListAuthorsOrderAndBookCount(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	levi := &models.Author{FirstName: "Primo", LastName: "Levi"}
	require.NoError(t, svc.CreateAuthor(ctx, levi))
	calvino := &models.Author{FirstName: "Italo", LastName: "Calvino"}
	require.NoError(t, svc.CreateAuthor(ctx, calvino))

	for _, title := range []string{"If This Is a Man", "The Periodic Table"} {
		book := &models.Book{Title: title, AuthorID: &levi.ID}
		_, err := db.NewInsert().Model(book).Exec(ctx)
		require.NoError(t, err)
	}

	authors, total, err := svc.ListAuthorsWithTotal(ctx, ListAuthorsOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, authors, 2)

	// Ordered by last name.
	assert.Equal(t, "Calvino, Italo", authors[0].DisplayName())
	assert.Equal(t, "Levi, Primo", authors[1].DisplayName())
	assert.Equal(t, 0, authors[0].BookCount)
	assert.Equal(t, 2, authors[1].BookCount)
}

func TestDeleteAuthorClearsBooks(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	author := &models.Author{FirstName: "Primo", LastName: "Levi"}
	require.NoError(t, svc.CreateAuthor(ctx, author))

	book := &models.Book{Title: "If This Is a Man", AuthorID: &author.ID}
	_, err := db.NewInsert().Model(book).Returning("*").Exec(ctx)
	require.NoError(t, err)

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAuthor(ctx, author.ID))

	err = db.NewSelect().Model(book).WherePK().Scan(ctx)
	require.NoError(t, err)
	assert.Nil(t, book.AuthorID)
}
