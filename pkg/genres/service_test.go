package genres

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/openshelf/openshelf/pkg/errcodes"
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

func TestCreateGenreRejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	require.NoError(t, svc.CreateGenre(ctx, &models.Genre{Name: "Fiction"}))

	// The name index is case-insensitive.
	err := svc.CreateGenre(ctx, &models.Genre{Name: "fiction"})

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusConflict, codeErr.HTTPCode)
}

func TestListGenresBookCount(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	fiction := &models.Genre{Name: "Fiction"}
	require.NoError(t, svc.CreateGenre(ctx, fiction))
	poetry := &models.Genre{Name: "Poetry"}
	require.NoError(t, svc.CreateGenre(ctx, poetry))

	book := &models.Book{Title: "The Leopard"}
	_, err := db.NewInsert().Model(book).Returning("*").Exec(ctx)
	require.NoError(t, err)
	link := &models.BookGenre{BookID: book.ID, GenreID: fiction.ID}
	_, err = db.NewInsert().Model(link).Exec(ctx)
	require.NoError(t, err)

	genres, total, err := svc.ListGenresWithTotal(ctx, ListGenresOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, genres, 2)

	assert.Equal(t, "Fiction", genres[0].Name)
	assert.Equal(t, 1, genres[0].BookCount)
	assert.Equal(t, "Poetry", genres[1].Name)
	assert.Equal(t, 0, genres[1].BookCount)
}

func TestRetrieveGenreByName(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	fiction := &models.Genre{Name: "Fiction"}
	require.NoError(t, svc.CreateGenre(ctx, fiction))

	name := "FICTION"
	found, err := svc.RetrieveGenre(ctx, RetrieveGenreOptions{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, fiction.ID, found.ID)

	missing := "Unknown"
	_, err = svc.RetrieveGenre(ctx, RetrieveGenreOptions{Name: &missing})
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusNotFound, codeErr.HTTPCode)
}
