package users

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

func createMember(ctx context.Context, t *testing.T, db *bun.DB, username string) *models.User {
	t.Helper()

	role := new(models.Role)
	err := db.NewSelect().
		Model(role).
		Where("name = ?", models.RoleMember).
		Scan(ctx)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		PasswordHash: "x",
		RoleID:       role.ID,
		IsActive:     true,
	}
	_, err = db.NewInsert().Model(user).Returning("*").Exec(ctx)
	require.NoError(t, err)

	return user
}

func TestDeactivateAndReactivate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createMember(ctx, t, db, "member")

	require.NoError(t, svc.Deactivate(ctx, user))

	stored, err := svc.RetrieveUser(ctx, RetrieveUserOptions{ID: &user.ID})
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	require.NoError(t, svc.Reactivate(ctx, stored))

	stored, err = svc.RetrieveUser(ctx, RetrieveUserOptions{ID: &user.ID})
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createMember(ctx, t, db, "member")

	require.NoError(t, svc.ResetPassword(ctx, user.ID, "s3cret-enough"))

	valid, err := svc.VerifyPassword(ctx, user.ID, "s3cret-enough")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = svc.VerifyPassword(ctx, user.ID, "wrong")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestListUsersActiveOnly(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	active := createMember(ctx, t, db, "active")
	inactive := createMember(ctx, t, db, "inactive")
	require.NoError(t, svc.Deactivate(ctx, inactive))

	users, total, err := svc.ListUsersWithTotal(ctx, ListUsersOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, users, 2)
	require.NotNil(t, users[0].Role)
	assert.Equal(t, models.RoleMember, users[0].Role.Name)

	users, total, err = svc.ListUsersWithTotal(ctx, ListUsersOptions{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, active.ID, users[0].ID)
}
