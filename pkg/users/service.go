package users

import (
	"context"
	"database/sql"
	"time"

	"github.com/openshelf/openshelf/pkg/auth"
	"github.com/openshelf/openshelf/pkg/errcodes"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveUserOptions struct {
	ID          *int
	IncludeRole bool
}

type ListUsersOptions struct {
	Limit      *int
	Offset     *int
	ActiveOnly bool

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveUser(ctx context.Context, opts RetrieveUserOptions) (*models.User, error) {
	user := &models.User{}

	q := svc.db.
		NewSelect().
		Model(user)

	if opts.ID != nil {
		q = q.Where("u.id = ?", *opts.ID)
	}
	if opts.IncludeRole {
		q = q.
			Relation("Role").
			Relation("Role.Permissions")
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

func (svc *Service) ListUsers(ctx context.Context, opts ListUsersOptions) ([]*models.User, error) {
	users, _, err := svc.listUsersWithTotal(ctx, opts)
	return users, errors.WithStack(err)
}

func (svc *Service) ListUsersWithTotal(ctx context.Context, opts ListUsersOptions) ([]*models.User, int, error) {
	opts.includeTotal = true
	return svc.listUsersWithTotal(ctx, opts)
}

func (svc *Service) listUsersWithTotal(ctx context.Context, opts ListUsersOptions) ([]*models.User, int, error) {
	var users []*models.User
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&users).
		Relation("Role").
		Order("u.username ASC")

	if opts.ActiveOnly {
		q = q.Where("u.is_active = TRUE")
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return users, total, nil
}

func (svc *Service) UpdateUser(ctx context.Context, user *models.User, columns ...string) error {
	user.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(user).
		Column(columns...).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// VerifyPassword checks if the password is correct for a user.
func (svc *Service) VerifyPassword(ctx context.Context, userID int, password string) (bool, error) {
	user := &models.User{}
	err := svc.db.
		NewSelect().
		Model(user).
		Column("password_hash").
		Where("u.id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, errcodes.NotFound("User")
		}
		return false, errors.WithStack(err)
	}

	return auth.CheckPassword(password, user.PasswordHash), nil
}

// ResetPassword changes a user's password.
func (svc *Service) ResetPassword(ctx context.Context, userID int, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = svc.db.
		NewUpdate().
		Model((*models.User)(nil)).
		Set("password_hash = ?", hash).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", userID).
		Exec(ctx)
	return errors.WithStack(err)
}

// Deactivate turns off the account without touching its loan history.
func (svc *Service) Deactivate(ctx context.Context, user *models.User) error {
	user.IsActive = false
	return svc.UpdateUser(ctx, user, "is_active")
}

// Reactivate turns a deactivated account back on.
func (svc *Service) Reactivate(ctx context.Context, user *models.User) error {
	user.IsActive = true
	return svc.UpdateUser(ctx, user, "is_active")
}
