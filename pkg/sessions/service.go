package sessions

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service manages per-browser sessions that hold browse preferences.
type Service struct {
	db  *bun.DB
	ttl time.Duration
}

func NewService(db *bun.DB, ttl time.Duration) *Service {
	return &Service{
		db:  db,
		ttl: ttl,
	}
}

// Retrieve returns the session for the given token, or nil when the token is
// unknown or expired. Expired rows are left for the sweeper.
func (svc *Service) Retrieve(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, nil
	}

	session := &models.Session{}
	err := svc.db.
		NewSelect().
		Model(session).
		Where("s.token = ?", token).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, errors.WithStack(err)
	}

	if session.IsExpired(time.Now()) {
		return nil, nil
	}

	return session, nil
}

// Create starts a fresh session with a random token.
func (svc *Service) Create(ctx context.Context) (*models.Session, error) {
	now := time.Now()
	session := &models.Session{
		Token:     uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(svc.ttl),
	}

	_, err := svc.db.
		NewInsert().
		Model(session).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return session, nil
}

// ToggleAvailableOnly flips the availability filter and pushes out the
// session's expiry.
func (svc *Service) ToggleAvailableOnly(ctx context.Context, session *models.Session) error {
	now := time.Now()
	session.AvailableOnly = !session.AvailableOnly
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(svc.ttl)

	_, err := svc.db.
		NewUpdate().
		Model(session).
		Column("available_only", "updated_at", "expires_at").
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// DeleteExpired removes sessions past their expiry and returns how many rows
// went away.
func (svc *Service) DeleteExpired(ctx context.Context) (int, error) {
	res, err := svc.db.
		NewDelete().
		Model((*models.Session)(nil)).
		Where("s.expires_at <= ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return int(count), nil
}
