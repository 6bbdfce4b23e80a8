package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf/pkg/database"
	"github.com/openshelf/openshelf/pkg/errcodes"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
)

type RetrieveInstanceOptions struct {
	ID               *uuid.UUID
	IncludeRelations bool
}

func (svc *Service) CreateInstance(ctx context.Context, instance *models.BookInstance) error {
	now := time.Now()
	if instance.ID == uuid.Nil {
		instance.ID = uuid.New()
	}
	if instance.CreatedAt.IsZero() {
		instance.CreatedAt = now
	}
	instance.UpdatedAt = instance.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(instance).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	instance.Status = models.StatusAvailable
	return nil
}

func (svc *Service) RetrieveInstance(ctx context.Context, opts RetrieveInstanceOptions) (*models.BookInstance, error) {
	instance := &models.BookInstance{}

	q := svc.db.
		NewSelect().
		Model(instance)

	if opts.ID != nil {
		q = q.Where("bi.id = ?", *opts.ID)
	}
	if opts.IncludeRelations {
		q = q.
			Relation("Book").
			Relation("Book.Author")
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book instance")
		}
		return nil, errors.WithStack(err)
	}

	err = svc.decorateInstances(ctx, []*models.BookInstance{instance})
	if err != nil {
		return nil, err
	}

	return instance, nil
}

func (svc *Service) UpdateInstance(ctx context.Context, instance *models.BookInstance, columns ...string) error {
	instance.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(instance).
		Column(columns...).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// DeleteInstance removes a copy. Loan history references copies, so one that
// was ever borrowed stays.
func (svc *Service) DeleteInstance(ctx context.Context, id uuid.UUID) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.BookInstance)(nil)).
		Where("bi.id = ?", id).
		Exec(ctx)
	if database.IsForeignKeyViolation(err) {
		return errcodes.Conflict("Cannot delete a copy with loan history")
	}
	return errors.WithStack(err)
}
