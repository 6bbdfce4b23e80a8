package languages

import (
	"context"
	"database/sql"
	"time"

	"github.com/openshelf/openshelf/pkg/errcodes"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateLanguage(ctx context.Context, language *models.Language) error {
	now := time.Now()
	if language.CreatedAt.IsZero() {
		language.CreatedAt = now
	}
	language.UpdatedAt = language.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(language).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveLanguage(ctx context.Context, id int) (*models.Language, error) {
	language := &models.Language{}

	err := svc.db.
		NewSelect().
		Model(language).
		Where("l.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Language")
		}
		return nil, errors.WithStack(err)
	}

	return language, nil
}

func (svc *Service) ListLanguages(ctx context.Context) ([]*models.Language, error) {
	var languages []*models.Language

	err := svc.db.
		NewSelect().
		Model(&languages).
		Order("l.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return languages, nil
}

func (svc *Service) UpdateLanguage(ctx context.Context, language *models.Language, columns ...string) error {
	language.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(language).
		Column(columns...).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// DeleteLanguage removes the language. Books that referenced it fall back to
// no language rather than blocking the delete.
func (svc *Service) DeleteLanguage(ctx context.Context, id int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Language)(nil)).
		Where("l.id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}
