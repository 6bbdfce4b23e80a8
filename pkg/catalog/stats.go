package catalog

import (
	"context"

	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
)

// Stats are the landing-page counts.
type Stats struct {
	Books              int `json:"books"`
	Instances          int `json:"instances"`
	AvailableInstances int `json:"available_instances"`
	Authors            int `json:"authors"`
}

func (svc *Service) Counts(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	var err error

	stats.Books, err = svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats.Instances, err = svc.db.
		NewSelect().
		Model((*models.BookInstance)(nil)).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats.AvailableInstances, err = svc.db.
		NewSelect().
		Model((*models.BookInstance)(nil)).
		Where("NOT EXISTS (SELECT 1 FROM loans al WHERE al.book_instance_id = bi.id AND al.return_date IS NULL)").
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats.Authors, err = svc.db.
		NewSelect().
		Model((*models.Author)(nil)).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return stats, nil
}
