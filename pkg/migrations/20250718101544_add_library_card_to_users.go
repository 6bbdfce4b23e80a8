package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`ALTER TABLE users ADD COLUMN supporter BOOLEAN NOT NULL DEFAULT FALSE`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`ALTER TABLE users ADD COLUMN library_card_until DATE`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`ALTER TABLE users DROP COLUMN library_card_until`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`ALTER TABLE users DROP COLUMN supporter`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
