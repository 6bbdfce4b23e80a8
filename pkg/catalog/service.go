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
	"github.com/uptrace/bun"
)

// availableExpr is true when at least one copy of the book has no open loan.
const availableExpr = `EXISTS (
	SELECT 1 FROM book_instances abi
	WHERE abi.book_id = b.id
	AND NOT EXISTS (
		SELECT 1 FROM loans al
		WHERE al.book_instance_id = abi.id AND al.return_date IS NULL
	)
)`

type RetrieveBookOptions struct {
	ID               *int
	IncludeRelations bool
}

type ListBooksOptions struct {
	Limit         *int
	Offset        *int
	AuthorID      *int
	GenreID       *int
	AvailableOnly bool

	includeTotal bool
}

type UpdateBookOptions struct {
	Columns  []string
	GenreIDs *[]int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book, genreIDs []int) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt
	if book.LanguageID == nil {
		languageID := models.DefaultLanguageID
		book.LanguageID = &languageID
	}

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return svc.replaceGenres(ctx, tx, book, genreIDs)
	})
	if err != nil {
		return err
	}

	return svc.loadGenres(ctx, []*models.Book{book})
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		ColumnExpr("b.*").
		ColumnExpr(availableExpr + " AS available")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.IncludeRelations {
		q = q.
			Relation("Author").
			Relation("Language").
			Relation("Instances")
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	if opts.IncludeRelations {
		if err := svc.loadGenres(ctx, []*models.Book{book}); err != nil {
			return nil, err
		}
		if err := svc.decorateInstances(ctx, book.Instances); err != nil {
			return nil, err
		}
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books, _, err := svc.listBooksWithTotal(ctx, opts)
	return books, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	var books []*models.Book
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		ColumnExpr("b.*").
		ColumnExpr(availableExpr+" AS available").
		Relation("Author").
		Relation("Language").
		OrderExpr("b.title ASC, author.last_name ASC, author.first_name ASC")

	if opts.AuthorID != nil {
		q = q.Where("b.author_id = ?", *opts.AuthorID)
	}
	if opts.GenreID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM book_genres bg WHERE bg.book_id = b.id AND bg.genre_id = ?)", *opts.GenreID)
	}
	if opts.AvailableOnly {
		q = q.Where(availableExpr)
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

	err = svc.loadGenres(ctx, books)
	if err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	book.UpdatedAt = time.Now()

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(opts.Columns) > 0 {
			columns := append(opts.Columns, "updated_at")
			_, err := tx.
				NewUpdate().
				Model(book).
				Column(columns...).
				WherePK().
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		if opts.GenreIDs != nil {
			return svc.replaceGenres(ctx, tx, book, *opts.GenreIDs)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return svc.loadGenres(ctx, []*models.Book{book})
}

// DeleteBook removes a book. Copies restrict deletion, so a book that still
// has instances comes back as a conflict rather than a cascade.
func (svc *Service) DeleteBook(ctx context.Context, id int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("b.id = ?", id).
		Exec(ctx)
	if database.IsForeignKeyViolation(err) {
		return errcodes.Conflict("Cannot delete a book that still has copies")
	}
	return errors.WithStack(err)
}

// replaceGenres rewrites the book's genre links to exactly genreIDs.
func (svc *Service) replaceGenres(ctx context.Context, tx bun.Tx, book *models.Book, genreIDs []int) error {
	_, err := tx.
		NewDelete().
		Model((*models.BookGenre)(nil)).
		Where("bg.book_id = ?", book.ID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	if len(genreIDs) == 0 {
		return nil
	}

	links := make([]*models.BookGenre, len(genreIDs))
	for i, genreID := range genreIDs {
		links[i] = &models.BookGenre{BookID: book.ID, GenreID: genreID}
	}

	_, err = tx.
		NewInsert().
		Model(&links).
		Exec(ctx)
	return errors.WithStack(err)
}

// loadGenres populates Genres on each book through the join table.
func (svc *Service) loadGenres(ctx context.Context, books []*models.Book) error {
	if len(books) == 0 {
		return nil
	}

	byID := make(map[int]*models.Book, len(books))
	ids := make([]int, len(books))
	for i, book := range books {
		byID[book.ID] = book
		ids[i] = book.ID
		book.Genres = []*models.Genre{}
	}

	var links []*models.BookGenre
	err := svc.db.
		NewSelect().
		Model(&links).
		Relation("Genre").
		Where("bg.book_id IN (?)", bun.In(ids)).
		OrderExpr("genre.name ASC").
		Scan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, link := range links {
		if book, ok := byID[link.BookID]; ok && link.Genre != nil {
			book.Genres = append(book.Genres, link.Genre)
		}
	}

	return nil
}

// decorateInstances fills in each copy's derived status from its open loan.
func (svc *Service) decorateInstances(ctx context.Context, instances []*models.BookInstance) error {
	if len(instances) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(instances))
	for i, bi := range instances {
		ids[i] = bi.ID
	}

	var open []*models.Loan
	err := svc.db.
		NewSelect().
		Model(&open).
		Where("ln.book_instance_id IN (?)", bun.In(ids)).
		Where("ln.return_date IS NULL").
		Scan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	openByInstance := make(map[uuid.UUID]*models.Loan, len(open))
	for _, loan := range open {
		openByInstance[loan.BookInstanceID] = loan
	}

	for _, bi := range instances {
		bi.Status = models.InstanceStatus(openByInstance[bi.ID])
	}

	return nil
}
