package catalog

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/config"
	"github.com/openshelf/openshelf/pkg/errcodes"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/openshelf/openshelf/pkg/sessions"
	"github.com/pkg/errors"
)

type handler struct {
	catalogService *Service
	cfg            *config.Config
}

func (h *handler) listBooks(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.catalogService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:         &params.Limit,
		Offset:        &params.Offset,
		AuthorID:      params.AuthorID,
		GenreID:       params.GenreID,
		AvailableOnly: sessions.AvailableOnly(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"books": books,
		"total": total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) retrieveBook(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.catalogService.RetrieveBook(ctx, RetrieveBookOptions{
		ID:               &id,
		IncludeRelations: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) createBook(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book := &models.Book{
		Title:      params.Title,
		AuthorID:   params.AuthorID,
		Summary:    params.Summary,
		LanguageID: params.LanguageID,
		URL:        params.URL,
	}

	if err := h.catalogService.CreateBook(ctx, book, params.GenreIDs); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

func (h *handler) updateBook(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.catalogService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	columns := []string{}
	if params.Title != nil {
		book.Title = *params.Title
		columns = append(columns, "title")
	}
	if params.AuthorID != nil {
		book.AuthorID = params.AuthorID
		columns = append(columns, "author_id")
	}
	if params.Summary != nil {
		book.Summary = *params.Summary
		columns = append(columns, "summary")
	}
	if params.LanguageID != nil {
		book.LanguageID = params.LanguageID
		columns = append(columns, "language_id")
	}
	if params.URL != nil {
		book.URL = params.URL
		columns = append(columns, "url")
	}

	err = h.catalogService.UpdateBook(ctx, book, UpdateBookOptions{
		Columns:  columns,
		GenreIDs: params.GenreIDs,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) deleteBook(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	if _, err := h.catalogService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	if err := h.catalogService.DeleteBook(ctx, id); err != nil {
		return err
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

// bookCover streams the stored cover image, sniffing the content type from
// the file rather than trusting its extension.
func (h *handler) bookCover(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.catalogService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	if book.CoverImagePath == nil {
		return errcodes.NotFound("Cover")
	}

	path := filepath.Join(h.cfg.MediaDir, *book.CoverImagePath)
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errcodes.NotFound("Cover")
		}
		return errors.WithStack(err)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	return errors.WithStack(c.Stream(http.StatusOK, mtype.String(), f))
}

// uploadBookCover accepts a multipart image and stores it under the media dir.
func (h *handler) uploadBookCover(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.catalogService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	fileHeader, err := c.FormFile("cover")
	if err != nil {
		return errcodes.ValidationError(`"cover" file is required`)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return errors.WithStack(err)
	}
	if !isSupportedCoverType(mtype.String()) {
		return errcodes.UnsupportedMediaType()
	}
	if _, err := src.Seek(0, 0); err != nil {
		return errors.WithStack(err)
	}

	relPath := filepath.Join("covers", strconv.Itoa(book.ID)+mtype.Extension())
	dstPath := filepath.Join(h.cfg.MediaDir, relPath)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return errors.WithStack(err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer dst.Close()
	if _, err := dst.ReadFrom(src); err != nil {
		return errors.WithStack(err)
	}

	book.CoverImagePath = &relPath
	err = h.catalogService.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"cover_image_path"}})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func isSupportedCoverType(mime string) bool {
	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

func (h *handler) stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.catalogService.Counts(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, stats))
}

func (h *handler) createInstance(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateInstancePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if _, err := h.catalogService.RetrieveBook(ctx, RetrieveBookOptions{ID: &params.BookID}); err != nil {
		return errors.WithStack(err)
	}

	instance := &models.BookInstance{
		BookID:  params.BookID,
		Imprint: params.Imprint,
	}

	if err := h.catalogService.CreateInstance(ctx, instance); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, instance))
}

func (h *handler) retrieveInstance(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book instance")
	}

	instance, err := h.catalogService.RetrieveInstance(ctx, RetrieveInstanceOptions{
		ID:               &id,
		IncludeRelations: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, instance))
}

func (h *handler) updateInstance(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book instance")
	}

	params := UpdateInstancePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	instance, err := h.catalogService.RetrieveInstance(ctx, RetrieveInstanceOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	columns := []string{}
	if params.Imprint != nil {
		instance.Imprint = *params.Imprint
		columns = append(columns, "imprint")
	}

	if len(columns) > 0 {
		if err := h.catalogService.UpdateInstance(ctx, instance, columns...); err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(c.JSON(http.StatusOK, instance))
}

func (h *handler) deleteInstance(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book instance")
	}

	if _, err := h.catalogService.RetrieveInstance(ctx, RetrieveInstanceOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	if err := h.catalogService.DeleteInstance(ctx, id); err != nil {
		return err
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
