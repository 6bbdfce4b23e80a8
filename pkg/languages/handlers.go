package languages

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/errcodes"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
)

type handler struct {
	languageService *Service
}

type createLanguagePayload struct {
	Name string `json:"name" mod:"trim" validate:"required,max=100"`
}

type updateLanguagePayload struct {
	Name *string `json:"name" mod:"trim" validate:"omitempty,required,max=100"`
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	languages, err := h.languageService.ListLanguages(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"languages": languages,
		"total":     len(languages),
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Language")
	}

	language, err := h.languageService.RetrieveLanguage(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, language))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := createLanguagePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	language := &models.Language{
		Name: params.Name,
	}

	if err := h.languageService.CreateLanguage(ctx, language); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, language))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Language")
	}

	params := updateLanguagePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	language, err := h.languageService.RetrieveLanguage(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	columns := []string{}
	if params.Name != nil {
		language.Name = *params.Name
		columns = append(columns, "name")
	}

	if len(columns) > 0 {
		if err := h.languageService.UpdateLanguage(ctx, language, columns...); err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(c.JSON(http.StatusOK, language))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Language")
	}

	if _, err := h.languageService.RetrieveLanguage(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	if err := h.languageService.DeleteLanguage(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
