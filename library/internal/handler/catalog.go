package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/libertine-io/library-backend/library/internal/errs"
	"github.com/libertine-io/library-backend/library/internal/model"
)

func (h *Handler) ListBooks(c echo.Context) error {
	filter := model.BookFilter{
		Author:   c.QueryParam("author"),
		Category: c.QueryParam("category"),
		Library:  c.QueryParam("library"),
	}
	page, size := paging(c)

	ctx := c.Request().Context()
	books, err := h.catalogSvc.ListBooks(ctx, filter, page, size)
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	book, err := h.catalogSvc.GetBook(ctx, id)
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusOK, book)
}

type bookRequest struct {
	Title           string     `json:"title" validate:"required"`
	AuthorID        int64      `json:"authorId" validate:"required,gt=0"`
	LibraryID       int64      `json:"libraryId" validate:"required,gt=0"`
	CategoryID      *int64     `json:"categoryId"`
	PublishedDate   model.Date `json:"publishedDate" validate:"required"`
	AvailableCopies int        `json:"availableCopies" validate:"gte=0"`
	ISBN            string     `json:"isbn" validate:"required,len=13"`
}

func (r bookRequest) toBook(id int64) model.Book {
	return model.Book{
		ID:              id,
		Title:           r.Title,
		AuthorID:        r.AuthorID,
		LibraryID:       r.LibraryID,
		CategoryID:      r.CategoryID,
		PublishedDate:   r.PublishedDate,
		AvailableCopies: r.AvailableCopies,
		ISBN:            r.ISBN,
	}
}

func (h *Handler) CreateBook(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	book, err := h.catalogSvc.CreateBook(ctx, req.toBook(0))
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	book, err := h.catalogSvc.UpdateBook(ctx, req.toBook(id))
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.catalogSvc.DeleteBook(ctx, id); err != nil {
		return catalogHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListAuthors(c echo.Context) error {
	filter := model.AuthorFilter{
		Library:  c.QueryParam("library"),
		Category: c.QueryParam("category"),
	}
	page, size := paging(c)

	ctx := c.Request().Context()
	authors, err := h.catalogSvc.ListAuthors(ctx, filter, page, size)
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusOK, authors)
}

func (h *Handler) AuthorsWithBooks(c echo.Context) error {
	filter := model.AuthorFilter{
		Library:  c.QueryParam("library"),
		Category: c.QueryParam("category"),
	}
	page, size := paging(c)

	ctx := c.Request().Context()
	authors, err := h.catalogSvc.AuthorsWithBooks(ctx, filter, page, size)
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusOK, authors)
}

type nameRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) CreateAuthor(c echo.Context) error {
	var req nameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	author, err := h.catalogSvc.CreateAuthor(ctx, req.Name)
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusCreated, author)
}

func (h *Handler) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	categories, err := h.catalogSvc.ListCategories(ctx)
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *Handler) GetCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	category, err := h.catalogSvc.GetCategory(ctx, id)
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusOK, category)
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var req nameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	category, err := h.catalogSvc.CreateCategory(ctx, req.Name)
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.catalogSvc.DeleteCategory(ctx, id); err != nil {
		return catalogHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListLibraries(c echo.Context) error {
	page, size := paging(c)

	ctx := c.Request().Context()
	libs, err := h.catalogSvc.ListLibraries(ctx, page, size)
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusOK, libs)
}

func (h *Handler) GetLibrary(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	lib, err := h.catalogSvc.GetLibrary(ctx, id)
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusOK, lib)
}

type libraryRequest struct {
	Name        string   `json:"name" validate:"required"`
	Address     string   `json:"address" validate:"required"`
	PhoneNumber string   `json:"phoneNumber" validate:"required"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

func (r libraryRequest) toLibrary(id int64) model.Library {
	return model.Library{
		ID:          id,
		Name:        r.Name,
		Address:     r.Address,
		PhoneNumber: r.PhoneNumber,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

func (h *Handler) CreateLibrary(c echo.Context) error {
	var req libraryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	lib, err := h.catalogSvc.CreateLibrary(ctx, req.toLibrary(0))
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusCreated, lib)
}

func (h *Handler) UpdateLibrary(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req libraryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	lib, err := h.catalogSvc.UpdateLibrary(ctx, req.toLibrary(id))
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusOK, lib)
}

func (h *Handler) DeleteLibrary(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.catalogSvc.DeleteLibrary(ctx, id); err != nil {
		return catalogHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// NearbyLibraries godoc
//
//	@Summary	Libraries within a radius of a point, nearest first
//	@Tags		libraries
//	@Produce	json
//	@Param		lat		query		number	true	"latitude"
//	@Param		lon		query		number	true	"longitude"
//	@Param		radius	query		number	false	"radius in km, default 5"
//	@Success	200		{array}		model.NearbyLibrary
//	@Failure	400		{object}	map[string]any
//	@Router		/api/v1/libraries/nearby [get]
func (h *Handler) NearbyLibraries(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lat is required")
	}
	lon, err := strconv.ParseFloat(c.QueryParam("lon"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lon is required")
	}
	radiusKM := 5.0
	if raw := c.QueryParam("radius"); raw != "" {
		radiusKM, err = strconv.ParseFloat(raw, 64)
		if err != nil || radiusKM <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid radius")
		}
	}

	ctx := c.Request().Context()
	libs, err := h.catalogSvc.NearbyLibraries(ctx, lat, lon, radiusKM)
	if err != nil {
		return catalogHTTPError(err)
	}
	return c.JSON(http.StatusOK, libs)
}

func paging(c echo.Context) (page, size int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	size, _ = strconv.Atoi(c.QueryParam("size"))
	return page, size
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func catalogHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrPersistence):
		return echo.NewHTTPError(http.StatusServiceUnavailable, errs.ErrPersistence.Error())
	default:
		// unclassified errors never echo driver detail back to the client
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
