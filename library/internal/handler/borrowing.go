package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/libertine-io/library-backend/library/internal/errs"
	"github.com/libertine-io/library-backend/library/internal/model"
	"github.com/libertine-io/library-backend/pkg/auth"
)

// BorrowBooks godoc
//
//	@Summary	Borrow a set of books as one atomic unit
//	@Tags		borrowings
//	@Accept		json
//	@Produce	json
//	@Param		request	body		model.BorrowRequest	true	"book ids and due date"
//	@Success	201		{array}		model.BorrowingRecord
//	@Failure	400		{object}	map[string]any
//	@Failure	404		{object}	map[string]any
//	@Failure	409		{object}	map[string]any
//	@Router		/api/v1/borrowings [post]
func (h *Handler) BorrowBooks(c echo.Context) error {
	var req model.BorrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userName, err := auth.GetUserName(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	records, err := h.borrowingSvc.Borrow(ctx, userName, req.BookIDs, req.DueDate.Time)
	if err != nil {
		return borrowingHTTPError(err)
	}
	return c.JSON(http.StatusCreated, records)
}

// ReturnBooks godoc
//
//	@Summary	Return a set of borrowing records as one atomic unit
//	@Tags		borrowings
//	@Accept		json
//	@Produce	json
//	@Param		request	body		model.ReturnRequest	true	"record ids"
//	@Success	200		{array}		model.BorrowingRecord
//	@Failure	400		{object}	map[string]any
//	@Failure	404		{object}	map[string]any
//	@Failure	409		{object}	map[string]any
//	@Router		/api/v1/borrowings/return [post]
func (h *Handler) ReturnBooks(c echo.Context) error {
	var req model.ReturnRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	records, err := h.borrowingSvc.Return(ctx, req.RecordIDs)
	if err != nil {
		return borrowingHTTPError(err)
	}
	return c.JSON(http.StatusOK, records)
}

// ReturnBook returns a single record, a convenience wrapper over the
// batch return.
func (h *Handler) ReturnBook(c echo.Context) error {
	recordID, err := strconv.ParseInt(c.Param("recordId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recordId")
	}

	ctx := c.Request().Context()
	records, err := h.borrowingSvc.Return(ctx, []int64{recordID})
	if err != nil {
		return borrowingHTTPError(err)
	}
	return c.JSON(http.StatusOK, records[0])
}

func (h *Handler) ListBorrowings(c echo.Context) error {
	userName, err := auth.GetUserName(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	ctx := c.Request().Context()
	records, err := h.borrowingSvc.ListRecords(ctx, userName)
	if err != nil {
		return borrowingHTTPError(err)
	}
	return c.JSON(http.StatusOK, records)
}

// BorrowingStatus previews the overdue state and outstanding penalty of a
// record without mutating it.
func (h *Handler) BorrowingStatus(c echo.Context) error {
	recordID, err := strconv.ParseInt(c.Param("recordId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recordId")
	}

	ctx := c.Request().Context()
	status, err := h.borrowingSvc.RecordStatus(ctx, recordID)
	if err != nil {
		return borrowingHTTPError(err)
	}
	return c.JSON(http.StatusOK, status)
}

// borrowingHTTPError maps the engine error taxonomy onto HTTP statuses:
// policy and validation problems are 4xx and must not be blindly retried,
// persistence failures are 503 and safe to retry as a whole.
func borrowingHTTPError(err error) *echo.HTTPError {
	var (
		dueErr      *errs.InvalidDueDateError
		limitErr    *errs.BorrowLimitError
		booksErr    *errs.BooksNotFoundError
		recordsErr  *errs.RecordsNotFoundError
		unavailErr  *errs.BookUnavailableError
		returnedErr *errs.AlreadyReturnedError
	)
	switch {
	case errors.Is(err, errs.ErrEmptyInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &dueErr):
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"message":    dueErr.Error(),
			"minDueDate": dueErr.Min.Format("2006-01-02"),
			"maxDueDate": dueErr.Max.Format("2006-01-02"),
		})
	case errors.As(err, &limitErr):
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"message": limitErr.Error(),
			"active":  limitErr.Active,
			"allowed": limitErr.Allowed,
		})
	case errors.As(err, &booksErr):
		return echo.NewHTTPError(http.StatusNotFound, echo.Map{
			"message":    booksErr.Error(),
			"missingIds": booksErr.IDs,
		})
	case errors.As(err, &recordsErr):
		return echo.NewHTTPError(http.StatusNotFound, echo.Map{
			"message":    recordsErr.Error(),
			"missingIds": recordsErr.IDs,
		})
	case errors.As(err, &unavailErr):
		return echo.NewHTTPError(http.StatusConflict, echo.Map{
			"message": unavailErr.Error(),
			"bookId":  unavailErr.BookID,
			"title":   unavailErr.Title,
		})
	case errors.As(err, &returnedErr):
		return echo.NewHTTPError(http.StatusConflict, echo.Map{
			"message":  returnedErr.Error(),
			"recordId": returnedErr.RecordID,
		})
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrPersistence):
		return echo.NewHTTPError(http.StatusServiceUnavailable, errs.ErrPersistence.Error())
	default:
		// unclassified errors never echo driver detail back to the client
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
