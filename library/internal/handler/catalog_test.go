package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/libertine-io/library-backend/library/internal/errs"
	"github.com/libertine-io/library-backend/library/internal/handler"
	service_mocks "github.com/libertine-io/library-backend/library/internal/handler/mocks"
	"github.com/libertine-io/library-backend/library/internal/model"
	"github.com/libertine-io/library-backend/pkg/validate"
)

func TestHandler_GetBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	published := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		target       string
		response     response
		wantErr      bool
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					GetBook(context.Background(), int64(7)).
					Return(model.Book{
						ID:              7,
						Title:           "Dune",
						AuthorID:        3,
						LibraryID:       1,
						PublishedDate:   model.NewDate(published),
						AvailableCopies: 2,
						ISBN:            "9780441013593",
					}, nil)
			},
			target: "/api/v1/books/7",
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":7,"title":"Dune","authorId":3,"libraryId":1,"categoryId":null,"publishedDate":"1965-08-01","availableCopies":2,"isbn":"9780441013593"}`,
			},
		},
		{
			name: "not found",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					GetBook(context.Background(), int64(7)).
					Return(model.Book{}, errs.ErrNotFound)
			},
			target: "/api/v1/books/7",
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
			wantErr: true,
		},
		{
			name: "storage unavailable",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					GetBook(context.Background(), int64(7)).
					Return(model.Book{}, errors.Wrap(errs.ErrPersistence, "get book: connection refused"))
			},
			target: "/api/v1/books/7",
			response: response{
				expectedCode: http.StatusServiceUnavailable,
				expectedBody: `{"message":"storage could not complete the operation"}`,
			},
			wantErr: true,
		},
		{
			name: "driver detail is not echoed back",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					GetBook(context.Background(), int64(7)).
					Return(model.Book{}, errors.New(`pq: duplicate key value violates unique constraint "books_isbn_key"`))
			},
			target: "/api/v1/books/7",
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"internal error"}`,
			},
			wantErr: true,
		},
		{
			name:         "invalid id",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			target:       "/api/v1/books/abc",
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid id"}`,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			borrowingSvc := service_mocks.NewMockBorrowingService(c)
			catalogSvc := service_mocks.NewMockCatalogService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(borrowingSvc, catalogSvc, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.GET("/api/v1/books/:id", h.GetBook)

			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()

			tt.mockBehavior(catalogSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
