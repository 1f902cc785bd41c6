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
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/libertine-io/library-backend/library/internal/errs"
	"github.com/libertine-io/library-backend/library/internal/handler"
	service_mocks "github.com/libertine-io/library-backend/library/internal/handler/mocks"
	"github.com/libertine-io/library-backend/library/internal/model"
	"github.com/libertine-io/library-backend/library/internal/service"
	"github.com/libertine-io/library-backend/pkg/auth"
	"github.com/libertine-io/library-backend/pkg/validate"
)

var (
	borrowedAt = time.Date(2024, 5, 10, 12, 30, 0, 0, time.UTC)
	dueDate    = time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
)

func TestHandler_BorrowBooks(t *testing.T) {
	t.Parallel()
	type input struct {
		userName string
		body     string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBorrowingService, inp input)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
		wantErr      bool
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {
				r.EXPECT().
					Borrow(context.Background(), inp.userName, []int64{1, 2}, dueDate).
					Return([]model.BorrowingRecord{
						{ID: 101, BookID: 1, UserName: "alice", BorrowedAt: borrowedAt, DueDate: model.NewDate(dueDate)},
						{ID: 102, BookID: 2, UserName: "alice", BorrowedAt: borrowedAt, DueDate: model.NewDate(dueDate)},
					}, nil)
			},
			input: input{
				userName: "alice",
				body:     `{"bookIds":[1,2],"dueDate":"2024-05-20"}`,
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `[{"id":101,"bookId":1,"username":"alice","borrowedAt":"2024-05-10T12:30:00Z","dueDate":"2024-05-20","returnedAt":null,"penaltyAmount":0},{"id":102,"bookId":2,"username":"alice","borrowedAt":"2024-05-10T12:30:00Z","dueDate":"2024-05-20","returnedAt":null,"penaltyAmount":0}]`,
			},
			wantErr: false,
		},
		{
			name: "err. borrow limit",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {
				r.EXPECT().
					Borrow(context.Background(), inp.userName, []int64{1, 2}, dueDate).
					Return(nil, &errs.BorrowLimitError{Active: 2, Requested: 2, Allowed: 1})
			},
			input: input{
				userName: "alice",
				body:     `{"bookIds":[1,2],"dueDate":"2024-05-20"}`,
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"active":2,"allowed":1,"message":"cannot borrow 2 more books: 2 active borrowings, 1 more allowed"}`,
			},
			wantErr: true,
		},
		{
			name: "err. books not found",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {
				r.EXPECT().
					Borrow(context.Background(), inp.userName, []int64{7, 9}, dueDate).
					Return(nil, &errs.BooksNotFoundError{IDs: []int64{7, 9}})
			},
			input: input{
				userName: "alice",
				body:     `{"bookIds":[7,9],"dueDate":"2024-05-20"}`,
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"books do not exist: [7 9]","missingIds":[7,9]}`,
			},
			wantErr: true,
		},
		{
			name: "err. book unavailable",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {
				r.EXPECT().
					Borrow(context.Background(), inp.userName, []int64{7}, dueDate).
					Return(nil, &errs.BookUnavailableError{BookID: 7, Title: "Dune"})
			},
			input: input{
				userName: "alice",
				body:     `{"bookIds":[7],"dueDate":"2024-05-20"}`,
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"bookId":7,"message":"book \"Dune\" (id 7) is not available","title":"Dune"}`,
			},
			wantErr: true,
		},
		{
			name: "err. storage unavailable",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {
				r.EXPECT().
					Borrow(context.Background(), inp.userName, []int64{1}, dueDate).
					Return(nil, errs.ErrPersistence)
			},
			input: input{
				userName: "alice",
				body:     `{"bookIds":[1],"dueDate":"2024-05-20"}`,
			},
			response: response{
				expectedCode: http.StatusServiceUnavailable,
				expectedBody: `{"message":"storage could not complete the operation"}`,
			},
			wantErr: true,
		},
		{
			name:         "err. no user name",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {},
			input: input{
				userName: "",
				body:     `{"bookIds":[1],"dueDate":"2024-05-20"}`,
			},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"X-User-Name header is required"}`,
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
			e.POST("/api/v1/borrowings", h.BorrowBooks, auth.MiddlewareUserName)

			r := httptest.NewRequest(http.MethodPost, "/api/v1/borrowings", strings.NewReader(tt.input.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if tt.input.userName != "" {
				r.Header.Set(auth.XUserNameHeader, tt.input.userName)
			}
			w := httptest.NewRecorder()

			tt.mockBehavior(borrowingSvc, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ReturnBooks(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBorrowingService)

	returnedAt := time.Date(2024, 5, 25, 9, 0, 0, 0, time.UTC)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		response     response
		wantErr      bool
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockBorrowingService) {
				r.EXPECT().
					Return(context.Background(), []int64{5}).
					Return([]model.BorrowingRecord{
						{
							ID: 5, BookID: 1, UserName: "alice",
							BorrowedAt: borrowedAt, DueDate: model.NewDate(dueDate),
							ReturnedAt: &returnedAt, PenaltyAmount: 50,
						},
					}, nil)
			},
			body: `{"recordIds":[5]}`,
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[{"id":5,"bookId":1,"username":"alice","borrowedAt":"2024-05-10T12:30:00Z","dueDate":"2024-05-20","returnedAt":"2024-05-25T09:00:00Z","penaltyAmount":50}]`,
			},
			wantErr: false,
		},
		{
			name: "err. records not found",
			mockBehavior: func(r *service_mocks.MockBorrowingService) {
				r.EXPECT().
					Return(context.Background(), []int64{5, 6}).
					Return(nil, &errs.RecordsNotFoundError{IDs: []int64{6}})
			},
			body: `{"recordIds":[5,6]}`,
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"borrowing records do not exist: [6]","missingIds":[6]}`,
			},
			wantErr: true,
		},
		{
			name: "err. already returned",
			mockBehavior: func(r *service_mocks.MockBorrowingService) {
				r.EXPECT().
					Return(context.Background(), []int64{5}).
					Return(nil, &errs.AlreadyReturnedError{RecordID: 5, Title: "Dune"})
			},
			body: `{"recordIds":[5]}`,
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"record 5 for book \"Dune\" has already been returned","recordId":5}`,
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
			e.POST("/api/v1/borrowings/return", h.ReturnBooks)

			r := httptest.NewRequest(http.MethodPost, "/api/v1/borrowings/return", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(borrowingSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_BorrowingStatus(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBorrowingService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		recordID     string
		response     response
		wantErr      bool
	}{
		{
			name: "ok overdue",
			mockBehavior: func(r *service_mocks.MockBorrowingService) {
				r.EXPECT().
					RecordStatus(context.Background(), int64(5)).
					Return(service.RecordStatus{
						BorrowingRecord: model.BorrowingRecord{
							ID: 5, BookID: 1, UserName: "alice",
							BorrowedAt: borrowedAt, DueDate: model.NewDate(dueDate),
						},
						Overdue:            true,
						OutstandingPenalty: 30,
					}, nil)
			},
			recordID: "5",
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":5,"bookId":1,"username":"alice","borrowedAt":"2024-05-10T12:30:00Z","dueDate":"2024-05-20","returnedAt":null,"penaltyAmount":0,"overdue":true,"outstandingPenalty":30}`,
			},
			wantErr: false,
		},
		{
			name:         "err. invalid record id",
			mockBehavior: func(r *service_mocks.MockBorrowingService) {},
			recordID:     "abc",
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid recordId"}`,
			},
			wantErr: true,
		},
		{
			name: "err. not found",
			mockBehavior: func(r *service_mocks.MockBorrowingService) {
				r.EXPECT().
					RecordStatus(context.Background(), int64(404)).
					Return(service.RecordStatus{}, errs.ErrNotFound)
			},
			recordID: "404",
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
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
			e.GET("/api/v1/borrowings/:recordId", h.BorrowingStatus)

			r := httptest.NewRequest(http.MethodGet, "/api/v1/borrowings/"+tt.recordID, http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(borrowingSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
