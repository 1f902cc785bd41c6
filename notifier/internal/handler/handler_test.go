package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/libertine-io/library-backend/notifier/internal/handler"
	service_mocks "github.com/libertine-io/library-backend/notifier/internal/handler/mocks"
	"github.com/libertine-io/library-backend/notifier/internal/model"
)

func TestHandler_RunReminders(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockNotifierService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
		wantErr      bool
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockNotifierService) {
				r.EXPECT().
					RunReminders(context.Background()).
					Return(model.RemindersReport{Sent: 2, Skipped: 1}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"sent":2,"skipped":1}`,
			},
			wantErr: false,
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockNotifierService) {
				r.EXPECT().
					RunReminders(context.Background()).
					Return(model.RemindersReport{}, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
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
			svc := service_mocks.NewMockNotifierService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, log)

			e := echo.New()
			e.POST("/manage/reminders/run", h.RunReminders)

			r := httptest.NewRequest(http.MethodPost, "/manage/reminders/run", http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
