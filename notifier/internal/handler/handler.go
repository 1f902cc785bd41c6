package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	mw "github.com/libertine-io/library-backend/pkg/middleware"
)

type Handler struct {
	svc NotifierService
	log *zap.Logger
}

func New(svc NotifierService, log *zap.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const rps = 10
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))

	manage := e.Group("/manage",
		middleware.RequestLoggerWithConfig(mw.RequestLoggerConfig()),
		mw.RequestID(),
		mw.NewRateLimiter(rps),
	)
	manage.GET("/health", h.Health)
	manage.POST("/reminders/run", h.RunReminders)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// RunReminders triggers one reminder sweep over the active records that
// are due soon. Meant to be hit by a cron schedule.
func (h *Handler) RunReminders(c echo.Context) error {
	report, err := h.svc.RunReminders(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}
