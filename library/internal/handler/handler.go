package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "github.com/libertine-io/library-backend/docs"
	"github.com/libertine-io/library-backend/pkg/auth"
	mw "github.com/libertine-io/library-backend/pkg/middleware"
	"github.com/libertine-io/library-backend/pkg/validate"
)

type Handler struct {
	borrowingSvc BorrowingService
	catalogSvc   CatalogService
	log          *zap.Logger
}

func New(borrowingSvc BorrowingService, catalogSvc CatalogService, log *zap.Logger) *Handler {
	return &Handler{
		borrowingSvc: borrowingSvc,
		catalogSvc:   catalogSvc,
		log:          log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", mw.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(mw.RequestLoggerConfig()),
		mw.RequestID(),
		mw.NewRateLimiter(apiRPS),
	)

	api.GET("/books", h.ListBooks)
	api.POST("/books", h.CreateBook)
	api.GET("/books/:id", h.GetBook)
	api.PUT("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)

	api.GET("/authors", h.ListAuthors)
	api.GET("/authors/with-books", h.AuthorsWithBooks)
	api.POST("/authors", h.CreateAuthor)

	api.GET("/categories", h.ListCategories)
	api.GET("/categories/:id", h.GetCategory)
	api.POST("/categories", h.CreateCategory)
	api.DELETE("/categories/:id", h.DeleteCategory)

	api.GET("/libraries", h.ListLibraries)
	api.GET("/libraries/nearby", h.NearbyLibraries)
	api.POST("/libraries", h.CreateLibrary)
	api.GET("/libraries/:id", h.GetLibrary)
	api.PUT("/libraries/:id", h.UpdateLibrary)
	api.DELETE("/libraries/:id", h.DeleteLibrary)

	api.GET("/borrowings", h.ListBorrowings, auth.MiddlewareUserName)
	api.POST("/borrowings", h.BorrowBooks, auth.MiddlewareUserName)
	api.GET("/borrowings/:recordId", h.BorrowingStatus)
	api.POST("/borrowings/return", h.ReturnBooks)
	api.POST("/borrowings/:recordId/return", h.ReturnBook)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
