package handler

import (
	"context"
	"time"

	"github.com/libertine-io/library-backend/library/internal/model"
	"github.com/libertine-io/library-backend/library/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BorrowingService interface {
	Borrow(ctx context.Context, userName string, bookIDs []int64, dueDate time.Time) ([]model.BorrowingRecord, error)
	Return(ctx context.Context, recordIDs []int64) ([]model.BorrowingRecord, error)
	ListRecords(ctx context.Context, userName string) ([]model.BorrowingRecord, error)
	RecordStatus(ctx context.Context, id int64) (service.RecordStatus, error)
}

type CatalogService interface {
	ListBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	UpdateBook(ctx context.Context, book model.Book) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error

	ListAuthors(ctx context.Context, filter model.AuthorFilter, page, size int) (model.ListAuthors, error)
	AuthorsWithBooks(ctx context.Context, filter model.AuthorFilter, page, size int) (model.ListAuthorsWithBooks, error)
	CreateAuthor(ctx context.Context, name string) (model.Author, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (model.Category, error)
	CreateCategory(ctx context.Context, name string) (model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListLibraries(ctx context.Context, page, size int) (model.ListLibraries, error)
	GetLibrary(ctx context.Context, id int64) (model.Library, error)
	CreateLibrary(ctx context.Context, lib model.Library) (model.Library, error)
	UpdateLibrary(ctx context.Context, lib model.Library) (model.Library, error)
	DeleteLibrary(ctx context.Context, id int64) error
	NearbyLibraries(ctx context.Context, lat, lon, radiusKM float64) ([]model.NearbyLibrary, error)
}

var (
	_ BorrowingService = (*service.BorrowingService)(nil)
	_ CatalogService   = (*service.CatalogService)(nil)
)
