package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/libertine-io/library-backend/library/internal/model"
	"github.com/libertine-io/library-backend/library/internal/repository"
)

type CatalogService struct {
	log  *zap.Logger
	repo repository.Repository
}

func NewCatalogService(repo repository.Repository, log *zap.Logger) *CatalogService {
	return &CatalogService{
		log:  log,
		repo: repo,
	}
}

func (s *CatalogService) ListBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error) {
	return s.repo.ListBooks(ctx, filter, page, size)
}

func (s *CatalogService) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *CatalogService) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	return s.repo.CreateBook(ctx, book)
}

func (s *CatalogService) UpdateBook(ctx context.Context, book model.Book) (model.Book, error) {
	return s.repo.UpdateBook(ctx, book)
}

func (s *CatalogService) DeleteBook(ctx context.Context, id int64) error {
	return s.repo.DeleteBook(ctx, id)
}

func (s *CatalogService) ListAuthors(ctx context.Context, filter model.AuthorFilter, page, size int) (model.ListAuthors, error) {
	return s.repo.ListAuthors(ctx, filter, page, size)
}

func (s *CatalogService) CreateAuthor(ctx context.Context, name string) (model.Author, error) {
	return s.repo.CreateAuthor(ctx, name)
}

// AuthorsWithBooks returns the author page together with each author's
// books, the page and the book lookup fetched concurrently.
func (s *CatalogService) AuthorsWithBooks(ctx context.Context, filter model.AuthorFilter, page, size int) (model.ListAuthorsWithBooks, error) {
	authors, err := s.repo.ListAuthors(ctx, filter, page, size)
	if err != nil {
		return model.ListAuthorsWithBooks{}, err
	}

	const chunk = 50
	booksByAuthor := make(map[int64][]model.Book, len(authors.Items))
	parts := make([]map[int64][]model.Book, (len(authors.Items)+chunk-1)/chunk)

	gg, ctxCancel := errgroup.WithContext(ctx)
	for i := 0; i < len(authors.Items); i += chunk {
		i := i
		end := i + chunk
		if end > len(authors.Items) {
			end = len(authors.Items)
		}
		ids := make([]int64, 0, end-i)
		for _, a := range authors.Items[i:end] {
			ids = append(ids, a.ID)
		}
		gg.Go(func() error {
			part, err := s.repo.ListAuthorBooks(ctxCancel, ids)
			if err != nil {
				return err
			}
			parts[i/chunk] = part
			return nil
		})
	}
	if err := gg.Wait(); err != nil {
		return model.ListAuthorsWithBooks{}, err
	}
	for _, part := range parts {
		for id, books := range part {
			booksByAuthor[id] = books
		}
	}

	items := make([]model.AuthorWithBooks, 0, len(authors.Items))
	for _, a := range authors.Items {
		books := booksByAuthor[a.ID]
		if books == nil {
			books = []model.Book{}
		}
		items = append(items, model.AuthorWithBooks{
			Author: a,
			Books:  books,
		})
	}

	return model.ListAuthorsWithBooks{
		Paging: authors.Paging,
		Items:  items,
	}, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	return s.repo.CreateCategory(ctx, name)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *CatalogService) ListLibraries(ctx context.Context, page, size int) (model.ListLibraries, error) {
	return s.repo.ListLibraries(ctx, page, size)
}

func (s *CatalogService) GetLibrary(ctx context.Context, id int64) (model.Library, error) {
	return s.repo.GetLibrary(ctx, id)
}

func (s *CatalogService) CreateLibrary(ctx context.Context, lib model.Library) (model.Library, error) {
	return s.repo.CreateLibrary(ctx, lib)
}

func (s *CatalogService) UpdateLibrary(ctx context.Context, lib model.Library) (model.Library, error) {
	return s.repo.UpdateLibrary(ctx, lib)
}

func (s *CatalogService) DeleteLibrary(ctx context.Context, id int64) error {
	return s.repo.DeleteLibrary(ctx, id)
}

func (s *CatalogService) NearbyLibraries(ctx context.Context, lat, lon, radiusKM float64) ([]model.NearbyLibrary, error) {
	return s.repo.NearbyLibraries(ctx, lat, lon, radiusKM)
}
