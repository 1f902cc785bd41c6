package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/libertine-io/library-backend/library/internal/errs"
	"github.com/libertine-io/library-backend/library/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	// inventory / catalog
	ListBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	UpdateBook(ctx context.Context, book model.Book) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error

	ListAuthors(ctx context.Context, filter model.AuthorFilter, page, size int) (model.ListAuthors, error)
	ListAuthorBooks(ctx context.Context, authorIDs []int64) (map[int64][]model.Book, error)
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

	// ledger
	ActiveLoanCount(ctx context.Context, userName string) (int, error)
	ListRecords(ctx context.Context, userName string) ([]model.BorrowingRecord, error)
	GetRecord(ctx context.Context, id int64) (model.BorrowingRecord, error)
	BorrowBooks(ctx context.Context, userName string, bookIDs []int64, dueDate, now time.Time) ([]model.BorrowingRecord, error)
	ReturnRecords(ctx context.Context, recordIDs []int64, now time.Time, dailyRate float64) ([]model.BorrowingRecord, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	booksTableName      = `books`
	authorsTableName    = `authors`
	categoriesTableName = `categories`
	librariesTableName  = `libraries`
	recordsTableName    = `borrowing_records`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const bookColumns = "b.id, b.title, b.author_id, b.library_id, b.category_id, b.published_date, b.available_copies, b.isbn"

func (r *repository) ListBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error) {
	q := qb.Select(bookColumns).From(booksTableName + " b")

	if filter.Author != "" {
		q = q.Join(authorsTableName + " a on a.id = b.author_id").
			Where(sq.ILike{"a.name": "%" + filter.Author + "%"})
	}
	if filter.Category != "" {
		q = q.Join(categoriesTableName + " c on c.id = b.category_id").
			Where(sq.ILike{"c.name": "%" + filter.Category + "%"})
	}
	if filter.Library != "" {
		q = q.Join(librariesTableName + " l on l.id = b.library_id").
			Where(sq.ILike{"l.name": "%" + filter.Library + "%"})
	}
	q = q.OrderBy("b.id")
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return model.ListBooks{}, wrapDBErr(err, "list books")
	}

	return model.ListBooks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(books),
		},
		Items: books,
	}, nil
}

func (r *repository) GetBook(ctx context.Context, id int64) (model.Book, error) {
	query, args, err := qb.Select(bookColumns).
		From(booksTableName + " b").
		Where(sq.Eq{"b.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, wrapDBErr(err, "get book")
	}
	return book, nil
}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("title", "author_id", "library_id", "category_id", "published_date", "available_copies", "isbn").
		Values(book.Title, book.AuthorID, book.LibraryID, book.CategoryID, book.PublishedDate, book.AvailableCopies, book.ISBN).
		Suffix("returning id, title, author_id, library_id, category_id, published_date, available_copies, isbn").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var created model.Book
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, wrapDBErr(err, "create book")
	}
	return created, nil
}

func (r *repository) UpdateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		Set("title", book.Title).
		Set("author_id", book.AuthorID).
		Set("library_id", book.LibraryID).
		Set("category_id", book.CategoryID).
		Set("published_date", book.PublishedDate).
		Set("isbn", book.ISBN).
		Where(sq.Eq{"id": book.ID}).
		Suffix("returning id, title, author_id, library_id, category_id, published_date, available_copies, isbn").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var updated model.Book
	if err := r.db.GetContext(ctx, &updated, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, wrapDBErr(err, "update book")
	}
	return updated, nil
}

func (r *repository) DeleteBook(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(booksTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapDBErr(err, "delete book")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) ListAuthors(ctx context.Context, filter model.AuthorFilter, page, size int) (model.ListAuthors, error) {
	q := qb.Select("a.id", "a.name", "count(distinct b.id) as book_count").
		From(authorsTableName + " a").
		LeftJoin(booksTableName + " b on b.author_id = a.id")

	if filter.Library != "" {
		q = q.Join(librariesTableName + " l on l.id = b.library_id").
			Where(sq.ILike{"l.name": "%" + filter.Library + "%"})
	}
	if filter.Category != "" {
		q = q.Join(categoriesTableName + " c on c.id = b.category_id").
			Where(sq.ILike{"c.name": "%" + filter.Category + "%"})
	}
	q = q.GroupBy("a.id", "a.name").OrderBy("a.name")
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListAuthors{}, err
	}

	var authors []model.Author
	if err := r.db.SelectContext(ctx, &authors, query, args...); err != nil {
		return model.ListAuthors{}, wrapDBErr(err, "list authors")
	}

	return model.ListAuthors{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(authors),
		},
		Items: authors,
	}, nil
}

func (r *repository) ListAuthorBooks(ctx context.Context, authorIDs []int64) (map[int64][]model.Book, error) {
	if len(authorIDs) == 0 {
		return map[int64][]model.Book{}, nil
	}
	query, args, err := qb.Select(bookColumns).
		From(booksTableName + " b").
		Where(sq.Eq{"b.author_id": authorIDs}).
		OrderBy("b.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, wrapDBErr(err, "list author books")
	}

	byAuthor := make(map[int64][]model.Book, len(authorIDs))
	for _, b := range books {
		byAuthor[b.AuthorID] = append(byAuthor[b.AuthorID], b)
	}
	return byAuthor, nil
}

func (r *repository) CreateAuthor(ctx context.Context, name string) (model.Author, error) {
	query, args, err := qb.Insert(authorsTableName).
		Columns("name").
		Values(name).
		Suffix("returning id, name, 0 as book_count").
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	var author model.Author
	if err := r.db.GetContext(ctx, &author, query, args...); err != nil {
		return model.Author{}, wrapDBErr(err, "create author")
	}
	return author, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]model.Category, error) {
	query, args, err := qb.Select("id", "name").
		From(categoriesTableName).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}

	var categories []model.Category
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, wrapDBErr(err, "list categories")
	}
	return categories, nil
}

func (r *repository) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	query, args, err := qb.Select("id", "name").
		From(categoriesTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Category{}, err
	}

	var category model.Category
	if err := r.db.GetContext(ctx, &category, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, errs.ErrNotFound
		}
		return model.Category{}, wrapDBErr(err, "get category")
	}
	return category, nil
}

func (r *repository) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	query, args, err := qb.Insert(categoriesTableName).
		Columns("name").
		Values(name).
		Suffix("returning id, name").
		ToSql()
	if err != nil {
		return model.Category{}, err
	}

	var category model.Category
	if err := r.db.GetContext(ctx, &category, query, args...); err != nil {
		return model.Category{}, wrapDBErr(err, "create category")
	}
	return category, nil
}

func (r *repository) DeleteCategory(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(categoriesTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapDBErr(err, "delete category")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

const libraryColumns = "id, name, address, phone_number, latitude, longitude"

func (r *repository) ListLibraries(ctx context.Context, page, size int) (model.ListLibraries, error) {
	q := qb.Select(libraryColumns).
		From(librariesTableName).
		OrderBy("id")

	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListLibraries{}, err
	}

	var libs []model.Library
	if err := r.db.SelectContext(ctx, &libs, query, args...); err != nil {
		return model.ListLibraries{}, wrapDBErr(err, "list libraries")
	}

	return model.ListLibraries{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(libs),
		},
		Items: libs,
	}, nil
}

func (r *repository) GetLibrary(ctx context.Context, id int64) (model.Library, error) {
	query, args, err := qb.Select(libraryColumns).
		From(librariesTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Library{}, err
	}

	var lib model.Library
	if err := r.db.GetContext(ctx, &lib, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Library{}, errs.ErrNotFound
		}
		return model.Library{}, wrapDBErr(err, "get library")
	}
	return lib, nil
}

func (r *repository) CreateLibrary(ctx context.Context, lib model.Library) (model.Library, error) {
	query, args, err := qb.Insert(librariesTableName).
		Columns("name", "address", "phone_number", "latitude", "longitude").
		Values(lib.Name, lib.Address, lib.PhoneNumber, lib.Latitude, lib.Longitude).
		Suffix("returning " + libraryColumns).
		ToSql()
	if err != nil {
		return model.Library{}, err
	}

	var created model.Library
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		r.log.Error("CreateLibrary", zap.String("q", query), zap.Any("args", args))
		return model.Library{}, wrapDBErr(err, "create library")
	}
	return created, nil
}

func (r *repository) UpdateLibrary(ctx context.Context, lib model.Library) (model.Library, error) {
	query, args, err := qb.Update(librariesTableName).
		Set("name", lib.Name).
		Set("address", lib.Address).
		Set("phone_number", lib.PhoneNumber).
		Set("latitude", lib.Latitude).
		Set("longitude", lib.Longitude).
		Where(sq.Eq{"id": lib.ID}).
		Suffix("returning " + libraryColumns).
		ToSql()
	if err != nil {
		return model.Library{}, err
	}

	var updated model.Library
	if err := r.db.GetContext(ctx, &updated, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Library{}, errs.ErrNotFound
		}
		return model.Library{}, wrapDBErr(err, "update library")
	}
	return updated, nil
}

func (r *repository) DeleteLibrary(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(librariesTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapDBErr(err, "delete library")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// NearbyLibraries orders libraries by haversine distance from the given
// point and keeps those within radiusKM. Libraries without coordinates are
// skipped.
func (r *repository) NearbyLibraries(ctx context.Context, lat, lon, radiusKM float64) ([]model.NearbyLibrary, error) {
	const q = `
select id, name, address, phone_number, latitude, longitude, distance_km
from (
    select id, name, address, phone_number, latitude, longitude,
           6371 * acos(least(1.0,
               cos(radians($1)) * cos(radians(latitude)) * cos(radians(longitude) - radians($2))
               + sin(radians($1)) * sin(radians(latitude)))) as distance_km
    from libraries
    where latitude is not null and longitude is not null
) l
where distance_km <= $3
order by distance_km
`
	var libs []model.NearbyLibrary
	if err := r.db.SelectContext(ctx, &libs, q, lat, lon, radiusKM); err != nil {
		return nil, wrapDBErr(err, "nearby libraries")
	}
	return libs, nil
}
