package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/libertine-io/library-backend/library/internal/errs"
	"github.com/libertine-io/library-backend/library/internal/model"
)

const recordColumns = "id, book_id, user_name, borrowed_at, due_date, returned_at, penalty_amount"

func (r *repository) ActiveLoanCount(ctx context.Context, userName string) (int, error) {
	q := `
	select count(*) from borrowing_records
	where user_name = $1 and returned_at is null
`
	var count int
	if err := r.db.QueryRowContext(ctx, q, userName).Scan(&count); err != nil {
		return 0, wrapDBErr(err, "count active loans")
	}
	return count, nil
}

func (r *repository) ListRecords(ctx context.Context, userName string) ([]model.BorrowingRecord, error) {
	query, args, err := qb.Select(recordColumns).
		From(recordsTableName).
		Where(sq.Eq{"user_name": userName}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var records []model.BorrowingRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, wrapDBErr(err, "list records")
	}
	return records, nil
}

func (r *repository) GetRecord(ctx context.Context, id int64) (model.BorrowingRecord, error) {
	query, args, err := qb.Select(recordColumns).
		From(recordsTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.BorrowingRecord{}, err
	}

	var record model.BorrowingRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowingRecord{}, errs.ErrNotFound
		}
		return model.BorrowingRecord{}, wrapDBErr(err, "get record")
	}
	return record, nil
}

type lockedBook struct {
	ID              int64  `db:"id"`
	Title           string `db:"title"`
	AvailableCopies int    `db:"available_copies"`
}

// BorrowBooks creates one borrowing record per book and decrements each
// book's available copies as a single transaction. bookIDs must be distinct
// and sorted ascending so that all callers lock rows in the same order.
func (r *repository) BorrowBooks(ctx context.Context, userName string, bookIDs []int64, dueDate, now time.Time) ([]model.BorrowingRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, wrapDBErr(err, "begin borrow")
	}
	defer tx.Rollback() //nolint:errcheck

	query, args, err := qb.Select("id", "title", "available_copies").
		From(booksTableName).
		Where(sq.Eq{"id": bookIDs}).
		OrderBy("id").
		Suffix("for update").
		ToSql()
	if err != nil {
		return nil, err
	}

	var books []lockedBook
	if err := tx.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, wrapDBErr(err, "lock books")
	}

	if len(books) != len(bookIDs) {
		return nil, &errs.BooksNotFoundError{IDs: missingIDs(bookIDs, bookKeys(books))}
	}
	for _, b := range books {
		if b.AvailableCopies < 1 {
			return nil, &errs.BookUnavailableError{BookID: b.ID, Title: b.Title}
		}
	}

	ins := qb.Insert(recordsTableName).
		Columns("book_id", "user_name", "borrowed_at", "due_date")
	for _, id := range bookIDs {
		ins = ins.Values(id, userName, now, dueDate.Format(time.DateOnly))
	}
	query, args, err = ins.Suffix("returning " + recordColumns).ToSql()
	if err != nil {
		return nil, err
	}

	var records []model.BorrowingRecord
	if err := tx.SelectContext(ctx, &records, query, args...); err != nil {
		r.log.Error("BorrowBooks insert", zap.String("q", query), zap.Any("args", args))
		return nil, wrapDBErr(err, "create records")
	}

	query, args, err = qb.Update(booksTableName).
		Set("available_copies", sq.Expr("available_copies - 1")).
		Where(sq.Eq{"id": bookIDs}).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, wrapDBErr(err, "decrement copies")
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapDBErr(err, "commit borrow")
	}
	return records, nil
}

type lockedRecord struct {
	ID         int64      `db:"id"`
	BookID     int64      `db:"book_id"`
	Title      string     `db:"title"`
	DueDate    model.Date `db:"due_date"`
	ReturnedAt *time.Time `db:"returned_at"`
}

// ReturnRecords marks every record returned, computes its penalty and
// restores one copy per record to the associated book, atomically.
// recordIDs must be distinct and sorted ascending.
func (r *repository) ReturnRecords(ctx context.Context, recordIDs []int64, now time.Time, dailyRate float64) ([]model.BorrowingRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, wrapDBErr(err, "begin return")
	}
	defer tx.Rollback() //nolint:errcheck

	query, args, err := qb.Select("br.id", "br.book_id", "b.title", "br.due_date", "br.returned_at").
		From(recordsTableName + " br").
		Join(booksTableName + " b on b.id = br.book_id").
		Where(sq.Eq{"br.id": recordIDs}).
		OrderBy("br.id").
		Suffix("for update of br, b").
		ToSql()
	if err != nil {
		return nil, err
	}

	var locked []lockedRecord
	if err := tx.SelectContext(ctx, &locked, query, args...); err != nil {
		return nil, wrapDBErr(err, "lock records")
	}

	if len(locked) != len(recordIDs) {
		return nil, &errs.RecordsNotFoundError{IDs: missingIDs(recordIDs, recordKeys(locked))}
	}
	for _, rec := range locked {
		if rec.ReturnedAt != nil {
			return nil, &errs.AlreadyReturnedError{RecordID: rec.ID, Title: rec.Title}
		}
	}

	records := make([]model.BorrowingRecord, 0, len(locked))
	copiesPerBook := make(map[int64]int, len(locked))
	for _, rec := range locked {
		penalty := model.CalculatePenalty(model.BorrowingRecord{
			DueDate:    rec.DueDate,
			ReturnedAt: &now,
		}, dailyRate)

		query, args, err = qb.Update(recordsTableName).
			Set("returned_at", now).
			Set("penalty_amount", penalty).
			Where(sq.Eq{"id": rec.ID}).
			Suffix("returning " + recordColumns).
			ToSql()
		if err != nil {
			return nil, err
		}
		var updated model.BorrowingRecord
		if err := tx.GetContext(ctx, &updated, query, args...); err != nil {
			return nil, wrapDBErr(err, "update record")
		}
		records = append(records, updated)
		copiesPerBook[rec.BookID]++
	}

	bookIDs := make([]int64, 0, len(copiesPerBook))
	for id := range copiesPerBook {
		bookIDs = append(bookIDs, id)
	}
	sort.Slice(bookIDs, func(i, j int) bool { return bookIDs[i] < bookIDs[j] })

	for _, id := range bookIDs {
		query, args, err = qb.Update(booksTableName).
			Set("available_copies", sq.Expr("available_copies + ?", copiesPerBook[id])).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, wrapDBErr(err, "increment copies")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapDBErr(err, "commit return")
	}
	return records, nil
}

func bookKeys(books []lockedBook) map[int64]struct{} {
	keys := make(map[int64]struct{}, len(books))
	for _, b := range books {
		keys[b.ID] = struct{}{}
	}
	return keys
}

func recordKeys(records []lockedRecord) map[int64]struct{} {
	keys := make(map[int64]struct{}, len(records))
	for _, rec := range records {
		keys[rec.ID] = struct{}{}
	}
	return keys
}

func missingIDs(requested []int64, found map[int64]struct{}) []int64 {
	var missing []int64
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// wrapDBErr translates store-level failures into the error taxonomy: retryable
// lock/connectivity failures become ErrPersistence, everything else
// ErrUnexpected. Raw pg errors never reach the caller.
func wrapDBErr(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.DeadlockDetected,
			pgErr.Code == pgerrcode.SerializationFailure,
			pgErr.Code == pgerrcode.LockNotAvailable,
			pgErr.Code == pgerrcode.QueryCanceled,
			strings.HasPrefix(pgErr.Code, "08"), // connection exceptions
			strings.HasPrefix(pgErr.Code, "53"): // insufficient resources
			return errors.Wrapf(errs.ErrPersistence, "%s: %s", op, pgErr.Message)
		}
		return errors.Wrapf(errs.ErrUnexpected, "%s: %s", op, pgErr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, sql.ErrTxDone) {
		return errors.Wrapf(errs.ErrPersistence, "%s: %v", op, err)
	}
	return errors.Wrapf(errs.ErrUnexpected, "%s: %v", op, err)
}
