package errs

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrEmptyInput = errors.New("no identifiers provided")
	ErrNotFound   = errors.New("not found")

	// ErrPersistence marks store-level failures (lock timeout, deadlock,
	// connectivity). The whole operation was rolled back and is safe to retry.
	ErrPersistence = errors.New("storage could not complete the operation")

	// ErrUnexpected marks unclassified failures. No partial state was left.
	ErrUnexpected = errors.New("unexpected failure")
)

type InvalidDueDateError struct {
	DueDate time.Time
	Min     time.Time
	Max     time.Time
}

func (e *InvalidDueDateError) Error() string {
	return fmt.Sprintf("due date %s must be between %s and %s",
		e.DueDate.Format(time.DateOnly), e.Min.Format(time.DateOnly), e.Max.Format(time.DateOnly))
}

type BorrowLimitError struct {
	Active    int
	Requested int
	// Allowed is how many more books the user may still borrow, never negative.
	Allowed int
}

func (e *BorrowLimitError) Error() string {
	return fmt.Sprintf("cannot borrow %d more books: %d active borrowings, %d more allowed",
		e.Requested, e.Active, e.Allowed)
}

type BooksNotFoundError struct {
	IDs []int64
}

func (e *BooksNotFoundError) Error() string {
	return fmt.Sprintf("books do not exist: %v", e.IDs)
}

type RecordsNotFoundError struct {
	IDs []int64
}

func (e *RecordsNotFoundError) Error() string {
	return fmt.Sprintf("borrowing records do not exist: %v", e.IDs)
}

type BookUnavailableError struct {
	BookID int64
	Title  string
}

func (e *BookUnavailableError) Error() string {
	return fmt.Sprintf("book %q (id %d) is not available", e.Title, e.BookID)
}

type AlreadyReturnedError struct {
	RecordID int64
	Title    string
}

func (e *AlreadyReturnedError) Error() string {
	return fmt.Sprintf("record %d for book %q has already been returned", e.RecordID, e.Title)
}
