package model

import (
	"database/sql/driver"
	"time"

	"github.com/pkg/errors"
)

// Date is a date-only value: "2006-01-02" on the wire, DATE in the store.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: t}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return errors.Errorf("invalid date %s", s)
	}
	t, err := time.Parse(time.DateOnly, s[1:len(s)-1])
	if err != nil {
		return errors.Wrap(err, "parse date")
	}
	d.Time = t
	return nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return err
		}
		d.Time = t
		return nil
	default:
		return errors.Errorf("cannot scan %T into Date", src)
	}
}

func (d Date) Value() (driver.Value, error) {
	return d.Format(time.DateOnly), nil
}

type Book struct {
	ID              int64  `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	AuthorID        int64  `json:"authorId" db:"author_id"`
	LibraryID       int64  `json:"libraryId" db:"library_id"`
	CategoryID      *int64 `json:"categoryId" db:"category_id"`
	PublishedDate   Date   `json:"publishedDate" db:"published_date"`
	AvailableCopies int    `json:"availableCopies" db:"available_copies"`
	ISBN            string `json:"isbn" db:"isbn"`
}

type Author struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	BookCount int    `json:"bookCount" db:"book_count"`
}

type AuthorWithBooks struct {
	Author
	Books []Book `json:"books"`
}

type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Library struct {
	ID          int64    `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Address     string   `json:"address" db:"address"`
	PhoneNumber string   `json:"phoneNumber" db:"phone_number"`
	Latitude    *float64 `json:"latitude" db:"latitude"`
	Longitude   *float64 `json:"longitude" db:"longitude"`
}

type NearbyLibrary struct {
	Library
	DistanceKM float64 `json:"distanceKm" db:"distance_km"`
}

// BorrowingRecord is one book loan. ReturnedAt and PenaltyAmount are
// written exactly once, by the return transaction.
type BorrowingRecord struct {
	ID            int64      `json:"id" db:"id"`
	BookID        int64      `json:"bookId" db:"book_id"`
	UserName      string     `json:"username" db:"user_name"`
	BorrowedAt    time.Time  `json:"borrowedAt" db:"borrowed_at"`
	DueDate       Date       `json:"dueDate" db:"due_date"`
	ReturnedAt    *time.Time `json:"returnedAt" db:"returned_at"`
	PenaltyAmount float64    `json:"penaltyAmount" db:"penalty_amount"`
}

// Active reports whether the loan has not been returned yet.
func (r BorrowingRecord) Active() bool {
	return r.ReturnedAt == nil
}

type BorrowRequest struct {
	BookIDs []int64 `json:"bookIds" validate:"required,min=1,dive,gt=0"`
	DueDate Date    `json:"dueDate" validate:"required"`
}

type ReturnRequest struct {
	RecordIDs []int64 `json:"recordIds" validate:"required,min=1,dive,gt=0"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListBooks struct {
	Paging
	Items []Book `json:"items"`
}

type ListAuthors struct {
	Paging
	Items []Author `json:"items"`
}

type ListAuthorsWithBooks struct {
	Paging
	Items []AuthorWithBooks `json:"items"`
}

type ListLibraries struct {
	Paging
	Items []Library `json:"items"`
}

type BookFilter struct {
	Author   string
	Category string
	Library  string
}

type AuthorFilter struct {
	Library  string
	Category string
}
