package model

import "time"

// Notice is one borrowing record joined with the book title and the
// borrower's email. Email is empty when the user has no address on file.
type Notice struct {
	RecordID  int64     `db:"record_id"`
	UserName  string    `db:"user_name"`
	Email     string    `db:"email"`
	BookTitle string    `db:"book_title"`
	DueDate   time.Time `db:"due_date"`
}

type RemindersReport struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
}
