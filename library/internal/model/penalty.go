package model

import "time"

// truncateToDate drops the time-of-day part, keeping the calendar date in UTC.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OverdueDays is the number of whole days between the due date and the
// return date, never negative.
func OverdueDays(dueDate time.Time, returnedAt time.Time) int {
	days := int(truncateToDate(returnedAt).Sub(truncateToDate(dueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// IsOverdue reports whether the record is past due as of the given time.
// For a returned record the return date is what counts, not asOf.
func IsOverdue(rec BorrowingRecord, asOf time.Time) bool {
	check := asOf
	if rec.ReturnedAt != nil {
		check = *rec.ReturnedAt
	}
	return truncateToDate(check).After(truncateToDate(rec.DueDate.Time))
}

// CalculatePenalty is deterministic and side-effect free: zero for an
// unreturned or on-time record, overdue days times the daily rate otherwise.
func CalculatePenalty(rec BorrowingRecord, dailyRate float64) float64 {
	if rec.ReturnedAt == nil {
		return 0
	}
	return float64(OverdueDays(rec.DueDate.Time, *rec.ReturnedAt)) * dailyRate
}

// PreviewPenalty is what the penalty would be if the record were returned
// at asOf. For an already returned record it equals CalculatePenalty.
func PreviewPenalty(rec BorrowingRecord, asOf time.Time, dailyRate float64) float64 {
	if rec.ReturnedAt != nil {
		return CalculatePenalty(rec, dailyRate)
	}
	return float64(OverdueDays(rec.DueDate.Time, asOf)) * dailyRate
}
