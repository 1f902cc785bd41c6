package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/libertine-io/library-backend/library/internal/errs"
	"github.com/libertine-io/library-backend/library/internal/model"
	"github.com/libertine-io/library-backend/library/internal/repository"
	"github.com/libertine-io/library-backend/pkg/kafka"
)

// Policy holds the lending rules. Defaults come from config.
type Policy struct {
	MaxBooksPerUser  int
	DailyPenaltyRate float64
	MaxBorrowDays    int
}

type BorrowingService struct {
	log    *zap.Logger
	repo   repository.Repository
	enq    Enqueuer
	policy Policy
	nowFn  func() time.Time
}

func NewBorrowingService(repo repository.Repository, enq Enqueuer, policy Policy, log *zap.Logger) *BorrowingService {
	return &BorrowingService{
		log:    log,
		repo:   repo,
		enq:    enq,
		policy: policy,
		nowFn:  time.Now,
	}
}

// WithClock replaces the time source. Tests use it to pin "now".
func (s *BorrowingService) WithClock(now func() time.Time) *BorrowingService {
	s.nowFn = now
	return s
}

// Borrow creates one borrowing record per distinct book id and decrements
// each book's available copies, all or nothing. Policy is validated before
// any row lock is taken.
func (s *BorrowingService) Borrow(ctx context.Context, userName string, bookIDs []int64, dueDate time.Time) ([]model.BorrowingRecord, error) {
	ids := dedupSorted(bookIDs)
	if len(ids) == 0 {
		return nil, errs.ErrEmptyInput
	}

	now := s.nowFn().UTC()
	if err := s.validateDueDate(dueDate, now); err != nil {
		return nil, err
	}

	active, err := s.repo.ActiveLoanCount(ctx, userName)
	if err != nil {
		return nil, err
	}
	if active+len(ids) > s.policy.MaxBooksPerUser {
		allowed := s.policy.MaxBooksPerUser - active
		if allowed < 0 {
			allowed = 0
		}
		return nil, &errs.BorrowLimitError{
			Active:    active,
			Requested: len(ids),
			Allowed:   allowed,
		}
	}

	records, err := s.repo.BorrowBooks(ctx, userName, ids, dueDate, now)
	if err != nil {
		return nil, err
	}

	s.notifyBorrowed(userName, records)
	return records, nil
}

// Return marks every record returned with its penalty and restores the
// copies, all or nothing. Access scoping is the caller's concern.
func (s *BorrowingService) Return(ctx context.Context, recordIDs []int64) ([]model.BorrowingRecord, error) {
	ids := dedupSorted(recordIDs)
	if len(ids) == 0 {
		return nil, errs.ErrEmptyInput
	}
	return s.repo.ReturnRecords(ctx, ids, s.nowFn().UTC(), s.policy.DailyPenaltyRate)
}

func (s *BorrowingService) ListRecords(ctx context.Context, userName string) ([]model.BorrowingRecord, error) {
	return s.repo.ListRecords(ctx, userName)
}

type RecordStatus struct {
	model.BorrowingRecord
	Overdue            bool    `json:"overdue"`
	OutstandingPenalty float64 `json:"outstandingPenalty"`
}

// RecordStatus previews the overdue state and penalty of a record without
// mutating anything.
func (s *BorrowingService) RecordStatus(ctx context.Context, id int64) (RecordStatus, error) {
	record, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return RecordStatus{}, err
	}
	now := s.nowFn().UTC()
	return RecordStatus{
		BorrowingRecord:    record,
		Overdue:            model.IsOverdue(record, now),
		OutstandingPenalty: model.PreviewPenalty(record, now, s.policy.DailyPenaltyRate),
	}, nil
}

func (s *BorrowingService) validateDueDate(dueDate, now time.Time) error {
	today := truncateToDate(now)
	due := truncateToDate(dueDate)
	max := today.AddDate(0, 0, s.policy.MaxBorrowDays)
	if due.Before(today) || due.After(max) {
		return &errs.InvalidDueDateError{DueDate: due, Min: today, Max: max}
	}
	return nil
}

// notifyBorrowed publishes the confirmation after the commit, fire and
// forget. Publish failure must never fail the borrow.
func (s *BorrowingService) notifyBorrowed(userName string, records []model.BorrowingRecord) {
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	msg := kafka.BorrowConfirmed{
		MessageID: uuid.NewString(),
		UserName:  userName,
		RecordIDs: ids,
	}
	go func() {
		if err := s.enq.Enqueue(kafka.BorrowingsTopic, msg); err != nil {
			s.log.Warn("borrow confirmation enqueue", zap.Error(err))
		}
	}()
}

func dedupSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
