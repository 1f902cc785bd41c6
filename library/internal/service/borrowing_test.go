package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/libertine-io/library-backend/library/internal/errs"
	"github.com/libertine-io/library-backend/library/internal/model"
	repo_mocks "github.com/libertine-io/library-backend/library/internal/repository/mocks"
	"github.com/libertine-io/library-backend/library/internal/service"
	"github.com/libertine-io/library-backend/pkg/kafka"
)

var testNow = time.Date(2024, 5, 10, 12, 30, 0, 0, time.UTC)

func testPolicy() service.Policy {
	return service.Policy{
		MaxBooksPerUser:  3,
		DailyPenaltyRate: 10.00,
		MaxBorrowDays:    30,
	}
}

type enqueuerStub struct {
	msgs chan any
}

func newEnqueuerStub() *enqueuerStub {
	return &enqueuerStub{msgs: make(chan any, 8)}
}

func (e *enqueuerStub) Enqueue(_ string, v any) error {
	e.msgs <- v
	return nil
}

func (e *enqueuerStub) wait(t *testing.T) kafka.BorrowConfirmed {
	t.Helper()
	select {
	case v := <-e.msgs:
		msg, ok := v.(kafka.BorrowConfirmed)
		require.True(t, ok)
		return msg
	case <-time.After(time.Second):
		t.Fatal("no confirmation published")
		return kafka.BorrowConfirmed{}
	}
}

func newBorrowingService(repo *repo_mocks.MockRepository, enq service.Enqueuer) *service.BorrowingService {
	return service.NewBorrowingService(repo, enq, testPolicy(), zap.NewNop()).
		WithClock(func() time.Time { return testNow })
}

func TestBorrowingService_Borrow(t *testing.T) {
	ctx := context.Background()
	dueDate := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

	t.Run("ok", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repo_mocks.NewMockRepository(ctrl)
		enq := newEnqueuerStub()
		svc := newBorrowingService(repo, enq)

		records := []model.BorrowingRecord{
			{ID: 101, BookID: 1, UserName: "alice", DueDate: model.Date{Time: dueDate}},
			{ID: 102, BookID: 2, UserName: "alice", DueDate: model.Date{Time: dueDate}},
		}
		repo.EXPECT().ActiveLoanCount(gomock.Any(), "alice").Return(1, nil)
		repo.EXPECT().
			BorrowBooks(gomock.Any(), "alice", []int64{1, 2}, dueDate, testNow).
			Return(records, nil)

		got, err := svc.Borrow(ctx, "alice", []int64{1, 2}, dueDate)
		require.NoError(t, err)
		require.Equal(t, records, got)

		msg := enq.wait(t)
		require.Equal(t, "alice", msg.UserName)
		require.Equal(t, []int64{101, 102}, msg.RecordIDs)
		require.NotEmpty(t, msg.MessageID)
	})

	t.Run("duplicate ids collapse", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repo_mocks.NewMockRepository(ctrl)
		enq := newEnqueuerStub()
		svc := newBorrowingService(repo, enq)

		repo.EXPECT().ActiveLoanCount(gomock.Any(), "alice").Return(0, nil)
		repo.EXPECT().
			BorrowBooks(gomock.Any(), "alice", []int64{1, 2}, dueDate, testNow).
			Return([]model.BorrowingRecord{{ID: 101, BookID: 1}, {ID: 102, BookID: 2}}, nil)

		_, err := svc.Borrow(ctx, "alice", []int64{2, 1, 2, 1}, dueDate)
		require.NoError(t, err)
		enq.wait(t)
	})

	t.Run("empty input", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repo_mocks.NewMockRepository(ctrl)
		enq := newEnqueuerStub()
		svc := newBorrowingService(repo, enq)

		_, err := svc.Borrow(ctx, "alice", nil, dueDate)
		require.ErrorIs(t, err, errs.ErrEmptyInput)
		require.Empty(t, enq.msgs)
	})

	t.Run("limit exceeded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repo_mocks.NewMockRepository(ctrl)
		enq := newEnqueuerStub()
		svc := newBorrowingService(repo, enq)

		repo.EXPECT().ActiveLoanCount(gomock.Any(), "alice").Return(2, nil)

		_, err := svc.Borrow(ctx, "alice", []int64{1, 2}, dueDate)
		var limitErr *errs.BorrowLimitError
		require.ErrorAs(t, err, &limitErr)
		require.Equal(t, 2, limitErr.Active)
		require.Equal(t, 2, limitErr.Requested)
		require.Equal(t, 1, limitErr.Allowed)
		require.Empty(t, enq.msgs)
	})

	t.Run("allowed never negative", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repo_mocks.NewMockRepository(ctrl)
		enq := newEnqueuerStub()
		svc := newBorrowingService(repo, enq)

		repo.EXPECT().ActiveLoanCount(gomock.Any(), "alice").Return(4, nil)

		_, err := svc.Borrow(ctx, "alice", []int64{1}, dueDate)
		var limitErr *errs.BorrowLimitError
		require.ErrorAs(t, err, &limitErr)
		require.Equal(t, 0, limitErr.Allowed)
	})

	t.Run("repo error not confirmed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repo_mocks.NewMockRepository(ctrl)
		enq := newEnqueuerStub()
		svc := newBorrowingService(repo, enq)

		repo.EXPECT().ActiveLoanCount(gomock.Any(), "alice").Return(0, nil)
		repo.EXPECT().
			BorrowBooks(gomock.Any(), "alice", []int64{7}, dueDate, testNow).
			Return(nil, &errs.BookUnavailableError{BookID: 7, Title: "Dune"})

		_, err := svc.Borrow(ctx, "alice", []int64{7}, dueDate)
		var unavailErr *errs.BookUnavailableError
		require.ErrorAs(t, err, &unavailErr)
		require.Empty(t, enq.msgs)
	})
}

func TestBorrowingService_Borrow_dueDate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		dueDate time.Time
		wantErr bool
	}{
		{name: "today", dueDate: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)},
		{name: "window edge", dueDate: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)},
		{name: "yesterday", dueDate: time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC), wantErr: true},
		{name: "past window", dueDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			repo := repo_mocks.NewMockRepository(ctrl)
			enq := newEnqueuerStub()
			svc := newBorrowingService(repo, enq)

			if !tt.wantErr {
				repo.EXPECT().ActiveLoanCount(gomock.Any(), "alice").Return(0, nil)
				repo.EXPECT().
					BorrowBooks(gomock.Any(), "alice", []int64{1}, tt.dueDate, testNow).
					Return([]model.BorrowingRecord{{ID: 1, BookID: 1}}, nil)
			}

			_, err := svc.Borrow(ctx, "alice", []int64{1}, tt.dueDate)
			if tt.wantErr {
				var dueErr *errs.InvalidDueDateError
				require.ErrorAs(t, err, &dueErr)
				return
			}
			require.NoError(t, err)
			enq.wait(t)
		})
	}
}

func TestBorrowingService_Return(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repo_mocks.NewMockRepository(ctrl)
		svc := newBorrowingService(repo, newEnqueuerStub())

		returned := []model.BorrowingRecord{{ID: 5, PenaltyAmount: 50}}
		repo.EXPECT().
			ReturnRecords(gomock.Any(), []int64{5, 9}, testNow, 10.00).
			Return(returned, nil)

		got, err := svc.Return(ctx, []int64{9, 5, 9})
		require.NoError(t, err)
		require.Equal(t, returned, got)
	})

	t.Run("empty input", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repo_mocks.NewMockRepository(ctrl)
		svc := newBorrowingService(repo, newEnqueuerStub())

		_, err := svc.Return(ctx, []int64{})
		require.ErrorIs(t, err, errs.ErrEmptyInput)
	})
}

func TestBorrowingService_RecordStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("overdue", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repo_mocks.NewMockRepository(ctrl)
		svc := newBorrowingService(repo, newEnqueuerStub())

		record := model.BorrowingRecord{
			ID:      5,
			DueDate: model.Date{Time: time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC)},
		}
		repo.EXPECT().GetRecord(gomock.Any(), int64(5)).Return(record, nil)

		status, err := svc.RecordStatus(ctx, 5)
		require.NoError(t, err)
		require.True(t, status.Overdue)
		require.Equal(t, 30.00, status.OutstandingPenalty)
	})

	t.Run("active on time", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repo_mocks.NewMockRepository(ctrl)
		svc := newBorrowingService(repo, newEnqueuerStub())

		record := model.BorrowingRecord{
			ID:      6,
			DueDate: model.Date{Time: time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)},
		}
		repo.EXPECT().GetRecord(gomock.Any(), int64(6)).Return(record, nil)

		status, err := svc.RecordStatus(ctx, 6)
		require.NoError(t, err)
		require.False(t, status.Overdue)
		require.Zero(t, status.OutstandingPenalty)
	})
}
