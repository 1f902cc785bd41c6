package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/libertine-io/library-backend/notifier/internal/mail"
	"github.com/libertine-io/library-backend/notifier/internal/model"
	"github.com/libertine-io/library-backend/notifier/internal/repository"
	"github.com/libertine-io/library-backend/pkg/circuit_breaker"
	"github.com/libertine-io/library-backend/pkg/kafka"
)

type Service struct {
	log          *zap.Logger
	repo         repository.Repository
	sender       mail.Sender
	cb           circuit_breaker.CircuitBreaker
	reminderDays int
	nowFn        func() time.Time
}

func NewService(repo repository.Repository, sender mail.Sender, reminderDays int, log *zap.Logger) *Service {
	return &Service{
		log:          log,
		repo:         repo,
		sender:       sender,
		cb:           circuit_breaker.New(100, time.Second, 0.2, 2),
		reminderDays: reminderDays,
		nowFn:        time.Now,
	}
}

// WithClock replaces the time source. Tests use it to pin "now".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.nowFn = now
	return s
}

// BorrowConfirmed sends one confirmation email covering every record of the
// borrow. Used by the kafka consumer; returning an error leaves the message
// unmarked so the batch is retried.
func (s *Service) BorrowConfirmed(ctx context.Context, event kafka.BorrowConfirmed) error {
	notices, err := s.repo.NoticesByRecordIDs(ctx, event.RecordIDs)
	if err != nil {
		return err
	}
	if len(notices) == 0 {
		s.log.Warn("confirmation without records",
			zap.String("messageId", event.MessageID),
			zap.Int64s("recordIds", event.RecordIDs))
		return nil
	}
	if notices[0].Email == "" {
		s.log.Warn("no email on file, confirmation skipped",
			zap.String("username", event.UserName))
		return nil
	}
	return s.cb.Call(func() error {
		return s.sender.Send(notices[0].Email, "Borrowing confirmation", confirmationBody(notices))
	})
}

// RunReminders emails every user holding a book due within the reminder
// window, one email per user. Send failures are logged and skipped so one
// bad address cannot stall the run.
func (s *Service) RunReminders(ctx context.Context) (model.RemindersReport, error) {
	today := truncateToDate(s.nowFn())
	notices, err := s.repo.NoticesDueBetween(ctx, today, today.AddDate(0, 0, s.reminderDays))
	if err != nil {
		return model.RemindersReport{}, err
	}

	byUser := make(map[string][]model.Notice)
	for _, n := range notices {
		byUser[n.UserName] = append(byUser[n.UserName], n)
	}
	users := make([]string, 0, len(byUser))
	for user := range byUser {
		users = append(users, user)
	}
	sort.Strings(users)

	var report model.RemindersReport
	for _, user := range users {
		userNotices := byUser[user]
		if userNotices[0].Email == "" {
			s.log.Warn("no email on file, reminder skipped", zap.String("username", user))
			report.Skipped++
			continue
		}
		err := s.cb.Call(func() error {
			return s.sender.Send(userNotices[0].Email, "Return reminder", reminderBody(userNotices))
		})
		if err != nil {
			s.log.Error("reminder send", zap.String("username", user), zap.Error(err))
			report.Skipped++
			continue
		}
		report.Sent++
	}
	return report, nil
}

func confirmationBody(notices []model.Notice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nYou have borrowed:\n", notices[0].UserName)
	for _, n := range notices {
		fmt.Fprintf(&b, "  - %s, due back %s\n", n.BookTitle, n.DueDate.Format(time.DateOnly))
	}
	b.WriteString("\nHappy reading!\n")
	return b.String()
}

func reminderBody(notices []model.Notice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nThe following books are due back soon:\n", notices[0].UserName)
	for _, n := range notices {
		fmt.Fprintf(&b, "  - %s, due %s\n", n.BookTitle, n.DueDate.Format(time.DateOnly))
	}
	b.WriteString("\nPlease return them on time to avoid penalties.\n")
	return b.String()
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
