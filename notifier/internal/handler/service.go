package handler

import (
	"context"

	"github.com/libertine-io/library-backend/notifier/internal/model"
	"github.com/libertine-io/library-backend/notifier/internal/service"
	"github.com/libertine-io/library-backend/pkg/kafka"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type NotifierService interface {
	BorrowConfirmed(ctx context.Context, event kafka.BorrowConfirmed) error
	RunReminders(ctx context.Context) (model.RemindersReport, error)
}

var _ NotifierService = (*service.Service)(nil)
