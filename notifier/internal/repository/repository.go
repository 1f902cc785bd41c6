package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/libertine-io/library-backend/notifier/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	NoticesByRecordIDs(ctx context.Context, ids []int64) ([]model.Notice, error)
	NoticesDueBetween(ctx context.Context, from, to time.Time) ([]model.Notice, error)
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const noticeColumns = `
	br.id as record_id,
	br.user_name,
	coalesce(u.email, '') as email,
	b.title as book_title,
	br.due_date`

func (r *repository) NoticesByRecordIDs(ctx context.Context, ids []int64) ([]model.Notice, error) {
	q := `select ` + noticeColumns + `
	from borrowing_records br
	join books b on b.id = br.book_id
	left join users u on u.user_name = br.user_name
	where br.id = any($1)
	order by br.id`
	rows, err := r.db.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	notices, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Notice])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return notices, nil
}

// NoticesDueBetween lists still-active records whose due date falls in
// [from, to], the upcoming-reminder window.
func (r *repository) NoticesDueBetween(ctx context.Context, from, to time.Time) ([]model.Notice, error) {
	q := `select ` + noticeColumns + `
	from borrowing_records br
	join books b on b.id = br.book_id
	left join users u on u.user_name = br.user_name
	where br.returned_at is null
	  and br.due_date between $1 and $2
	order by br.user_name, br.due_date`
	rows, err := r.db.Query(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	notices, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Notice])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return notices, nil
}
