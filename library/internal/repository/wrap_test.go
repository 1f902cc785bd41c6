package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/libertine-io/library-backend/library/internal/errs"
)

func pgErr(code string) error {
	return &pgconn.PgError{Code: code, Message: "pg failure"}
}

func Test_wrapDBErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "deadlock detected",
			err:  pgErr(pgerrcode.DeadlockDetected),
			want: errs.ErrPersistence,
		},
		{
			name: "serialization failure",
			err:  pgErr(pgerrcode.SerializationFailure),
			want: errs.ErrPersistence,
		},
		{
			name: "lock not available",
			err:  pgErr(pgerrcode.LockNotAvailable),
			want: errs.ErrPersistence,
		},
		{
			name: "statement timeout cancel",
			err:  pgErr(pgerrcode.QueryCanceled),
			want: errs.ErrPersistence,
		},
		{
			name: "connection failure class 08",
			err:  pgErr(pgerrcode.ConnectionFailure),
			want: errs.ErrPersistence,
		},
		{
			name: "too many connections class 53",
			err:  pgErr(pgerrcode.TooManyConnections),
			want: errs.ErrPersistence,
		},
		{
			name: "unique violation is not retryable",
			err:  pgErr(pgerrcode.UniqueViolation),
			want: errs.ErrUnexpected,
		},
		{
			name: "foreign key violation is not retryable",
			err:  pgErr(pgerrcode.ForeignKeyViolation),
			want: errs.ErrUnexpected,
		},
		{
			name: "wrapped pg error still classified",
			err:  errors.Wrap(pgErr(pgerrcode.DeadlockDetected), "lock books"),
			want: errs.ErrPersistence,
		},
		{
			name: "context deadline",
			err:  context.DeadlineExceeded,
			want: errs.ErrPersistence,
		},
		{
			name: "context canceled",
			err:  context.Canceled,
			want: errs.ErrPersistence,
		},
		{
			name: "bad conn",
			err:  driver.ErrBadConn,
			want: errs.ErrPersistence,
		},
		{
			name: "conn done",
			err:  sql.ErrConnDone,
			want: errs.ErrPersistence,
		},
		{
			name: "tx done",
			err:  sql.ErrTxDone,
			want: errs.ErrPersistence,
		},
		{
			name: "plain driver error",
			err:  errors.New("driver: malformed response"),
			want: errs.ErrUnexpected,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := wrapDBErr(tt.err, "op")
			require.ErrorIs(t, got, tt.want)
		})
	}
}

func Test_wrapDBErr_keepsDetail(t *testing.T) {
	t.Parallel()

	got := wrapDBErr(pgErr(pgerrcode.DeadlockDetected), "lock books")
	require.ErrorIs(t, got, errs.ErrPersistence)
	require.Contains(t, got.Error(), "lock books")
	require.Contains(t, got.Error(), "pg failure")
}
