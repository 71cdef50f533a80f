package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aisistems/coursebot/core/logger"
)

// Repository persists accounts in the tg_users table. Every write is an
// upsert keyed by telegram_id so handlers never need to care whether the
// row exists yet.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps an open database handle.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// UpsertStarted records that the user pressed /start, refreshing the
// username and start timestamp.
func (r *Repository) UpsertStarted(ctx context.Context, telegramID int64, username string) error {
	const query = `
		INSERT INTO tg_users (telegram_id, username, started_at)
		VALUES ($1, NULLIF($2, ''), $3)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username, started_at = EXCLUDED.started_at
	`
	if _, err := r.db.ExecContext(ctx, query, telegramID, username, time.Now().UTC()); err != nil {
		r.logFail(ctx, "account.upsert_started", telegramID, err)
		return fmt.Errorf("upsert started: %w", err)
	}
	return nil
}

// SetCustomerEmail stores the receipt email for the user.
func (r *Repository) SetCustomerEmail(ctx context.Context, telegramID int64, email string) error {
	const query = `
		INSERT INTO tg_users (telegram_id, customer_email)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO UPDATE
		SET customer_email = EXCLUDED.customer_email
	`
	if _, err := r.db.ExecContext(ctx, query, telegramID, email); err != nil {
		r.logFail(ctx, "account.set_email", telegramID, err)
		return fmt.Errorf("set customer email: %w", err)
	}
	return nil
}

// SetLastPayment stores the identifier of the payment just created for the user.
func (r *Repository) SetLastPayment(ctx context.Context, telegramID int64, paymentID string) error {
	const query = `
		INSERT INTO tg_users (telegram_id, last_payment_id)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO UPDATE
		SET last_payment_id = EXCLUDED.last_payment_id
	`
	if _, err := r.db.ExecContext(ctx, query, telegramID, paymentID); err != nil {
		r.logFail(ctx, "account.set_last_payment", telegramID, err)
		return fmt.Errorf("set last payment: %w", err)
	}
	return nil
}

// MarkPaid flips the account to paid. An empty inviteLink keeps any
// previously stored link untouched so access survives invite failures.
func (r *Repository) MarkPaid(ctx context.Context, telegramID int64, paymentID, inviteLink string) error {
	now := time.Now().UTC()
	if inviteLink != "" {
		const query = `
			INSERT INTO tg_users (telegram_id, paid, paid_at, last_payment_id, invite_link)
			VALUES ($1, TRUE, $2, $3, $4)
			ON CONFLICT (telegram_id) DO UPDATE
			SET paid = TRUE, paid_at = EXCLUDED.paid_at,
			    last_payment_id = EXCLUDED.last_payment_id,
			    invite_link = EXCLUDED.invite_link
		`
		if _, err := r.db.ExecContext(ctx, query, telegramID, now, paymentID, inviteLink); err != nil {
			r.logFail(ctx, "account.mark_paid", telegramID, err)
			return fmt.Errorf("mark paid: %w", err)
		}
		return nil
	}

	const query = `
		INSERT INTO tg_users (telegram_id, paid, paid_at, last_payment_id)
		VALUES ($1, TRUE, $2, $3)
		ON CONFLICT (telegram_id) DO UPDATE
		SET paid = TRUE, paid_at = EXCLUDED.paid_at,
		    last_payment_id = EXCLUDED.last_payment_id
	`
	if _, err := r.db.ExecContext(ctx, query, telegramID, now, paymentID); err != nil {
		r.logFail(ctx, "account.mark_paid", telegramID, err)
		return fmt.Errorf("mark paid: %w", err)
	}
	return nil
}

// Get returns the account row or nil when the user is unknown.
func (r *Repository) Get(ctx context.Context, telegramID int64) (*Account, error) {
	const query = `
		SELECT telegram_id, username, started_at, customer_email,
		       last_payment_id, paid, paid_at, invite_link
		FROM tg_users
		WHERE telegram_id = $1
	`
	var acc Account
	if err := r.db.GetContext(ctx, &acc, query, telegramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logFail(ctx, "account.get", telegramID, err)
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &acc, nil
}

// ListPaidIDs returns telegram ids of all paid accounts.
func (r *Repository) ListPaidIDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT telegram_id FROM tg_users WHERE paid = TRUE`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		r.logFail(ctx, "account.list_paid", 0, err)
		return nil, fmt.Errorf("list paid ids: %w", err)
	}
	return ids, nil
}

// ListUnpaidIDs returns telegram ids of accounts without purchased access.
func (r *Repository) ListUnpaidIDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT telegram_id FROM tg_users WHERE paid IS NOT TRUE`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		r.logFail(ctx, "account.list_unpaid", 0, err)
		return nil, fmt.Errorf("list unpaid ids: %w", err)
	}
	return ids, nil
}

func (r *Repository) logFail(ctx context.Context, event string, telegramID int64, err error) {
	attrs := []slog.Attr{
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	}
	if telegramID != 0 {
		attrs = append(attrs, slog.Int64("user_id", telegramID))
	}
	logger.Error(ctx, "db", event, attrs...)
}
