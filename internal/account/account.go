// Package account holds the persistent per-user purchase state.
package account

import "database/sql"

// Account is a row of tg_users. One record per Telegram user who ever
// pressed /start. Paid plus InviteLink form the access state: a paid
// account without a link was granted access but the invite could not
// be created at the time.
type Account struct {
	TelegramID    int64          `db:"telegram_id"`
	Username      sql.NullString `db:"username"`
	StartedAt     sql.NullTime   `db:"started_at"`
	CustomerEmail sql.NullString `db:"customer_email"`
	LastPaymentID sql.NullString `db:"last_payment_id"`
	Paid          bool           `db:"paid"`
	PaidAt        sql.NullTime   `db:"paid_at"`
	InviteLink    sql.NullString `db:"invite_link"`
}

// Email returns the stored customer email or "".
func (a *Account) Email() string {
	if a == nil || !a.CustomerEmail.Valid {
		return ""
	}
	return a.CustomerEmail.String
}

// PaymentID returns the identifier of the most recent payment or "".
func (a *Account) PaymentID() string {
	if a == nil || !a.LastPaymentID.Valid {
		return ""
	}
	return a.LastPaymentID.String
}

// Invite returns the stored invite link or "".
func (a *Account) Invite() string {
	if a == nil || !a.InviteLink.Valid {
		return ""
	}
	return a.InviteLink.String
}

// IsPaid reports whether the account holds purchased access.
func (a *Account) IsPaid() bool {
	return a != nil && a.Paid
}
