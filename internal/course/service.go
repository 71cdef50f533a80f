// Package course implements the purchase flow: email capture, payment
// creation, status polling and access granting.
package course

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aisistems/coursebot/core/guard"
	"github.com/aisistems/coursebot/core/logger"
	"github.com/aisistems/coursebot/internal/account"
	"github.com/aisistems/coursebot/internal/payment"
)

// ErrInvalidEmail rejects input that does not look like an email address.
var ErrInvalidEmail = errors.New("course: invalid email")

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Accounts is the persistence surface the flow needs.
type Accounts interface {
	UpsertStarted(ctx context.Context, telegramID int64, username string) error
	SetCustomerEmail(ctx context.Context, telegramID int64, email string) error
	SetLastPayment(ctx context.Context, telegramID int64, paymentID string) error
	MarkPaid(ctx context.Context, telegramID int64, paymentID, inviteLink string) error
	Get(ctx context.Context, telegramID int64) (*account.Account, error)
}

// Gateway creates payments and reports their status.
type Gateway interface {
	Create(ctx context.Context, req payment.CreateRequest) (payment.CreateResult, error)
	Status(ctx context.Context, paymentID string) (string, error)
}

// InviteGranter mints a fresh single-use invite link into the course group.
type InviteGranter interface {
	Grant(ctx context.Context) (string, error)
}

// Timeouts bound the flow's external calls. Database calls are
// best-effort: on expiry the flow continues with a zero value instead
// of failing the whole interaction.
type Timeouts struct {
	DB      time.Duration
	Gateway time.Duration
	Invite  time.Duration
}

// BeginKind enumerates outcomes of starting a payment.
type BeginKind int

const (
	// BeginAlreadyPaid means access is already granted; no payment was created.
	BeginAlreadyPaid BeginKind = iota
	// BeginNeedEmail means a receipt email must be captured first.
	BeginNeedEmail
	// BeginPaymentCreated means a payment link is ready for the user.
	BeginPaymentCreated
	// BeginGatewayError means the gateway call failed.
	BeginGatewayError
)

// BeginResult is the outcome of BeginPayment or SubmitEmail.
type BeginResult struct {
	Kind       BeginKind
	InviteLink string
	PayURL     string
	Err        error
}

// CheckKind enumerates outcomes of a payment status check.
type CheckKind int

const (
	// CheckNoPayment means no payment was ever created for the user.
	CheckNoPayment CheckKind = iota
	// CheckAlreadyPaid means access was granted before this check.
	CheckAlreadyPaid
	// CheckPaid means the payment succeeded and an invite link was issued.
	CheckPaid
	// CheckPaidInviteFailed means the payment succeeded but the invite
	// link could not be created; access is recorded anyway.
	CheckPaidInviteFailed
	// CheckPending means the payment has not finished yet.
	CheckPending
	// CheckCanceled means the payment was canceled.
	CheckCanceled
	// CheckUnknownStatus reports a status outside the known set.
	CheckUnknownStatus
	// CheckGatewayError means the status poll failed.
	CheckGatewayError
)

// CheckResult is the outcome of CheckPayment.
type CheckResult struct {
	Kind       CheckKind
	InviteLink string
	Status     string
	Err        error
}

// Service drives the purchase flow. A nil gateway disables payments.
type Service struct {
	accounts Accounts
	gateway  Gateway
	timeouts Timeouts
}

// NewService wires the flow with its dependencies.
func NewService(accounts Accounts, gateway Gateway, timeouts Timeouts) *Service {
	if timeouts.DB <= 0 {
		timeouts.DB = 6 * time.Second
	}
	if timeouts.Gateway <= 0 {
		timeouts.Gateway = 12 * time.Second
	}
	if timeouts.Invite <= 0 {
		timeouts.Invite = 6 * time.Second
	}
	return &Service{accounts: accounts, gateway: gateway, timeouts: timeouts}
}

// PaymentsEnabled reports whether a payment gateway is configured.
func (s *Service) PaymentsEnabled() bool {
	return s.gateway != nil
}

// Start records that the user opened the bot. Persistence failures are
// logged and swallowed so the greeting always goes out.
func (s *Service) Start(ctx context.Context, telegramID int64, username string) {
	err := guard.Run(ctx, s.timeouts.DB, func(c context.Context) error {
		return s.accounts.UpsertStarted(c, telegramID, username)
	})
	if err != nil {
		logger.Warn(ctx, "course", "start.persist",
			slog.String("status", "fail"),
			slog.Int64("user_id", telegramID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}

// BeginPayment starts the payment flow for a user pressing the pay button.
// A paid account short-circuits to its stored invite link without touching
// the gateway. A missing receipt email demands email capture first.
func (s *Service) BeginPayment(ctx context.Context, telegramID int64) (BeginResult, error) {
	acct := s.loadAccount(ctx, telegramID)

	if acct.IsPaid() {
		return BeginResult{Kind: BeginAlreadyPaid, InviteLink: acct.Invite()}, nil
	}
	if acct.Email() == "" {
		return BeginResult{Kind: BeginNeedEmail}, nil
	}
	return s.createPayment(ctx, telegramID, acct.Email())
}

// SubmitEmail validates and stores the receipt email, then starts a payment.
func (s *Service) SubmitEmail(ctx context.Context, telegramID int64, raw string) (BeginResult, error) {
	email := strings.TrimSpace(raw)
	if !emailRe.MatchString(email) {
		return BeginResult{}, ErrInvalidEmail
	}

	if err := guard.Run(ctx, s.timeouts.DB, func(c context.Context) error {
		return s.accounts.SetCustomerEmail(c, telegramID, email)
	}); err != nil {
		logger.Warn(ctx, "course", "email.persist",
			slog.String("status", "fail"),
			slog.Int64("user_id", telegramID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}

	if !s.PaymentsEnabled() {
		return BeginResult{Kind: BeginGatewayError, Err: errors.New("course: payments disabled")}, nil
	}
	return s.createPayment(ctx, telegramID, email)
}

// CheckPayment polls the gateway for the user's last payment and, on
// success, grants access. The invite link is created through granter;
// if that fails the account is still marked paid.
func (s *Service) CheckPayment(ctx context.Context, telegramID int64, granter InviteGranter) (CheckResult, error) {
	acct := s.loadAccount(ctx, telegramID)

	if acct.PaymentID() == "" {
		return CheckResult{Kind: CheckNoPayment}, nil
	}
	if acct.IsPaid() {
		return CheckResult{Kind: CheckAlreadyPaid, InviteLink: acct.Invite()}, nil
	}

	paymentID := acct.PaymentID()
	statusCtx, cancel := context.WithTimeout(ctx, s.timeouts.Gateway)
	status, err := s.gateway.Status(statusCtx, paymentID)
	cancel()
	if err != nil {
		return CheckResult{Kind: CheckGatewayError, Err: err}, nil
	}

	logger.Info(ctx, "course", "payment.checked",
		slog.String("status", "ok"),
		slog.Int64("user_id", telegramID),
		slog.String("payment_id", paymentID),
		slog.String("payment_status", status),
	)

	switch status {
	case payment.StatusSucceeded:
		return s.grantAccess(ctx, telegramID, paymentID, granter), nil
	case payment.StatusPending, payment.StatusWaitingForCapture:
		return CheckResult{Kind: CheckPending, Status: status}, nil
	case payment.StatusCanceled:
		return CheckResult{Kind: CheckCanceled, Status: status}, nil
	default:
		return CheckResult{Kind: CheckUnknownStatus, Status: status}, nil
	}
}

func (s *Service) grantAccess(ctx context.Context, telegramID int64, paymentID string, granter InviteGranter) CheckResult {
	inviteCtx, cancel := context.WithTimeout(ctx, s.timeouts.Invite)
	link, err := granter.Grant(inviteCtx)
	cancel()

	if err != nil {
		s.markPaid(ctx, telegramID, paymentID, "")
		logger.Error(ctx, "course", "invite.create",
			slog.String("status", "fail"),
			slog.Int64("user_id", telegramID),
			slog.String("payment_id", paymentID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return CheckResult{Kind: CheckPaidInviteFailed, Err: err}
	}

	s.markPaid(ctx, telegramID, paymentID, link)
	logger.Info(ctx, "course", "access.granted",
		slog.String("status", "ok"),
		slog.Int64("user_id", telegramID),
		slog.String("payment_id", paymentID),
	)
	return CheckResult{Kind: CheckPaid, InviteLink: link}
}

func (s *Service) createPayment(ctx context.Context, telegramID int64, email string) (BeginResult, error) {
	createCtx, cancel := context.WithTimeout(ctx, s.timeouts.Gateway)
	res, err := s.gateway.Create(createCtx, payment.CreateRequest{
		TelegramID:    telegramID,
		CustomerEmail: email,
	})
	cancel()
	if err != nil {
		return BeginResult{Kind: BeginGatewayError, Err: err}, nil
	}

	if persistErr := guard.Run(ctx, s.timeouts.DB, func(c context.Context) error {
		return s.accounts.SetLastPayment(c, telegramID, res.PaymentID)
	}); persistErr != nil {
		logger.Warn(ctx, "course", "payment.persist",
			slog.String("status", "fail"),
			slog.Int64("user_id", telegramID),
			slog.String("payment_id", res.PaymentID),
			slog.String("err", logger.SanitizeLimit(persistErr.Error(), 256)),
		)
	}

	logger.Info(ctx, "course", "payment.created",
		slog.String("status", "ok"),
		slog.Int64("user_id", telegramID),
		slog.String("payment_id", res.PaymentID),
	)
	return BeginResult{Kind: BeginPaymentCreated, PayURL: res.ConfirmationURL}, nil
}

// loadAccount reads the account within the DB deadline. Errors and
// timeouts degrade to an unknown user so the flow never hard-fails on
// a read.
func (s *Service) loadAccount(ctx context.Context, telegramID int64) *account.Account {
	acct, err := guard.Call[*account.Account](ctx, s.timeouts.DB, nil, func(c context.Context) (*account.Account, error) {
		return s.accounts.Get(c, telegramID)
	})
	if err != nil {
		logger.Warn(ctx, "course", "account.load",
			slog.String("status", "fail"),
			slog.Int64("user_id", telegramID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return nil
	}
	return acct
}

// markPaid persists granted access within the DB deadline.
func (s *Service) markPaid(ctx context.Context, telegramID int64, paymentID, inviteLink string) {
	if err := guard.Run(ctx, s.timeouts.DB, func(c context.Context) error {
		return s.accounts.MarkPaid(c, telegramID, paymentID, inviteLink)
	}); err != nil {
		logger.Error(ctx, "course", "paid.persist",
			slog.String("status", "fail"),
			slog.Int64("user_id", telegramID),
			slog.String("payment_id", paymentID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}
