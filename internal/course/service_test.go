package course

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisistems/coursebot/internal/account"
	"github.com/aisistems/coursebot/internal/payment"
)

type fakeAccounts struct {
	acct *account.Account

	startedID    int64
	startedName  string
	email        string
	lastPayment  string
	markedPaidID string
	markedLink   string
	getErr       error
}

func (f *fakeAccounts) UpsertStarted(_ context.Context, id int64, username string) error {
	f.startedID = id
	f.startedName = username
	return nil
}

func (f *fakeAccounts) SetCustomerEmail(_ context.Context, _ int64, email string) error {
	f.email = email
	return nil
}

func (f *fakeAccounts) SetLastPayment(_ context.Context, _ int64, paymentID string) error {
	f.lastPayment = paymentID
	return nil
}

func (f *fakeAccounts) MarkPaid(_ context.Context, _ int64, paymentID, inviteLink string) error {
	f.markedPaidID = paymentID
	f.markedLink = inviteLink
	return nil
}

func (f *fakeAccounts) Get(_ context.Context, _ int64) (*account.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.acct, nil
}

type fakeGateway struct {
	createRes  payment.CreateResult
	createErr  error
	createReqs []payment.CreateRequest
	status     string
	statusErr  error
	statusReqs []string
}

func (f *fakeGateway) Create(_ context.Context, req payment.CreateRequest) (payment.CreateResult, error) {
	f.createReqs = append(f.createReqs, req)
	return f.createRes, f.createErr
}

func (f *fakeGateway) Status(_ context.Context, paymentID string) (string, error) {
	f.statusReqs = append(f.statusReqs, paymentID)
	return f.status, f.statusErr
}

type fakeGranter struct {
	link  string
	err   error
	calls int
}

func (f *fakeGranter) Grant(_ context.Context) (string, error) {
	f.calls++
	return f.link, f.err
}

func paidAccount(invite string) *account.Account {
	acct := &account.Account{TelegramID: 7, Paid: true}
	if invite != "" {
		acct.InviteLink.String = invite
		acct.InviteLink.Valid = true
	}
	acct.LastPaymentID.String = "pay-old"
	acct.LastPaymentID.Valid = true
	return acct
}

func newService(acc *fakeAccounts, gw Gateway) *Service {
	return NewService(acc, gw, Timeouts{DB: time.Second, Gateway: time.Second, Invite: time.Second})
}

func TestBeginPaymentAlreadyPaidSkipsGateway(t *testing.T) {
	acc := &fakeAccounts{acct: paidAccount("https://t.me/+abc")}
	gw := &fakeGateway{}
	svc := newService(acc, gw)

	res, err := svc.BeginPayment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, BeginAlreadyPaid, res.Kind)
	assert.Equal(t, "https://t.me/+abc", res.InviteLink)
	assert.Empty(t, gw.createReqs)
}

func TestBeginPaymentNeedsEmailFirst(t *testing.T) {
	acc := &fakeAccounts{acct: &account.Account{TelegramID: 7}}
	svc := newService(acc, &fakeGateway{})

	res, err := svc.BeginPayment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, BeginNeedEmail, res.Kind)
}

func TestBeginPaymentUnknownUserNeedsEmail(t *testing.T) {
	svc := newService(&fakeAccounts{}, &fakeGateway{})

	res, err := svc.BeginPayment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, BeginNeedEmail, res.Kind)
}

func TestBeginPaymentCreatesPayment(t *testing.T) {
	acct := &account.Account{TelegramID: 7}
	acct.CustomerEmail.String = "name@gmail.com"
	acct.CustomerEmail.Valid = true

	acc := &fakeAccounts{acct: acct}
	gw := &fakeGateway{createRes: payment.CreateResult{PaymentID: "pay-1", ConfirmationURL: "https://pay.example/1"}}
	svc := newService(acc, gw)

	res, err := svc.BeginPayment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, BeginPaymentCreated, res.Kind)
	assert.Equal(t, "https://pay.example/1", res.PayURL)
	assert.Equal(t, "pay-1", acc.lastPayment)

	require.Len(t, gw.createReqs, 1)
	assert.Equal(t, int64(7), gw.createReqs[0].TelegramID)
	assert.Equal(t, "name@gmail.com", gw.createReqs[0].CustomerEmail)
}

func TestBeginPaymentGatewayError(t *testing.T) {
	acct := &account.Account{TelegramID: 7}
	acct.CustomerEmail.String = "name@gmail.com"
	acct.CustomerEmail.Valid = true

	gw := &fakeGateway{createErr: errors.New("gateway down")}
	svc := newService(&fakeAccounts{acct: acct}, gw)

	res, err := svc.BeginPayment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, BeginGatewayError, res.Kind)
	assert.Error(t, res.Err)
}

func TestSubmitEmailRejectsBadInput(t *testing.T) {
	svc := newService(&fakeAccounts{}, &fakeGateway{})

	for _, bad := range []string{"", "plain", "no at.dot", "a@b", "a b@c.d", "@c.d"} {
		_, err := svc.SubmitEmail(context.Background(), 7, bad)
		assert.ErrorIs(t, err, ErrInvalidEmail, "input %q", bad)
	}
}

func TestSubmitEmailStoresAndCreatesPayment(t *testing.T) {
	acc := &fakeAccounts{}
	gw := &fakeGateway{createRes: payment.CreateResult{PaymentID: "pay-2", ConfirmationURL: "https://pay.example/2"}}
	svc := newService(acc, gw)

	res, err := svc.SubmitEmail(context.Background(), 7, "  name@gmail.com ")
	require.NoError(t, err)
	assert.Equal(t, BeginPaymentCreated, res.Kind)
	assert.Equal(t, "name@gmail.com", acc.email)
	assert.Equal(t, "pay-2", acc.lastPayment)
}

func TestCheckPaymentNoPayment(t *testing.T) {
	svc := newService(&fakeAccounts{acct: &account.Account{TelegramID: 7}}, &fakeGateway{})

	res, err := svc.CheckPayment(context.Background(), 7, &fakeGranter{})
	require.NoError(t, err)
	assert.Equal(t, CheckNoPayment, res.Kind)
}

func TestCheckPaymentAlreadyPaid(t *testing.T) {
	gw := &fakeGateway{}
	svc := newService(&fakeAccounts{acct: paidAccount("https://t.me/+abc")}, gw)

	res, err := svc.CheckPayment(context.Background(), 7, &fakeGranter{})
	require.NoError(t, err)
	assert.Equal(t, CheckAlreadyPaid, res.Kind)
	assert.Equal(t, "https://t.me/+abc", res.InviteLink)
	assert.Empty(t, gw.statusReqs)
}

func pendingAccount() *account.Account {
	acct := &account.Account{TelegramID: 7}
	acct.LastPaymentID.String = "pay-3"
	acct.LastPaymentID.Valid = true
	return acct
}

func TestCheckPaymentSucceededGrantsInvite(t *testing.T) {
	acc := &fakeAccounts{acct: pendingAccount()}
	gw := &fakeGateway{status: payment.StatusSucceeded}
	granter := &fakeGranter{link: "https://t.me/+new"}
	svc := newService(acc, gw)

	res, err := svc.CheckPayment(context.Background(), 7, granter)
	require.NoError(t, err)
	assert.Equal(t, CheckPaid, res.Kind)
	assert.Equal(t, "https://t.me/+new", res.InviteLink)
	assert.Equal(t, 1, granter.calls)
	assert.Equal(t, "pay-3", acc.markedPaidID)
	assert.Equal(t, "https://t.me/+new", acc.markedLink)
}

func TestCheckPaymentInviteFailureStillMarksPaid(t *testing.T) {
	acc := &fakeAccounts{acct: pendingAccount()}
	gw := &fakeGateway{status: payment.StatusSucceeded}
	granter := &fakeGranter{err: errors.New("chat not found")}
	svc := newService(acc, gw)

	res, err := svc.CheckPayment(context.Background(), 7, granter)
	require.NoError(t, err)
	assert.Equal(t, CheckPaidInviteFailed, res.Kind)
	assert.Error(t, res.Err)
	assert.Equal(t, "pay-3", acc.markedPaidID)
	assert.Equal(t, "", acc.markedLink)
}

func TestCheckPaymentPendingStatuses(t *testing.T) {
	for _, status := range []string{payment.StatusPending, payment.StatusWaitingForCapture} {
		svc := newService(&fakeAccounts{acct: pendingAccount()}, &fakeGateway{status: status})

		res, err := svc.CheckPayment(context.Background(), 7, &fakeGranter{})
		require.NoError(t, err)
		assert.Equal(t, CheckPending, res.Kind, "status %q", status)
	}
}

func TestCheckPaymentCanceled(t *testing.T) {
	svc := newService(&fakeAccounts{acct: pendingAccount()}, &fakeGateway{status: payment.StatusCanceled})

	res, err := svc.CheckPayment(context.Background(), 7, &fakeGranter{})
	require.NoError(t, err)
	assert.Equal(t, CheckCanceled, res.Kind)
}

func TestCheckPaymentUnknownStatus(t *testing.T) {
	svc := newService(&fakeAccounts{acct: pendingAccount()}, &fakeGateway{status: "refund_pending"})

	res, err := svc.CheckPayment(context.Background(), 7, &fakeGranter{})
	require.NoError(t, err)
	assert.Equal(t, CheckUnknownStatus, res.Kind)
	assert.Equal(t, "refund_pending", res.Status)
}

func TestCheckPaymentGatewayError(t *testing.T) {
	svc := newService(&fakeAccounts{acct: pendingAccount()}, &fakeGateway{statusErr: errors.New("timeout")})

	res, err := svc.CheckPayment(context.Background(), 7, &fakeGranter{})
	require.NoError(t, err)
	assert.Equal(t, CheckGatewayError, res.Kind)
	assert.Error(t, res.Err)
}

func TestLoadAccountDegradesOnError(t *testing.T) {
	acc := &fakeAccounts{getErr: errors.New("db down")}
	svc := newService(acc, &fakeGateway{})

	res, err := svc.BeginPayment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, BeginNeedEmail, res.Kind)
}

func TestStartRecordsUser(t *testing.T) {
	acc := &fakeAccounts{}
	svc := newService(acc, nil)

	svc.Start(context.Background(), 7, "alice")
	assert.Equal(t, int64(7), acc.startedID)
	assert.Equal(t, "alice", acc.startedName)
}
