package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/aisistems/coursebot/core/telegram/helpers"
	"github.com/aisistems/coursebot/internal/access"
	"github.com/aisistems/coursebot/internal/course"
)

// Pay handles the pay button: short-circuits paid users, asks for an
// email when none is stored, otherwise creates a payment link.
func (h *Handlers) Pay(c tele.Context) error {
	if !h.svc.PaymentsEnabled() {
		return editInPlace(c, paymentsDisabledCaption, backMenu())
	}

	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	res, err := h.svc.BeginPayment(ctx, userID)
	if err != nil {
		return err
	}

	switch res.Kind {
	case course.BeginAlreadyPaid:
		return editInPlace(c, alreadyPaidCaption(res.InviteLink), backMenu())
	case course.BeginNeedEmail:
		h.fsm.SetState(userID, StateAwaitingEmail)
		return editInPlace(c, needEmailCaption, backMenu())
	case course.BeginGatewayError:
		return editInPlace(c, createPaymentFailedCaption(res.Err), backMenu())
	default:
		return editInPlace(c, payInstructions, payMenu(res.PayURL))
	}
}

// Check handles the check button: polls the gateway for the last
// payment and reports the result, granting access on success.
func (h *Handlers) Check(c tele.Context) error {
	if !h.svc.PaymentsEnabled() {
		return editInPlace(c, paymentsDisabledCaption, backMenu())
	}

	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	granter := access.NewGranter(c.Bot(), h.opts.GroupChatID)

	res, err := h.svc.CheckPayment(ctx, userID, granter)
	if err != nil {
		return err
	}

	switch res.Kind {
	case course.CheckNoPayment:
		return editInPlace(c, noPaymentYetCaption, backMenu())
	case course.CheckAlreadyPaid:
		return editInPlace(c, accessOpenCaption(res.InviteLink), backMenu())
	case course.CheckPaid:
		return editInPlace(c, paidCaption(res.InviteLink), mainMenu(h.isAdmin(c)))
	case course.CheckPaidInviteFailed:
		return editInPlace(c, paidInviteFailedCaption(res.Err), backMenu())
	case course.CheckPending:
		return editInPlace(c, paymentPendingCaption, checkMenu())
	case course.CheckCanceled:
		return editInPlace(c, paymentCanceledCaption, mainMenu(h.isAdmin(c)))
	case course.CheckGatewayError:
		return editInPlace(c, checkPaymentFailedCaption(res.Err), checkMenu())
	default:
		return editInPlace(c, unknownStatusCaption(res.Status), backMenu())
	}
}

// OnEmail consumes the message sent while the bot awaits a receipt
// email. A valid address immediately continues into payment creation.
func (h *Handlers) OnEmail(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	res, err := h.svc.SubmitEmail(ctx, userID, c.Text())
	if err != nil {
		// Invalid input keeps the state so the user can retry.
		return tghelpers.SendText(c, badEmailText)
	}

	h.fsm.ClearState(userID)

	switch res.Kind {
	case course.BeginGatewayError:
		if !h.svc.PaymentsEnabled() {
			return tghelpers.SendHTML(c, paymentsDisabledCaption)
		}
		return tghelpers.SendHTML(c, createPaymentFailedCaption(res.Err))
	default:
		return tghelpers.SendHTML(c, payInstructions, payMenu(res.PayURL))
	}
}
