package queue

import (
	"context"
	"fmt"

	"github.com/loayeid/shophub/internal/logging"
	"github.com/loayeid/shophub/internal/usecase"
)

// ReconcileAlertHandler surfaces charged-but-unrecorded payments to operators.
// It is the consumer side of the reconcile queue: loud log line plus a mail to
// the support inbox so a human settles the charge against the gateway.
type ReconcileAlertHandler struct {
	mail        usecase.MailSender
	supportAddr string
}

func NewReconcileAlertHandler(mail usecase.MailSender, supportAddr string) *ReconcileAlertHandler {
	return &ReconcileAlertHandler{mail: mail, supportAddr: supportAddr}
}

// HandleAlert is intended to be used with queue.JSONHandler[usecase.ReconcileAlertMsg].
func (h *ReconcileAlertHandler) HandleAlert(ctx context.Context, msg usecase.ReconcileAlertMsg) error {
	logging.FromCtx(ctx).Error("payment charged but order not recorded, manual reconcile needed",
		"intent_id", msg.IntentID,
		"settlement_ref", msg.SettlementRef,
		"user_id", msg.UserID,
		"user_email", msg.UserEmail,
		"amount_minor_units", msg.AmountMinorUnits,
		"currency", msg.Currency,
		"reason", msg.Reason,
		"at", msg.At,
	)

	subject := fmt.Sprintf("Reconcile needed: payment %s has no order", msg.IntentID)
	body := fmt.Sprintf(
		"A payment was captured but the order could not be recorded.\n\n"+
			"Intent:     %s\n"+
			"Settlement: %s\n"+
			"Customer:   %s (%s)\n"+
			"Amount:     %d %s\n"+
			"Reason:     %s\n"+
			"At:         %s\n",
		msg.IntentID, msg.SettlementRef, msg.UserID, msg.UserEmail,
		msg.AmountMinorUnits, msg.Currency, msg.Reason, msg.At,
	)
	return h.mail.Send(ctx, h.supportAddr, subject, body)
}
