package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ResendConfirmationMessage struct {
	Email      string `json:"email"`
	OnResponse func(confirmation Confirmation)
}

func (e ResendConfirmationMessage) Type() string { return "user.resend_confirmation" }

// ResendConfirmationHandler rotates the confirmation code for an
// unconfirmed account and delivers the fresh one. The previous code is
// already dead by the time mail goes out, so a failed send still leaves
// the new code live for a later resend.
type ResendConfirmationHandler struct {
	confirmations *Confirmations
	mailer        MailSender
	activitySink  ActivitySink
	logger        Logger
}

func NewResendConfirmationHandler(confirmations *Confirmations, mailer MailSender) *ResendConfirmationHandler {
	return &ResendConfirmationHandler{
		confirmations: confirmations,
		mailer:        mailer,
		activitySink:  noopActivitySink{},
		logger:        defLogger{},
	}
}

func (h *ResendConfirmationHandler) WithActivitySink(sink ActivitySink) *ResendConfirmationHandler {
	h.activitySink = normalizeActivitySink(sink)
	return h
}

func (h *ResendConfirmationHandler) WithLogger(l Logger) *ResendConfirmationHandler {
	h.logger = l
	return h
}

func (h *ResendConfirmationHandler) Execute(ctx context.Context, event ResendConfirmationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during confirmation resend")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendConfirmationHandler) execute(ctx context.Context, event ResendConfirmationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.confirmations.Renew(ctx, event.Email)
	if err != nil {
		return err
	}

	emitActivity(ctx, h.activitySink, h.logger, ActivityEventConfirmationResent, user.ID.String(), map[string]any{
		"email": user.Email,
	})

	if err := h.mailer.Send(ctx, user.Email, user.ConfirmationCode, RegistrationEmail); err != nil {
		h.logger.Error("confirmation resend delivery failed", "error", err, "user_id", user.ID.String())
		emitActivity(ctx, h.activitySink, h.logger, ActivityEventDeliveryFailure, user.ID.String(), map[string]any{
			"error": err.Error(),
		})
		return ErrDeliveryFailed
	}

	if event.OnResponse != nil {
		event.OnResponse(user.Confirmation())
	}

	return nil
}
