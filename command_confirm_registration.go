package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ConfirmRegistrationMessage struct {
	Code string `json:"code"`
}

func (e ConfirmRegistrationMessage) Type() string { return "user.confirm_registration" }

// ConfirmRegistrationHandler consumes a confirmation code. No token is
// issued as a side effect; the user logs in separately.
type ConfirmRegistrationHandler struct {
	confirmations *Confirmations
	activitySink  ActivitySink
	logger        Logger
}

func NewConfirmRegistrationHandler(confirmations *Confirmations) *ConfirmRegistrationHandler {
	return &ConfirmRegistrationHandler{
		confirmations: confirmations,
		activitySink:  noopActivitySink{},
		logger:        defLogger{},
	}
}

func (h *ConfirmRegistrationHandler) WithActivitySink(sink ActivitySink) *ConfirmRegistrationHandler {
	h.activitySink = normalizeActivitySink(sink)
	return h
}

func (h *ConfirmRegistrationHandler) WithLogger(l Logger) *ConfirmRegistrationHandler {
	h.logger = l
	return h
}

func (h *ConfirmRegistrationHandler) Execute(ctx context.Context, event ConfirmRegistrationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during registration confirmation")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmRegistrationHandler) execute(ctx context.Context, event ConfirmRegistrationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.confirmations.Confirm(ctx, event.Code)
	if err != nil {
		return err
	}

	emitActivity(ctx, h.activitySink, h.logger, ActivityEventEmailConfirmed, user.ID.String(), map[string]any{
		"code": event.Code,
	})

	return nil
}
