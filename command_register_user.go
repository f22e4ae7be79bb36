package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Login      string `json:"login"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	UseHashid  bool
	OnResponse func(user *User)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler runs the registration transaction: uniqueness
// checks, user creation with an issued confirmation code, then delivery.
type RegisterUserHandler struct {
	repo          RepositoryManager
	confirmations *Confirmations
	mailer        MailSender
	activitySink  ActivitySink
	logger        Logger
}

func NewRegisterUserHandler(repo RepositoryManager, confirmations *Confirmations, mailer MailSender) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:          repo,
		confirmations: confirmations,
		mailer:        mailer,
		activitySink:  noopActivitySink{},
		logger:        defLogger{},
	}
}

func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activitySink = normalizeActivitySink(sink)
	return h
}

func (h *RegisterUserHandler) WithLogger(l Logger) *RegisterUserHandler {
	h.logger = l
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Pre-checks keep field-scoped errors; the unique indexes are the
		// backstop when two registrations race past them.
		if _, err := h.repo.Users().GetByLoginOrEmailTx(ctx, tx, event.Login); err == nil {
			return ErrLoginTaken
		} else if !repository.IsRecordNotFound(err) && !goerrors.IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check login uniqueness")
		}

		// The email is checked with the same combined lookup, so an email
		// equal to another user's login also blocks registration.
		if _, err := h.repo.Users().GetByLoginOrEmailTx(ctx, tx, event.Email); err == nil {
			return ErrEmailTaken
		} else if !repository.IsRecordNotFound(err) && !goerrors.IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.Login = event.Login
		user.Email = event.Email
		user.PasswordHash = hash
		h.confirmations.Issue(user)

		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	emitActivity(ctx, h.activitySink, h.logger, ActivityEventUserRegistered, user.ID.String(), map[string]any{
		"login": user.Login,
	})

	// Delivery runs after commit. A failed send is reported, but the user
	// and its code stay persisted; resend is the retry path.
	if err := h.mailer.Send(ctx, user.Email, user.ConfirmationCode, RegistrationEmail); err != nil {
		h.logger.Error("registration email delivery failed", "error", err, "user_id", user.ID.String())
		emitActivity(ctx, h.activitySink, h.logger, ActivityEventDeliveryFailure, user.ID.String(), map[string]any{
			"error": err.Error(),
		})
		return ErrDeliveryFailed
	}

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}
