package accounts

import (
	"fmt"
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// APIFieldError is one field-scoped message in the error envelope.
type APIFieldError struct {
	Message string `json:"message"`
	Field   string `json:"field"`
}

// APIErrorResult is the uniform failure envelope for every endpoint.
type APIErrorResult struct {
	ErrorsMessages []APIFieldError `json:"errorsMessages"`
}

// LoginResponse carries the minted session token.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

// MeResponse describes the authenticated identity.
type MeResponse struct {
	Email  string `json:"email"`
	Login  string `json:"login"`
	UserID string `json:"userId"`
}

type AuthControllerRoutes struct {
	Login        string
	Me           string
	Registration string
	Confirmation string
	Resending    string
}

// AuthController is the HTTP facade over login, registration,
// confirmation, and resend.
type AuthController struct {
	Debug    bool
	Logger   Logger
	Auther   Authenticator
	Register *RegisterUserHandler
	Confirm  *ConfirmRegistrationHandler
	Resend   *ResendConfirmationHandler
	Routes   *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:        "/auth/login",
			Me:           "/auth/me",
			Registration: "/auth/registration",
			Confirmation: "/auth/registration-confirmation",
			Resending:    "/auth/registration-email-resending",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Register == nil || c.Confirm == nil || c.Resend == nil {
		panic("Missing command handlers in auth controller...")
	}

	return c
}

func WithAuthControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = l
		return c
	}
}

func WithAuthenticator(a Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = a
		return c
	}
}

func WithHandlers(register *RegisterUserHandler, confirm *ConfirmRegistrationHandler, resend *ResendConfirmationHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Register = register
		c.Confirm = confirm
		c.Resend = resend
		return c
	}
}

func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login.post")

	app.Get(controller.Routes.Me, controller.MeShow).
		SetName("auth.me.get")

	app.Post(controller.Routes.Registration, controller.RegistrationCreate).
		SetName("auth.registration.post")

	app.Post(controller.Routes.Confirmation, controller.RegistrationConfirm).
		SetName("auth.registration-confirmation.post")

	app.Post(controller.Routes.Resending, controller.RegistrationEmailResend).
		SetName("auth.registration-email-resending.post")
}

// LoginRequest payload
type LoginRequest struct {
	LoginOrEmail string `form:"loginOrEmail" json:"loginOrEmail"`
	Password     string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.LoginOrEmail, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, envelopeFromValidation(err))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, envelopeFromValidation(err))
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	token, err := a.Auther.Login(ctx.Context(), payload.LoginOrEmail, payload.Password)
	if err != nil {
		// Unknown identifier and wrong password present identically so
		// the endpoint never reveals which identifiers exist.
		return ctx.JSON(fiber.StatusUnauthorized, APIErrorResult{
			ErrorsMessages: []APIFieldError{
				{Message: "Wrong credentials", Field: "loginOrEmail"},
			},
		})
	}

	return ctx.JSON(fiber.StatusOK, LoginResponse{AccessToken: token})
}

func (a *AuthController) MeShow(ctx router.Context) error {
	session, err := SessionFromBearer(ctx, a.Auther)
	if err != nil {
		return ctx.JSON(fiber.StatusUnauthorized, APIErrorResult{
			ErrorsMessages: []APIFieldError{
				{Message: "Unauthorized", Field: "authorization"},
			},
		})
	}

	identity, err := a.Auther.IdentityFromSession(ctx.Context(), session)
	if err != nil {
		return ctx.JSON(fiber.StatusUnauthorized, APIErrorResult{
			ErrorsMessages: []APIFieldError{
				{Message: "Unauthorized", Field: "authorization"},
			},
		})
	}

	return ctx.JSON(fiber.StatusOK, MeResponse{
		Email:  identity.Email(),
		Login:  identity.Username(),
		UserID: identity.ID(),
	})
}

var loginPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]*$`)

// RegistrationCreatePayload is the registration body.
type RegistrationCreatePayload struct {
	Login    string `form:"login" json:"login"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login,
			validation.Required,
			validation.Length(3, 10),
			validation.Match(loginPattern),
		),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 20)),
	)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register user parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, envelopeFromValidation(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, envelopeFromValidation(err))
	}

	req := RegisterUserMessage{
		Login:    payload.Login,
		Email:    payload.Email,
		Password: payload.Password,
	}

	if err := a.Register.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register user error", "error", err)
		return a.renderBusinessError(ctx, err)
	}

	return ctx.NoContent(fiber.StatusNoContent)
}

// ConfirmationPayload carries the emailed code.
type ConfirmationPayload struct {
	Code string `form:"code" json:"code"`
}

// Validate will validate the payload
func (r ConfirmationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required),
	)
}

func (a *AuthController) RegistrationConfirm(ctx router.Context) error {
	payload := new(ConfirmationPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("confirm registration parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, envelopeFromValidation(err))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, envelopeFromValidation(err))
	}

	if err := a.Confirm.Execute(ctx.Context(), ConfirmRegistrationMessage{Code: payload.Code}); err != nil {
		a.Logger.Error("confirm registration error", "error", err)
		return a.renderBusinessError(ctx, err)
	}

	return ctx.NoContent(fiber.StatusNoContent)
}

// ResendPayload asks for a fresh code for an unconfirmed account.
type ResendPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r ResendPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) RegistrationEmailResend(ctx router.Context) error {
	payload := new(ResendPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("resend confirmation parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, envelopeFromValidation(err))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, envelopeFromValidation(err))
	}

	if err := a.Resend.Execute(ctx.Context(), ResendConfirmationMessage{Email: payload.Email}); err != nil {
		a.Logger.Error("resend confirmation error", "error", err)
		return a.renderBusinessError(ctx, err)
	}

	return ctx.NoContent(fiber.StatusNoContent)
}

// renderBusinessError maps taxonomy kinds to the envelope. Everything the
// core names is a 400 with a field-scoped message; anything else is a
// genuine infrastructure failure.
func (a *AuthController) renderBusinessError(ctx router.Context, err error) error {
	field := FieldFromError(err)

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return err
	}

	switch rich.TextCode {
	case TextCodeLoginTaken, TextCodeEmailTaken, TextCodeCodeNotFound,
		TextCodeCodeExpiredOrUsed, TextCodeAlreadyConfirmed, TextCodeIdentityNotFound:
		return ctx.JSON(fiber.StatusBadRequest, APIErrorResult{
			ErrorsMessages: []APIFieldError{
				{Message: rich.Message, Field: field},
			},
		})
	case TextCodeDeliveryFailed:
		return ctx.JSON(fiber.StatusBadRequest, APIErrorResult{
			ErrorsMessages: []APIFieldError{
				{Message: rich.Message, Field: "Internal error"},
			},
		})
	}

	return err
}

// envelopeFromValidation flattens ozzo's field->error map into the
// envelope, sorted by field for stable output.
func envelopeFromValidation(err error) APIErrorResult {
	result := APIErrorResult{}

	if verrs, ok := err.(validation.Errors); ok {
		fields := make([]string, 0, len(verrs))
		for field := range verrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			result.ErrorsMessages = append(result.ErrorsMessages, APIFieldError{
				Message: verrs[field].Error(),
				Field:   field,
			})
		}

		return result
	}

	result.ErrorsMessages = append(result.ErrorsMessages, APIFieldError{
		Message: err.Error(),
		Field:   "body",
	})

	return result
}
