package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

// InitializePasswordResetResponse reports the outcome to the caller.
// TokenIssued is false when the email did not match an account, but the
// handler still returns nil so the HTTP layer answers the same way in
// both cases.
type InitializePasswordResetResponse struct {
	TokenIssued bool
	ExpiresAt   time.Time
	Success     bool
}

// InitializePasswordResetHandler starts a password reset: it mints a
// one time token, stores its digest with an expiry on the account row,
// and emails the plaintext. Issuing a new token overwrites any earlier
// one.
type InitializePasswordResetHandler struct {
	repo          RepositoryManager
	notifier      Notifier
	logger        Logger
	clock         Clock
	baseURL       string
	tokenDuration time.Duration
}

func NewInitializePasswordResetHandler(repo RepositoryManager, opts Config) *InitializePasswordResetHandler {
	duration := opts.GetResetTokenDuration()
	if duration <= 0 {
		duration, _ = time.ParseDuration(DefaultResetTokenDuration)
	}

	return &InitializePasswordResetHandler{
		repo:          repo,
		notifier:      noopNotifier{},
		logger:        defLogger{},
		clock:         systemClock{},
		baseURL:       opts.GetBaseURL(),
		tokenDuration: duration,
	}
}

func (h *InitializePasswordResetHandler) WithNotifier(n Notifier) *InitializePasswordResetHandler {
	h.notifier = normalizeNotifier(n)
	return h
}

func (h *InitializePasswordResetHandler) WithLogger(l Logger) *InitializePasswordResetHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *InitializePasswordResetHandler) WithClock(clock Clock) *InitializePasswordResetHandler {
	if clock != nil {
		h.clock = clock
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := strings.TrimSpace(event.Email)
	if email == "" {
		return ErrMissingCredentials
	}

	var user *User
	var plaintext string

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByIdentifierTx(ctx, tx, email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				// do not reveal whether the email exists
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
		}

		var digest string
		plaintext, digest, err = NewResetToken()
		if err != nil {
			return err
		}

		expiresAt := h.clock.Now().Add(h.tokenDuration)
		if err := h.repo.Users().SetResetTokenTx(ctx, tx, user.ID, digest, expiresAt); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
		}

		resp.TokenIssued = true
		resp.ExpiresAt = expiresAt

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	if resp.TokenIssued {
		resetURL := fmt.Sprintf("%s/password-reset/%s", strings.TrimSuffix(h.baseURL, "/"), plaintext)
		if err := h.notifier.SendPasswordReset(ctx, user, resetURL); err != nil {
			h.logger.Error("failed to send password reset email", "error", err, "email", email)

			// the stored token is useless if the email never made it
			if err2 := h.repo.Users().ClearResetToken(ctx, user.ID); err2 != nil {
				h.logger.Error("failed to clear orphaned reset token", "error", err2, "user_id", user.ID.String())
			}

			return ErrNotificationDelivery
		}
	}

	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
