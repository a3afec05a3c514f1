package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type FinalizePasswordResetMessage struct {
	Token      string `json:"token" doc:"Reset token plaintext from the email link."`
	Password   string `json:"password" doc:"New password."`
	OnResponse func(resp *FinalizePasswordResetResponse)
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

type FinalizePasswordResetResponse struct {
	User    *User
	Success bool
}

// FinalizePasswordResetHandler consumes a reset token and applies the
// new password. The hash swap, the password_changed_at bump, and the
// token destruction happen in one atomic write, so a token can never be
// spent twice and every session issued before this moment goes stale.
type FinalizePasswordResetHandler struct {
	repo   RepositoryManager
	logger Logger
	clock  Clock
}

func NewFinalizePasswordResetHandler(repo RepositoryManager) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		repo:   repo,
		logger: defLogger{},
		clock:  systemClock{},
	}
}

func (h *FinalizePasswordResetHandler) WithLogger(l Logger) *FinalizePasswordResetHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *FinalizePasswordResetHandler) WithClock(clock Clock) *FinalizePasswordResetHandler {
	if clock != nil {
		h.clock = clock
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Token == "" {
		return ErrResetTokenInvalid
	}

	user := &User{}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByResetTokenHashTx(ctx, tx, HashResetToken(event.Token))
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrResetTokenInvalid
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
		}

		now := h.clock.Now()
		if !user.HasActiveResetToken(now) {
			return ErrResetTokenInvalid
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		if err := h.repo.Users().ResetPasswordTx(ctx, tx, user.ID, hash, now); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to apply new password")
		}

		user.PasswordHash = hash
		user.PasswordChangedAt = &now
		user.ResetTokenHash = nil
		user.ResetTokenExpiresAt = nil

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	if event.OnResponse != nil {
		event.OnResponse(&FinalizePasswordResetResponse{
			User:    user,
			Success: true,
		})
	}

	return nil
}
