package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type VerifyPasswordResetMessage struct {
	Token      string `json:"token" doc:"Reset token plaintext from the email link."`
	OnResponse func(resp *VerifyPasswordResetResponse)
}

func (p VerifyPasswordResetMessage) Type() string { return "user.password_reset_verify" }

type VerifyPasswordResetResponse struct {
	Valid bool
	Email string
}

// VerifyPasswordResetHandler checks a reset token without consuming
// it, so the UI can show the reset form only for live tokens. Unknown
// and expired tokens produce the same error.
type VerifyPasswordResetHandler struct {
	repo   RepositoryManager
	logger Logger
	clock  Clock
}

func NewVerifyPasswordResetHandler(repo RepositoryManager) *VerifyPasswordResetHandler {
	return &VerifyPasswordResetHandler{
		repo:   repo,
		logger: defLogger{},
		clock:  systemClock{},
	}
}

func (h *VerifyPasswordResetHandler) WithLogger(l Logger) *VerifyPasswordResetHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *VerifyPasswordResetHandler) WithClock(clock Clock) *VerifyPasswordResetHandler {
	if clock != nil {
		h.clock = clock
	}
	return h
}

func (h *VerifyPasswordResetHandler) Execute(ctx context.Context, event VerifyPasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyPasswordResetHandler) execute(ctx context.Context, event VerifyPasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Token == "" {
		return ErrResetTokenInvalid
	}

	user, err := h.repo.Users().GetByResetTokenHash(ctx, HashResetToken(event.Token))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrResetTokenInvalid
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	if !user.HasActiveResetToken(h.clock.Now()) {
		return ErrResetTokenInvalid
	}

	if event.OnResponse != nil {
		event.OnResponse(&VerifyPasswordResetResponse{
			Valid: true,
			Email: user.Email,
		})
	}

	return nil
}
