package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type UpdatePasswordMessage struct {
	Identifier      string `json:"identifier" doc:"User id, email, or username."`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	OnResponse      func(resp *UpdatePasswordResponse)
}

func (p UpdatePasswordMessage) Type() string { return "user.update_password" }

type UpdatePasswordResponse struct {
	User    *User
	Success bool
}

// UpdatePasswordHandler changes the password of a logged in account.
// It requires the current password and advances password_changed_at so
// sessions issued before the change stop passing the guard.
type UpdatePasswordHandler struct {
	repo   RepositoryManager
	logger Logger
	clock  Clock
}

func NewUpdatePasswordHandler(repo RepositoryManager) *UpdatePasswordHandler {
	return &UpdatePasswordHandler{
		repo:   repo,
		logger: defLogger{},
		clock:  systemClock{},
	}
}

func (h *UpdatePasswordHandler) WithLogger(l Logger) *UpdatePasswordHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *UpdatePasswordHandler) WithClock(clock Clock) *UpdatePasswordHandler {
	if clock != nil {
		h.clock = clock
	}
	return h
}

func (h *UpdatePasswordHandler) Execute(ctx context.Context, event UpdatePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdatePasswordHandler) execute(ctx context.Context, event UpdatePasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Identifier == "" || event.CurrentPassword == "" {
		return ErrMissingCredentials
	}

	user := &User{}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByIdentifierTx(ctx, tx, event.Identifier)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrIdentityNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password update")
		}

		if err := ComparePasswordAndHash(event.CurrentPassword, user.PasswordHash); err != nil {
			return ErrMismatchedHashAndPassword
		}

		hash, err := HashPassword(event.NewPassword)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		now := h.clock.Now()
		if err := h.repo.Users().ResetPasswordTx(ctx, tx, user.ID, hash, now); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to apply new password")
		}

		user.PasswordHash = hash
		user.PasswordChangedAt = &now

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
	}

	if event.OnResponse != nil {
		event.OnResponse(&UpdatePasswordResponse{
			User:    user,
			Success: true,
		})
	}

	return nil
}
