package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	auth "github.com/soundclip/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func resetAccount(digest string, expiresAt time.Time) *auth.User {
	return &auth.User{
		ID:                  uuid.New(),
		Role:                auth.RoleUser,
		Email:               "pepe.rone@example.com",
		PasswordHash:        "$2a$14$oldhash",
		ResetTokenHash:      &digest,
		ResetTokenExpiresAt: &expiresAt,
	}
}

func TestFinalizePasswordResetHandler(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	plaintext, digest, err := auth.NewResetToken()
	require.NoError(t, err)

	t.Run("consumes a live token and applies the password", func(t *testing.T) {
		users := &MockUsers{}
		repo := &fakeRepoManager{users: users}
		account := resetAccount(digest, now.Add(5*time.Minute))

		var appliedHash string

		users.On("GetByResetTokenHashTx", mock.Anything, mock.Anything, digest).
			Return(account, nil).Once()
		users.On("ResetPasswordTx", mock.Anything, mock.Anything, account.ID, mock.Anything, now).
			Run(func(args mock.Arguments) {
				appliedHash = args.Get(3).(string)
			}).
			Return(nil).Once()

		var resp *auth.FinalizePasswordResetResponse

		handler := auth.NewFinalizePasswordResetHandler(repo).
			WithLogger(testLogger{}).
			WithClock(auth.FixedClock(now))

		err := handler.Execute(ctx, auth.FinalizePasswordResetMessage{
			Token:    plaintext,
			Password: "brand-new-password",
			OnResponse: func(r *auth.FinalizePasswordResetResponse) {
				resp = r
			},
		})
		require.NoError(t, err)

		require.NotNil(t, resp)
		assert.True(t, resp.Success)
		require.NotNil(t, resp.User)
		assert.Nil(t, resp.User.ResetTokenHash)
		assert.Nil(t, resp.User.ResetTokenExpiresAt)
		require.NotNil(t, resp.User.PasswordChangedAt)
		assert.Equal(t, now, *resp.User.PasswordChangedAt)

		// the stored hash is bcrypt of the new password, never plaintext
		assert.True(t, auth.PasswordMatches("brand-new-password", appliedHash))

		users.AssertExpectations(t)
	})

	t.Run("unknown token", func(t *testing.T) {
		users := &MockUsers{}
		repo := &fakeRepoManager{users: users}

		users.On("GetByResetTokenHashTx", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, repository.NewRecordNotFound()).Once()

		handler := auth.NewFinalizePasswordResetHandler(repo).WithClock(auth.FixedClock(now))

		err := handler.Execute(ctx, auth.FinalizePasswordResetMessage{
			Token:    "deadbeef",
			Password: "brand-new-password",
		})
		assert.ErrorIs(t, err, auth.ErrResetTokenInvalid)
	})

	t.Run("expired token is indistinguishable from unknown", func(t *testing.T) {
		users := &MockUsers{}
		repo := &fakeRepoManager{users: users}
		account := resetAccount(digest, now.Add(-time.Minute))

		users.On("GetByResetTokenHashTx", mock.Anything, mock.Anything, digest).
			Return(account, nil).Once()

		handler := auth.NewFinalizePasswordResetHandler(repo).WithClock(auth.FixedClock(now))

		err := handler.Execute(ctx, auth.FinalizePasswordResetMessage{
			Token:    plaintext,
			Password: "brand-new-password",
		})
		assert.ErrorIs(t, err, auth.ErrResetTokenInvalid)

		users.AssertNotCalled(t, "ResetPasswordTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("a consumed token cannot be spent twice", func(t *testing.T) {
		users := &MockUsers{}
		repo := &fakeRepoManager{users: users}
		account := resetAccount(digest, now.Add(5*time.Minute))

		users.On("GetByResetTokenHashTx", mock.Anything, mock.Anything, digest).
			Return(account, nil).Once()
		users.On("ResetPasswordTx", mock.Anything, mock.Anything, account.ID, mock.Anything, now).
			Return(nil).Once()
		// second lookup finds nothing, the digest was cleared
		users.On("GetByResetTokenHashTx", mock.Anything, mock.Anything, digest).
			Return(nil, repository.NewRecordNotFound()).Once()

		handler := auth.NewFinalizePasswordResetHandler(repo).WithClock(auth.FixedClock(now))

		msg := auth.FinalizePasswordResetMessage{Token: plaintext, Password: "brand-new-password"}

		require.NoError(t, handler.Execute(ctx, msg))
		assert.ErrorIs(t, handler.Execute(ctx, msg), auth.ErrResetTokenInvalid)
	})

	t.Run("empty token", func(t *testing.T) {
		handler := auth.NewFinalizePasswordResetHandler(&fakeRepoManager{users: &MockUsers{}})

		err := handler.Execute(ctx, auth.FinalizePasswordResetMessage{Password: "brand-new-password"})
		assert.ErrorIs(t, err, auth.ErrResetTokenInvalid)
	})

	t.Run("runs inside a transaction", func(t *testing.T) {
		users := &MockUsers{}
		repo := &MockRepositoryManager{}
		account := resetAccount(digest, now.Add(5*time.Minute))

		repo.On("Users").Return(users)
		users.On("GetByResetTokenHashTx", mock.Anything, mock.Anything, digest).
			Return(account, nil).Once()
		users.On("ResetPasswordTx", mock.Anything, mock.Anything, account.ID, mock.Anything, now).
			Return(nil).Once()

		repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
			Return(nil).
			Run(func(args mock.Arguments) {
				fn := args.Get(2).(func(context.Context, bun.Tx) error)
				var tx bun.Tx
				require.NoError(t, fn(args.Get(0).(context.Context), tx))
			}).Once()

		handler := auth.NewFinalizePasswordResetHandler(repo).WithClock(auth.FixedClock(now))

		err := handler.Execute(ctx, auth.FinalizePasswordResetMessage{
			Token:    plaintext,
			Password: "brand-new-password",
		})
		require.NoError(t, err)

		repo.AssertExpectations(t)
		users.AssertExpectations(t)
	})
}
