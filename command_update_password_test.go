package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	auth "github.com/soundclip/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdatePasswordHandler(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("changes the password and advances the change marker", func(t *testing.T) {
		users := &MockUsers{}
		account := storedUser(t, "old-password-12")

		var appliedHash string

		users.On("GetByIdentifierTx", mock.Anything, mock.Anything, account.Email).
			Return(account, nil).Once()
		users.On("ResetPasswordTx", mock.Anything, mock.Anything, account.ID, mock.Anything, now).
			Run(func(args mock.Arguments) {
				appliedHash = args.Get(3).(string)
			}).
			Return(nil).Once()

		var resp *auth.UpdatePasswordResponse

		handler := auth.NewUpdatePasswordHandler(&fakeRepoManager{users: users}).
			WithLogger(testLogger{}).
			WithClock(auth.FixedClock(now))

		err := handler.Execute(ctx, auth.UpdatePasswordMessage{
			Identifier:      account.Email,
			CurrentPassword: "old-password-12",
			NewPassword:     "new-password-12",
			OnResponse: func(r *auth.UpdatePasswordResponse) {
				resp = r
			},
		})
		require.NoError(t, err)

		require.NotNil(t, resp)
		assert.True(t, resp.Success)
		require.NotNil(t, resp.User.PasswordChangedAt)
		assert.Equal(t, now, *resp.User.PasswordChangedAt)
		assert.True(t, auth.PasswordMatches("new-password-12", appliedHash))

		users.AssertExpectations(t)
	})

	t.Run("wrong current password", func(t *testing.T) {
		users := &MockUsers{}
		account := storedUser(t, "old-password-12")

		users.On("GetByIdentifierTx", mock.Anything, mock.Anything, account.Email).
			Return(account, nil).Once()

		handler := auth.NewUpdatePasswordHandler(&fakeRepoManager{users: users})

		err := handler.Execute(ctx, auth.UpdatePasswordMessage{
			Identifier:      account.Email,
			CurrentPassword: "not-the-password",
			NewPassword:     "new-password-12",
		})
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)

		users.AssertNotCalled(t, "ResetPasswordTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByIdentifierTx", mock.Anything, mock.Anything, "ghost").
			Return(nil, repository.NewRecordNotFound()).Once()

		handler := auth.NewUpdatePasswordHandler(&fakeRepoManager{users: users})

		err := handler.Execute(ctx, auth.UpdatePasswordMessage{
			Identifier:      "ghost",
			CurrentPassword: "old-password-12",
			NewPassword:     "new-password-12",
		})
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})

	t.Run("missing fields", func(t *testing.T) {
		handler := auth.NewUpdatePasswordHandler(&fakeRepoManager{users: &MockUsers{}})

		err := handler.Execute(ctx, auth.UpdatePasswordMessage{NewPassword: "new-password-12"})
		assert.ErrorIs(t, err, auth.ErrMissingCredentials)
	})
}
