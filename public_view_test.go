package auth_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	auth "github.com/soundclip/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublicUser(t *testing.T) {
	now := time.Now()
	digest := "a-reset-digest"
	deleted := now.Add(-time.Hour)

	user := &auth.User{
		ID:                  uuid.New(),
		Role:                auth.RoleArtist,
		FirstName:           "Pepe",
		LastName:            "Rone",
		Username:            "pepe",
		Email:               "pepe.rone@example.com",
		Phone:               "+12125551234",
		PasswordHash:        "$2a$14$secret",
		PasswordChangedAt:   &now,
		ResetTokenHash:      &digest,
		ResetTokenExpiresAt: &now,
		LoginAttempts:       3,
		LoginAttemptAt:      &now,
		LoggedInAt:          &now,
		Metadata:            map[string]any{"plan": "pro"},
		CreatedAt:           &now,
		DeletedAt:           &deleted,
	}

	view := auth.NewPublicUser(user)
	require.NotNil(t, view)

	t.Run("keeps the public fields", func(t *testing.T) {
		assert.Equal(t, user.ID.String(), view.ID)
		assert.Equal(t, auth.RoleArtist, view.Role)
		assert.Equal(t, "pepe", view.Username)
		assert.Equal(t, "pepe.rone@example.com", view.Email)
		assert.Equal(t, "+12125551234", view.Phone)
		assert.Equal(t, map[string]any{"plan": "pro"}, view.Metadata)
		require.NotNil(t, view.CreatedAt)
		assert.Equal(t, now, *view.CreatedAt)
	})

	t.Run("serialized view never leaks credentials", func(t *testing.T) {
		raw, err := json.Marshal(auth.NewAuthResponse(user, "signed-token"))
		require.NoError(t, err)

		body := string(raw)
		assert.Contains(t, body, "signed-token")
		assert.Contains(t, body, "pepe.rone@example.com")

		assert.NotContains(t, body, "$2a$14$secret")
		assert.NotContains(t, body, "a-reset-digest")
		assert.NotContains(t, body, "password_hash")
		assert.NotContains(t, body, "reset_token")
		assert.NotContains(t, body, "login_attempts")
		assert.NotContains(t, body, "deleted_at")
	})

	t.Run("nil user", func(t *testing.T) {
		assert.Nil(t, auth.NewPublicUser(nil))
	})
}
