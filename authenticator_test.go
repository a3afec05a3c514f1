package auth_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	auth "github.com/soundclip/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Identity), args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Identity), args.Error(1)
}

func TestAuther_Login(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig{signingKey: "login-test-key", tokenExpiration: 1, issuer: "test-issuer"}

	t.Run("login returns a verifiable token", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		identity := newTestIdentity(uuid.NewString(), auth.RoleUser)

		provider.On("VerifyIdentity", mock.Anything, "pepe", "hunter2hunter2").
			Return(identity, nil).Once()

		auther := auth.NewAuthenticator(provider, cfg).WithLogger(testLogger{})

		token, err := auther.Login(ctx, "pepe", "hunter2hunter2")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		session, err := auther.SessionFromToken(token)
		require.NoError(t, err)
		assert.Equal(t, identity.ID(), session.GetUserID())
		assert.Equal(t, string(auth.RoleUser), session.GetUserRole())
	})

	t.Run("bad credentials propagate", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", mock.Anything, "pepe", "wrong").
			Return(nil, auth.ErrMismatchedHashAndPassword).Once()

		auther := auth.NewAuthenticator(provider, cfg).WithLogger(testLogger{})

		_, err := auther.Login(ctx, "pepe", "wrong")
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
	})

	t.Run("nil identity without error reads as not found", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", mock.Anything, "pepe", "hunter2hunter2").
			Return(nil, nil).Once()

		auther := auth.NewAuthenticator(provider, cfg).WithLogger(testLogger{})

		_, err := auther.Login(ctx, "pepe", "hunter2hunter2")
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}

func TestAuther_Impersonate(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig{signingKey: "login-test-key", tokenExpiration: 1, issuer: "test-issuer"}

	t.Run("issues a verifiable token without a password", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		identity := newTestIdentity("user-9", auth.RoleUser)

		provider.On("FindIdentityByIdentifier", mock.Anything, "user-9").
			Return(identity, nil).Once()

		auther := auth.NewAuthenticator(provider, cfg).WithLogger(testLogger{})

		token, err := auther.Impersonate(ctx, "user-9")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		session, err := auther.SessionFromToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-9", session.GetUserID())
		assert.Equal(t, string(auth.RoleUser), session.GetUserRole())
	})

	t.Run("unknown identifier propagates", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("FindIdentityByIdentifier", mock.Anything, "ghost").
			Return(nil, auth.ErrIdentityNotFound).Once()

		auther := auth.NewAuthenticator(provider, cfg).WithLogger(testLogger{})

		_, err := auther.Impersonate(ctx, "ghost")
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})

	t.Run("nil identity without error reads as not found", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("FindIdentityByIdentifier", mock.Anything, "user-9").
			Return(nil, nil).Once()

		auther := auth.NewAuthenticator(provider, cfg).WithLogger(testLogger{})

		_, err := auther.Impersonate(ctx, "user-9")
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}

func TestAuther_SessionFromToken(t *testing.T) {
	cfg := testConfig{signingKey: "login-test-key", tokenExpiration: 1, issuer: "test-issuer", audience: []string{"soundclip"}}
	provider := &MockIdentityProvider{}
	auther := auth.NewAuthenticator(provider, cfg).WithLogger(testLogger{})

	t.Run("decodes issuer and audience", func(t *testing.T) {
		identity := newTestIdentity("user-7", auth.RoleArtist)

		ts := auth.NewTokenService([]byte("login-test-key"), 1, "test-issuer", jwt.ClaimStrings{"soundclip"}, testLogger{})
		token, err := ts.Generate(identity)
		require.NoError(t, err)

		session, err := auther.SessionFromToken(token)
		require.NoError(t, err)

		assert.Equal(t, "user-7", session.GetUserID())
		assert.Equal(t, "test-issuer", session.GetIssuer())
		assert.Equal(t, []string{"soundclip"}, session.GetAudience())
		require.NotNil(t, session.GetIssuedAt())
		require.NotNil(t, session.GetExpiration())
		assert.True(t, session.GetExpiration().After(*session.GetIssuedAt()))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := auther.SessionFromToken("garbage")
		assert.Error(t, err)
	})
}

func TestAuther_IdentityFromSession(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig{signingKey: "login-test-key", tokenExpiration: 1}

	t.Run("resolves the identity behind a session", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		identity := newTestIdentity("user-3", auth.RoleUser)

		provider.On("FindIdentityByIdentifier", mock.Anything, "user-3").
			Return(identity, nil).Once()

		auther := auth.NewAuthenticator(provider, cfg).WithLogger(testLogger{})

		session := &auth.SessionObject{UserID: "user-3"}
		got, err := auther.IdentityFromSession(ctx, session)
		require.NoError(t, err)
		assert.Equal(t, "user-3", got.ID())
	})

	t.Run("propagates lookup errors", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("FindIdentityByIdentifier", mock.Anything, "ghost").
			Return(nil, auth.ErrIdentityNotFound).Once()

		auther := auth.NewAuthenticator(provider, cfg).WithLogger(testLogger{})

		_, err := auther.IdentityFromSession(ctx, &auth.SessionObject{UserID: "ghost"})
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}
