package auth_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	auth "github.com/soundclip/go-auth"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockAuthenticator implements auth.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, identifier, password string) (string, error) {
	args := m.Called(ctx, identifier, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) Impersonate(ctx context.Context, identifier string) (string, error) {
	args := m.Called(ctx, identifier)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) SessionFromToken(token string) (auth.Session, error) {
	args := m.Called(token)
	return args.Get(0).(auth.Session), args.Error(1)
}

func (m *MockAuthenticator) IdentityFromSession(ctx context.Context, session auth.Session) (auth.Identity, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(auth.Identity), args.Error(1)
}

// routerContext aliases router.Context so it can be embedded without
// the field name colliding with the Context method below.
type routerContext = router.Context

// MockContext covers the router.Context methods the http layer
// touches. The embedded interface stands in for the rest.
type MockContext struct {
	mock.Mock
	routerContext
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	return args.Get(0).(context.Context)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

// MockLoginPayload implements auth.LoginPayload
type MockLoginPayload struct {
	Identifier      string
	Password        string
	ExtendedSession bool
}

func (m MockLoginPayload) GetIdentifier() string {
	return m.Identifier
}

func (m MockLoginPayload) GetPassword() string {
	return m.Password
}

func (m MockLoginPayload) GetExtendedSession() bool {
	return m.ExtendedSession
}

// MockUserStore implements auth.UserStore and auth.GuardStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUserStore) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockNotifier implements auth.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendWelcome(ctx context.Context, user *auth.User, baseURL string) error {
	args := m.Called(ctx, user, baseURL)
	return args.Error(0)
}

func (m *MockNotifier) SendPasswordReset(ctx context.Context, user *auth.User, resetURL string) error {
	args := m.Called(ctx, user, resetURL)
	return args.Error(0)
}

// MockRepositoryManager implements auth.RepositoryManager. RunInTx
// executes the given function with a zero value transaction so handler
// logic can be exercised without a database.
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Users() auth.Users {
	args := m.Called()
	return args.Get(0).(auth.Users)
}

// MockUsers mocks the users repository. The embedded interface covers
// the methods a given test does not exercise.
type MockUsers struct {
	mock.Mock
	auth.Users
}

func (m *MockUsers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, tx, identifier)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) GetByResetTokenHash(ctx context.Context, digest string) (*auth.User, error) {
	args := m.Called(ctx, digest)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) GetByResetTokenHashTx(ctx context.Context, tx bun.IDB, digest string) (*auth.User, error) {
	args := m.Called(ctx, tx, digest)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) SetResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error {
	args := m.Called(ctx, id, digest, expiresAt)
	return args.Error(0)
}

func (m *MockUsers) SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, digest string, expiresAt time.Time) error {
	args := m.Called(ctx, tx, id, digest, expiresAt)
	return args.Error(0)
}

func (m *MockUsers) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) ClearResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockUsers) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	args := m.Called(ctx, id, passwordHash, changedAt)
	return args.Error(0)
}

func (m *MockUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	args := m.Called(ctx, tx, id, passwordHash, changedAt)
	return args.Error(0)
}

func (m *MockUsers) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, tx, user)
	// echo the record when no explicit return value is configured,
	// mirroring what the real repository does on insert
	if args.Get(0) == nil {
		return user, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUsers) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func userArg(args mock.Arguments, index int) *auth.User {
	if args.Get(index) == nil {
		return nil
	}
	return args.Get(index).(*auth.User)
}

// runTxPassthrough makes MockRepositoryManager execute the enclosed
// function with a zero value transaction.
func runTxPassthrough(args mock.Arguments) {
	fn := args.Get(2).(func(context.Context, bun.Tx) error)
	var tx bun.Tx
	//nolint:errcheck
	fn(args.Get(0).(context.Context), tx)
}

// fakeRepoManager runs transactions inline and propagates the inner
// error, which mock.Mock cannot do with a fixed Return value.
type fakeRepoManager struct {
	users auth.Users
}

func (f *fakeRepoManager) Validate() error { return nil }
func (f *fakeRepoManager) MustValidate()   {}

func (f *fakeRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	var tx bun.Tx
	return fn(ctx, tx)
}

func (f *fakeRepoManager) Users() auth.Users { return f.users }

// testConfig implements auth.Config
type testConfig struct {
	signingKey         string
	tokenExpiration    int
	extendedExpiration int
	resetDuration      time.Duration
	issuer             string
	audience           []string
	baseURL            string
}

func (c testConfig) GetSigningKey() string                { return c.signingKey }
func (c testConfig) GetSigningMethod() string             { return "HS256" }
func (c testConfig) GetContextKey() string                { return "user" }
func (c testConfig) GetTokenExpiration() int              { return c.tokenExpiration }
func (c testConfig) GetExtendedTokenDuration() int        { return c.extendedExpiration }
func (c testConfig) GetTokenLookup() string               { return "header:Authorization" }
func (c testConfig) GetAuthScheme() string                { return "Bearer" }
func (c testConfig) GetIssuer() string                    { return c.issuer }
func (c testConfig) GetAudience() []string                { return c.audience }
func (c testConfig) GetResetTokenDuration() time.Duration { return c.resetDuration }
func (c testConfig) GetBaseURL() string                   { return c.baseURL }
func (c testConfig) GetRejectedRouteKey() string          { return "rejected_route" }
func (c testConfig) GetRejectedRouteDefault() string      { return "/" }

var _ auth.Config = testConfig{}
