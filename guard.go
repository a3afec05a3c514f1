package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/soundclip/go-auth/middleware/jwtware"
)

// GuardStore is the single lookup the access guard needs.
type GuardStore interface {
	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error)
}

// Guard gates protected operations: it validates the bearer token,
// resolves the subject, rejects sessions issued before the last
// password change, and checks the caller's role allow set. It performs
// one store read and no writes.
type Guard struct {
	store       GuardStore
	tokens      TokenService
	logger      Logger
	tokenLookup string
	authScheme  string
}

// NewGuard creates a Guard over the given store and token service.
func NewGuard(store GuardStore, tokens TokenService) *Guard {
	return &Guard{
		store:       store,
		tokens:      tokens,
		logger:      defLogger{},
		tokenLookup: "header:Authorization",
		authScheme:  "Bearer",
	}
}

func (g *Guard) WithLogger(logger Logger) *Guard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithTokenLookup overrides where the middleware extracts the raw
// token from, e.g. "cookie:token" or "header:Authorization".
func (g *Guard) WithTokenLookup(lookup, scheme string) *Guard {
	if lookup != "" {
		g.tokenLookup = lookup
	}
	if scheme != "" {
		g.authScheme = scheme
	}
	return g
}

// Authenticate runs the guard pipeline over a raw token, short
// circuiting on the first failure. On success the resolved user and
// claims are attached to the returned context.
func (g *Guard) Authenticate(ctx context.Context, rawToken string, allowed RoleSet) (context.Context, *User, error) {
	if rawToken == "" {
		return ctx, nil, ErrMissingCredentials
	}

	claims, err := g.tokens.Validate(rawToken)
	if err != nil {
		return ctx, nil, err
	}

	user, err := g.store.GetByIdentifier(ctx, claims.UserID())
	if err != nil {
		if errors.IsNotFound(err) {
			return ctx, nil, ErrIdentityNotFound
		}
		return ctx, nil, storeError(err, "failed to resolve token subject")
	}

	if user == nil {
		return ctx, nil, ErrIdentityNotFound
	}

	// a password change after issuance revokes the session, even though
	// the token is still cryptographically valid
	if user.ChangedPasswordAfter(claims.IssuedAt()) {
		return ctx, nil, ErrSessionInvalidated
	}

	if err := Authorize(identityFromUser(user), allowed); err != nil {
		return ctx, nil, err
	}

	ctx = WithClaimsContext(WithContext(ctx, user), claims)

	return ctx, user, nil
}

// Protect returns router middleware enforcing the guard for the given
// allow set. An empty set admits any valid session.
func (g *Guard) Protect(roles ...UserRole) router.MiddlewareFunc {
	allowed := NewRoleSet(roles...)
	extractors := jwtware.GetExtractors(g.tokenLookup, g.authScheme)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw, err := jwtware.ExtractRawTokenFromContext(ctx, extractors)
			if err != nil || raw == "" {
				return g.rejected(ctx, ErrMissingCredentials)
			}

			newCtx, _, err := g.Authenticate(ctx.Context(), raw, allowed)
			if err != nil {
				return g.rejected(ctx, err)
			}

			ctx.SetContext(newCtx)
			return ctx.Next()
		}
	}
}

func (g *Guard) rejected(ctx router.Context, err error) error {
	status := router.StatusUnauthorized

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		switch richErr.Category {
		case errors.CategoryAuthz:
			status = router.StatusForbidden
		case errors.CategoryBadInput:
			status = router.StatusBadRequest
		case errors.CategoryInternal:
			status = router.StatusInternalServerError
		}
		g.logger.Info("guard rejected %s: %s", ctx.Path(), richErr.TextCode)
		return ctx.JSON(status, map[string]string{
			"error": richErr.Message,
			"code":  richErr.TextCode,
		})
	}

	return ctx.Status(status).SendString("unauthorized")
}
