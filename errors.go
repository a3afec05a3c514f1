package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients alongside the status category.
const (
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeMissingCreds       = "MISSING_CREDENTIALS"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeSessionInvalidated = "SESSION_INVALIDATED"
	TextCodeForbidden          = "FORBIDDEN"
	TextCodeResetTokenInvalid  = "RESET_TOKEN_INVALID_OR_EXPIRED"
	TextCodeNotificationFailed = "NOTIFICATION_DELIVERY_FAILED"
	TextCodeStoreUnavailable   = "STORE_UNAVAILABLE"
	TextCodeTooManyAttempts    = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
)

// ErrIdentityNotFound is returned when a token's subject no longer exists
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword covers both unknown identifier and wrong
// password so callers cannot probe for account existence
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrMissingCredentials is returned when the identifier, password, or
// bearer token is absent from the request
var ErrMissingCredentials = errors.New("missing credentials", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingCreds)

// ErrTokenExpired is returned for tokens past their expiry window
var ErrTokenExpired = errors.New("authentication token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tampered or undecodable tokens
var ErrTokenMalformed = errors.New("authentication token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrSessionInvalidated rejects tokens issued before the subject's most
// recent password change
var ErrSessionInvalidated = errors.New("session was invalidated by a credential change", errors.CategoryAuth).
	WithTextCode(TextCodeSessionInvalidated).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned when the identity's role is not in the
// caller's allow set
var ErrForbidden = errors.New("you do not have permission to perform this action", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden)

// ErrResetTokenInvalid deliberately collapses unknown and expired reset
// tokens into a single answer
var ErrResetTokenInvalid = errors.New("reset token is invalid or has expired", errors.CategoryValidation).
	WithTextCode(TextCodeResetTokenInvalid)

// ErrNotificationDelivery is returned when the reset email could not be
// sent; the stored reset token is cleared before this surfaces
var ErrNotificationDelivery = errors.New("could not deliver notification email", errors.CategoryInternal).
	WithTextCode(TextCodeNotificationFailed).
	WithCode(errors.CodeInternal)

// ErrStoreUnavailable wraps transient persistence failures; it is the
// only error kind callers should consider retryable
var ErrStoreUnavailable = errors.New("identity store is unavailable", errors.CategoryInternal).
	WithTextCode(TextCodeStoreUnavailable).
	WithCode(errors.CodeInternal)

// ErrTooManyLoginAttempts enforces the login cool down window
var ErrTooManyLoginAttempts = errors.New("too many login attempts, try again later", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrUnableToFindSession is the error when our request has no cookie
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode("SESSION_NOT_FOUND")

// ErrUnableToDecodeSession unable to decode JWT from session cookie
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithTextCode("SESSION_DECODE_ERROR")

// ErrUnableToMapClaims claims are not in the expected shape
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth).
	WithTextCode("CLAIMS_MAP_ERROR")

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse data", errors.CategoryBadInput).
	WithTextCode("DATA_PARSE_ERROR")

// storeError maps unexpected persistence failures to the retryable
// store-unavailable kind, preserving the source.
func storeError(err error, msg string) error {
	return errors.Wrap(err, ErrStoreUnavailable.Category, msg).
		WithTextCode(ErrStoreUnavailable.TextCode).
		WithCode(errors.CodeInternal)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
