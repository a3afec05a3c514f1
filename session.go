package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the decoded, transport-free projection of a token.
type SessionObject struct {
	UserID         string     `json:"user_id,omitempty"`
	Role           string     `json:"role,omitempty"`
	Audience       []string   `json:"audience,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetUserRole() string {
	return s.Role
}

func (s *SessionObject) GetAudience() []string {
	return s.Audience
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"user=%s role=%s aud=%v iss=%s iat=%s",
		s.UserID,
		s.Role,
		s.Audience,
		s.Issuer,
		issuedAt,
	)
}

// sessionFromClaims decodes a SessionObject from raw JWT claims, e.g.
// the MapClaims the middleware leaves in request locals.
func sessionFromClaims(claims jwt.Claims) (*SessionObject, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, ErrUnableToParseData
	}

	aud, err := claims.GetAudience()
	if err != nil {
		return nil, ErrUnableToParseData
	}

	iss, err := claims.GetIssuer()
	if err != nil {
		return nil, ErrUnableToParseData
	}

	eat, err := claims.GetExpirationTime()
	if err != nil {
		return nil, ErrUnableToParseData
	}

	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, ErrUnableToParseData
	}

	session := &SessionObject{
		UserID:   sub,
		Audience: aud,
		Issuer:   iss,
	}

	if iat != nil {
		session.IssuedAt = &iat.Time
	}
	if eat != nil {
		session.ExpirationDate = &eat.Time
	}

	if mp, ok := claims.(jwt.MapClaims); ok {
		if role, ok := mp["role"].(string); ok {
			session.Role = role
		}
	}

	return session, nil
}

// sessionFromAuthClaims creates a SessionObject from validated claims
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToParseData
	}

	session := &SessionObject{
		UserID: claims.UserID(),
		Role:   claims.Role(),
	}

	if jwtClaims, ok := claims.(*JWTClaims); ok {
		session.Issuer = jwtClaims.RegisteredClaims.Issuer
		for _, aud := range jwtClaims.RegisteredClaims.Audience {
			session.Audience = append(session.Audience, aud)
		}
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()
	session.IssuedAt = &issuedAt
	session.ExpirationDate = &expiresAt

	return session, nil
}
