package auth

import "time"

// PublicUser is the projection of a User that is safe to send over the
// wire. Fields are copied one by one on purpose so that a new column
// added to User stays private until someone lists it here.
type PublicUser struct {
	ID        string         `json:"id"`
	Role      UserRole       `json:"role"`
	FirstName string         `json:"first_name,omitempty"`
	LastName  string         `json:"last_name,omitempty"`
	Username  string         `json:"username"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone_number,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
}

// AuthResponse pairs a freshly issued token with the redacted view of
// the authenticated user.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *PublicUser `json:"user"`
}

// NewPublicUser builds the redacted projection. The password hash,
// reset token columns, login counters, and soft delete marker never
// leave the record.
func NewPublicUser(user *User) *PublicUser {
	if user == nil {
		return nil
	}

	view := &PublicUser{
		ID:        user.ID.String(),
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		Email:     user.Email,
		Phone:     user.Phone,
		Metadata:  user.Metadata,
	}

	if user.CreatedAt != nil {
		createdAt := *user.CreatedAt
		view.CreatedAt = &createdAt
	}

	return view
}

// NewAuthResponse builds the payload returned after login, signup, and
// password reset.
func NewAuthResponse(user *User, token string) *AuthResponse {
	return &AuthResponse{
		Token: token,
		User:  NewPublicUser(user),
	}
}
