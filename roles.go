package auth

// RoleSet is an explicit allow list of roles for a protected operation.
type RoleSet map[UserRole]struct{}

// NewRoleSet builds a RoleSet from the given roles.
func NewRoleSet(roles ...UserRole) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Allows reports whether the role is a member of the set. An empty set
// allows any authenticated identity.
func (s RoleSet) Allows(role UserRole) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[role]
	return ok
}

// Authorize is the pure role decision of the access guard: the
// identity's role must be a member of the allow set.
func Authorize(identity Identity, allowed RoleSet) error {
	if identity == nil {
		return ErrIdentityNotFound
	}

	if !allowed.Allows(UserRole(identity.Role())) {
		return ErrForbidden
	}

	return nil
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleGuest, RoleUser, RoleArtist, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	roleHierarchy := map[UserRole]int{
		RoleGuest:  0,
		RoleUser:   1,
		RoleArtist: 2,
		RoleAdmin:  3,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleGuest,
		RoleUser,
		RoleArtist,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
