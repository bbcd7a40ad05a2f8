package models

// AccessScope is the visibility bound of an authenticated user.
// Admins see every debtor, agents the ones assigned to them and clients the
// ones carrying their name or linked to their account.
type AccessScope struct {
	Role     string `json:"role"`
	UserID   uint   `json:"user_id"`
	FullName string `json:"full_name"`
}

func (s *AccessScope) IsAdmin() bool  { return s != nil && s.Role == RoleAdmin }
func (s *AccessScope) IsAgent() bool  { return s != nil && s.Role == RoleAgent }
func (s *AccessScope) IsClient() bool { return s != nil && s.Role == RoleClient }

// Allows reports whether the debtor is inside the scope. A nil scope or an
// unknown role allows nothing.
func (s *AccessScope) Allows(d *Debtor) bool {
	if s == nil || d == nil {
		return false
	}
	switch s.Role {
	case RoleAdmin:
		return true
	case RoleAgent:
		return d.AssignedTo != nil && *d.AssignedTo == s.UserID
	case RoleClient:
		if d.ClientUserID != nil {
			return *d.ClientUserID == s.UserID
		}
		return s.FullName != "" && d.Client == s.FullName
	default:
		return false
	}
}

// CanWriteNotes reports whether the user may add follow-ups, PTPs,
// collection updates, payments and events to the debtor
func (s *AccessScope) CanWriteNotes(d *Debtor) bool {
	switch {
	case s.IsAdmin():
		return d != nil
	case s.IsAgent():
		return s.Allows(d)
	default:
		return false
	}
}

// CanManageDebtors reports whether the user may create, edit, delete or reassign debtors
func (s *AccessScope) CanManageDebtors() bool { return s.IsAdmin() }
