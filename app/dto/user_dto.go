package dto

// UserDTO is the public view of a CRM user
type UserDTO struct {
	ID            uint    `json:"id"`
	UUID          string  `json:"uuid"`
	FullName      string  `json:"full_name"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	Phone         *string `json:"phone,omitempty"`
	ClientCompany *string `json:"client_company,omitempty"`
	IsActive      bool    `json:"is_active"`
	LastLoginAt   *string `json:"last_login_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// CreateUserRequest provisions a login and its profile in one step
type CreateUserRequest struct {
	FullName      string  `json:"full_name" validate:"required,min=2,max=255"`
	Email         string  `json:"email" validate:"required,email,max=255"`
	Password      string  `json:"password" validate:"required,min=6,max=128"`
	Role          string  `json:"role" validate:"required,oneof=admin agent client"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	ClientCompany *string `json:"client_company,omitempty" validate:"omitempty,max=255"`
}

// UpdateUserRequest edits a user; nil fields are left untouched
type UpdateUserRequest struct {
	FullName      *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=255"`
	Role          *string `json:"role,omitempty" validate:"omitempty,oneof=admin agent client"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	ClientCompany *string `json:"client_company,omitempty" validate:"omitempty,max=255"`
	IsActive      *bool   `json:"is_active,omitempty"`
	Password      *string `json:"password,omitempty" validate:"omitempty,min=6,max=128"`
}

// ListUsersRequest filters the user directory
type ListUsersRequest struct {
	Role string `query:"role" validate:"omitempty,oneof=admin agent client"`
}

// ListUsersResponse lists users
type ListUsersResponse struct {
	Users []UserDTO `json:"users"`
}

// DeleteUserResponse reports the side effects of a user deletion
type DeleteUserResponse struct {
	ID                uint  `json:"id"`
	UnassignedDebtors int64 `json:"unassigned_debtors"`
}
