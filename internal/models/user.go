package models

import "encoding/json"

// User is a staff account that signs in to the app.
type User struct {
	// ID is the backend-assigned identifier ("id" or "_id" on the wire).
	ID string `json:"id"`

	// Username is the login name.
	Username string `json:"username"`

	// Email is the account email address.
	Email string `json:"email,omitempty"`

	// MobileNumber is the optional phone number given at registration.
	MobileNumber string `json:"mobileNumber,omitempty"`

	// IsAdmin reports whether the account has admin access.
	IsAdmin bool `json:"isAdmin"`
}

// UnmarshalJSON accepts both "id" and "_id".
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var raw struct {
		plain
		DocumentID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.plain)
	if u.ID == "" {
		u.ID = raw.DocumentID
	}
	return nil
}

// Credentials is the body of POST /api/login.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the decoded body of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
	Error string `json:"error,omitempty"`
}

// Registration is the body of POST /api/register.
type Registration struct {
	Username     string `json:"username" validate:"required"`
	Password     string `json:"password" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	MobileNumber string `json:"mobileNumber" validate:"omitempty,max=32"`
}

// PasswordReset is the body of POST /api/users/resetPassword.
type PasswordReset struct {
	Email           string `json:"email" validate:"required,email"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// AdminAccess is the body of the admin access check and grant calls.
type AdminAccess struct {
	Username string `json:"username" validate:"required"`
	IsAdmin  bool   `json:"isAdmin,omitempty"`
}

// Feedback is the body of POST /api/feedback.
type Feedback struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Feedback  string `json:"feedback" validate:"required"`
}
