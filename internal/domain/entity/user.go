package entity

// Role is the permission level the API assigns to a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents the authenticated user as returned by the API.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the user may see cost data.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LoginResult is the payload returned by a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	User        User   `json:"user"`
}
