package entity

// Session holds the bearer token and the user it resolved to.
// The zero value is the logged-out session.
type Session struct {
	Token string
	User  *User
}

// Active reports whether the session carries both a token and a user.
func (s Session) Active() bool {
	return s.Token != "" && s.User != nil
}

// IsAdmin reports whether the session belongs to an admin user.
func (s Session) IsAdmin() bool {
	return s.User != nil && s.User.IsAdmin()
}
