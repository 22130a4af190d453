package session

import "github.com/avishkin/pharmacy/internal/models"

// Session carries the logged-in user through the console menus instead of a
// package-level current-user variable.
type Session struct {
	User models.User
}

func (s *Session) Role() string { return s.User.Role }

func (s *Session) IsSeller() bool { return s.User.Role == models.RoleSeller }
