package user

import (
	"errors"
	"fmt"
	"strings"
)

const MaxUsers = 20

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrLeagueFull    = errors.New("maximum number of users reached")
	ErrLastAdmin     = errors.New("cannot remove the last admin")
)

// User is a league participant.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	IsAdmin  bool   `json:"isAdmin"`
}

func (u User) Validate() error {
	if u.ID <= 0 {
		return fmt.Errorf("user id must be > 0")
	}
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}

// Principal is the acting user resolved for a request.
type Principal struct {
	UserID  int64
	IsAdmin bool
}

// UsernameTaken reports whether name collides case-insensitively with an existing user.
func UsernameTaken(users []User, name string) bool {
	for _, u := range users {
		if strings.EqualFold(u.Username, name) {
			return true
		}
	}
	return false
}

func Find(users []User, id int64) (User, int, bool) {
	for i, u := range users {
		if u.ID == id {
			return u, i, true
		}
	}
	return User{}, -1, false
}
