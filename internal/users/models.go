package users

import "time"

type Child struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Gender      string    `json:"gender,omitempty"`
}

type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	AuthToken string  `json:"auth_token,omitempty"`
	Children  []Child `json:"children"`
}

// UserContext is what one message is processed against. Built fresh from the
// cache for every message, never stored on its own.
type UserContext struct {
	User           User
	ContactChannel string
	ChildrenNames  []string
}

type phoneMapping struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
