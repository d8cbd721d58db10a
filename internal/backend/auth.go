package backend

import (
	"context"
	"net/http"
	"time"
)

type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type AuthResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

type Child struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	Gender      string    `json:"gender,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	_, err := c.send(ctx, "login", http.MethodPost, "/auth/login", "",
		map[string]string{"email": email, "password": password},
		http.StatusOK, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	var out AuthResult
	_, err := c.send(ctx, "register", http.MethodPost, "/auth/register", "",
		map[string]string{"email": email, "password": password, "name": name},
		http.StatusCreated, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile resolves the user behind token. Doubles as token verification.
func (c *Client) Profile(ctx context.Context, token string) (*Profile, error) {
	var out Profile
	if _, err := c.send(ctx, "profile", http.MethodGet, "/auth/profile", token, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Children(ctx context.Context, token string) ([]Child, error) {
	var out []Child
	if _, err := c.send(ctx, "children", http.MethodGet, "/children", token, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out, nil
}
