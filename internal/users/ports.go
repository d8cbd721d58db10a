package users

import (
	"context"
	"errors"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/backend"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/cache"
)

var (
	ErrUserNotFound       = errors.New("user has no cached context")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrChildNotFound      = errors.New("child not found")
	ErrCredentialMissing  = errors.New("auth credential missing or expired")
)

// AuthClient is the backend's auth/profile surface.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*backend.AuthResult, error)
	Register(ctx context.Context, email, password, name string) (*backend.AuthResult, error)
	Profile(ctx context.Context, token string) (*backend.Profile, error)
	Children(ctx context.Context, token string) ([]backend.Child, error)
}

type Cache interface {
	Get(ns cache.Namespace, key string) ([]byte, bool)
	Put(ns cache.Namespace, key string, value []byte)
	PutOwned(ns cache.Namespace, key, owner string, value []byte)
	Invalidate(userID string) int
}
