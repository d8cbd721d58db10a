// Package users resolves a user id into a cached context (profile, credential,
// children) and populates that cache through login and registration.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/backend"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/cache"
)

const noChildrenSentence = "No children found"

type Service struct {
	auth  AuthClient
	cache Cache
	log   *zap.Logger
	now   func() time.Time
}

func NewService(auth AuthClient, c Cache, log *zap.Logger) *Service {
	return &Service{
		auth:  auth,
		cache: c,
		log:   log.Named("users"),
		now:   time.Now,
	}
}

// CreateUserContext builds a context from the warm cache only. A cold or
// expired user gets ErrUserNotFound; the caller should ask for a new login.
func (s *Service) CreateUserContext(userID, contactChannel string) (*UserContext, error) {
	user, err := s.cachedUser(userID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(user.Children))
	for _, c := range user.Children {
		names = append(names, c.Name)
	}

	return &UserContext{
		User:           *user,
		ContactChannel: contactChannel,
		ChildrenNames:  names,
	}, nil
}

// Authenticate logs in, fetches the roster and writes the whole context
// through to the cache. A non-empty contactChannel is mapped to the user too.
func (s *Service) Authenticate(ctx context.Context, email, password, contactChannel string) (*User, error) {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			s.log.Warn("login rejected", zap.String("email", email), zap.Int("status", apiErr.Status))
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Body)
		}
		return nil, err
	}

	kids, err := s.auth.Children(ctx, res.Token)
	if err != nil {
		return nil, fmt.Errorf("fetch children: %w", err)
	}

	user := newUser(res.User, res.Token, kids)
	if err := s.store(user); err != nil {
		return nil, err
	}
	if contactChannel != "" {
		s.mapContact(contactChannel, user)
	}

	s.log.Info("user authenticated",
		zap.String("user_id", user.ID),
		zap.Int("children", len(user.Children)),
	)
	return user, nil
}

// Register creates the account upstream and caches it with an empty roster.
func (s *Service) Register(ctx context.Context, email, password, name, contactChannel string) (*User, error) {
	res, err := s.auth.Register(ctx, email, password, name)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %s", ErrRegistrationFailed, apiErr.Body)
		}
		return nil, err
	}

	user := newUser(res.User, res.Token, nil)
	if err := s.store(user); err != nil {
		return nil, err
	}
	if contactChannel != "" {
		s.mapContact(contactChannel, user)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Refresh re-reads profile and children with the cached credential and
// replaces the cached context wholesale. A rejected credential drops the
// user's cache and yields ErrCredentialMissing.
func (s *Service) Refresh(ctx context.Context, userID string) (*User, error) {
	token, err := s.Token(userID)
	if err != nil {
		return nil, err
	}

	var (
		profile *backend.Profile
		kids    []backend.Child
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.auth.Profile(gctx, token)
		profile = p
		return err
	})
	g.Go(func() error {
		k, err := s.auth.Children(gctx, token)
		kids = k
		return err
	})
	if err := g.Wait(); err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			s.cache.Invalidate(userID)
			return nil, fmt.Errorf("%w: %s", ErrCredentialMissing, apiErr.Body)
		}
		return nil, err
	}

	user := newUser(*profile, token, kids)
	if err := s.store(user); err != nil {
		return nil, err
	}

	s.log.Info("user context refreshed",
		zap.String("user_id", user.ID),
		zap.Int("children", len(user.Children)),
	)
	return user, nil
}

// Invalidate drops everything cached for the user.
func (s *Service) Invalidate(userID string) {
	s.cache.Invalidate(userID)
}

// UserIDByContact maps a phone/chat handle to a user id through the cache.
func (s *Service) UserIDByContact(contactChannel string) (string, error) {
	raw, ok := s.cache.Get(cache.NamespacePhone, contactChannel)
	if !ok {
		return "", ErrUserNotFound
	}
	var m phoneMapping
	if err := json.Unmarshal(raw, &m); err != nil || m.UserID == "" {
		return "", ErrUserNotFound
	}
	return m.UserID, nil
}

// ResolveChildByName matches case-insensitively against this user's cached
// roster. There is no backend fallback.
func (s *Service) ResolveChildByName(userID, name string) (*Child, error) {
	user, err := s.cachedUser(userID)
	if err != nil {
		return nil, err
	}

	want := strings.TrimSpace(name)
	for _, c := range user.Children {
		if strings.EqualFold(c.Name, want) {
			child := c
			return &child, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrChildNotFound, name)
}

// FormatChildNamesForPrompt renders the roster for model instructions.
func (s *Service) FormatChildNamesForPrompt(userID string) string {
	uctx, err := s.CreateUserContext(userID, "")
	if err != nil {
		return noChildrenSentence
	}
	return FormatNames(uctx.ChildrenNames)
}

// Token returns the cached bearer credential. Empty and expired JWTs count as missing.
func (s *Service) Token(userID string) (string, error) {
	user, err := s.cachedUser(userID)
	if err != nil {
		return "", err
	}
	if user.AuthToken == "" || tokenExpired(user.AuthToken, s.now()) {
		return "", ErrCredentialMissing
	}
	return user.AuthToken, nil
}

// FormatNames joins names the way prompts expect:
// "A", "A and B", "A, B, and C". No names gives the fixed no-children sentence.
func FormatNames(names []string) string {
	switch len(names) {
	case 0:
		return noChildrenSentence
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

func (s *Service) cachedUser(userID string) (*User, error) {
	raw, ok := s.cache.Get(cache.NamespaceContext, userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		s.log.Error("corrupt cached context", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (s *Service) store(u *User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	s.cache.Put(cache.NamespaceContext, u.ID, b)

	kids, err := json.Marshal(u.Children)
	if err != nil {
		return fmt.Errorf("encode children: %w", err)
	}
	s.cache.Put(cache.NamespaceChildren, u.ID, kids)
	return nil
}

func (s *Service) mapContact(contactChannel string, u *User) {
	b, _ := json.Marshal(phoneMapping{UserID: u.ID, Email: u.Email, Name: u.Name})
	s.cache.PutOwned(cache.NamespacePhone, contactChannel, u.ID, b)
}

func newUser(p backend.Profile, token string, kids []backend.Child) *User {
	children := make([]Child, 0, len(kids))
	for _, k := range kids {
		children = append(children, Child{
			ID:          k.ID,
			Name:        k.Name,
			DateOfBirth: k.DateOfBirth,
			Gender:      k.Gender,
		})
	}
	return &User{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Role:      p.Role,
		AuthToken: token,
		Children:  children,
	}
}

// tokenExpired reports whether token is a JWT whose exp has passed.
// Opaque tokens are never considered expired here; the backend decides.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
