package assistant

import (
	"context"
	"encoding/json"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/backend"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/users"
)

// Users is the context resolver the pipeline reads from.
type Users interface {
	CreateUserContext(userID, contactChannel string) (*users.UserContext, error)
	UserIDByContact(contactChannel string) (string, error)
	ResolveChildByName(userID, name string) (*users.Child, error)
	FormatChildNamesForPrompt(userID string) string
	Token(userID string) (string, error)
}

// Accounts is the login/registration surface exposed over HTTP.
type Accounts interface {
	Authenticate(ctx context.Context, email, password, contactChannel string) (*users.User, error)
	Register(ctx context.Context, email, password, name, contactChannel string) (*users.User, error)
	Refresh(ctx context.Context, userID string) (*users.User, error)
	Invalidate(userID string)
}

// Backend is the care-log API.
type Backend interface {
	CreateFeeding(ctx context.Context, token string, e backend.FeedingEntry) (json.RawMessage, error)
	CreateSleep(ctx context.Context, token string, e backend.SleepEntry) (json.RawMessage, error)
	EndSleep(ctx context.Context, token, childID string) (json.RawMessage, error)
	CreateDiaper(ctx context.Context, token string, e backend.DiaperEntry) (json.RawMessage, error)
	CreateHealth(ctx context.Context, token string, e backend.HealthEntry) (json.RawMessage, error)
	LastFeeding(ctx context.Context, token, childID string) (*backend.FeedingRecord, json.RawMessage, error)
	LastDiaper(ctx context.Context, token, childID string) (*backend.DiaperRecord, json.RawMessage, error)
	LastSleep(ctx context.Context, token, childID string) (*backend.SleepRecord, json.RawMessage, error)
}

// Input is one inbound message. Either UserID or ContactChannel identifies the sender.
type Input struct {
	Message        string
	UserID         string
	ContactChannel string
	DisplayName    string
}

type Service interface {
	ProcessMessage(ctx context.Context, in Input) Result
}
