package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/backend"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/users"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeAI answers the classifier prompt with category and every extraction
// prompt with extraction.
type fakeAI struct {
	mu         sync.Mutex
	category   string
	extraction string
	err        error
	prompts    []string
}

func (f *fakeAI) Complete(_ context.Context, system, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, system)
	if f.err != nil {
		return "", f.err
	}
	if strings.HasPrefix(system, "You are an assistant that classifies") {
		return f.category, nil
	}
	return f.extraction, nil
}

func (f *fakeAI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeUsers struct {
	rosters  map[string][]users.Child
	tokens   map[string]string
	contacts map[string]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		rosters: map[string][]users.Child{
			"u1": {{ID: "c-samar", Name: "Samar"}, {ID: "c-maryam", Name: "Maryam"}},
		},
		tokens:   map[string]string{"u1": "tok-1"},
		contacts: map[string]string{"+15550001": "u1"},
	}
}

func (f *fakeUsers) CreateUserContext(userID, contact string) (*users.UserContext, error) {
	kids, ok := f.rosters[userID]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	names := make([]string, 0, len(kids))
	for _, k := range kids {
		names = append(names, k.Name)
	}
	return &users.UserContext{
		User:           users.User{ID: userID, Children: kids},
		ContactChannel: contact,
		ChildrenNames:  names,
	}, nil
}

func (f *fakeUsers) UserIDByContact(contact string) (string, error) {
	id, ok := f.contacts[contact]
	if !ok {
		return "", users.ErrUserNotFound
	}
	return id, nil
}

func (f *fakeUsers) ResolveChildByName(userID, name string) (*users.Child, error) {
	for _, k := range f.rosters[userID] {
		if strings.EqualFold(k.Name, strings.TrimSpace(name)) {
			k := k
			return &k, nil
		}
	}
	return nil, users.ErrChildNotFound
}

func (f *fakeUsers) FormatChildNamesForPrompt(userID string) string {
	var names []string
	for _, k := range f.rosters[userID] {
		names = append(names, k.Name)
	}
	return users.FormatNames(names)
}

func (f *fakeUsers) Token(userID string) (string, error) {
	tok := f.tokens[userID]
	if tok == "" {
		return "", users.ErrCredentialMissing
	}
	return tok, nil
}

type recorded struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

type reply struct {
	status int
	body   string
}

// fakeBackend serves canned replies keyed by "METHOD /path" and records
// every request it sees.
type fakeBackend struct {
	mu       sync.Mutex
	replies  map[string]reply
	requests []recorded
}

func newFakeBackend(t *testing.T) (*fakeBackend, *backend.Client) {
	t.Helper()
	fb := &fakeBackend{replies: map[string]reply{}}
	srv := httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(srv.Close)
	return fb, backend.NewClient(srv.URL, 5*time.Second, zap.NewNop(), nil)
}

func (fb *fakeBackend) on(method, path string, status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.replies[method+" "+path] = reply{status: status, body: body}
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	fb.mu.Lock()
	fb.requests = append(fb.requests, recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})
	rep, ok := fb.replies[r.Method+" "+r.URL.Path]
	fb.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"no route"}`))
		return
	}
	w.WriteHeader(rep.status)
	w.Write([]byte(rep.body))
}

func (fb *fakeBackend) only(t *testing.T) recorded {
	t.Helper()
	fb.mu.Lock()
	defer fb.mu.Unlock()
	require.Len(t, fb.requests, 1)
	return fb.requests[0]
}

func (fb *fakeBackend) count() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.requests)
}
