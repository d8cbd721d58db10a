package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, zap.NewNop(), nil)
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.c", body["email"])
		assert.Equal(t, "pw", body["password"])

		w.Write([]byte(`{"token":"tok","user":{"id":"u1","email":"a@b.c","name":"Ann","role":"PARENT"}}`))
	})

	res, err := c.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, "u1", res.User.ID)
	assert.Equal(t, "PARENT", res.User.Role)
}

func TestClient_LoginRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid credentials"}`))
	})

	_, err := c.Login(context.Background(), "a@b.c", "bad")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Body, "Invalid credentials")
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClient_RegisterExpectsCreated(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"token":"t2","user":{"id":"u2","email":"x@y.z","name":"X","role":"PARENT"}}`))
	})

	res, err := c.Register(context.Background(), "x@y.z", "pw", "X")
	require.NoError(t, err)
	assert.Equal(t, "u2", res.User.ID)
}

func TestClient_ChildrenSendsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/children", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":"c1","name":"Samar","dateOfBirth":"2024-05-01T00:00:00.000Z","gender":"FEMALE","medicalNotes":null}]`))
	})

	kids, err := c.Children(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, kids, 1)
	assert.Equal(t, "Samar", kids[0].Name)
	assert.Equal(t, 2024, kids[0].DateOfBirth.Year())
}

func TestClient_CreateFeeding(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feeding", r.URL.Path)

		var got FeedingEntry
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "c1", got.ChildID)
		require.NotNil(t, got.Amount)
		assert.Equal(t, 120.0, *got.Amount)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"f1"}`))
	})

	amount := 120.0
	raw, err := c.CreateFeeding(context.Background(), "tok", FeedingEntry{
		ChildID: "c1", StartTime: "2025-03-01T10:00:00Z", Type: "BOTTLE", Amount: &amount,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"f1"}`, string(raw))
}

func TestClient_CreateFeedingWrongStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"childId required"}`))
	})

	_, err := c.CreateFeeding(context.Background(), "tok", FeedingEntry{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, `{"error":"childId required"}`, apiErr.Body)
}

func TestClient_EndSleepNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/sleep/c1/end", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"No active sleep session found"}`))
	})

	_, err := c.EndSleep(context.Background(), "tok", "c1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_LastFeeding(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feeding/last/c2", r.URL.Path)
		w.Write([]byte(`{"startTime":"2025-03-01T08:00:00.000Z","amount":90,"type":"BOTTLE"}`))
	})

	rec, raw, err := c.LastFeeding(context.Background(), "tok", "c2")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), rec.StartTime.UTC())
	require.NotNil(t, rec.Amount)
	assert.Equal(t, 90.0, *rec.Amount)
	assert.NotEmpty(t, raw)
}

func TestClient_LastSleep(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sleep", r.URL.Path)
		assert.Equal(t, "c1", r.URL.Query().Get("childId"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"startTime":"2025-03-01T08:00:00Z","endTime":null,"duration":null,"type":"NAP"}]`))
	})

	rec, raw, err := c.LastSleep(context.Background(), "tok", "c1")
	require.NoError(t, err)
	assert.Nil(t, rec.EndTime)
	assert.Equal(t, "NAP", rec.Type)
	assert.JSONEq(t, `{"startTime":"2025-03-01T08:00:00Z","endTime":null,"duration":null,"type":"NAP"}`, string(raw))
}

func TestClient_LastSleepEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, _, err := c.LastSleep(context.Background(), "tok", "c1")
	assert.ErrorIs(t, err, ErrNotFound)
}
