package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// Payloads sent to the log endpoints. Times are ISO-8601 strings.

type FeedingEntry struct {
	ChildID   string   `json:"childId"`
	StartTime string   `json:"startTime"`
	Type      string   `json:"type"`
	Amount    *float64 `json:"amount"`
	Notes     string   `json:"notes"`
}

type SleepEntry struct {
	ChildID   string  `json:"childId"`
	StartTime string  `json:"startTime"`
	EndTime   *string `json:"endTime,omitempty"`
	Type      string  `json:"type"`
	Quality   *string `json:"quality,omitempty"`
	Notes     string  `json:"notes"`
}

type DiaperEntry struct {
	ChildID     string  `json:"childId"`
	Timestamp   string  `json:"timestamp"`
	Type        string  `json:"type"`
	Consistency *string `json:"consistency"`
	Notes       string  `json:"notes"`
}

type HealthEntry struct {
	ChildID   string  `json:"childId"`
	Timestamp string  `json:"timestamp"`
	Type      string  `json:"type"`
	Value     string  `json:"value"`
	Unit      *string `json:"unit"`
	Notes     string  `json:"notes"`
}

// Records read back from the backend (only the fields the assistant reports on).

type FeedingRecord struct {
	StartTime time.Time `json:"startTime"`
	Amount    *float64  `json:"amount"`
	Type      string    `json:"type"`
}

type DiaperRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

type SleepRecord struct {
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Duration  *int       `json:"duration"`
	Type      string     `json:"type"`
}

func (c *Client) CreateFeeding(ctx context.Context, token string, e FeedingEntry) (json.RawMessage, error) {
	return c.send(ctx, "create_feeding", http.MethodPost, "/feeding", token, e, http.StatusCreated, nil)
}

// CreateSleep opens a session (no EndTime) or records a finished one.
func (c *Client) CreateSleep(ctx context.Context, token string, e SleepEntry) (json.RawMessage, error) {
	return c.send(ctx, "create_sleep", http.MethodPost, "/sleep", token, e, http.StatusCreated, nil)
}

// EndSleep closes the child's open session. A child with no open session
// yields an error matching ErrNotFound.
func (c *Client) EndSleep(ctx context.Context, token, childID string) (json.RawMessage, error) {
	return c.send(ctx, "end_sleep", http.MethodPut, "/sleep/"+url.PathEscape(childID)+"/end", token, nil, http.StatusOK, nil)
}

func (c *Client) CreateDiaper(ctx context.Context, token string, e DiaperEntry) (json.RawMessage, error) {
	return c.send(ctx, "create_diaper", http.MethodPost, "/diapers", token, e, http.StatusCreated, nil)
}

func (c *Client) CreateHealth(ctx context.Context, token string, e HealthEntry) (json.RawMessage, error) {
	return c.send(ctx, "create_health", http.MethodPost, "/health", token, e, http.StatusCreated, nil)
}

func (c *Client) LastFeeding(ctx context.Context, token, childID string) (*FeedingRecord, json.RawMessage, error) {
	var rec FeedingRecord
	raw, err := c.send(ctx, "last_feeding", http.MethodGet, "/feeding/last/"+url.PathEscape(childID), token, nil, http.StatusOK, &rec)
	if err != nil {
		return nil, nil, err
	}
	return &rec, raw, nil
}

func (c *Client) LastDiaper(ctx context.Context, token, childID string) (*DiaperRecord, json.RawMessage, error) {
	var rec DiaperRecord
	raw, err := c.send(ctx, "last_diaper", http.MethodGet, "/diapers/last/"+url.PathEscape(childID), token, nil, http.StatusOK, &rec)
	if err != nil {
		return nil, nil, err
	}
	return &rec, raw, nil
}

// LastSleep returns the most recent sleep log, open or closed.
func (c *Client) LastSleep(ctx context.Context, token, childID string) (*SleepRecord, json.RawMessage, error) {
	q := url.Values{}
	q.Set("childId", childID)
	q.Set("limit", "1")

	var recs []SleepRecord
	raw, err := c.send(ctx, "last_sleep", http.MethodGet, "/sleep?"+q.Encode(), token, nil, http.StatusOK, &recs)
	if err != nil {
		return nil, nil, err
	}
	if len(recs) == 0 {
		return nil, nil, &APIError{Operation: "last_sleep", Status: http.StatusNotFound, Body: "no sleep logs"}
	}

	first, err := firstElement(raw)
	if err != nil {
		return nil, nil, err
	}
	return &recs[0], first, nil
}

func firstElement(raw json.RawMessage) (json.RawMessage, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) == 0 {
		return raw, err
	}
	return arr[0], nil
}
