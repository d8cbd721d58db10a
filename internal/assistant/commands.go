package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Command is one of FeedingCommand, SleepCommand, DiaperCommand,
// HealthCommand or QueryCommand. The set is closed.
type Command interface {
	Intent() Category
	// Child is the free-text child reference, possibly empty for queries.
	Child() string
	validate() error
}

const (
	ActionCreateFeeding = "create_feeding_log"
	ActionStartSleep    = "start_sleep"
	ActionEndSleep      = "end_sleep"
	ActionCreateSleep   = "create_sleep_log"
	ActionCreateDiaper  = "create_diaper_log"
	ActionCreateHealth  = "create_health_log"
	ActionQuery         = "query"
)

var (
	feedingTypes      = []string{"BREAST", "BOTTLE", "FORMULA", "MIXED", "SOLID"}
	sleepTypes        = []string{"NAP", "NIGHT"}
	sleepQualities    = []string{"DEEP", "RESTLESS", "INTERRUPTED"}
	diaperTypes       = []string{"WET", "DIRTY", "MIXED"}
	diaperConsistency = []string{"NORMAL", "WATERY", "HARD"}
	healthTypes       = []string{"TEMPERATURE", "MEDICINE", "WEIGHT", "HEIGHT", "SYMPTOM"}
)

const defaultSleepType = "NAP"

// Query types with a real lookup behind them.
const (
	QueryLastFeeding = "last_feeding"
	QueryLastSleep   = "last_sleep"
	QueryLastDiaper  = "last_diaper"
)

type FeedingCommand struct {
	Action    string   `json:"action"`
	ChildName string   `json:"child_name"`
	Amount    *float64 `json:"amount"`
	Type      string   `json:"type"`
	Time      string   `json:"time,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

func (c *FeedingCommand) Intent() Category { return CategoryFeeding }
func (c *FeedingCommand) Child() string { return c.ChildName }

func (c *FeedingCommand) validate() error {
	if err := requireAction(c.Action, ActionCreateFeeding); err != nil {
		return err
	}
	if err := requireChild(c.ChildName); err != nil {
		return err
	}
	if c.Amount != nil && *c.Amount < 0 {
		return fmt.Errorf("amount must not be negative, got %v", *c.Amount)
	}
	var err error
	c.Type, err = requireEnum("type", c.Type, feedingTypes)
	return err
}

type SleepCommand struct {
	Action    string `json:"action"`
	ChildName string `json:"child_name"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Type      string `json:"type"`
	Quality   string `json:"quality,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func (c *SleepCommand) Intent() Category { return CategorySleep }
func (c *SleepCommand) Child() string { return c.ChildName }

func (c *SleepCommand) validate() error {
	if err := requireAction(c.Action, ActionStartSleep, ActionEndSleep, ActionCreateSleep); err != nil {
		return err
	}
	if err := requireChild(c.ChildName); err != nil {
		return err
	}

	if strings.TrimSpace(c.Type) == "" {
		c.Type = defaultSleepType
	}
	var err error
	if c.Type, err = requireEnum("type", c.Type, sleepTypes); err != nil {
		return err
	}
	if c.Quality, err = optionalEnum("quality", c.Quality, sleepQualities); err != nil {
		return err
	}

	if c.Action == ActionCreateSleep && strings.TrimSpace(c.StartTime) == "" {
		return fmt.Errorf("start_time is required for %s", ActionCreateSleep)
	}
	return nil
}

type DiaperCommand struct {
	Action      string `json:"action"`
	ChildName   string `json:"child_name"`
	Type        string `json:"type"`
	Consistency string `json:"consistency,omitempty"`
	Time        string `json:"time,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func (c *DiaperCommand) Intent() Category { return CategoryDiaper }
func (c *DiaperCommand) Child() string { return c.ChildName }

func (c *DiaperCommand) validate() error {
	if err := requireAction(c.Action, ActionCreateDiaper); err != nil {
		return err
	}
	if err := requireChild(c.ChildName); err != nil {
		return err
	}
	var err error
	if c.Type, err = requireEnum("type", c.Type, diaperTypes); err != nil {
		return err
	}
	c.Consistency, err = optionalEnum("consistency", c.Consistency, diaperConsistency)
	return err
}

type HealthCommand struct {
	Action    string `json:"action"`
	ChildName string `json:"child_name"`
	Type      string `json:"type"`
	Value     Text   `json:"value"`
	Unit      string `json:"unit,omitempty"`
	Time      string `json:"time,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func (c *HealthCommand) Intent() Category { return CategoryHealth }
func (c *HealthCommand) Child() string { return c.ChildName }

func (c *HealthCommand) validate() error {
	if err := requireAction(c.Action, ActionCreateHealth); err != nil {
		return err
	}
	if err := requireChild(c.ChildName); err != nil {
		return err
	}
	var err error
	if c.Type, err = requireEnum("type", c.Type, healthTypes); err != nil {
		return err
	}
	if strings.TrimSpace(string(c.Value)) == "" {
		return fmt.Errorf("value is required")
	}
	return nil
}

type QueryCommand struct {
	Action    string         `json:"action"`
	QueryType string         `json:"query_type"`
	ChildName string         `json:"child_name,omitempty"`
	Details   map[string]any `json:"details"`
}

func (c *QueryCommand) Intent() Category { return CategoryQuery }
func (c *QueryCommand) Child() string { return c.ChildName }

func (c *QueryCommand) validate() error {
	if err := requireAction(c.Action, ActionQuery); err != nil {
		return err
	}
	c.QueryType = strings.ToLower(strings.TrimSpace(c.QueryType))
	if c.QueryType == "" {
		return fmt.Errorf("query_type is required")
	}
	if c.Details == nil {
		c.Details = map[string]any{}
	}
	return nil
}

// Text is a string that also accepts a bare JSON number, so
// {"value": 38.2} and {"value": "38.2"} decode the same.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("value must be a string or number, got %s", b)
	}
	*t = Text(b)
	return nil
}

func requireAction(got string, allowed ...string) error {
	if !slices.Contains(allowed, got) {
		return fmt.Errorf("action must be one of %s, got %q", strings.Join(allowed, ", "), got)
	}
	return nil
}

func requireChild(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("child_name is required")
	}
	return nil
}

// requireEnum upper-cases v and checks it against allowed.
func requireEnum(field, v string, allowed []string) (string, error) {
	norm := strings.ToUpper(strings.TrimSpace(v))
	if !slices.Contains(allowed, norm) {
		return "", fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(allowed, ", "), v)
	}
	return norm, nil
}

func optionalEnum(field, v string, allowed []string) (string, error) {
	if strings.TrimSpace(v) == "" {
		return "", nil
	}
	return requireEnum(field, v, allowed)
}
