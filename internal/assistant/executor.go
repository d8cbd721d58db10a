package assistant

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/backend"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/users"
)

const okGlyph = "✅ "

type executor struct {
	users   Users
	backend Backend
	log     *zap.Logger
	loc     *time.Location
	now     func() time.Time
	policy  *bluemonday.Policy
}

func newExecutor(u Users, b Backend, log *zap.Logger, loc *time.Location, now func() time.Time) *executor {
	return &executor{
		users:   u,
		backend: b,
		log:     log,
		loc:     loc,
		now:     now,
		policy:  bluemonday.StrictPolicy(),
	}
}

// execute runs cmd for the user in uctx. It never returns an error; every
// failure is folded into the Result.
func (x *executor) execute(ctx context.Context, uctx *users.UserContext, cmd Command) Result {
	var res Result
	switch c := cmd.(type) {
	case *FeedingCommand:
		res = x.feeding(ctx, uctx, c)
	case *SleepCommand:
		res = x.sleep(ctx, uctx, c)
	case *DiaperCommand:
		res = x.diaper(ctx, uctx, c)
	case *HealthCommand:
		res = x.health(ctx, uctx, c)
	case *QueryCommand:
		res = x.query(ctx, uctx, c)
	default:
		x.log.Error("unhandled command", zap.String("type", fmt.Sprintf("%T", cmd)))
		return Result{Response: "Sorry, I can't handle that yet.", Error: fmt.Sprintf("unhandled command %T", cmd)}
	}
	res.Intent = cmd.Intent()
	return res
}

// ------------------------------------------------------------

func (x *executor) feeding(ctx context.Context, uctx *users.UserContext, c *FeedingCommand) Result {
	child, token, res, ok := x.prepare(uctx, c.ChildName)
	if !ok {
		return res
	}

	data, err := x.backend.CreateFeeding(ctx, token, backend.FeedingEntry{
		ChildID:   child.ID,
		StartTime: x.timestamp(c.Time),
		Type:      c.Type,
		Amount:    c.Amount,
		Notes:     x.clean(c.Notes),
	})
	if err != nil {
		return x.backendFailure("Failed to log feeding", err)
	}

	what := strings.ToLower(c.Type)
	if c.Amount != nil {
		what = formatAmount(*c.Amount) + "ml " + what
	}
	return Result{
		Success:  true,
		Response: okGlyph + "Logged feeding for " + child.Name + ": " + what,
		Data:     data,
	}
}

func (x *executor) sleep(ctx context.Context, uctx *users.UserContext, c *SleepCommand) Result {
	child, token, res, ok := x.prepare(uctx, c.ChildName)
	if !ok {
		return res
	}
	kind := strings.ToLower(c.Type)

	switch c.Action {
	case ActionEndSleep:
		data, err := x.backend.EndSleep(ctx, token, child.ID)
		if errors.Is(err, backend.ErrNotFound) {
			return notFound("No active sleep session found for "+child.Name+". Did they go to sleep earlier?",
				"no active sleep session", err)
		}
		if err != nil {
			return x.backendFailure("Failed to record wake up", err)
		}
		return Result{
			Success:  true,
			Response: okGlyph + child.Name + " woke up from " + kind,
			Data:     data,
		}

	case ActionStartSleep:
		notes := x.clean(c.Notes)
		if notes == "" {
			notes = child.Name + " went to sleep"
		}
		data, err := x.backend.CreateSleep(ctx, token, backend.SleepEntry{
			ChildID:   child.ID,
			StartTime: x.timestamp(c.StartTime),
			Type:      c.Type,
			Notes:     notes,
		})
		if err != nil {
			return x.backendFailure("Failed to log sleep start", err)
		}
		return Result{
			Success:  true,
			Response: okGlyph + child.Name + " started " + kind,
			Data:     data,
		}

	default: // ActionCreateSleep
		entry := backend.SleepEntry{
			ChildID:   child.ID,
			StartTime: x.timestamp(c.StartTime),
			Type:      c.Type,
			Notes:     x.clean(c.Notes),
		}
		if c.EndTime != "" {
			end := x.timestamp(c.EndTime)
			entry.EndTime = &end
		}
		if c.Quality != "" {
			q := c.Quality
			entry.Quality = &q
		}
		data, err := x.backend.CreateSleep(ctx, token, entry)
		if err != nil {
			return x.backendFailure("Failed to log sleep", err)
		}
		return Result{
			Success:  true,
			Response: okGlyph + "Sleep logged for " + child.Name,
			Data:     data,
		}
	}
}

func (x *executor) diaper(ctx context.Context, uctx *users.UserContext, c *DiaperCommand) Result {
	child, token, res, ok := x.prepare(uctx, c.ChildName)
	if !ok {
		return res
	}

	entry := backend.DiaperEntry{
		ChildID:   child.ID,
		Timestamp: x.timestamp(c.Time),
		Type:      c.Type,
		Notes:     x.clean(c.Notes),
	}
	if c.Consistency != "" {
		cons := c.Consistency
		entry.Consistency = &cons
	}

	data, err := x.backend.CreateDiaper(ctx, token, entry)
	if err != nil {
		return x.backendFailure("Failed to log diaper change", err)
	}
	return Result{
		Success:  true,
		Response: okGlyph + "Diaper change logged for " + child.Name + ": " + strings.ToLower(c.Type),
		Data:     data,
	}
}

func (x *executor) health(ctx context.Context, uctx *users.UserContext, c *HealthCommand) Result {
	child, token, res, ok := x.prepare(uctx, c.ChildName)
	if !ok {
		return res
	}

	entry := backend.HealthEntry{
		ChildID:   child.ID,
		Timestamp: x.timestamp(c.Time),
		Type:      c.Type,
		Value:     strings.TrimSpace(string(c.Value)),
		Notes:     x.clean(c.Notes),
	}
	if unit := strings.TrimSpace(c.Unit); unit != "" {
		entry.Unit = &unit
	}

	data, err := x.backend.CreateHealth(ctx, token, entry)
	if err != nil {
		return x.backendFailure("Failed to log health data", err)
	}

	value := entry.Value
	if entry.Unit != nil {
		value += *entry.Unit
	}
	return Result{
		Success:  true,
		Response: okGlyph + "Health data logged for " + child.Name + ": " + strings.ToLower(c.Type) + " = " + value,
		Data:     data,
	}
}

// ------------------------------------------------------------

func (x *executor) query(ctx context.Context, uctx *users.UserContext, c *QueryCommand) Result {
	var child *users.Child
	switch {
	case strings.TrimSpace(c.ChildName) != "":
		ch, err := x.resolve(uctx, c.ChildName)
		if err != nil {
			return childFailure(c.ChildName, err)
		}
		child = ch
	case len(uctx.User.Children) == 1:
		only := uctx.User.Children[0]
		child = &only
	}

	switch c.QueryType {
	case QueryLastFeeding, QueryLastDiaper, QueryLastSleep:
	default:
		return Result{
			Success:  true,
			Response: "Query received: " + c.QueryType + " for " + queryTarget(child, uctx.ChildrenNames),
			Command:  c,
		}
	}

	if child == nil {
		return failure("Please specify which child ("+joinOr(uctx.ChildrenNames)+")", &Error{
			Kind:    KindChildNotResolved,
			Message: "query " + c.QueryType + " names no child",
			Choices: uctx.ChildrenNames,
		})
	}
	token, err := x.token(uctx.User.ID)
	if err != nil {
		return failure("Please log in again to continue.", err)
	}

	switch c.QueryType {
	case QueryLastFeeding:
		return x.lastFeeding(ctx, token, child)
	case QueryLastDiaper:
		return x.lastDiaper(ctx, token, child)
	default:
		return x.lastSleep(ctx, token, child)
	}
}

func (x *executor) lastFeeding(ctx context.Context, token string, child *users.Child) Result {
	rec, data, err := x.backend.LastFeeding(ctx, token, child.ID)
	if errors.Is(err, backend.ErrNotFound) {
		return notFound("No feeding records found for "+child.Name, "no feeding records", err)
	}
	if err != nil {
		return x.backendFailure("Failed to look up feedings", err)
	}

	detail := strings.ToLower(rec.Type)
	if rec.Amount != nil {
		detail = formatAmount(*rec.Amount) + "ml " + detail
	}
	return Result{
		Success:  true,
		Response: child.Name + " last ate " + x.ago(rec.StartTime) + " ago (" + detail + ")",
		Data:     data,
	}
}

func (x *executor) lastDiaper(ctx context.Context, token string, child *users.Child) Result {
	rec, data, err := x.backend.LastDiaper(ctx, token, child.ID)
	if errors.Is(err, backend.ErrNotFound) {
		return notFound("No diaper records found for "+child.Name, "no diaper records", err)
	}
	if err != nil {
		return x.backendFailure("Failed to look up diaper changes", err)
	}
	return Result{
		Success:  true,
		Response: child.Name + "'s last diaper change was " + x.ago(rec.Timestamp) + " ago (" + strings.ToLower(rec.Type) + ")",
		Data:     data,
	}
}

func (x *executor) lastSleep(ctx context.Context, token string, child *users.Child) Result {
	rec, data, err := x.backend.LastSleep(ctx, token, child.ID)
	if errors.Is(err, backend.ErrNotFound) {
		return notFound("No sleep records found for "+child.Name, "no sleep records", err)
	}
	if err != nil {
		return x.backendFailure("Failed to look up sleep", err)
	}

	kind := strings.ToLower(rec.Type)
	if rec.EndTime == nil {
		return Result{
			Success:  true,
			Response: child.Name + " has been asleep for " + x.ago(rec.StartTime) + " (" + kind + ")",
			Data:     data,
		}
	}
	return Result{
		Success:  true,
		Response: child.Name + " woke up " + x.ago(*rec.EndTime) + " ago (" + kind + ")",
		Data:     data,
	}
}

// ------------------------------------------------------------

// prepare resolves the child against this user's roster, then the credential.
// On failure ok is false and res is the Result to return.
func (x *executor) prepare(uctx *users.UserContext, name string) (child *users.Child, token string, res Result, ok bool) {
	child, err := x.resolve(uctx, name)
	if err != nil {
		return nil, "", childFailure(name, err), false
	}
	token, err = x.token(uctx.User.ID)
	if err != nil {
		return nil, "", failure("Please log in again to continue.", err), false
	}
	return child, token, Result{}, true
}

func (x *executor) resolve(uctx *users.UserContext, name string) (*users.Child, *Error) {
	child, err := x.users.ResolveChildByName(uctx.User.ID, name)
	if err != nil {
		return nil, &Error{
			Kind:    KindChildNotResolved,
			Message: fmt.Sprintf("no child named %q", name),
			Err:     err,
			Choices: uctx.ChildrenNames,
		}
	}
	return child, nil
}

func (x *executor) token(userID string) (string, *Error) {
	token, err := x.users.Token(userID)
	if err != nil {
		return "", newError(KindCredentialMissing, "no usable credential", err)
	}
	return token, nil
}

func childFailure(name string, err *Error) Result {
	return failure(fmt.Sprintf("I couldn't find a child named %s. Your children are: %s.",
		strings.TrimSpace(name), users.FormatNames(err.Choices)), err)
}

// notFound reports a 404 that means "nothing there" rather than a broken call.
func notFound(resp, msg string, err error) Result {
	return failure(resp, newError(KindRecordNotFound, msg, err))
}

func (x *executor) backendFailure(resp string, err error) Result {
	x.log.Warn("backend call failed", zap.String("response", resp), zap.Error(err))
	detail := err.Error()
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		detail = apiErr.Body
	}
	return Result{
		Response: resp,
		Error:    detail,
		Kind:     KindBackendCallFailed,
	}
}

// timestamp normalizes a model-supplied time to RFC 3339. Missing or
// unparseable input becomes the current time.
func (x *executor) timestamp(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if t, ok := parseTimestamp(raw, x.loc); ok {
			return t.Format(time.RFC3339Nano)
		}
		x.log.Debug("substituting current time",
			zap.String("kind", string(KindTimestampUnparseable)),
			zap.String("raw", raw),
		)
	}
	return x.now().In(x.loc).Format(time.RFC3339Nano)
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// parseTimestamp accepts RFC 3339 (including a trailing Z) and offset-free
// ISO forms, which are read in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ago renders the elapsed time since t as "Nh Mm", truncated and never negative.
func (x *executor) ago(t time.Time) string {
	d := x.now().Sub(t)
	if d < 0 {
		d = 0
	}
	return strconv.Itoa(int(d.Hours())) + "h " + strconv.Itoa(int(d.Minutes())%60) + "m"
}

// clean strips markup from model-produced notes and returns plain text.
func (x *executor) clean(notes string) string {
	return strings.TrimSpace(html.UnescapeString(x.policy.Sanitize(notes)))
}

func formatAmount(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}

func queryTarget(child *users.Child, names []string) string {
	if child != nil {
		return child.Name
	}
	if len(names) == 2 {
		return "both children"
	}
	return "all children"
}

// joinOr is "A", "A or B", "A, B, or C".
func joinOr(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
	}
}
