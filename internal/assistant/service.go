// Package assistant turns a free-text care message into a typed command and
// runs it against the backend on behalf of one user.
package assistant

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/ai"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/logger"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/metrics"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/users"
)

type service struct {
	users      Users
	classifier *classifier
	extractor  *extractor
	executor   *executor
	metrics    metrics.Recorder
	log        *zap.Logger
	loc        *time.Location
	now        func() time.Time
}

type Option func(*service)

// WithClock replaces time.Now for prompts, timestamps and elapsed-time answers.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithLocation sets the zone used for offset-free timestamps. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithMetrics(m metrics.Recorder) Option {
	return func(s *service) {
		if m != nil {
			s.metrics = m
		}
	}
}

func NewService(u Users, b Backend, model ai.AI, log *zap.Logger, opts ...Option) Service {
	log = log.Named("assistant")
	s := &service{
		users:      u,
		classifier: &classifier{ai: model, log: log},
		extractor:  &extractor{ai: model, log: log},
		metrics:    metrics.Nop{},
		log:        log,
		loc:        time.UTC,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.executor = newExecutor(u, b, log, s.loc, s.now)
	return s
}

func (s *service) ProcessMessage(ctx context.Context, in Input) Result {
	log := s.log.With(zap.String("contact", in.ContactChannel), zap.String("display_name", in.DisplayName))
	log.Info("new message", zap.String("user_id", in.UserID), zap.String("text", logger.Short(in.Message)))

	userID := in.UserID
	if userID == "" {
		id, err := s.users.UserIDByContact(in.ContactChannel)
		if err != nil {
			return failure(
				"I don't recognize this number yet. Please log in or register to start tracking.",
				newError(KindUserNotFound, "unknown contact channel", err),
			)
		}
		userID = id
	}
	log = log.With(zap.String("user_id", userID))

	uctx, err := s.users.CreateUserContext(userID, in.ContactChannel)
	if err != nil {
		if !errors.Is(err, users.ErrUserNotFound) {
			log.Error("resolve user context", zap.Error(err))
		}
		return failure(
			"Your session has expired. Please log in again to continue.",
			newError(KindUserNotFound, "no warm context", err),
		)
	}

	if len(uctx.ChildrenNames) == 0 {
		return failure(
			"You don't have any children registered yet. Add a child in the app, then tell me about feedings, sleep, diapers or health.",
			newError(KindNoChildrenRegistered, "empty roster", nil),
		)
	}

	now := s.now().In(s.loc)
	names := s.users.FormatChildNamesForPrompt(uctx.User.ID)

	cat, raw, known, err := s.classifier.classify(ctx, in.Message, names, now)
	if err != nil {
		log.Error("classification failed", zap.Error(err))
		return failure(
			"I couldn't process that message right now. Please try again in a moment.",
			newError(KindModelCallFailed, "classification call failed", err),
		)
	}
	s.metrics.RecordMessage(string(cat))
	log = log.With(zap.String("intent", string(cat)))

	if cat == CategoryOther {
		res := Result{
			Response: "I didn't understand that. You can tell me about feeding, sleep, diapers, or health updates for " + names + ".",
			Intent:   CategoryOther,
		}
		if !known {
			amb := newError(KindClassificationAmbiguous, "unrecognized category "+raw, nil)
			res.Error, res.Kind = amb.Error(), amb.Kind
		}
		return res
	}

	cmd, err := s.extractor.extract(ctx, cat, in.Message, names, now)
	if err != nil {
		var perr *Error
		if !errors.As(err, &perr) {
			perr = newError(KindExtractionParse, "extraction failed", err)
		}
		s.metrics.RecordExtractionFailure(string(cat), string(perr.Kind))
		log.Warn("extraction failed", zap.String("kind", string(perr.Kind)), zap.Error(err))

		res := failure(
			"I understood this is about "+string(cat)+", but had trouble processing the details. Please try rephrasing.",
			perr,
		)
		res.Intent = cat
		return res
	}

	res := s.executor.execute(ctx, uctx, cmd)
	log.Info("message processed",
		zap.Bool("success", res.Success),
		zap.String("kind", string(res.Kind)),
		zap.String("response", logger.Short(res.Response)),
	)
	return res
}
