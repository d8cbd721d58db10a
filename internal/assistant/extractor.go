package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/ai"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/logger"
)

type extractor struct {
	ai  ai.AI
	log *zap.Logger
}

var extractionPrompts = map[Category]string{
	CategoryFeeding: FeedingPrompt,
	CategorySleep:   SleepPrompt,
	CategoryDiaper:  DiaperPrompt,
	CategoryHealth:  HealthPrompt,
	CategoryQuery:   QueryPrompt,
}

// extract turns message into the command for cat. Failures are *Error with
// KindModelCallFailed, KindExtractionParse or KindExtractionValidation.
func (e *extractor) extract(
	ctx context.Context,
	cat Category,
	message string,
	children string,
	now time.Time,
) (Command, error) {

	cmd, err := newCommand(cat)
	if err != nil {
		return nil, err
	}

	raw, err := e.ai.Complete(ctx, renderPrompt(extractionPrompts[cat], children, now), message)
	if err != nil {
		return nil, newError(KindModelCallFailed, "model call failed", err)
	}

	obj, err := ai.DecodeObject(raw)
	if err != nil {
		e.log.Warn("unparseable model output",
			zap.String("intent", string(cat)),
			zap.String("raw", logger.Short(raw)),
		)
		return nil, newError(KindExtractionParse, "model output is not JSON", err)
	}

	if err := json.Unmarshal(obj, cmd); err != nil {
		return nil, newError(KindExtractionValidation, "field has the wrong type", err)
	}
	if err := cmd.validate(); err != nil {
		return nil, newError(KindExtractionValidation, "command failed validation", err)
	}

	e.log.Debug("command extracted",
		zap.String("intent", string(cat)),
		zap.String("command", logger.Short(string(obj))),
	)
	return cmd, nil
}

func newCommand(cat Category) (Command, error) {
	switch cat {
	case CategoryFeeding:
		return &FeedingCommand{}, nil
	case CategorySleep:
		return &SleepCommand{}, nil
	case CategoryDiaper:
		return &DiaperCommand{}, nil
	case CategoryHealth:
		return &HealthCommand{}, nil
	case CategoryQuery:
		return &QueryCommand{}, nil
	}
	return nil, errors.New("no command for category " + string(cat))
}
