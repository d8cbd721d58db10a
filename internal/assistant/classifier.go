package assistant

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/ai"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/logger"
)

type Category string

const (
	CategoryFeeding Category = "feeding"
	CategorySleep   Category = "sleep"
	CategoryDiaper  Category = "diaper"
	CategoryHealth  Category = "health"
	CategoryQuery   Category = "query"
	CategoryOther   Category = "other"
)

var knownCategories = map[Category]bool{
	CategoryFeeding: true,
	CategorySleep:   true,
	CategoryDiaper:  true,
	CategoryHealth:  true,
	CategoryQuery:   true,
	CategoryOther:   true,
}

type classifier struct {
	ai  ai.AI
	log *zap.Logger
}

// classify returns the category and the model's normalized answer. An answer
// outside the known set comes back as CategoryOther with ok=false.
func (c *classifier) classify(
	ctx context.Context,
	message string,
	children string,
	now time.Time,
) (cat Category, raw string, ok bool, err error) {

	out, err := c.ai.Complete(ctx, renderPrompt(ClassifierPrompt, children, now), message)
	if err != nil {
		return CategoryOther, "", false, err
	}

	raw = strings.ToLower(strings.TrimSpace(out))
	cat = Category(raw)
	if !knownCategories[cat] {
		c.log.Info("unrecognized category", zap.String("raw", logger.Short(raw)))
		return CategoryOther, raw, false, nil
	}
	return cat, raw, true, nil
}
