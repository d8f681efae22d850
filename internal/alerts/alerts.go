package alerts

import (
	"github.com/Barton98/Energy-management-system/internal/models"
)

// DefaultTempThreshold is the fixed over-temperature threshold in °C.
const DefaultTempThreshold = 80.0

// Rule defines a simple threshold-based alert rule.
type Rule struct {
	Kind      string
	Threshold float64
}

// Engine evaluates readings against the configured rules. The only
// rule today is the fixed TEMP_HIGH threshold.
type Engine struct {
	tempRule Rule
}

// NewEngine returns an engine with the default temperature rule.
func NewEngine() *Engine {
	return &Engine{
		tempRule: Rule{Kind: models.AlertKindTempHigh, Threshold: DefaultTempThreshold},
	}
}

// Evaluate returns one alert when the reading's temperature is present
// and strictly above the threshold, nil otherwise. A value exactly at
// the threshold does not trigger. Every breach produces an independent
// alert; there is no deduplication window.
func (e *Engine) Evaluate(r *models.Reading) *models.Alert {
	if r.TempC == nil {
		return nil
	}

	if *r.TempC <= e.tempRule.Threshold {
		return nil
	}

	return &models.Alert{
		Kind:      e.tempRule.Kind,
		Value:     *r.TempC,
		Timestamp: r.Timestamp,
	}
}
