// Package engine implements the state-transition aggregation engine: the
// single-pass calculators that derive development time, returns, testing
// cycles and story-point statistics from a work item's revision history.
//
// All computation is deterministic and per-item independent: the engine
// never blocks, never mutates its inputs, and produces the same output for
// the same revision history, which is what makes chunked parallel
// processing and resume safe.
package engine

import (
	"go.uber.org/zap"

	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/calendar"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"
)

// Engine runs the per-item calculators under one working calendar and
// state mapping. A single Engine is safe for concurrent use: it holds no
// mutable state.
type Engine struct {
	cal    *calendar.Calendar
	states model.StateMap
	logger *zap.SugaredLogger
}

// New creates an engine instance.
func New(cal *calendar.Calendar, states model.StateMap, logger *zap.SugaredLogger) *Engine {
	if states == nil {
		states = model.DefaultStateMap()
	}
	return &Engine{
		cal:    cal,
		states: states,
		logger: logger,
	}
}
