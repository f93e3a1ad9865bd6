/*
Copyright © 2021 A. Jensen <jensen.aaro@gmail.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package pipeline

import (
	"sync"
	"time"
)

// Context value keys passed between steps. The run context is the only
// state steps share; all domain data lives in the warehouse.
const (
	ValueInputPath      = "input_path"
	ValueInputRows      = "input_rows"
	ValueExpectedRows   = "expected_rows"
	ValueStagedRows     = "staged_rows"
	ValueNewInstruments = "new_instruments"
	ValueNewDates       = "new_dates"
	ValueFactRows       = "fact_rows"
	ValueWeeks          = "weeks"
	ValueVolatilityRows = "volatility_rows"
	ValueReportMessage  = "report_message"
)

// RunStatus is the lifecycle of one pipeline run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run holds the transient state of one pipeline execution: step outcomes
// and the key-value context steps pass to their successors. It lives for
// exactly one run and owns no domain data.
type Run struct {
	mu        sync.RWMutex
	ID        string
	Status    RunStatus
	StartTime time.Time
	EndTime   *time.Time
	Err       error

	order  []string
	steps  map[string]*StepState
	values map[string]interface{}
}

// NewRun creates a pending run tracking the given steps in order.
func NewRun(id string, stepIDs ...string) *Run {
	steps := make(map[string]*StepState, len(stepIDs))
	for _, sid := range stepIDs {
		steps[sid] = newStepState(sid)
	}
	return &Run{
		ID:     id,
		Status: RunStatusPending,
		order:  stepIDs,
		steps:  steps,
		values: make(map[string]interface{}),
	}
}

func (r *Run) start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

func (r *Run) complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusSucceeded
}

func (r *Run) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusFailed
	r.Err = err
}

// StepIDs returns the run's step identifiers in execution order.
func (r *Run) StepIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Step returns the state of the given step, or nil for an unknown id.
func (r *Run) Step(id string) *StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.steps[id]
}

// SetValue stores a context value for successor steps.
func (r *Run) SetValue(key string, val interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = val
}

// Value retrieves a context value stored by an earlier step.
func (r *Run) Value(key string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	val, ok := r.values[key]
	return val, ok
}

// Int64Value retrieves an int64 context value, returning 0 when absent or
// of another type.
func (r *Run) Int64Value(key string) int64 {
	v, ok := r.Value(key)
	if !ok {
		return 0
	}
	n, _ := v.(int64)
	return n
}

// StringValue retrieves a string context value, returning "" when absent.
func (r *Run) StringValue(key string) string {
	v, ok := r.Value(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
