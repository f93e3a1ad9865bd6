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
	"context"
	"sync"
	"time"
)

// Step identifiers, in execution order. BuildDimensions and
// CheckDuplicates run concurrently; both gate BuildFacts.
const (
	StepLocateInput     = "locate_input"
	StepLoadStaging     = "load_staging"
	StepQualityGate     = "quality_gate"
	StepBuildDimensions = "build_dimensions"
	StepCheckDuplicates = "check_duplicates"
	StepBuildFacts      = "build_facts"
	StepAggregateWeekly = "aggregate_weekly"
	StepReport          = "report"
	StepLogSummary      = "log_summary"
)

// StepStatus is the lifecycle of one step within a run.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusSucceeded StepStatus = "succeeded"
	StepStatusFailed    StepStatus = "failed"
)

// Step is one unit of pipeline work. Retryable steps are re-attempted on
// failure per the run's retry policy; non-retryable steps fail the run on
// their first error.
type Step struct {
	ID        string
	Retryable bool
	Run       func(ctx context.Context, run *Run) error
}

// StepState is the recorded outcome of one step within a run.
type StepState struct {
	mu        sync.Mutex
	ID        string
	Status    StepStatus
	StartTime *time.Time
	EndTime   *time.Time
	Attempts  int
	Err       error
}

func newStepState(id string) *StepState {
	return &StepState{ID: id, Status: StepStatusPending}
}

func (s *StepState) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusRunning
}

func (s *StepState) attempt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Attempts++
}

func (s *StepState) succeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSucceeded
}

func (s *StepState) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Err = err
}

// Outcome returns the status, attempt count, and error of the step.
func (s *StepState) Outcome() (StepStatus, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Status, s.Attempts, s.Err
}

// Duration returns how long the step has been (or was) running.
func (s *StepState) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}
