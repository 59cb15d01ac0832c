package driver

import (
	"errors"
	"fmt"
)

// StepBudget bounds the number of verb firings per case. Each case gets
// its own budget; the check runs before a non-empty delta is applied.
//
// This catches linear explosions (a chain of firings that never cycles
// but never ends) - the counterpart of the chronology guard's zombie
// sweep, which catches tokens that stop moving entirely.
type StepBudget struct {
	maxSteps int
	current  int
}

// NewStepBudget creates a budget with the given limit.
func NewStepBudget(maxSteps int) *StepBudget {
	return &StepBudget{maxSteps: maxSteps}
}

// Check increments the firing counter and validates against the limit.
func (b *StepBudget) Check(caseID string) error {
	b.current++
	if b.current > b.maxSteps {
		return &StepsExceededError{
			CaseID: caseID,
			Steps:  b.current,
			Limit:  b.maxSteps,
		}
	}
	return nil
}

// Current returns the current firing count.
func (b *StepBudget) Current() int {
	return b.current
}

// StepsExceededError is returned when a case exceeds its step budget.
// The offending transaction is aborted before any graph mutation.
type StepsExceededError struct {
	CaseID string
	Steps  int
	Limit  int
}

func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("case %q exceeded step budget: %d steps > %d limit",
		e.CaseID, e.Steps, e.Limit)
}

// IsStepsExceeded reports whether err is a StepsExceededError.
func IsStepsExceeded(err error) bool {
	var e *StepsExceededError
	return errors.As(err, &e)
}
