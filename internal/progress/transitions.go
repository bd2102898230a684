// Package progress implements the workbook progress engine: the lesson and
// module state machine, completion criteria, weighted percentages, streaks
// and learning analytics. Every function is pure; callers load snapshots
// from storage, apply the engine, and persist the returned deltas under an
// optimistic version check.
package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// DefaultPassingScore applies when a lesson does not configure its own bar.
const DefaultPassingScore = 70.0

// TransitionInput carries the snapshot fields the transition guards inspect.
type TransitionInput struct {
	Now              time.Time
	PrerequisitesMet bool
	CompletionRate   float64
	Criteria         CriteriaCheck
	AssessmentScore  *float64
	PassingScore     float64
	Attempts         int
	MaxAttempts      *int
}

// TransitionResult lists only the fields the caller should merge into the
// stored record. Nil pointers mean "leave untouched".
type TransitionResult struct {
	Status         models.ProgressStatus
	StartedAt      *time.Time
	CompletedAt    *time.Time
	LastAccessedAt *time.Time
	UnlockedAt     *time.Time
	UpdatedAt      time.Time
}

// TransitionError reports a rejected transition together with every guard
// that failed, so callers can surface actionable reasons instead of a
// generic failure.
type TransitionError struct {
	From    models.ProgressStatus
	To      models.ProgressStatus
	Reasons []string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s: %s", e.From, e.To, strings.Join(e.Reasons, "; "))
}

type edge struct {
	from models.ProgressStatus
	to   models.ProgressStatus
}

type transition struct {
	guard  func(in TransitionInput) []string
	effect func(in TransitionInput, res *TransitionResult)
}

// transitionTable is the complete set of legal edges. Anything absent from
// the table is rejected.
var transitionTable = map[edge]transition{
	{models.ProgressNotStarted, models.ProgressInProgress}: {
		effect: func(in TransitionInput, res *TransitionResult) {
			now := in.Now
			res.StartedAt = &now
			res.LastAccessedAt = &now
		},
	},
	{models.ProgressNotStarted, models.ProgressLocked}: {
		guard: func(in TransitionInput) []string {
			if in.PrerequisitesMet {
				return []string{"prerequisites are already satisfied"}
			}
			return nil
		},
	},
	{models.ProgressLocked, models.ProgressNotStarted}: {
		guard: func(in TransitionInput) []string {
			if !in.PrerequisitesMet {
				return []string{"prerequisites are not yet satisfied"}
			}
			return nil
		},
		effect: func(in TransitionInput, res *TransitionResult) {
			now := in.Now
			res.UnlockedAt = &now
		},
	},
	{models.ProgressInProgress, models.ProgressCompleted}: {
		guard: func(in TransitionInput) []string {
			var reasons []string
			if in.CompletionRate < 100 {
				reasons = append(reasons, fmt.Sprintf("completion rate is %.1f%%, must reach 100%%", in.CompletionRate))
			}
			if !in.Criteria.Met {
				reasons = append(reasons, in.Criteria.Missing...)
			}
			return reasons
		},
		effect: func(in TransitionInput, res *TransitionResult) {
			now := in.Now
			res.CompletedAt = &now
		},
	},
	{models.ProgressInProgress, models.ProgressFailed}: {
		guard: func(in TransitionInput) []string {
			if in.AssessmentScore == nil {
				return []string{"no assessment score recorded"}
			}
			passing := in.PassingScore
			if passing <= 0 {
				passing = DefaultPassingScore
			}
			if *in.AssessmentScore >= passing {
				return []string{fmt.Sprintf("assessment score %.1f meets the passing score %.1f", *in.AssessmentScore, passing)}
			}
			return nil
		},
	},
	{models.ProgressFailed, models.ProgressInProgress}: {
		guard: func(in TransitionInput) []string {
			if in.MaxAttempts != nil && in.Attempts >= *in.MaxAttempts {
				return []string{fmt.Sprintf("all %d attempts have been used", *in.MaxAttempts)}
			}
			return nil
		},
	},
	// Retakes of completed lessons are always allowed.
	{models.ProgressCompleted, models.ProgressInProgress}: {},
}

// ApplyTransition validates a requested status change against the transition
// table and returns the delta to merge. It never mutates its inputs; a
// rejection carries the full list of failed guards.
func ApplyTransition(current, target models.ProgressStatus, in TransitionInput) (TransitionResult, error) {
	if !current.Valid() {
		return TransitionResult{}, &TransitionError{From: current, To: target, Reasons: []string{fmt.Sprintf("unknown status %q", current)}}
	}
	if !target.Valid() {
		return TransitionResult{}, &TransitionError{From: current, To: target, Reasons: []string{fmt.Sprintf("unknown status %q", target)}}
	}

	t, ok := transitionTable[edge{current, target}]
	if !ok {
		return TransitionResult{}, &TransitionError{
			From:    current,
			To:      target,
			Reasons: []string{fmt.Sprintf("no transition from %s to %s", current, target)},
		}
	}

	if t.guard != nil {
		if reasons := t.guard(in); len(reasons) > 0 {
			return TransitionResult{}, &TransitionError{From: current, To: target, Reasons: reasons}
		}
	}

	result := TransitionResult{Status: target, UpdatedAt: in.Now}
	if t.effect != nil {
		t.effect(in, &result)
	}
	return result, nil
}

// CanTransition reports whether an edge exists in the table, ignoring guards.
func CanTransition(current, target models.ProgressStatus) bool {
	_, ok := transitionTable[edge{current, target}]
	return ok
}
