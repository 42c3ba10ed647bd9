// Package stats accumulates a trainee's performance in one module.
package stats

import (
	"sync"
	"time"
)

// ErrorPenalty is the accuracy lost per counted error.
const ErrorPenalty = 5

// Snapshot is a point-in-time copy of the statistics.
type Snapshot struct {
	Errors         int           `json:"errors"`
	Accuracy       int           `json:"accuracy"`
	CompletedSteps int           `json:"completedSteps"`
	TotalSteps     int           `json:"totalSteps"`
	TimeOnTask     time.Duration `json:"timeOnTask"`
	QuizScore      int           `json:"quizScore"`
	QuizTotal      int           `json:"quizTotal"`
}

// Accumulator counts errors and progress. It is safe for concurrent use.
type Accumulator struct {
	mu        sync.Mutex
	now       func() time.Time
	started   time.Time
	errors    int
	completed map[int]bool
	total     int
	quizScore int
	quizTotal int
}

// New starts an accumulator for a module with totalSteps steps.
func New(totalSteps int) *Accumulator {
	return NewWithClock(totalSteps, time.Now)
}

// NewWithClock is New with an injectable clock.
func NewWithClock(totalSteps int, now func() time.Time) *Accumulator {
	return &Accumulator{
		now:       now,
		started:   now(),
		completed: make(map[int]bool),
		total:     totalSteps,
	}
}

// RecordError counts one wrong-tool error.
func (a *Accumulator) RecordError() {
	a.mu.Lock()
	a.errors++
	a.mu.Unlock()
}

// CompleteStep marks step id as completed. Completing a step twice counts once.
func (a *Accumulator) CompleteStep(id int) {
	a.mu.Lock()
	a.completed[id] = true
	a.mu.Unlock()
}

// RecordQuiz stores a quiz result, replacing any earlier one.
func (a *Accumulator) RecordQuiz(score, total int) {
	a.mu.Lock()
	a.quizScore, a.quizTotal = score, total
	a.mu.Unlock()
}

// Snapshot returns the current statistics.
func (a *Accumulator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		Errors:         a.errors,
		Accuracy:       Accuracy(a.errors),
		CompletedSteps: len(a.completed),
		TotalSteps:     a.total,
		TimeOnTask:     a.now().Sub(a.started),
		QuizScore:      a.quizScore,
		QuizTotal:      a.quizTotal,
	}
}

// Accuracy is 100 minus ErrorPenalty per error, never below zero.
func Accuracy(errors int) int {
	return max(0, 100-ErrorPenalty*errors)
}
