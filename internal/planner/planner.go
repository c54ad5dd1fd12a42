package planner

import (
	"context"
	"errors"
)

// --- Error Definitions ---
var (
	// ErrUpstream marks a failure of the external generator itself (timeout,
	// non-2xx reply). The caller decides whether to retry; the core never does.
	ErrUpstream = errors.New("plan generator unavailable")
	// ErrMalformedPlan marks generator output that could not be decoded.
	ErrMalformedPlan = errors.New("plan generator returned malformed output")
)

// GeneratedExercise is one prescribed exercise in generator output.
type GeneratedExercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps int    `json:"reps"`
	Note string `json:"note,omitempty"`
}

// GeneratedWorkout is one workout in generator output: a name and a flat
// exercise list.
type GeneratedWorkout struct {
	Name      string              `json:"name"`
	Exercises []GeneratedExercise `json:"exercises"`
}

// GeneratedProgram is a full multi-workout program in generator output.
type GeneratedProgram struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Workouts    []GeneratedWorkout `json:"workouts"`
}

// Planner is the opaque plan-generator collaborator. Implementations talk to
// whatever AI backend is configured; the core only sees structured output.
type Planner interface {
	GenerateProgram(ctx context.Context, prompt string) (*GeneratedProgram, error)
	GenerateWorkout(ctx context.Context, prompt string) (*GeneratedWorkout, error)
}
