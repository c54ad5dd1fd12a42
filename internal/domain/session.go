package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutSession is one concrete, timestamped attempt at performing a Workout.
// Invariant: at most one session per user has Active=true and Completed=false
// at any instant. A completed session is terminal; starting again always
// creates a fresh session.
type WorkoutSession struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	ProgressID primitive.ObjectID `bson:"progressId" json:"progressId"` // Owning ProgramProgress
	WorkoutID  primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	Date       time.Time          `bson:"date" json:"date"`
	Active     bool               `bson:"active" json:"active"`
	Completed  bool               `bson:"completed" json:"completed"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseLog is the per-session record of actual performance for one
// WorkoutExercise. Logs are created eagerly when the session starts, one per
// prescribed exercise.
type ExerciseLog struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID         primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	WorkoutExerciseID primitive.ObjectID `bson:"workoutExerciseId" json:"workoutExerciseId"`
	ExerciseID        primitive.ObjectID `bson:"exerciseId" json:"exerciseId"` // Denormalized from the prescription
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`         // Denormalized for analytics queries
	SetsCompleted     int                `bson:"setsCompleted" json:"setsCompleted"`
	Note              string             `bson:"note,omitempty" json:"note,omitempty"`
	Order             int                `bson:"order" json:"order"` // Mirrors the prescription order
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseSet is one logged rep-set within an ExerciseLog.
// Invariant: set numbers within one log are a contiguous run starting at 1.
// Sets are appended at the end and removed from the end only (stack
// discipline), never from the middle.
//
// Reps and WeightUsed are nil until the user logs actual performance; a nil
// value means "not yet logged" and is distinct from a logged zero.
type ExerciseSet struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	LogID         primitive.ObjectID  `bson:"logId" json:"logId"`
	SessionID     primitive.ObjectID  `bson:"sessionId" json:"sessionId"`   // Denormalized
	ExerciseID    primitive.ObjectID  `bson:"exerciseId" json:"exerciseId"` // Denormalized for 1RM queries
	UserID        primitive.ObjectID  `bson:"userId" json:"userId"`         // Denormalized for analytics queries
	SetNumber     int                 `bson:"setNumber" json:"setNumber"`   // 1-based, contiguous within the log
	Reps          *int                `bson:"reps,omitempty" json:"reps,omitempty"`
	WeightUsed    *float64            `bson:"weightUsed,omitempty" json:"weightUsed,omitempty"`
	IsLogged      bool                `bson:"isLogged" json:"isLogged"`
	VideoUploadID *primitive.ObjectID `bson:"videoUploadId,omitempty" json:"videoUploadId,omitempty"`
	// PerformedAt mirrors the session date so analytics can bucket sets by
	// calendar day without joining back to the session.
	PerformedAt time.Time `bson:"performedAt" json:"performedAt"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// EstimatedOneRepMax computes the Epley one-rep-max estimate for the set, or
// false when reps or weight were never logged.
func (s *ExerciseSet) EstimatedOneRepMax() (float64, bool) {
	if s.Reps == nil || s.WeightUsed == nil {
		return 0, false
	}
	return *s.WeightUsed * (1 + float64(*s.Reps)/30.0), true
}

// Tonnage returns weight x reps for the set, or 0 when either is unlogged.
func (s *ExerciseSet) Tonnage() float64 {
	if s.Reps == nil || s.WeightUsed == nil {
		return 0
	}
	return *s.WeightUsed * float64(*s.Reps)
}
