package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout represents an ordered set of prescribed exercises within a Program.
type Workout struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID primitive.ObjectID `bson:"programId" json:"programId"`
	CreatorID primitive.ObjectID `bson:"creatorId" json:"creatorId"` // Denormalized for easier query/auth
	Name      string             `bson:"name" json:"name"`
	// Order is the explicit ordering key within the program. Uniqueness is not
	// enforced; gaps are allowed and ties break by insertion.
	Order       int       `bson:"order" json:"order"`
	AIGenerated bool      `bson:"aiGenerated" json:"aiGenerated"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutExercise is the prescription of one Exercise within a Workout
// (sets x reps), distinct from logged performance.
type WorkoutExercise struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID  primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Sets       int                `bson:"sets" json:"sets"`
	Reps       int                `bson:"reps" json:"reps"`
	Note       string             `bson:"note,omitempty" json:"note,omitempty"`
	Order      int                `bson:"order" json:"order"` // Ordering key within the workout
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
