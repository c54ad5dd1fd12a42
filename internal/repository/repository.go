package repository

import (
	"context"
	"time"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("conflict")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TxnRunner executes fn inside a single storage transaction. Every repository
// call made with the context passed to fn participates in that transaction;
// any error returned from fn aborts it, so partial writes never survive.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	SetPublicKey(ctx context.Context, id primitive.ObjectID, publicKey string) error
	SetProfileImageKey(ctx context.Context, id primitive.ObjectID, objectKey string) error
	AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// GetByName looks up an exercise by exact name and creator. A nil creator
	// matches only universal (creator-less) exercises.
	GetByName(ctx context.Context, name string, creatorID *primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	// GetVisibleToUser returns universal exercises plus the user's own.
	GetVisibleToUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id, creatorID primitive.ObjectID) error // Ensure creator owns the exercise
}

// ProgramRepository defines the interface for interacting with program data.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	GetByCreatorID(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Program, error)
	Update(ctx context.Context, program *domain.Program) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Workout, error) // Sorted by order
	GetIDsByProgramID(ctx context.Context, programID primitive.ObjectID) ([]primitive.ObjectID, error)
	MaxOrderByProgramID(ctx context.Context, programID primitive.ObjectID) (int, error) // 0 when the program has no workouts
	UpdateOrder(ctx context.Context, id primitive.ObjectID, order int) error
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error
}

// WorkoutExerciseRepository manages the per-workout exercise prescriptions.
type WorkoutExerciseRepository interface {
	Create(ctx context.Context, we *domain.WorkoutExercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error)
	GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutExercise, error) // Sorted by order
	MaxOrderByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) (int, error)
	UpdateOrder(ctx context.Context, id primitive.ObjectID, order int) error
	Update(ctx context.Context, we *domain.WorkoutExercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) error
}

// ProgressRepository manages per-user program engagement rows.
type ProgressRepository interface {
	Create(ctx context.Context, progress *domain.ProgramProgress) (primitive.ObjectID, error)
	GetByUserAndProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.ProgramProgress, error)
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.ProgramProgress, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	// DeactivateOthers clears the active flag on every progress row for the
	// user except the one referencing excludeProgramID.
	DeactivateOthers(ctx context.Context, userID, excludeProgramID primitive.ObjectID) error
	DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error
}

// SessionRepository manages workout sessions.
type SessionRepository interface {
	// Create inserts a new session. Returns ErrConflict when the user already
	// has an active, uncompleted session (backed by a partial unique index).
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error)
	Complete(ctx context.Context, id primitive.ObjectID) error // Sets completed=true, active=false
	GetByUserSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.WorkoutSession, error)
	GetIDsByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) error
}

// ExerciseLogRepository manages per-session exercise logs.
type ExerciseLogRepository interface {
	Create(ctx context.Context, log *domain.ExerciseLog) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseLog, error)
	GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.ExerciseLog, error) // Sorted by order
	// IncrementSetsCompleted adjusts the counter by delta, floored at 0.
	IncrementSetsCompleted(ctx context.Context, id primitive.ObjectID, delta int) error
	SetNote(ctx context.Context, id primitive.ObjectID, note string) error
	DeleteBySessionIDs(ctx context.Context, sessionIDs []primitive.ObjectID) error
}

// ExerciseSetRepository manages individual logged sets.
type ExerciseSetRepository interface {
	Create(ctx context.Context, set *domain.ExerciseSet) (primitive.ObjectID, error)
	CreateMany(ctx context.Context, sets []domain.ExerciseSet) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseSet, error)
	GetByLogID(ctx context.Context, logID primitive.ObjectID) ([]domain.ExerciseSet, error) // Sorted by setNumber
	GetLastByLogID(ctx context.Context, logID primitive.ObjectID) (*domain.ExerciseSet, error)
	CountByLogID(ctx context.Context, logID primitive.ObjectID) (int, error)
	UpdatePerformance(ctx context.Context, id primitive.ObjectID, reps *int, weight *float64) error
	SetVideoUploadID(ctx context.Context, id primitive.ObjectID, uploadID *primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetByUserSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.ExerciseSet, error)
	GetByUserAndExerciseSince(ctx context.Context, userID, exerciseID primitive.ObjectID, since time.Time) ([]domain.ExerciseSet, error)
	// GetLoggedExerciseIDsByUser returns the distinct exercise IDs for which
	// the user has at least one set with a logged weight.
	GetLoggedExerciseIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteBySessionIDs(ctx context.Context, sessionIDs []primitive.ObjectID) error
}

// UploadRepository defines the interface for interacting with upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
