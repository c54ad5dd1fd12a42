package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound        = errors.New("exercise not found")
	ErrWorkoutExerciseNotFound = errors.New("workout exercise not found")
	ErrNameRequired            = errors.New("name is required")
	ErrNotOwner                = errors.New("user does not own this resource")
	ErrExerciseNotEditable     = errors.New("universal exercises cannot be modified")
)

// --- View Models ---

// WorkoutExerciseDetails pairs a prescription with its exercise for display.
type WorkoutExerciseDetails struct {
	domain.WorkoutExercise
	ExerciseName string `json:"exerciseName"`
}

// WorkoutDetails is a workout plus its ordered prescriptions.
type WorkoutDetails struct {
	domain.Workout
	Exercises []WorkoutExerciseDetails `json:"exercises"`
}

// ProgramDetails is a program plus its ordered workouts.
type ProgramDetails struct {
	domain.Program
	Workouts []WorkoutDetails `json:"workouts"`
}

// OrderUpdate is one (id, order) pair in a reorder request.
type OrderUpdate struct {
	ID    primitive.ObjectID `json:"id"`
	Order int                `json:"order"`
}

// ReorderReport summarizes a best-effort reorder: the (id, order) pairs that
// were applied and the IDs that could not be found. A non-empty Missing list
// means a partial result, not a rollback.
type ReorderReport struct {
	Applied []OrderUpdate        `json:"applied"`
	Missing []primitive.ObjectID `json:"missing,omitempty"`
}

// --- Service Interface ---

// CatalogService manages the planning-side entities: programs, their ordered
// workouts, the per-workout exercise prescriptions, and the exercise library.
type CatalogService interface {
	// Programs
	CreateProgram(ctx context.Context, creatorID primitive.ObjectID, name, description string) (*domain.Program, error)
	GetProgram(ctx context.Context, programID primitive.ObjectID) (*ProgramDetails, error)
	ListPrograms(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Program, error)
	UpdateProgram(ctx context.Context, userID, programID primitive.ObjectID, name, description string) (*domain.Program, error)
	// DeleteProgram cascades: workouts, prescriptions, sessions, logs, sets and
	// progress rows under the program are all removed in one transaction.
	DeleteProgram(ctx context.Context, userID, programID primitive.ObjectID) error

	// Workouts
	CreateWorkout(ctx context.Context, userID, programID primitive.ObjectID, name string, order *int) (*domain.Workout, error)
	GetWorkout(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetails, error)
	UpdateWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, name string) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error
	ReorderWorkouts(ctx context.Context, userID, programID primitive.ObjectID, updates []OrderUpdate) (*ReorderReport, error)

	// Workout exercises (prescriptions)
	AddWorkoutExercise(ctx context.Context, userID, workoutID, exerciseID primitive.ObjectID, sets, reps int, note string, order *int) (*domain.WorkoutExercise, error)
	UpdateWorkoutExercise(ctx context.Context, userID, weID primitive.ObjectID, sets, reps int, note string) (*domain.WorkoutExercise, error)
	RemoveWorkoutExercise(ctx context.Context, userID, weID primitive.ObjectID) error
	ReorderWorkoutExercises(ctx context.Context, userID, workoutID primitive.ObjectID, updates []OrderUpdate) (*ReorderReport, error)

	// Exercise library
	CreateExercise(ctx context.Context, creatorID primitive.ObjectID, name, description, videoURL string) (*domain.Exercise, error)
	ListExercises(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, name, description, videoURL string) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error
}

// --- Service Implementation ---

type catalogService struct {
	programRepo  repository.ProgramRepository
	workoutRepo  repository.WorkoutRepository
	weRepo       repository.WorkoutExerciseRepository
	exerciseRepo repository.ExerciseRepository
	progressRepo repository.ProgressRepository
	sessionRepo  repository.SessionRepository
	logRepo      repository.ExerciseLogRepository
	setRepo      repository.ExerciseSetRepository
	txn          repository.TxnRunner
	now          func() time.Time
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(
	programRepo repository.ProgramRepository,
	workoutRepo repository.WorkoutRepository,
	weRepo repository.WorkoutExerciseRepository,
	exerciseRepo repository.ExerciseRepository,
	progressRepo repository.ProgressRepository,
	sessionRepo repository.SessionRepository,
	logRepo repository.ExerciseLogRepository,
	setRepo repository.ExerciseSetRepository,
	txn repository.TxnRunner,
) CatalogService {
	return &catalogService{
		programRepo:  programRepo,
		workoutRepo:  workoutRepo,
		weRepo:       weRepo,
		exerciseRepo: exerciseRepo,
		progressRepo: progressRepo,
		sessionRepo:  sessionRepo,
		logRepo:      logRepo,
		setRepo:      setRepo,
		txn:          txn,
		now:          time.Now,
	}
}

// === Programs ===

func (s *catalogService) CreateProgram(ctx context.Context, creatorID primitive.ObjectID, name, description string) (*domain.Program, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	program := &domain.Program{
		CreatorID:   creatorID,
		Name:        name,
		Description: description,
	}
	id, err := s.programRepo.Create(ctx, program)
	if err != nil {
		return nil, err
	}
	program.ID = id
	return program, nil
}

func (s *catalogService) GetProgram(ctx context.Context, programID primitive.ObjectID) (*ProgramDetails, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	workouts, err := s.workoutRepo.GetByProgramID(ctx, programID)
	if err != nil {
		return nil, err
	}

	details := &ProgramDetails{
		Program:  *program,
		Workouts: make([]WorkoutDetails, 0, len(workouts)),
	}
	for _, w := range workouts {
		wd, err := s.buildWorkoutDetails(ctx, &w)
		if err != nil {
			return nil, err
		}
		details.Workouts = append(details.Workouts, *wd)
	}
	return details, nil
}

func (s *catalogService) ListPrograms(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Program, error) {
	return s.programRepo.GetByCreatorID(ctx, creatorID)
}

func (s *catalogService) UpdateProgram(ctx context.Context, userID, programID primitive.ObjectID, name, description string) (*domain.Program, error) {
	program, err := s.getOwnedProgram(ctx, userID, programID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	program.Name = name
	program.Description = description
	if err := s.programRepo.Update(ctx, program); err != nil {
		return nil, err
	}
	return program, nil
}

// DeleteProgram removes the program and everything hanging off it. Session
// history under the program does not survive the program; orphaned analytics
// rows would otherwise reference entities that no longer exist.
func (s *catalogService) DeleteProgram(ctx context.Context, userID, programID primitive.ObjectID) error {
	if _, err := s.getOwnedProgram(ctx, userID, programID); err != nil {
		return err
	}

	return s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		workoutIDs, err := s.workoutRepo.GetIDsByProgramID(ctx, programID)
		if err != nil {
			return err
		}

		if len(workoutIDs) > 0 {
			sessionIDs, err := s.sessionRepo.GetIDsByWorkoutIDs(ctx, workoutIDs)
			if err != nil {
				return err
			}
			if len(sessionIDs) > 0 {
				if err := s.setRepo.DeleteBySessionIDs(ctx, sessionIDs); err != nil {
					return err
				}
				if err := s.logRepo.DeleteBySessionIDs(ctx, sessionIDs); err != nil {
					return err
				}
			}
			if err := s.sessionRepo.DeleteByWorkoutIDs(ctx, workoutIDs); err != nil {
				return err
			}
			if err := s.weRepo.DeleteByWorkoutIDs(ctx, workoutIDs); err != nil {
				return err
			}
		}

		if err := s.workoutRepo.DeleteByProgramID(ctx, programID); err != nil {
			return err
		}
		if err := s.progressRepo.DeleteByProgramID(ctx, programID); err != nil {
			return err
		}
		return s.programRepo.Delete(ctx, programID)
	})
}

// === Workouts ===

// CreateWorkout adds a workout to the program. When order is nil the workout
// is appended after the current maximum; explicit orders are taken as-is,
// duplicates included.
func (s *catalogService) CreateWorkout(ctx context.Context, userID, programID primitive.ObjectID, name string, order *int) (*domain.Workout, error) {
	program, err := s.getOwnedProgram(ctx, userID, programID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	workout := &domain.Workout{
		ProgramID: program.ID,
		CreatorID: program.CreatorID,
		Name:      name,
	}
	if order != nil {
		workout.Order = *order
	} else {
		maxOrder, err := s.workoutRepo.MaxOrderByProgramID(ctx, programID)
		if err != nil {
			return nil, err
		}
		workout.Order = maxOrder + 1
	}

	id, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = id
	return workout, nil
}

func (s *catalogService) GetWorkout(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetails, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return s.buildWorkoutDetails(ctx, workout)
}

func (s *catalogService) UpdateWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, name string) (*domain.Workout, error) {
	workout, err := s.getOwnedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	workout.Name = name
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *catalogService) DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	workout, err := s.getOwnedWorkout(ctx, userID, workoutID)
	if err != nil {
		return err
	}

	return s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		workoutIDs := []primitive.ObjectID{workout.ID}
		sessionIDs, err := s.sessionRepo.GetIDsByWorkoutIDs(ctx, workoutIDs)
		if err != nil {
			return err
		}
		if len(sessionIDs) > 0 {
			if err := s.setRepo.DeleteBySessionIDs(ctx, sessionIDs); err != nil {
				return err
			}
			if err := s.logRepo.DeleteBySessionIDs(ctx, sessionIDs); err != nil {
				return err
			}
		}
		if err := s.sessionRepo.DeleteByWorkoutIDs(ctx, workoutIDs); err != nil {
			return err
		}
		if err := s.weRepo.DeleteByWorkoutIDs(ctx, workoutIDs); err != nil {
			return err
		}
		return s.workoutRepo.Delete(ctx, workout.ID)
	})
}

// ReorderWorkouts applies (id, order) pairs best-effort. Entries whose ID does
// not belong to the program are skipped and reported; everything else is
// still applied.
func (s *catalogService) ReorderWorkouts(ctx context.Context, userID, programID primitive.ObjectID, updates []OrderUpdate) (*ReorderReport, error) {
	if _, err := s.getOwnedProgram(ctx, userID, programID); err != nil {
		return nil, err
	}

	report := &ReorderReport{Applied: []OrderUpdate{}}
	for _, u := range updates {
		workout, err := s.workoutRepo.GetByID(ctx, u.ID)
		if err != nil || workout.ProgramID != programID {
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			report.Missing = append(report.Missing, u.ID)
			continue
		}
		if err := s.workoutRepo.UpdateOrder(ctx, u.ID, u.Order); err != nil {
			return nil, err
		}
		report.Applied = append(report.Applied, u)
	}
	if len(report.Missing) > 0 {
		log.WithFields(log.Fields{
			"programId": programID.Hex(),
			"applied":   len(report.Applied),
			"missing":   len(report.Missing),
		}).Warn("Workout reorder applied partially")
	}
	return report, nil
}

// === Workout Exercises ===

func (s *catalogService) AddWorkoutExercise(ctx context.Context, userID, workoutID, exerciseID primitive.ObjectID, sets, reps int, note string, order *int) (*domain.WorkoutExercise, error) {
	workout, err := s.getOwnedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if sets <= 0 || reps <= 0 {
		return nil, errors.New("sets and reps must be positive")
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	// Prescriptions may only reference universal exercises or the user's own.
	if !exercise.IsUniversal() && *exercise.CreatorID != userID {
		return nil, ErrExerciseNotFound
	}

	we := &domain.WorkoutExercise{
		WorkoutID:  workout.ID,
		ExerciseID: exercise.ID,
		Sets:       sets,
		Reps:       reps,
		Note:       note,
	}
	if order != nil {
		we.Order = *order
	} else {
		maxOrder, err := s.weRepo.MaxOrderByWorkoutID(ctx, workoutID)
		if err != nil {
			return nil, err
		}
		we.Order = maxOrder + 1
	}

	id, err := s.weRepo.Create(ctx, we)
	if err != nil {
		return nil, err
	}
	we.ID = id
	return we, nil
}

func (s *catalogService) UpdateWorkoutExercise(ctx context.Context, userID, weID primitive.ObjectID, sets, reps int, note string) (*domain.WorkoutExercise, error) {
	we, err := s.getOwnedWorkoutExercise(ctx, userID, weID)
	if err != nil {
		return nil, err
	}
	if sets <= 0 || reps <= 0 {
		return nil, errors.New("sets and reps must be positive")
	}
	we.Sets = sets
	we.Reps = reps
	we.Note = note
	if err := s.weRepo.Update(ctx, we); err != nil {
		return nil, err
	}
	return we, nil
}

func (s *catalogService) RemoveWorkoutExercise(ctx context.Context, userID, weID primitive.ObjectID) error {
	we, err := s.getOwnedWorkoutExercise(ctx, userID, weID)
	if err != nil {
		return err
	}
	return s.weRepo.Delete(ctx, we.ID)
}

// ReorderWorkoutExercises mirrors ReorderWorkouts for prescriptions.
func (s *catalogService) ReorderWorkoutExercises(ctx context.Context, userID, workoutID primitive.ObjectID, updates []OrderUpdate) (*ReorderReport, error) {
	if _, err := s.getOwnedWorkout(ctx, userID, workoutID); err != nil {
		return nil, err
	}

	report := &ReorderReport{Applied: []OrderUpdate{}}
	for _, u := range updates {
		we, err := s.weRepo.GetByID(ctx, u.ID)
		if err != nil || we.WorkoutID != workoutID {
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			report.Missing = append(report.Missing, u.ID)
			continue
		}
		if err := s.weRepo.UpdateOrder(ctx, u.ID, u.Order); err != nil {
			return nil, err
		}
		report.Applied = append(report.Applied, u)
	}
	if len(report.Missing) > 0 {
		log.WithFields(log.Fields{
			"workoutId": workoutID.Hex(),
			"applied":   len(report.Applied),
			"missing":   len(report.Missing),
		}).Warn("Workout exercise reorder applied partially")
	}
	return report, nil
}

// === Exercise Library ===

func (s *catalogService) CreateExercise(ctx context.Context, creatorID primitive.ObjectID, name, description, videoURL string) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	exercise := &domain.Exercise{
		CreatorID:   &creatorID,
		Name:        name,
		Description: description,
		VideoURL:    videoURL,
	}
	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = id
	return exercise, nil
}

// ListExercises returns universal exercises plus the user's own.
func (s *catalogService) ListExercises(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error) {
	return s.exerciseRepo.GetVisibleToUser(ctx, userID)
}

func (s *catalogService) UpdateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, name, description, videoURL string) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.IsUniversal() {
		return nil, ErrExerciseNotEditable
	}
	if *exercise.CreatorID != userID {
		return nil, ErrNotOwner
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	exercise.Name = name
	exercise.Description = description
	exercise.VideoURL = videoURL
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

func (s *catalogService) DeleteExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	if exercise.IsUniversal() {
		return ErrExerciseNotEditable
	}
	err = s.exerciseRepo.Delete(ctx, exerciseID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotOwner
	}
	return err
}

// === Helpers ===

func (s *catalogService) getOwnedProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.Program, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.CreatorID != userID {
		return nil, ErrNotOwner
	}
	return program, nil
}

func (s *catalogService) getOwnedWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.CreatorID != userID {
		return nil, ErrNotOwner
	}
	return workout, nil
}

func (s *catalogService) getOwnedWorkoutExercise(ctx context.Context, userID, weID primitive.ObjectID) (*domain.WorkoutExercise, error) {
	we, err := s.weRepo.GetByID(ctx, weID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutExerciseNotFound
		}
		return nil, err
	}
	if _, err := s.getOwnedWorkout(ctx, userID, we.WorkoutID); err != nil {
		return nil, err
	}
	return we, nil
}

func (s *catalogService) buildWorkoutDetails(ctx context.Context, workout *domain.Workout) (*WorkoutDetails, error) {
	prescriptions, err := s.weRepo.GetByWorkoutID(ctx, workout.ID)
	if err != nil {
		return nil, err
	}

	exerciseIDs := make([]primitive.ObjectID, 0, len(prescriptions))
	for _, we := range prescriptions {
		exerciseIDs = append(exerciseIDs, we.ExerciseID)
	}
	exercises, err := s.exerciseRepo.GetByIDs(ctx, exerciseIDs)
	if err != nil {
		return nil, err
	}
	namesByID := make(map[primitive.ObjectID]string, len(exercises))
	for _, ex := range exercises {
		namesByID[ex.ID] = ex.Name
	}

	details := &WorkoutDetails{
		Workout:   *workout,
		Exercises: make([]WorkoutExerciseDetails, 0, len(prescriptions)),
	}
	for _, we := range prescriptions {
		details.Exercises = append(details.Exercises, WorkoutExerciseDetails{
			WorkoutExercise: we,
			ExerciseName:    namesByID[we.ExerciseID],
		})
	}
	return details, nil
}
