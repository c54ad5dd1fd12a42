package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/planner"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPromptRequired = errors.New("prompt is required")
)

// ValidationError reports per-field problems in a generated payload. Field
// keys are paths into the payload, e.g. "workouts[0].exercises[1].sets".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("generated plan failed validation (%d fields)", len(e.Fields))
}

// --- Service Interface ---

// ImportService turns generated plans into catalog entities. Generation talks
// to the external planner; import validates the structured payload and writes
// it all-or-nothing.
type ImportService interface {
	GenerateProgram(ctx context.Context, userID primitive.ObjectID, prompt string) (*ProgramDetails, error)
	GenerateWorkout(ctx context.Context, userID, programID primitive.ObjectID, prompt string) (*WorkoutDetails, error)
	ImportProgram(ctx context.Context, userID primitive.ObjectID, payload *planner.GeneratedProgram) (*ProgramDetails, error)
	ImportWorkout(ctx context.Context, userID, programID primitive.ObjectID, payload *planner.GeneratedWorkout) (*WorkoutDetails, error)
}

// --- Service Implementation ---

type importService struct {
	plan         planner.Planner
	programRepo  repository.ProgramRepository
	workoutRepo  repository.WorkoutRepository
	weRepo       repository.WorkoutExerciseRepository
	exerciseRepo repository.ExerciseRepository
	catalog      CatalogService
	txn          repository.TxnRunner
	now          func() time.Time
}

// NewImportService creates a new instance of importService.
func NewImportService(
	plan planner.Planner,
	programRepo repository.ProgramRepository,
	workoutRepo repository.WorkoutRepository,
	weRepo repository.WorkoutExerciseRepository,
	exerciseRepo repository.ExerciseRepository,
	catalog CatalogService,
	txn repository.TxnRunner,
) ImportService {
	return &importService{
		plan:         plan,
		programRepo:  programRepo,
		workoutRepo:  workoutRepo,
		weRepo:       weRepo,
		exerciseRepo: exerciseRepo,
		catalog:      catalog,
		txn:          txn,
		now:          time.Now,
	}
}

// === Generation ===

func (s *importService) GenerateProgram(ctx context.Context, userID primitive.ObjectID, prompt string) (*ProgramDetails, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrPromptRequired
	}
	generated, err := s.plan.GenerateProgram(ctx, prompt)
	if err != nil {
		log.WithError(err).Warn("Program generation failed")
		return nil, err
	}
	return s.ImportProgram(ctx, userID, generated)
}

func (s *importService) GenerateWorkout(ctx context.Context, userID, programID primitive.ObjectID, prompt string) (*WorkoutDetails, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrPromptRequired
	}
	generated, err := s.plan.GenerateWorkout(ctx, prompt)
	if err != nil {
		log.WithError(err).Warn("Workout generation failed")
		return nil, err
	}
	return s.ImportWorkout(ctx, userID, programID, generated)
}

// === Import ===

// ImportProgram validates then persists a generated program with all its
// workouts and prescriptions in one transaction. Exercise names are
// normalized and resolved against the library; unknown names become new
// user-owned exercises. Any validation problem rejects the whole payload.
func (s *importService) ImportProgram(ctx context.Context, userID primitive.ObjectID, payload *planner.GeneratedProgram) (*ProgramDetails, error) {
	if err := validateGeneratedProgram(payload); err != nil {
		return nil, err
	}

	var programID primitive.ObjectID
	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		program := &domain.Program{
			CreatorID:   userID,
			Name:        strings.TrimSpace(payload.Name),
			Description: payload.Description,
			AIGenerated: true,
		}
		var err error
		programID, err = s.programRepo.Create(ctx, program)
		if err != nil {
			return err
		}

		for i, gw := range payload.Workouts {
			if err := s.insertGeneratedWorkout(ctx, userID, programID, &gw, i+1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.catalog.GetProgram(ctx, programID)
}

// ImportWorkout appends one generated workout to an existing program the user
// owns, ordered after the program's current workouts.
func (s *importService) ImportWorkout(ctx context.Context, userID, programID primitive.ObjectID, payload *planner.GeneratedWorkout) (*WorkoutDetails, error) {
	if err := validateGeneratedWorkout(payload, ""); err != nil {
		return nil, err
	}

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

	var workoutID primitive.ObjectID
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		maxOrder, err := s.workoutRepo.MaxOrderByProgramID(ctx, programID)
		if err != nil {
			return err
		}
		workoutID, err = s.insertGeneratedWorkoutReturningID(ctx, userID, programID, payload, maxOrder+1)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.catalog.GetWorkout(ctx, workoutID)
}

func (s *importService) insertGeneratedWorkout(ctx context.Context, userID, programID primitive.ObjectID, gw *planner.GeneratedWorkout, order int) error {
	_, err := s.insertGeneratedWorkoutReturningID(ctx, userID, programID, gw, order)
	return err
}

func (s *importService) insertGeneratedWorkoutReturningID(ctx context.Context, userID, programID primitive.ObjectID, gw *planner.GeneratedWorkout, order int) (primitive.ObjectID, error) {
	workout := &domain.Workout{
		ProgramID:   programID,
		CreatorID:   userID,
		Name:        strings.TrimSpace(gw.Name),
		Order:       order,
		AIGenerated: true,
	}
	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}

	for i, ge := range gw.Exercises {
		exercise, err := s.resolveExercise(ctx, userID, ge.Name)
		if err != nil {
			return primitive.NilObjectID, err
		}
		we := &domain.WorkoutExercise{
			WorkoutID:  workoutID,
			ExerciseID: exercise.ID,
			Sets:       ge.Sets,
			Reps:       ge.Reps,
			Note:       ge.Note,
			Order:      i + 1,
		}
		if _, err := s.weRepo.Create(ctx, we); err != nil {
			return primitive.NilObjectID, err
		}
	}
	return workoutID, nil
}

// resolveExercise maps a generated exercise name onto the library. Lookup
// order: universal exercise, then the user's own, then create a new
// user-owned one under the normalized name.
func (s *importService) resolveExercise(ctx context.Context, userID primitive.ObjectID, rawName string) (*domain.Exercise, error) {
	name := normalizeExerciseName(rawName)

	exercise, err := s.exerciseRepo.GetByName(ctx, name, nil)
	if err == nil {
		return exercise, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	exercise, err = s.exerciseRepo.GetByName(ctx, name, &userID)
	if err == nil {
		return exercise, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	created := &domain.Exercise{
		CreatorID: &userID,
		Name:      name,
	}
	id, err := s.exerciseRepo.Create(ctx, created)
	if err != nil {
		return nil, err
	}
	created.ID = id
	return created, nil
}

// normalizeExerciseName trims and title-cases a name so "bench press",
// "BENCH PRESS" and "Bench Press" all resolve to the same library entry.
func normalizeExerciseName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// === Validation ===

func validateGeneratedProgram(payload *planner.GeneratedProgram) error {
	fields := make(map[string]string)
	if payload == nil {
		return &ValidationError{Fields: map[string]string{"": "payload is required"}}
	}
	if strings.TrimSpace(payload.Name) == "" {
		fields["name"] = "name is required"
	}
	if len(payload.Workouts) == 0 {
		fields["workouts"] = "at least one workout is required"
	}
	for i, gw := range payload.Workouts {
		collectWorkoutFieldErrors(&gw, fmt.Sprintf("workouts[%d].", i), fields)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateGeneratedWorkout(payload *planner.GeneratedWorkout, prefix string) error {
	if payload == nil {
		return &ValidationError{Fields: map[string]string{"": "payload is required"}}
	}
	fields := make(map[string]string)
	collectWorkoutFieldErrors(payload, prefix, fields)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func collectWorkoutFieldErrors(gw *planner.GeneratedWorkout, prefix string, fields map[string]string) {
	if strings.TrimSpace(gw.Name) == "" {
		fields[prefix+"name"] = "name is required"
	}
	if len(gw.Exercises) == 0 {
		fields[prefix+"exercises"] = "at least one exercise is required"
	}
	for i, ge := range gw.Exercises {
		p := fmt.Sprintf("%sexercises[%d].", prefix, i)
		if strings.TrimSpace(ge.Name) == "" {
			fields[p+"name"] = "name is required"
		}
		if ge.Sets <= 0 {
			fields[p+"sets"] = "sets must be positive"
		}
		if ge.Reps <= 0 {
			fields[p+"reps"] = "reps must be positive"
		}
	}
}
