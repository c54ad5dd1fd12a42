package service

import (
	"context"
	"testing"
	"time"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type catalogTestEnv struct {
	svc          CatalogService
	programRepo  *fakeProgramRepo
	workoutRepo  *fakeWorkoutRepo
	weRepo       *fakeWorkoutExerciseRepo
	exerciseRepo *fakeExerciseRepo
	progressRepo *fakeProgressRepo
	sessionRepo  *fakeSessionRepo
	logRepo      *fakeExerciseLogRepo
	setRepo      *fakeExerciseSetRepo
}

func newCatalogTestEnv(t *testing.T) *catalogTestEnv {
	t.Helper()
	env := &catalogTestEnv{
		programRepo:  newFakeProgramRepo(),
		workoutRepo:  newFakeWorkoutRepo(),
		weRepo:       newFakeWorkoutExerciseRepo(),
		exerciseRepo: newFakeExerciseRepo(),
		progressRepo: newFakeProgressRepo(),
		sessionRepo:  newFakeSessionRepo(),
		logRepo:      newFakeExerciseLogRepo(),
		setRepo:      newFakeExerciseSetRepo(),
	}
	env.svc = NewCatalogService(
		env.programRepo, env.workoutRepo, env.weRepo, env.exerciseRepo,
		env.progressRepo, env.sessionRepo, env.logRepo, env.setRepo,
		&fakeTxnRunner{},
	)
	return env
}

func TestCreateWorkoutDefaultsOrderToMaxPlusOne(t *testing.T) {
	env := newCatalogTestEnv(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	program, err := env.svc.CreateProgram(ctx, userID, "Block", "")
	require.NoError(t, err)

	first, err := env.svc.CreateWorkout(ctx, userID, program.ID, "Day 1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)

	second, err := env.svc.CreateWorkout(ctx, userID, program.ID, "Day 2", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Order)

	// An explicit order is taken as-is, even when it duplicates another.
	explicit := 1
	third, err := env.svc.CreateWorkout(ctx, userID, program.ID, "Day 3", &explicit)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Order)

	// The next default continues after the maximum, not the count.
	fourth, err := env.svc.CreateWorkout(ctx, userID, program.ID, "Day 4", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, fourth.Order)
}

func TestGetProgramOrdersWorkoutsAndPrescriptions(t *testing.T) {
	env := newCatalogTestEnv(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	program, err := env.svc.CreateProgram(ctx, userID, "Block", "")
	require.NoError(t, err)

	two := 2
	one := 1
	_, err = env.svc.CreateWorkout(ctx, userID, program.ID, "Second", &two)
	require.NoError(t, err)
	_, err = env.svc.CreateWorkout(ctx, userID, program.ID, "First", &one)
	require.NoError(t, err)

	details, err := env.svc.GetProgram(ctx, program.ID)
	require.NoError(t, err)
	require.Len(t, details.Workouts, 2)
	assert.Equal(t, "First", details.Workouts[0].Name)
	assert.Equal(t, "Second", details.Workouts[1].Name)
}

func TestAddWorkoutExerciseOrderAndVisibility(t *testing.T) {
	env := newCatalogTestEnv(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	program, err := env.svc.CreateProgram(ctx, userID, "Block", "")
	require.NoError(t, err)
	workout, err := env.svc.CreateWorkout(ctx, userID, program.ID, "Day 1", nil)
	require.NoError(t, err)

	benchID, err := env.exerciseRepo.Create(ctx, &domain.Exercise{Name: "Bench Press"})
	require.NoError(t, err)

	first, err := env.svc.AddWorkoutExercise(ctx, userID, workout.ID, benchID, 3, 10, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)

	second, err := env.svc.AddWorkoutExercise(ctx, userID, workout.ID, benchID, 2, 5, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Order)

	// Another user's private exercise is not prescribable.
	stranger := primitive.NewObjectID()
	privateID, err := env.exerciseRepo.Create(ctx, &domain.Exercise{Name: "Secret Move", CreatorID: &stranger})
	require.NoError(t, err)
	_, err = env.svc.AddWorkoutExercise(ctx, userID, workout.ID, privateID, 3, 10, "", nil)
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestReorderWorkoutsPartialReport(t *testing.T) {
	env := newCatalogTestEnv(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	program, err := env.svc.CreateProgram(ctx, userID, "Block", "")
	require.NoError(t, err)
	w1, err := env.svc.CreateWorkout(ctx, userID, program.ID, "Day 1", nil)
	require.NoError(t, err)
	w2, err := env.svc.CreateWorkout(ctx, userID, program.ID, "Day 2", nil)
	require.NoError(t, err)

	missingID := primitive.NewObjectID()
	report, err := env.svc.ReorderWorkouts(ctx, userID, program.ID, []OrderUpdate{
		{ID: w1.ID, Order: 2},
		{ID: missingID, Order: 3},
		{ID: w2.ID, Order: 1},
	})
	require.NoError(t, err)

	// Known entries were applied despite the unknown one, and the report
	// echoes each applied (id, order) pair.
	require.Len(t, report.Applied, 2)
	assert.Contains(t, report.Applied, OrderUpdate{ID: w1.ID, Order: 2})
	assert.Contains(t, report.Applied, OrderUpdate{ID: w2.ID, Order: 1})
	require.Len(t, report.Missing, 1)
	assert.Equal(t, missingID, report.Missing[0])

	details, err := env.svc.GetProgram(ctx, program.ID)
	require.NoError(t, err)
	assert.Equal(t, "Day 2", details.Workouts[0].Name)
	assert.Equal(t, "Day 1", details.Workouts[1].Name)
}

func TestReorderRejectsForeignWorkout(t *testing.T) {
	env := newCatalogTestEnv(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	program, err := env.svc.CreateProgram(ctx, userID, "Block A", "")
	require.NoError(t, err)
	other, err := env.svc.CreateProgram(ctx, userID, "Block B", "")
	require.NoError(t, err)
	foreign, err := env.svc.CreateWorkout(ctx, userID, other.ID, "Other Day", nil)
	require.NoError(t, err)

	// A workout belonging to a different program is reported, not moved.
	report, err := env.svc.ReorderWorkouts(ctx, userID, program.ID, []OrderUpdate{{ID: foreign.ID, Order: 9}})
	require.NoError(t, err)
	assert.Empty(t, report.Applied)
	assert.Len(t, report.Missing, 1)

	unchanged, err := env.workoutRepo.GetByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unchanged.Order)
}

func TestDeleteProgramCascades(t *testing.T) {
	env := newCatalogTestEnv(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	program, err := env.svc.CreateProgram(ctx, userID, "Block", "")
	require.NoError(t, err)
	workout, err := env.svc.CreateWorkout(ctx, userID, program.ID, "Day 1", nil)
	require.NoError(t, err)

	benchID, err := env.exerciseRepo.Create(ctx, &domain.Exercise{Name: "Bench Press"})
	require.NoError(t, err)
	we, err := env.svc.AddWorkoutExercise(ctx, userID, workout.ID, benchID, 3, 10, "", nil)
	require.NoError(t, err)

	// Simulate history under the program: progress, a session, a log, a set.
	progressID, err := env.progressRepo.Create(ctx, &domain.ProgramProgress{UserID: userID, ProgramID: program.ID, IsActive: true, StartDate: time.Now().UTC()})
	require.NoError(t, err)
	sessionID, err := env.sessionRepo.Create(ctx, &domain.WorkoutSession{UserID: userID, ProgressID: progressID, WorkoutID: workout.ID, Date: time.Now().UTC(), Active: false, Completed: true})
	require.NoError(t, err)
	logID, err := env.logRepo.Create(ctx, &domain.ExerciseLog{SessionID: sessionID, WorkoutExerciseID: we.ID, ExerciseID: benchID, UserID: userID, Order: 1})
	require.NoError(t, err)
	_, err = env.setRepo.Create(ctx, &domain.ExerciseSet{LogID: logID, SessionID: sessionID, ExerciseID: benchID, UserID: userID, SetNumber: 1})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteProgram(ctx, userID, program.ID))

	assert.Empty(t, env.programRepo.programs)
	assert.Empty(t, env.workoutRepo.workouts)
	assert.Empty(t, env.weRepo.prescriptions)
	assert.Empty(t, env.progressRepo.rows)
	assert.Empty(t, env.sessionRepo.sessions)
	assert.Empty(t, env.logRepo.logs)
	assert.Empty(t, env.setRepo.sets)

	// The exercise library is untouched by program deletion.
	_, err = env.exerciseRepo.GetByID(ctx, benchID)
	assert.NoError(t, err)
}

func TestDeleteProgramRequiresOwnership(t *testing.T) {
	env := newCatalogTestEnv(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	program, err := env.svc.CreateProgram(ctx, owner, "Block", "")
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.DeleteProgram(ctx, primitive.NewObjectID(), program.ID), ErrNotOwner)
}

func TestUpdateWorkoutExercise(t *testing.T) {
	env := newCatalogTestEnv(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	program, err := env.svc.CreateProgram(ctx, userID, "Block", "")
	require.NoError(t, err)
	workout, err := env.svc.CreateWorkout(ctx, userID, program.ID, "Day 1", nil)
	require.NoError(t, err)
	benchID, err := env.exerciseRepo.Create(ctx, &domain.Exercise{Name: "Bench Press"})
	require.NoError(t, err)
	we, err := env.svc.AddWorkoutExercise(ctx, userID, workout.ID, benchID, 3, 10, "", nil)
	require.NoError(t, err)

	updated, err := env.svc.UpdateWorkoutExercise(ctx, userID, we.ID, 5, 5, "heavier")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Sets)
	assert.Equal(t, 5, updated.Reps)
	assert.Equal(t, "heavier", updated.Note)

	stored, err := env.weRepo.GetByID(ctx, we.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Sets)
}

func TestUniversalExercisesAreReadOnly(t *testing.T) {
	env := newCatalogTestEnv(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	universalID, err := env.exerciseRepo.Create(ctx, &domain.Exercise{Name: "Bench Press"})
	require.NoError(t, err)

	_, err = env.svc.UpdateExercise(ctx, userID, universalID, "Renamed", "", "")
	assert.ErrorIs(t, err, ErrExerciseNotEditable)
	assert.ErrorIs(t, env.svc.DeleteExercise(ctx, userID, universalID), ErrExerciseNotEditable)
}

func TestListExercisesVisibility(t *testing.T) {
	env := newCatalogTestEnv(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	_, err := env.exerciseRepo.Create(ctx, &domain.Exercise{Name: "Bench Press"})
	require.NoError(t, err)
	_, err = env.svc.CreateExercise(ctx, userID, "My Move", "", "")
	require.NoError(t, err)
	_, err = env.svc.CreateExercise(ctx, stranger, "Their Move", "", "")
	require.NoError(t, err)

	visible, err := env.svc.ListExercises(ctx, userID)
	require.NoError(t, err)
	require.Len(t, visible, 2)

	names := []string{visible[0].Name, visible[1].Name}
	assert.Contains(t, names, "Bench Press")
	assert.Contains(t, names, "My Move")
}

func TestCreateProgramRequiresName(t *testing.T) {
	env := newCatalogTestEnv(t)
	_, err := env.svc.CreateProgram(context.Background(), primitive.NewObjectID(), "   ", "")
	assert.ErrorIs(t, err, ErrNameRequired)
}
