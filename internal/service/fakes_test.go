package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/planner"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. The txn runner serializes callers with a mutex
// so invariant checks inside a transaction behave like they do against the
// real storage layer.

type fakeTxnRunner struct {
	mu sync.Mutex
}

func (t *fakeTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

// --- users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *fakeUserRepo) SetPublicKey(ctx context.Context, id primitive.ObjectID, publicKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PublicKey = publicKey
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) SetProfileImageKey(ctx context.Context, id primitive.ObjectID, objectKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ProfileImageKey = objectKey
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[trainerID]
	if !ok {
		return repository.ErrNotFound
	}
	u.ClientIDs = append(u.ClientIDs, clientID)
	r.users[trainerID] = u
	return nil
}

func (r *fakeUserRepo) SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	u.TrainerID = &trainerID
	r.users[clientID] = u
	return nil
}

// --- exercises ---

type fakeExerciseRepo struct {
	mu        sync.Mutex
	exercises map[primitive.ObjectID]domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: make(map[primitive.ObjectID]domain.Exercise)}
}

func (r *fakeExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exercise.ID = primitive.NewObjectID()
	r.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *fakeExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := e
	return &out, nil
}

func (r *fakeExerciseRepo) GetByName(ctx context.Context, name string, creatorID *primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.exercises {
		if e.Name != name {
			continue
		}
		if creatorID == nil {
			if e.CreatorID == nil {
				out := e
				return &out, nil
			}
			continue
		}
		if e.CreatorID != nil && *e.CreatorID == *creatorID {
			out := e
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeExerciseRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Exercise
	for _, id := range ids {
		if e, ok := r.exercises[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) GetVisibleToUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Exercise
	for _, e := range r.exercises {
		if e.CreatorID == nil || *e.CreatorID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeExerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	r.exercises[exercise.ID] = *exercise
	return nil
}

func (r *fakeExerciseRepo) Delete(ctx context.Context, id, creatorID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exercises[id]
	if !ok || e.CreatorID == nil || *e.CreatorID != creatorID {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

// --- programs ---

type fakeProgramRepo struct {
	mu       sync.Mutex
	programs map[primitive.ObjectID]domain.Program
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{programs: make(map[primitive.ObjectID]domain.Program)}
}

func (r *fakeProgramRepo) Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	program.ID = primitive.NewObjectID()
	r.programs[program.ID] = *program
	return program.ID, nil
}

func (r *fakeProgramRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := p
	return &out, nil
}

func (r *fakeProgramRepo) GetByCreatorID(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Program
	for _, p := range r.programs {
		if p.CreatorID == creatorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProgramRepo) Update(ctx context.Context, program *domain.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.programs[program.ID]; !ok {
		return repository.ErrNotFound
	}
	r.programs[program.ID] = *program
	return nil
}

func (r *fakeProgramRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.programs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.programs, id)
	return nil
}

// --- workouts ---

type fakeWorkoutRepo struct {
	mu       sync.Mutex
	workouts map[primitive.ObjectID]domain.Workout
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{workouts: make(map[primitive.ObjectID]domain.Workout)}
}

func (r *fakeWorkoutRepo) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	workout.ID = primitive.NewObjectID()
	r.workouts[workout.ID] = *workout
	return workout.ID, nil
}

func (r *fakeWorkoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := w
	return &out, nil
}

func (r *fakeWorkoutRepo) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Workout
	for _, w := range r.workouts {
		if w.ProgramID == programID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (r *fakeWorkoutRepo) GetIDsByProgramID(ctx context.Context, programID primitive.ObjectID) ([]primitive.ObjectID, error) {
	workouts, _ := r.GetByProgramID(ctx, programID)
	ids := make([]primitive.ObjectID, len(workouts))
	for i, w := range workouts {
		ids[i] = w.ID
	}
	return ids, nil
}

func (r *fakeWorkoutRepo) MaxOrderByProgramID(ctx context.Context, programID primitive.ObjectID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, w := range r.workouts {
		if w.ProgramID == programID && w.Order > max {
			max = w.Order
		}
	}
	return max, nil
}

func (r *fakeWorkoutRepo) UpdateOrder(ctx context.Context, id primitive.ObjectID, order int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	w.Order = order
	r.workouts[id] = w
	return nil
}

func (r *fakeWorkoutRepo) Update(ctx context.Context, workout *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[workout.ID]; !ok {
		return repository.ErrNotFound
	}
	r.workouts[workout.ID] = *workout
	return nil
}

func (r *fakeWorkoutRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

func (r *fakeWorkoutRepo) DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, w := range r.workouts {
		if w.ProgramID == programID {
			delete(r.workouts, id)
		}
	}
	return nil
}

// --- workout exercises ---

type fakeWorkoutExerciseRepo struct {
	mu            sync.Mutex
	prescriptions map[primitive.ObjectID]domain.WorkoutExercise
}

func newFakeWorkoutExerciseRepo() *fakeWorkoutExerciseRepo {
	return &fakeWorkoutExerciseRepo{prescriptions: make(map[primitive.ObjectID]domain.WorkoutExercise)}
}

func (r *fakeWorkoutExerciseRepo) Create(ctx context.Context, we *domain.WorkoutExercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	we.ID = primitive.NewObjectID()
	r.prescriptions[we.ID] = *we
	return we.ID, nil
}

func (r *fakeWorkoutExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	we, ok := r.prescriptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := we
	return &out, nil
}

func (r *fakeWorkoutExerciseRepo) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkoutExercise
	for _, we := range r.prescriptions {
		if we.WorkoutID == workoutID {
			out = append(out, we)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (r *fakeWorkoutExerciseRepo) MaxOrderByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, we := range r.prescriptions {
		if we.WorkoutID == workoutID && we.Order > max {
			max = we.Order
		}
	}
	return max, nil
}

func (r *fakeWorkoutExerciseRepo) UpdateOrder(ctx context.Context, id primitive.ObjectID, order int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	we, ok := r.prescriptions[id]
	if !ok {
		return repository.ErrNotFound
	}
	we.Order = order
	r.prescriptions[id] = we
	return nil
}

func (r *fakeWorkoutExerciseRepo) Update(ctx context.Context, we *domain.WorkoutExercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prescriptions[we.ID]; !ok {
		return repository.ErrNotFound
	}
	r.prescriptions[we.ID] = *we
	return nil
}

func (r *fakeWorkoutExerciseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prescriptions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.prescriptions, id)
	return nil
}

func (r *fakeWorkoutExerciseRepo) DeleteByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, we := range r.prescriptions {
		for _, wid := range workoutIDs {
			if we.WorkoutID == wid {
				delete(r.prescriptions, id)
				break
			}
		}
	}
	return nil
}

// --- progress ---

type fakeProgressRepo struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]domain.ProgramProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[primitive.ObjectID]domain.ProgramProgress)}
}

func (r *fakeProgressRepo) Create(ctx context.Context, progress *domain.ProgramProgress) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.UserID == progress.UserID && p.ProgramID == progress.ProgramID {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	progress.ID = primitive.NewObjectID()
	r.rows[progress.ID] = *progress
	return progress.ID, nil
}

func (r *fakeProgressRepo) GetByUserAndProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.ProgramProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.UserID == userID && p.ProgramID == programID {
			out := p
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProgressRepo) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.ProgramProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.UserID == userID && p.IsActive {
			out := p
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProgressRepo) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsActive = active
	r.rows[id] = p
	return nil
}

func (r *fakeProgressRepo) DeactivateOthers(ctx context.Context, userID, excludeProgramID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.rows {
		if p.UserID == userID && p.ProgramID != excludeProgramID && p.IsActive {
			p.IsActive = false
			r.rows[id] = p
		}
	}
	return nil
}

func (r *fakeProgressRepo) DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.rows {
		if p.ProgramID == programID {
			delete(r.rows, id)
		}
	}
	return nil
}

// --- sessions ---

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]domain.WorkoutSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]domain.WorkoutSession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirrors the partial unique index on (userId) where active && !completed.
	for _, s := range r.sessions {
		if s.UserID == session.UserID && s.Active && !s.Completed {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	session.ID = primitive.NewObjectID()
	r.sessions[session.ID] = *session
	return session.ID, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s
	return &out, nil
}

func (r *fakeSessionRepo) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID && s.Active && !s.Completed {
			out := s
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSessionRepo) Complete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Active = false
	s.Completed = true
	r.sessions[id] = s
	return nil
}

func (r *fakeSessionRepo) GetByUserSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkoutSession
	for _, s := range r.sessions {
		if s.UserID == userID && !s.Date.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) GetIDsByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []primitive.ObjectID
	for id, s := range r.sessions {
		for _, wid := range workoutIDs {
			if s.WorkoutID == wid {
				out = append(out, id)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) DeleteByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		for _, wid := range workoutIDs {
			if s.WorkoutID == wid {
				delete(r.sessions, id)
				break
			}
		}
	}
	return nil
}

// --- exercise logs ---

type fakeExerciseLogRepo struct {
	mu   sync.Mutex
	logs map[primitive.ObjectID]domain.ExerciseLog
}

func newFakeExerciseLogRepo() *fakeExerciseLogRepo {
	return &fakeExerciseLogRepo{logs: make(map[primitive.ObjectID]domain.ExerciseLog)}
}

func (r *fakeExerciseLogRepo) Create(ctx context.Context, logEntry *domain.ExerciseLog) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	logEntry.ID = primitive.NewObjectID()
	r.logs[logEntry.ID] = *logEntry
	return logEntry.ID, nil
}

func (r *fakeExerciseLogRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := l
	return &out, nil
}

func (r *fakeExerciseLogRepo) GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.ExerciseLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ExerciseLog
	for _, l := range r.logs {
		if l.SessionID == sessionID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (r *fakeExerciseLogRepo) IncrementSetsCompleted(ctx context.Context, id primitive.ObjectID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.SetsCompleted += delta
	if l.SetsCompleted < 0 {
		l.SetsCompleted = 0
	}
	r.logs[id] = l
	return nil
}

func (r *fakeExerciseLogRepo) SetNote(ctx context.Context, id primitive.ObjectID, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Note = note
	r.logs[id] = l
	return nil
}

func (r *fakeExerciseLogRepo) DeleteBySessionIDs(ctx context.Context, sessionIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.logs {
		for _, sid := range sessionIDs {
			if l.SessionID == sid {
				delete(r.logs, id)
				break
			}
		}
	}
	return nil
}

// --- exercise sets ---

type fakeExerciseSetRepo struct {
	mu   sync.Mutex
	sets map[primitive.ObjectID]domain.ExerciseSet
}

func newFakeExerciseSetRepo() *fakeExerciseSetRepo {
	return &fakeExerciseSetRepo{sets: make(map[primitive.ObjectID]domain.ExerciseSet)}
}

func (r *fakeExerciseSetRepo) Create(ctx context.Context, set *domain.ExerciseSet) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set.ID = primitive.NewObjectID()
	r.sets[set.ID] = *set
	return set.ID, nil
}

func (r *fakeExerciseSetRepo) CreateMany(ctx context.Context, sets []domain.ExerciseSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range sets {
		sets[i].ID = primitive.NewObjectID()
		r.sets[sets[i].ID] = sets[i]
	}
	return nil
}

func (r *fakeExerciseSetRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s
	return &out, nil
}

func (r *fakeExerciseSetRepo) GetByLogID(ctx context.Context, logID primitive.ObjectID) ([]domain.ExerciseSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ExerciseSet
	for _, s := range r.sets {
		if s.LogID == logID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
	return out, nil
}

func (r *fakeExerciseSetRepo) GetLastByLogID(ctx context.Context, logID primitive.ObjectID) (*domain.ExerciseSet, error) {
	sets, _ := r.GetByLogID(ctx, logID)
	if len(sets) == 0 {
		return nil, repository.ErrNotFound
	}
	out := sets[len(sets)-1]
	return &out, nil
}

func (r *fakeExerciseSetRepo) CountByLogID(ctx context.Context, logID primitive.ObjectID) (int, error) {
	sets, _ := r.GetByLogID(ctx, logID)
	return len(sets), nil
}

func (r *fakeExerciseSetRepo) UpdatePerformance(ctx context.Context, id primitive.ObjectID, reps *int, weight *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sets[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Reps = reps
	s.WeightUsed = weight
	s.IsLogged = true
	r.sets[id] = s
	return nil
}

func (r *fakeExerciseSetRepo) SetVideoUploadID(ctx context.Context, id primitive.ObjectID, uploadID *primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sets[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.VideoUploadID = uploadID
	r.sets[id] = s
	return nil
}

func (r *fakeExerciseSetRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sets, id)
	return nil
}

func (r *fakeExerciseSetRepo) GetByUserSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.ExerciseSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ExerciseSet
	for _, s := range r.sets {
		if s.UserID == userID && !s.PerformedAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeExerciseSetRepo) GetByUserAndExerciseSince(ctx context.Context, userID, exerciseID primitive.ObjectID, since time.Time) ([]domain.ExerciseSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ExerciseSet
	for _, s := range r.sets {
		if s.UserID == userID && s.ExerciseID == exerciseID && !s.PerformedAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeExerciseSetRepo) GetLoggedExerciseIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[primitive.ObjectID]bool)
	var out []primitive.ObjectID
	for _, s := range r.sets {
		if s.UserID == userID && s.WeightUsed != nil && !seen[s.ExerciseID] {
			seen[s.ExerciseID] = true
			out = append(out, s.ExerciseID)
		}
	}
	return out, nil
}

func (r *fakeExerciseSetRepo) DeleteBySessionIDs(ctx context.Context, sessionIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sets {
		for _, sid := range sessionIDs {
			if s.SessionID == sid {
				delete(r.sets, id)
				break
			}
		}
	}
	return nil
}

// --- uploads ---

type fakeUploadRepo struct {
	mu      sync.Mutex
	uploads map[primitive.ObjectID]domain.Upload
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{uploads: make(map[primitive.ObjectID]domain.Upload)}
}

func (r *fakeUploadRepo) Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	upload.ID = primitive.NewObjectID()
	r.uploads[upload.ID] = *upload
	return upload.ID, nil
}

func (r *fakeUploadRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.uploads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *fakeUploadRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.uploads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.uploads, id)
	return nil
}

// --- storage ---

type fakeFileStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (f *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, objectKey)
	return nil
}

// --- planner ---

type fakePlanner struct {
	program *planner.GeneratedProgram
	workout *planner.GeneratedWorkout
	err     error
}

func (p *fakePlanner) GenerateProgram(ctx context.Context, prompt string) (*planner.GeneratedProgram, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.program, nil
}

func (p *fakePlanner) GenerateWorkout(ctx context.Context, prompt string) (*planner.GeneratedWorkout, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.workout, nil
}

// fixedClock returns a deterministic time source for services.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
