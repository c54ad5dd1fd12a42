package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/repository"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound         = errors.New("workout not found")
	ErrSessionNotFound         = errors.New("workout session not found")
	ErrSessionAlreadyActive    = errors.New("another session is already active")
	ErrSessionAlreadyCompleted = errors.New("session is already completed")
	ErrLogNotFound             = errors.New("exercise log not found")
	ErrSetNotFound             = errors.New("exercise set not found")
	ErrNoSetsToDelete          = errors.New("log has no sets to delete")
	ErrSetCountAtPlan          = errors.New("cannot delete sets at or below the prescribed count")
	ErrSetNotOwned             = errors.New("exercise set does not belong to this user")
	ErrVideoMissing            = errors.New("no video is attached to this set")
	ErrUploadURLError          = errors.New("failed to generate upload URL")
	ErrDownloadURLError        = errors.New("failed to generate download URL")
)

// --- View Models ---

// UploadURLResponse carries a pre-signed PUT URL plus the object key the
// client must report back when confirming the upload.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// LogDetails combines an exercise log with its prescription, exercise name
// and sets.
type LogDetails struct {
	domain.ExerciseLog
	ExerciseName string                  `json:"exerciseName"`
	Prescription *domain.WorkoutExercise `json:"prescription,omitempty"`
	Sets         []domain.ExerciseSet    `json:"sets"`
}

// SessionDetails is the full view of one workout session.
type SessionDetails struct {
	domain.WorkoutSession
	WorkoutName string       `json:"workoutName"`
	Logs        []LogDetails `json:"logs"`
}

// --- Service Interface ---

// SessionService is the state machine governing workout sessions and their
// nested logs and sets: NoSession -> SessionActive -> SessionCompleted.
type SessionService interface {
	Start(ctx context.Context, userID, workoutID primitive.ObjectID) (*SessionDetails, error)
	// CheckActive returns the user's active session, or (nil, nil) when there
	// is none. Absence is a normal answer, not an error.
	CheckActive(ctx context.Context, userID primitive.ObjectID) (*SessionDetails, error)
	End(ctx context.Context, sessionID primitive.ObjectID) error

	// Set ledger
	AppendSet(ctx context.Context, logID primitive.ObjectID) (*domain.ExerciseSet, error)
	DeleteLastSet(ctx context.Context, logID primitive.ObjectID) error
	LogSetPerformance(ctx context.Context, setID primitive.ObjectID, reps *int, weight *float64) (*domain.ExerciseSet, error)
	SetLogNote(ctx context.Context, logID primitive.ObjectID, note string) error

	// Video evidence
	RequestSetVideoUploadURL(ctx context.Context, userID, setID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmSetVideo(ctx context.Context, userID, setID primitive.ObjectID, objectKey, fileName string, fileSize int64, contentType string) (*domain.ExerciseSet, error)
	GetSetVideoDownloadURL(ctx context.Context, userID, setID primitive.ObjectID) (string, error)
	RemoveSetVideo(ctx context.Context, userID, setID primitive.ObjectID) error
}

// --- Service Implementation ---

type sessionService struct {
	progressRepo repository.ProgressRepository
	workoutRepo  repository.WorkoutRepository
	weRepo       repository.WorkoutExerciseRepository
	sessionRepo  repository.SessionRepository
	logRepo      repository.ExerciseLogRepository
	setRepo      repository.ExerciseSetRepository
	exerciseRepo repository.ExerciseRepository
	uploadRepo   repository.UploadRepository
	fileStorage  storage.FileStorage
	txn          repository.TxnRunner
	now          func() time.Time
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	progressRepo repository.ProgressRepository,
	workoutRepo repository.WorkoutRepository,
	weRepo repository.WorkoutExerciseRepository,
	sessionRepo repository.SessionRepository,
	logRepo repository.ExerciseLogRepository,
	setRepo repository.ExerciseSetRepository,
	exerciseRepo repository.ExerciseRepository,
	uploadRepo repository.UploadRepository,
	fileStorage storage.FileStorage,
	txn repository.TxnRunner,
) SessionService {
	return &sessionService{
		progressRepo: progressRepo,
		workoutRepo:  workoutRepo,
		weRepo:       weRepo,
		sessionRepo:  sessionRepo,
		logRepo:      logRepo,
		setRepo:      setRepo,
		exerciseRepo: exerciseRepo,
		uploadRepo:   uploadRepo,
		fileStorage:  fileStorage,
		txn:          txn,
		now:          time.Now,
	}
}

// === Session State Machine ===

// Start creates a fresh session for the workout and eagerly seeds one
// ExerciseLog per prescription plus `sets` placeholder ExerciseSets numbered
// 1..sets (reps/weight nil until logged). The whole seeding runs in one
// transaction so a session row without its logs and sets is never observable.
// A second concurrent start for the same user fails with
// ErrSessionAlreadyActive; the repository's partial unique index closes the
// check-then-insert race.
func (s *sessionService) Start(ctx context.Context, userID, workoutID primitive.ObjectID) (*SessionDetails, error) {
	if userID == primitive.NilObjectID || workoutID == primitive.NilObjectID {
		return nil, errors.New("user ID and workout ID are required")
	}

	var sessionID primitive.ObjectID
	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		progress, err := s.progressRepo.GetActiveByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoActiveProgram
			}
			return err
		}

		workout, err := s.workoutRepo.GetByID(ctx, workoutID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrWorkoutNotFound
			}
			return err
		}

		// Single-flight guard: an existing active session is a Conflict, never
		// silently reused.
		if _, err := s.sessionRepo.GetActiveByUser(ctx, userID); err == nil {
			return ErrSessionAlreadyActive
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		sessionDate := s.now().UTC()
		session := &domain.WorkoutSession{
			UserID:     userID,
			ProgressID: progress.ID,
			WorkoutID:  workout.ID,
			Date:       sessionDate,
			Active:     true,
			Completed:  false,
		}
		sessionID, err = s.sessionRepo.Create(ctx, session)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrSessionAlreadyActive
			}
			return err
		}

		prescriptions, err := s.weRepo.GetByWorkoutID(ctx, workout.ID)
		if err != nil {
			return err
		}

		for _, we := range prescriptions {
			logEntry := &domain.ExerciseLog{
				SessionID:         sessionID,
				WorkoutExerciseID: we.ID,
				ExerciseID:        we.ExerciseID,
				UserID:            userID,
				SetsCompleted:     0,
				Order:             we.Order,
			}
			logID, err := s.logRepo.Create(ctx, logEntry)
			if err != nil {
				return err
			}

			if we.Sets <= 0 {
				continue
			}
			sets := make([]domain.ExerciseSet, we.Sets)
			for i := range sets {
				sets[i] = domain.ExerciseSet{
					LogID:       logID,
					SessionID:   sessionID,
					ExerciseID:  we.ExerciseID,
					UserID:      userID,
					SetNumber:   i + 1,
					PerformedAt: sessionDate,
				}
			}
			if err := s.setRepo.CreateMany(ctx, sets); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.buildSessionDetails(ctx, sessionID)
}

// CheckActive is an idempotent read of the user's current session.
func (s *sessionService) CheckActive(ctx context.Context, userID primitive.ObjectID) (*SessionDetails, error) {
	session, err := s.sessionRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.buildSessionDetails(ctx, session.ID)
}

// End marks a session completed. Completed sessions are terminal: a second
// End is a conflict. No progress pointer is advanced here, that is the
// caller's decision.
func (s *sessionService) End(ctx context.Context, sessionID primitive.ObjectID) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.Completed {
		return ErrSessionAlreadyCompleted
	}
	return s.sessionRepo.Complete(ctx, sessionID)
}

// === Set Ledger ===

// AppendSet adds a set numbered max+1 at the end of the log and increments
// the log's sets_completed counter. The prescribed count is advisory here;
// extra sets beyond the plan are allowed.
func (s *sessionService) AppendSet(ctx context.Context, logID primitive.ObjectID) (*domain.ExerciseSet, error) {
	var created *domain.ExerciseSet
	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		logEntry, err := s.logRepo.GetByID(ctx, logID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLogNotFound
			}
			return err
		}

		nextNumber := 1
		last, err := s.setRepo.GetLastByLogID(ctx, logID)
		if err == nil {
			nextNumber = last.SetNumber + 1
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		session, err := s.sessionRepo.GetByID(ctx, logEntry.SessionID)
		if err != nil {
			return err
		}

		set := &domain.ExerciseSet{
			LogID:       logID,
			SessionID:   logEntry.SessionID,
			ExerciseID:  logEntry.ExerciseID,
			UserID:      logEntry.UserID,
			SetNumber:   nextNumber,
			PerformedAt: session.Date,
		}
		if _, err := s.setRepo.Create(ctx, set); err != nil {
			return err
		}
		if err := s.logRepo.IncrementSetsCompleted(ctx, logID, 1); err != nil {
			return err
		}
		created = set
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteLastSet removes the highest-numbered set of the log. Deletion only
// undoes extra sets beyond the prescription; going below the planned count
// fails with ErrSetCountAtPlan. An attached video is released from storage,
// not just unlinked.
func (s *sessionService) DeleteLastSet(ctx context.Context, logID primitive.ObjectID) error {
	var orphanedObjectKey string
	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		logEntry, err := s.logRepo.GetByID(ctx, logID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLogNotFound
			}
			return err
		}

		count, err := s.setRepo.CountByLogID(ctx, logID)
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNoSetsToDelete
		}

		prescription, err := s.weRepo.GetByID(ctx, logEntry.WorkoutExerciseID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLogNotFound
			}
			return err
		}
		if count <= prescription.Sets {
			return ErrSetCountAtPlan
		}

		last, err := s.setRepo.GetLastByLogID(ctx, logID)
		if err != nil {
			return err
		}
		if last.VideoUploadID != nil {
			upload, err := s.uploadRepo.GetByID(ctx, *last.VideoUploadID)
			if err == nil {
				orphanedObjectKey = upload.S3ObjectKey
				if err := s.uploadRepo.Delete(ctx, upload.ID); err != nil {
					return err
				}
			} else if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}

		if err := s.setRepo.Delete(ctx, last.ID); err != nil {
			return err
		}
		return s.logRepo.IncrementSetsCompleted(ctx, logID, -1)
	})
	if err != nil {
		return err
	}

	// Release the stored file only after the transaction committed, so a
	// rollback never leaves a dangling reference to a deleted object.
	if orphanedObjectKey != "" {
		_ = s.fileStorage.DeleteObject(ctx, orphanedObjectKey)
	}
	return nil
}

// LogSetPerformance overwrites a placeholder set with actual reps and weight.
func (s *sessionService) LogSetPerformance(ctx context.Context, setID primitive.ObjectID, reps *int, weight *float64) (*domain.ExerciseSet, error) {
	set, err := s.setRepo.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSetNotFound
		}
		return nil, err
	}
	if err := s.setRepo.UpdatePerformance(ctx, setID, reps, weight); err != nil {
		return nil, err
	}
	set.Reps = reps
	set.WeightUsed = weight
	set.IsLogged = true
	return set, nil
}

// SetLogNote stores the free-text note on an exercise log.
func (s *sessionService) SetLogNote(ctx context.Context, logID primitive.ObjectID, note string) error {
	err := s.logRepo.SetNote(ctx, logID, note)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLogNotFound
	}
	return err
}

// === Video Evidence ===

// RequestSetVideoUploadURL generates a pre-signed URL for uploading a video
// directly to object storage.
func (s *sessionService) RequestSetVideoUploadURL(ctx context.Context, userID, setID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return nil, errors.New("invalid or missing video content type")
	}

	set, err := s.getOwnedSet(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	uniqueID := uuid.NewString()
	fileExtension := ""
	if parts := strings.Split(contentType, "/"); len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("set-videos", userID.Hex(), set.ID.Hex(), fmt.Sprintf("%s.%s", uniqueID, fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}

	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmSetVideo records upload metadata and links it to the set. Called
// after the client finished the pre-signed PUT. Replacing an existing video
// commits the new reference first and only then releases the old file.
func (s *sessionService) ConfirmSetVideo(ctx context.Context, userID, setID primitive.ObjectID, objectKey, fileName string, fileSize int64, contentType string) (*domain.ExerciseSet, error) {
	if objectKey == "" {
		return nil, errors.New("object key is required")
	}

	set, err := s.getOwnedSet(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	var previousKey string
	var previousUploadID *primitive.ObjectID
	if set.VideoUploadID != nil {
		if previous, err := s.uploadRepo.GetByID(ctx, *set.VideoUploadID); err == nil {
			previousKey = previous.S3ObjectKey
			previousUploadID = &previous.ID
		}
	}

	upload := &domain.Upload{
		SetID:       set.ID,
		UserID:      userID,
		S3ObjectKey: objectKey,
		FileName:    fileName,
		ContentType: contentType,
		Size:        fileSize,
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		uploadID, err := s.uploadRepo.Create(ctx, upload)
		if err != nil {
			return err
		}
		if err := s.setRepo.SetVideoUploadID(ctx, set.ID, &uploadID); err != nil {
			return err
		}
		if previousUploadID != nil {
			if err := s.uploadRepo.Delete(ctx, *previousUploadID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		set.VideoUploadID = &uploadID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previousKey != "" {
		_ = s.fileStorage.DeleteObject(ctx, previousKey)
	}
	return set, nil
}

// GetSetVideoDownloadURL generates a temporary URL for viewing the set's video.
func (s *sessionService) GetSetVideoDownloadURL(ctx context.Context, userID, setID primitive.ObjectID) (string, error) {
	set, err := s.getOwnedSet(ctx, userID, setID)
	if err != nil {
		return "", err
	}
	if set.VideoUploadID == nil {
		return "", ErrVideoMissing
	}

	upload, err := s.uploadRepo.GetByID(ctx, *set.VideoUploadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrVideoMissing
		}
		return "", err
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, upload.S3ObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDownloadURLError
	}
	return downloadURL, nil
}

// RemoveSetVideo clears the video reference and releases the stored file.
func (s *sessionService) RemoveSetVideo(ctx context.Context, userID, setID primitive.ObjectID) error {
	set, err := s.getOwnedSet(ctx, userID, setID)
	if err != nil {
		return err
	}
	if set.VideoUploadID == nil {
		return ErrVideoMissing
	}

	upload, err := s.uploadRepo.GetByID(ctx, *set.VideoUploadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Dangling reference; just clear it.
			return s.setRepo.SetVideoUploadID(ctx, set.ID, nil)
		}
		return err
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.setRepo.SetVideoUploadID(ctx, set.ID, nil); err != nil {
			return err
		}
		return s.uploadRepo.Delete(ctx, upload.ID)
	})
	if err != nil {
		return err
	}

	return s.fileStorage.DeleteObject(ctx, upload.S3ObjectKey)
}

// === Helpers ===

func (s *sessionService) getOwnedSet(ctx context.Context, userID, setID primitive.ObjectID) (*domain.ExerciseSet, error) {
	set, err := s.setRepo.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSetNotFound
		}
		return nil, err
	}
	if set.UserID != userID {
		return nil, ErrSetNotOwned
	}
	return set, nil
}

// buildSessionDetails assembles the full session view: logs in prescription
// order, their sets, and exercise names.
func (s *sessionService) buildSessionDetails(ctx context.Context, sessionID primitive.ObjectID) (*SessionDetails, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	workoutName := ""
	if workout, err := s.workoutRepo.GetByID(ctx, session.WorkoutID); err == nil {
		workoutName = workout.Name
	}

	logs, err := s.logRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	exerciseIDs := make([]primitive.ObjectID, 0, len(logs))
	for _, l := range logs {
		exerciseIDs = append(exerciseIDs, l.ExerciseID)
	}
	exercises, err := s.exerciseRepo.GetByIDs(ctx, exerciseIDs)
	if err != nil {
		return nil, err
	}
	namesByID := make(map[primitive.ObjectID]string, len(exercises))
	for _, ex := range exercises {
		namesByID[ex.ID] = ex.Name
	}

	details := &SessionDetails{
		WorkoutSession: *session,
		WorkoutName:    workoutName,
		Logs:           make([]LogDetails, 0, len(logs)),
	}
	for _, logEntry := range logs {
		sets, err := s.setRepo.GetByLogID(ctx, logEntry.ID)
		if err != nil {
			return nil, err
		}
		var prescription *domain.WorkoutExercise
		if we, err := s.weRepo.GetByID(ctx, logEntry.WorkoutExerciseID); err == nil {
			prescription = we
		}
		details.Logs = append(details.Logs, LogDetails{
			ExerciseLog:  logEntry,
			ExerciseName: namesByID[logEntry.ExerciseID],
			Prescription: prescription,
			Sets:         sets,
		})
	}
	return details, nil
}
