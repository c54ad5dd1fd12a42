package service

import (
	"context"
	"errors"
	"time"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgramNotFound         = errors.New("program not found")
	ErrProgressNotFound        = errors.New("program progress not found")
	ErrProgressAlreadyInactive = errors.New("program progress is already inactive")
	ErrNoActiveProgram         = errors.New("user has no active program")
)

// --- Service Interface ---

// ProgressService tracks which program a user is currently engaged with.
// Invariant: at most one progress row per user is active at any instant.
type ProgressService interface {
	Activate(ctx context.Context, userID, programID primitive.ObjectID) (*domain.ProgramProgress, error)
	Deactivate(ctx context.Context, userID, programID primitive.ObjectID) error
	GetActiveProgram(ctx context.Context, userID primitive.ObjectID) (*domain.Program, error)
}

// --- Service Implementation ---

type progressService struct {
	progressRepo repository.ProgressRepository
	programRepo  repository.ProgramRepository
	txn          repository.TxnRunner
	now          func() time.Time
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	progressRepo repository.ProgressRepository,
	programRepo repository.ProgramRepository,
	txn repository.TxnRunner,
) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		programRepo:  programRepo,
		txn:          txn,
		now:          time.Now,
	}
}

// Activate marks the given program as the user's current one. Every other
// progress row for the user is deactivated first, then the (user, program)
// row is found or created. A newly created row gets a fresh start date; a
// reactivated row keeps its original start date so history is not reset.
func (s *progressService) Activate(ctx context.Context, userID, programID primitive.ObjectID) (*domain.ProgramProgress, error) {
	if userID == primitive.NilObjectID || programID == primitive.NilObjectID {
		return nil, errors.New("user ID and program ID are required")
	}

	// Verify the program exists before touching any progress rows.
	if _, err := s.programRepo.GetByID(ctx, programID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	var progress *domain.ProgramProgress
	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.progressRepo.DeactivateOthers(ctx, userID, programID); err != nil {
			return err
		}

		existing, err := s.progressRepo.GetByUserAndProgram(ctx, userID, programID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			created := &domain.ProgramProgress{
				UserID:    userID,
				ProgramID: programID,
				IsActive:  true,
				StartDate: s.now().UTC(),
			}
			if _, err := s.progressRepo.Create(ctx, created); err != nil {
				return err
			}
			progress = created
			return nil
		}

		if !existing.IsActive {
			if err := s.progressRepo.SetActive(ctx, existing.ID, true); err != nil {
				return err
			}
			existing.IsActive = true
		}
		progress = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// Deactivate clears the active flag on the (user, program) row.
func (s *progressService) Deactivate(ctx context.Context, userID, programID primitive.ObjectID) error {
	progress, err := s.progressRepo.GetByUserAndProgram(ctx, userID, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProgressNotFound
		}
		return err
	}
	if !progress.IsActive {
		return ErrProgressAlreadyInactive
	}
	return s.progressRepo.SetActive(ctx, progress.ID, false)
}

// GetActiveProgram returns the program the user is currently engaged with.
func (s *progressService) GetActiveProgram(ctx context.Context, userID primitive.ObjectID) (*domain.Program, error) {
	progress, err := s.progressRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveProgram
		}
		return nil, err
	}

	program, err := s.programRepo.GetByID(ctx, progress.ProgramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Progress row points at a deleted program; treat as no active program.
			return nil, ErrNoActiveProgram
		}
		return nil, err
	}
	return program, nil
}
