package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/repository"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrClientNotFound        = errors.New("client user not found")
	ErrClientNotRole         = errors.New("user found but is not a client")
	ErrClientAlreadyAssigned = errors.New("client is already assigned to a trainer")
	ErrNotATrainer           = errors.New("user is not a trainer")
	ErrProfileImageMissing   = errors.New("no profile image has been uploaded")
)

// --- Service Interface ---

// UserService covers account details beyond authentication: profile data,
// encryption keys and the trainer/client relationship.
type UserService interface {
	GetUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	SetPublicKey(ctx context.Context, userID primitive.ObjectID, publicKey string) error

	// Profile image, via the same pre-signed upload flow as set videos.
	RequestProfileImageUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmProfileImage(ctx context.Context, userID primitive.ObjectID, objectKey string) error
	GetProfileImageURL(ctx context.Context, userID primitive.ObjectID) (string, error)

	// Trainer/client management
	AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
}

// --- Service Implementation ---

type userService struct {
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
	txn         repository.TxnRunner
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository, fileStorage storage.FileStorage, txn repository.TxnRunner) UserService {
	return &userService{
		userRepo:    userRepo,
		fileStorage: fileStorage,
		txn:         txn,
	}
}

func (s *userService) GetUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// SetPublicKey stores the user's encryption public key for client-side
// encrypted messaging.
func (s *userService) SetPublicKey(ctx context.Context, userID primitive.ObjectID, publicKey string) error {
	if strings.TrimSpace(publicKey) == "" {
		return errors.New("public key cannot be empty")
	}
	err := s.userRepo.SetPublicKey(ctx, userID, publicKey)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// === Profile Image ===

func (s *userService) RequestProfileImageUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, errors.New("invalid or missing image content type")
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	fileExtension := ""
	if parts := strings.Split(contentType, "/"); len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("profile-images", userID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmProfileImage records the uploaded object as the user's profile
// image. A previous image is released from storage after the new key commits.
func (s *userService) ConfirmProfileImage(ctx context.Context, userID primitive.ObjectID, objectKey string) error {
	if objectKey == "" {
		return errors.New("object key is required")
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	previousKey := user.ProfileImageKey
	if err := s.userRepo.SetProfileImageKey(ctx, userID, objectKey); err != nil {
		return err
	}
	if previousKey != "" && previousKey != objectKey {
		_ = s.fileStorage.DeleteObject(ctx, previousKey)
	}
	return nil
}

func (s *userService) GetProfileImageURL(ctx context.Context, userID primitive.ObjectID) (string, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.ProfileImageKey == "" {
		return "", ErrProfileImageMissing
	}
	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, user.ProfileImageKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDownloadURLError
	}
	return downloadURL, nil
}

// === Trainer / Client ===

// AddClientByEmail links a client account to the trainer. Both sides of the
// relationship are written in one transaction so they never diverge.
func (s *userService) AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	if trainerID == primitive.NilObjectID || clientEmail == "" {
		return nil, errors.New("trainer ID and client email are required")
	}

	trainer, err := s.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !trainer.IsTrainer() {
		return nil, ErrNotATrainer
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.IsTrainer() {
		return nil, ErrClientNotRole
	}

	if client.TrainerID != nil && *client.TrainerID != primitive.NilObjectID {
		if *client.TrainerID == trainerID {
			// Already managed by this trainer.
			client.PasswordHash = ""
			return client, nil
		}
		return nil, ErrClientAlreadyAssigned
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.AddClientIDToTrainer(ctx, trainerID, client.ID); err != nil {
			return err
		}
		return s.userRepo.SetTrainerForClient(ctx, client.ID, trainerID)
	})
	if err != nil {
		return nil, err
	}

	client.TrainerID = &trainerID
	client.PasswordHash = ""
	return client, nil
}

// GetManagedClients retrieves the list of clients managed by the trainer.
func (s *userService) GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	trainer, err := s.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !trainer.IsTrainer() {
		return nil, ErrNotATrainer
	}

	clients := make([]domain.User, 0, len(trainer.ClientIDs))
	for _, clientID := range trainer.ClientIDs {
		client, err := s.userRepo.GetByID(ctx, clientID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue // Stale reference; skip.
			}
			return nil, err
		}
		client.PasswordHash = ""
		clients = append(clients, *client)
	}
	return clients, nil
}
