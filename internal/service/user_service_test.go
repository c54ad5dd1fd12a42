package service

import (
	"context"
	"testing"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newUserTestService(t *testing.T) (UserService, *fakeUserRepo, *fakeFileStorage) {
	t.Helper()
	userRepo := newFakeUserRepo()
	storage := &fakeFileStorage{}
	return NewUserService(userRepo, storage, &fakeTxnRunner{}), userRepo, storage
}

func seedUser(t *testing.T, repo *fakeUserRepo, name, email string, role domain.Role) primitive.ObjectID {
	t.Helper()
	id, err := repo.Create(context.Background(), &domain.User{Name: name, Email: email, PasswordHash: "x", Role: role})
	require.NoError(t, err)
	return id
}

func TestAddClientByEmailLinksBothSides(t *testing.T) {
	svc, userRepo, _ := newUserTestService(t)
	ctx := context.Background()

	trainerID := seedUser(t, userRepo, "Coach", "coach@example.com", domain.RoleTrainer)
	clientID := seedUser(t, userRepo, "Client", "client@example.com", domain.RoleUser)

	client, err := svc.AddClientByEmail(ctx, trainerID, "client@example.com")
	require.NoError(t, err)
	require.NotNil(t, client.TrainerID)
	assert.Equal(t, trainerID, *client.TrainerID)

	trainer, err := userRepo.GetByID(ctx, trainerID)
	require.NoError(t, err)
	assert.Contains(t, trainer.ClientIDs, clientID)

	// Adding the same client again is a no-op, not an error.
	again, err := svc.AddClientByEmail(ctx, trainerID, "client@example.com")
	require.NoError(t, err)
	assert.Equal(t, clientID, again.ID)
}

func TestAddClientByEmailRejections(t *testing.T) {
	svc, userRepo, _ := newUserTestService(t)
	ctx := context.Background()

	trainerID := seedUser(t, userRepo, "Coach", "coach@example.com", domain.RoleTrainer)
	otherTrainerID := seedUser(t, userRepo, "Rival", "rival@example.com", domain.RoleTrainer)
	seedUser(t, userRepo, "Client", "client@example.com", domain.RoleUser)

	// Unknown email.
	_, err := svc.AddClientByEmail(ctx, trainerID, "nobody@example.com")
	assert.ErrorIs(t, err, ErrClientNotFound)

	// A trainer cannot be added as a client.
	_, err = svc.AddClientByEmail(ctx, trainerID, "rival@example.com")
	assert.ErrorIs(t, err, ErrClientNotRole)

	// A regular user cannot manage clients.
	regularID := seedUser(t, userRepo, "Someone", "someone@example.com", domain.RoleUser)
	_, err = svc.AddClientByEmail(ctx, regularID, "client@example.com")
	assert.ErrorIs(t, err, ErrNotATrainer)

	// A client already coached by another trainer is not poachable.
	_, err = svc.AddClientByEmail(ctx, trainerID, "client@example.com")
	require.NoError(t, err)
	_, err = svc.AddClientByEmail(ctx, otherTrainerID, "client@example.com")
	assert.ErrorIs(t, err, ErrClientAlreadyAssigned)
}

func TestProfileImageFlow(t *testing.T) {
	svc, userRepo, storage := newUserTestService(t)
	ctx := context.Background()
	userID := seedUser(t, userRepo, "Alex", "alex@example.com", domain.RoleUser)

	_, err := svc.GetProfileImageURL(ctx, userID)
	assert.ErrorIs(t, err, ErrProfileImageMissing)

	resp, err := svc.RequestProfileImageUploadURL(ctx, userID, "image/jpeg")
	require.NoError(t, err)
	assert.Contains(t, resp.ObjectKey, "profile-images/")

	require.NoError(t, svc.ConfirmProfileImage(ctx, userID, resp.ObjectKey))

	url, err := svc.GetProfileImageURL(ctx, userID)
	require.NoError(t, err)
	assert.Contains(t, url, resp.ObjectKey)

	// Replacing the image releases the old object.
	next, err := svc.RequestProfileImageUploadURL(ctx, userID, "image/png")
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmProfileImage(ctx, userID, next.ObjectKey))
	assert.Contains(t, storage.deleted, resp.ObjectKey)

	// Non-image uploads are rejected up front.
	_, err = svc.RequestProfileImageUploadURL(ctx, userID, "video/mp4")
	assert.Error(t, err)
}

func TestSetPublicKey(t *testing.T) {
	svc, userRepo, _ := newUserTestService(t)
	ctx := context.Background()
	userID := seedUser(t, userRepo, "Alex", "alex@example.com", domain.RoleUser)

	require.NoError(t, svc.SetPublicKey(ctx, userID, "base64-key"))
	user, err := userRepo.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "base64-key", user.PublicKey)

	assert.Error(t, svc.SetPublicKey(ctx, userID, "  "))
	assert.ErrorIs(t, svc.SetPublicKey(ctx, primitive.NewObjectID(), "k"), ErrUserNotFound)
}
