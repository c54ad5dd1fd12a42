package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleTrainer Role = "trainer"
	RoleUser    Role = "user"
)

// User represents a user in the system (a regular user or a trainer).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Public key for client-side encrypted messaging. Optional; set once the
	// client registers its keypair.
	PublicKey string `bson:"publicKey,omitempty" json:"publicKey,omitempty"`

	// S3 object key of the profile image, if one was uploaded.
	ProfileImageKey string `bson:"profileImageKey,omitempty" json:"-"`

	// --- Trainer-specific ---
	// Stores ObjectIDs of clients coached by this trainer.
	ClientIDs []primitive.ObjectID `bson:"clientIds,omitempty" json:"clientIds,omitempty"`

	// --- Client-specific ---
	// Stores the ObjectID of the trainer coaching this user, if any.
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}
