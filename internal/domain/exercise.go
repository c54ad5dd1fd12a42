package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the library.
// An exercise with no creator is "universal": visible to every user and
// preferred over user-owned duplicates of the same name when resolving
// imported plans.
type Exercise struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CreatorID   *primitive.ObjectID `bson:"creatorId,omitempty" json:"creatorId,omitempty"` // nil for universal exercises
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	VideoURL    string              `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"` // Optional URL to an example video
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsUniversal reports whether the exercise belongs to the shared library
// rather than a single creator.
func (e *Exercise) IsUniversal() bool {
	return e.CreatorID == nil || *e.CreatorID == primitive.NilObjectID
}
