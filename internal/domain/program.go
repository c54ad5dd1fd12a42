package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program represents a named multi-workout training plan owned by a creator.
// Deleting a program cascades to its workouts (and their prescriptions,
// sessions, logs and sets). The cascade is executed explicitly by the
// catalog service inside one transaction, never left to the storage engine.
type Program struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CreatorID    primitive.ObjectID   `bson:"creatorId" json:"creatorId"`
	Name         string               `bson:"name" json:"name"`
	Description  string               `bson:"description,omitempty" json:"description,omitempty"`
	Participants []primitive.ObjectID `bson:"participants,omitempty" json:"participants,omitempty"`
	AIGenerated  bool                 `bson:"aiGenerated" json:"aiGenerated"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}
