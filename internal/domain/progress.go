package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramProgress records one user's engagement with one program.
// Invariant: at most one progress row per user has IsActive=true at a time.
// Past engagements are kept (IsActive=false) so history survives program
// switches; reactivating an old row preserves its original StartDate.
type ProgramProgress struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ProgramID primitive.ObjectID `bson:"programId" json:"programId"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	StartDate time.Time          `bson:"startDate" json:"startDate"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
