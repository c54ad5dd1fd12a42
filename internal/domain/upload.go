package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Upload stores metadata about a video file uploaded as evidence for an
// ExerciseSet. The actual file resides in S3.
type Upload struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SetID       primitive.ObjectID `bson:"setId" json:"setId"`       // Link back to the exercise set
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`     // Link to the user who uploaded
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"`     // The unique key (path/filename) in the S3 bucket - internal use
	FileName    string             `bson:"fileName" json:"fileName"` // Original filename provided by the client
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"` // File size in bytes
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
