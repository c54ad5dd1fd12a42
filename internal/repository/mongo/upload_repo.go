package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const uploadCollectionName = "uploads"

// mongoUploadRepository implements repository.UploadRepository
type mongoUploadRepository struct {
	collection *mongo.Collection
}

// NewMongoUploadRepository creates a new Upload repository.
func NewMongoUploadRepository(db *mongo.Database) repository.UploadRepository {
	return &mongoUploadRepository{
		collection: db.Collection(uploadCollectionName),
	}
}

// Create inserts upload metadata after the file landed in S3.
func (r *mongoUploadRepository) Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	if upload.SetID == primitive.NilObjectID || upload.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("upload requires setId and s3ObjectKey")
	}
	upload.ID = primitive.NewObjectID()
	upload.UploadedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, upload)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted upload ID")
	}
	return insertedID, nil
}

// GetByID retrieves upload metadata by ID.
func (r *mongoUploadRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error) {
	var upload domain.Upload
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&upload)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &upload, nil
}

// Delete removes upload metadata. The S3 object itself is deleted by the
// caller before the metadata goes away.
func (r *mongoUploadRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUploadIndexes creates necessary indexes. Call during startup.
func EnsureUploadIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "setId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
