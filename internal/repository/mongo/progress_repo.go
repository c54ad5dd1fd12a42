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

const progressCollectionName = "program_progress"

// mongoProgressRepository implements repository.ProgressRepository
type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new ProgramProgress repository.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// Create inserts a new progress row.
func (r *mongoProgressRepository) Create(ctx context.Context, progress *domain.ProgramProgress) (primitive.ObjectID, error) {
	if progress.UserID == primitive.NilObjectID || progress.ProgramID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("progress requires userId and programId")
	}
	progress.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	progress.CreatedAt = now
	progress.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, progress)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted progress ID")
	}
	return insertedID, nil
}

// GetByUserAndProgram retrieves the progress row for a (user, program) pair.
func (r *mongoProgressRepository) GetByUserAndProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.ProgramProgress, error) {
	var progress domain.ProgramProgress
	filter := bson.M{"userId": userID, "programId": programID}
	err := r.collection.FindOne(ctx, filter).Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// GetActiveByUser retrieves the single active progress row for a user.
func (r *mongoProgressRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.ProgramProgress, error) {
	var progress domain.ProgramProgress
	filter := bson.M{"userId": userID, "isActive": true}
	err := r.collection.FindOne(ctx, filter).Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// SetActive flips the active flag on a progress row.
func (r *mongoProgressRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	update := bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeactivateOthers clears the active flag on every progress row for the user
// except the one referencing excludeProgramID.
func (r *mongoProgressRepository) DeactivateOthers(ctx context.Context, userID, excludeProgramID primitive.ObjectID) error {
	filter := bson.M{
		"userId":    userID,
		"isActive":  true,
		"programId": bson.M{"$ne": excludeProgramID},
	}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// DeleteByProgramID removes every progress row referencing a program.
func (r *mongoProgressRepository) DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"programId": programID})
	return err
}

// EnsureProgressIndexes creates necessary indexes. Call during startup.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One progress row per (user, program) engagement.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "programId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
