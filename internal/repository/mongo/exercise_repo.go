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

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise requires a name")
	}
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted exercise ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetByName looks up an exercise by exact name and creator. A nil creatorID
// matches only universal exercises (documents without a creatorId field).
func (r *mongoExerciseRepository) GetByName(ctx context.Context, name string, creatorID *primitive.ObjectID) (*domain.Exercise, error) {
	filter := bson.M{"name": name}
	if creatorID == nil {
		filter["creatorId"] = bson.M{"$exists": false}
	} else {
		filter["creatorId"] = *creatorID
	}

	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, filter).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetByIDs retrieves the exercises with the given IDs.
func (r *mongoExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	if len(ids) == 0 {
		return exercises, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// GetVisibleToUser returns universal exercises plus the ones the user created.
func (r *mongoExerciseRepository) GetVisibleToUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"creatorId": bson.M{"$exists": false}},
		bson.M{"creatorId": userID},
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.Exercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Update modifies the mutable fields of an exercise.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	updateDoc := bson.M{
		"$set": bson.M{
			"name":        exercise.Name,
			"description": exercise.Description,
			"videoUrl":    exercise.VideoURL,
			"updatedAt":   time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exercise.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an exercise. The filter includes the creator so ownership is
// enforced at the database level.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id, creatorID primitive.ObjectID) error {
	if id == primitive.NilObjectID || creatorID == primitive.NilObjectID {
		return errors.New("exercise ID and creator ID are required for deletion")
	}
	filter := bson.M{"_id": id, "creatorId": creatorID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Exercise not found OR not owned by this creator.
		return repository.ErrNotFound
	}
	return nil
}

// EnsureExerciseIndexes creates necessary indexes. Call during startup.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Name lookups during plan import resolve (name, creator) pairs.
			Keys:    bson.D{{Key: "name", Value: 1}, {Key: "creatorId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "creatorId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
