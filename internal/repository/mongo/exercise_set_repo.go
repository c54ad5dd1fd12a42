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

const exerciseSetCollectionName = "exercise_sets"

// mongoExerciseSetRepository implements repository.ExerciseSetRepository
type mongoExerciseSetRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseSetRepository creates a new ExerciseSet repository.
func NewMongoExerciseSetRepository(db *mongo.Database) repository.ExerciseSetRepository {
	return &mongoExerciseSetRepository{
		collection: db.Collection(exerciseSetCollectionName),
	}
}

// Create inserts a single set.
func (r *mongoExerciseSetRepository) Create(ctx context.Context, set *domain.ExerciseSet) (primitive.ObjectID, error) {
	if set.LogID == primitive.NilObjectID || set.SetNumber < 1 {
		return primitive.NilObjectID, errors.New("exercise set requires logId and a 1-based set number")
	}
	set.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	set.CreatedAt = now
	set.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, set)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted set ID")
	}
	return insertedID, nil
}

// CreateMany inserts a batch of sets (session seeding).
func (r *mongoExerciseSetRepository) CreateMany(ctx context.Context, sets []domain.ExerciseSet) error {
	if len(sets) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(sets))
	for i := range sets {
		sets[i].ID = primitive.NewObjectID()
		sets[i].CreatedAt = now
		sets[i].UpdatedAt = now
		docs[i] = sets[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	return err
}

// GetByID retrieves a single set by its ID.
func (r *mongoExerciseSetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseSet, error) {
	var set domain.ExerciseSet
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &set, nil
}

// GetByLogID retrieves every set of a log, sorted by set number.
func (r *mongoExerciseSetRepository) GetByLogID(ctx context.Context, logID primitive.ObjectID) ([]domain.ExerciseSet, error) {
	filter := bson.M{"logId": logID}
	findOptions := options.Find().SetSort(bson.D{{Key: "setNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sets []domain.ExerciseSet
	if err = cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// GetLastByLogID retrieves the highest-numbered set of a log.
func (r *mongoExerciseSetRepository) GetLastByLogID(ctx context.Context, logID primitive.ObjectID) (*domain.ExerciseSet, error) {
	findOptions := options.FindOne().SetSort(bson.D{{Key: "setNumber", Value: -1}})
	var set domain.ExerciseSet
	err := r.collection.FindOne(ctx, bson.M{"logId": logID}, findOptions).Decode(&set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &set, nil
}

// CountByLogID counts the sets in a log.
func (r *mongoExerciseSetRepository) CountByLogID(ctx context.Context, logID primitive.ObjectID) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"logId": logID})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// UpdatePerformance overwrites the placeholder reps/weight with logged values
// and marks the set as logged.
func (r *mongoExerciseSetRepository) UpdatePerformance(ctx context.Context, id primitive.ObjectID, reps *int, weight *float64) error {
	update := bson.M{"$set": bson.M{
		"reps":       reps,
		"weightUsed": weight,
		"isLogged":   true,
		"updatedAt":  time.Now().UTC(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetVideoUploadID links or clears the video evidence reference on a set.
func (r *mongoExerciseSetRepository) SetVideoUploadID(ctx context.Context, id primitive.ObjectID, uploadID *primitive.ObjectID) error {
	var update bson.M
	if uploadID == nil {
		update = bson.M{
			"$unset": bson.M{"videoUploadId": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
	} else {
		update = bson.M{"$set": bson.M{"videoUploadId": *uploadID, "updatedAt": time.Now().UTC()}}
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a single set.
func (r *mongoExerciseSetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetByUserSince retrieves the user's sets performed on or after since.
func (r *mongoExerciseSetRepository) GetByUserSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.ExerciseSet, error) {
	filter := bson.M{"userId": userID, "performedAt": bson.M{"$gte": since}}
	return r.findSorted(ctx, filter)
}

// GetByUserAndExerciseSince retrieves the user's sets for one exercise
// performed on or after since.
func (r *mongoExerciseSetRepository) GetByUserAndExerciseSince(ctx context.Context, userID, exerciseID primitive.ObjectID, since time.Time) ([]domain.ExerciseSet, error) {
	filter := bson.M{
		"userId":      userID,
		"exerciseId":  exerciseID,
		"performedAt": bson.M{"$gte": since},
	}
	return r.findSorted(ctx, filter)
}

func (r *mongoExerciseSetRepository) findSorted(ctx context.Context, filter bson.M) ([]domain.ExerciseSet, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "performedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sets []domain.ExerciseSet
	if err = cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// GetLoggedExerciseIDsByUser returns the distinct exercise IDs for which the
// user has at least one set with a logged weight. Feeds the chart pickers.
func (r *mongoExerciseSetRepository) GetLoggedExerciseIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{"userId": userID, "weightUsed": bson.M{"$ne": nil}}
	raw, err := r.collection.Distinct(ctx, "exerciseId", filter)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// DeleteBySessionIDs removes every set of the given sessions.
func (r *mongoExerciseSetRepository) DeleteBySessionIDs(ctx context.Context, sessionIDs []primitive.ObjectID) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": bson.M{"$in": sessionIDs}})
	return err
}

// EnsureExerciseSetIndexes creates necessary indexes. Call during startup.
func EnsureExerciseSetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Contiguous numbering within a log; also backs the append/pop paths.
			Keys:    bson.D{{Key: "logId", Value: 1}, {Key: "setNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "performedAt", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "exerciseId", Value: 1}, {Key: "performedAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
