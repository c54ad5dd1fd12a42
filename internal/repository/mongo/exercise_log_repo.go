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

const exerciseLogCollectionName = "exercise_logs"

// mongoExerciseLogRepository implements repository.ExerciseLogRepository
type mongoExerciseLogRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseLogRepository creates a new ExerciseLog repository.
func NewMongoExerciseLogRepository(db *mongo.Database) repository.ExerciseLogRepository {
	return &mongoExerciseLogRepository{
		collection: db.Collection(exerciseLogCollectionName),
	}
}

// Create inserts a new exercise log.
func (r *mongoExerciseLogRepository) Create(ctx context.Context, log *domain.ExerciseLog) (primitive.ObjectID, error) {
	if log.SessionID == primitive.NilObjectID || log.WorkoutExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise log requires sessionId and workoutExerciseId")
	}
	log.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted log ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single exercise log by its ID.
func (r *mongoExerciseLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseLog, error) {
	var log domain.ExerciseLog
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// GetBySessionID retrieves every log of a session, sorted by prescription order.
func (r *mongoExerciseLogRepository) GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.ExerciseLog, error) {
	filter := bson.M{"sessionId": sessionID}
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.ExerciseLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// IncrementSetsCompleted adjusts the counter by delta. A decrement below zero
// clamps back to zero rather than going negative.
func (r *mongoExerciseLogRepository) IncrementSetsCompleted(ctx context.Context, id primitive.ObjectID, delta int) error {
	update := bson.M{
		"$inc": bson.M{"setsCompleted": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	if delta < 0 {
		// Clamp at zero; $inc has no floor.
		_, err = r.collection.UpdateOne(ctx,
			bson.M{"_id": id, "setsCompleted": bson.M{"$lt": 0}},
			bson.M{"$set": bson.M{"setsCompleted": 0}},
		)
	}
	return err
}

// SetNote stores the free-text note on a log.
func (r *mongoExerciseLogRepository) SetNote(ctx context.Context, id primitive.ObjectID, note string) error {
	update := bson.M{"$set": bson.M{"note": note, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteBySessionIDs removes every log of the given sessions.
func (r *mongoExerciseLogRepository) DeleteBySessionIDs(ctx context.Context, sessionIDs []primitive.ObjectID) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": bson.M{"$in": sessionIDs}})
	return err
}

// EnsureExerciseLogIndexes creates necessary indexes. Call during startup.
func EnsureExerciseLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
