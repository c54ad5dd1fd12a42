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

const sessionCollectionName = "workout_sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new WorkoutSession repository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session. The partial unique index on (userId) where
// active && !completed turns a concurrent duplicate start into a duplicate
// key error, surfaced as ErrConflict. This is the single-flight guard that
// closes the check-then-insert race.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	if session.UserID == primitive.NilObjectID || session.WorkoutID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session requires userId and workoutId")
	}
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetActiveByUser retrieves the user's active, uncompleted session.
func (r *mongoSessionRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	filter := bson.M{"userId": userID, "active": true, "completed": false}
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Complete marks a session finished: completed=true, active=false.
func (r *mongoSessionRepository) Complete(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{
		"completed": true,
		"active":    false,
		"updatedAt": time.Now().UTC(),
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

// GetByUserSince retrieves the user's sessions dated on or after since,
// oldest first.
func (r *mongoSessionRepository) GetByUserSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.WorkoutSession, error) {
	filter := bson.M{"userId": userID, "date": bson.M{"$gte": since}}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.WorkoutSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetIDsByWorkoutIDs returns the IDs of all sessions performed against the
// given workouts. Used by the catalog cascade delete.
func (r *mongoSessionRepository) GetIDsByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(workoutIDs) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"workoutId": bson.M{"$in": workoutIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.WorkoutSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	return ids, nil
}

// DeleteByWorkoutIDs removes every session of the given workouts.
func (r *mongoSessionRepository) DeleteByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) error {
	if len(workoutIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"workoutId": bson.M{"$in": workoutIDs}})
	return err
}

// EnsureSessionIndexes creates necessary indexes. Call during startup.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// At most one active, uncompleted session per user.
			Keys: bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true, "completed": false}),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
