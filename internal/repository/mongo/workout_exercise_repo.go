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

const workoutExerciseCollectionName = "workout_exercises"

// mongoWorkoutExerciseRepository implements repository.WorkoutExerciseRepository
type mongoWorkoutExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutExerciseRepository creates a new WorkoutExercise repository.
func NewMongoWorkoutExerciseRepository(db *mongo.Database) repository.WorkoutExerciseRepository {
	return &mongoWorkoutExerciseRepository{
		collection: db.Collection(workoutExerciseCollectionName),
	}
}

// Create inserts a new workout exercise prescription.
func (r *mongoWorkoutExerciseRepository) Create(ctx context.Context, we *domain.WorkoutExercise) (primitive.ObjectID, error) {
	if we.WorkoutID == primitive.NilObjectID || we.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout exercise requires workoutId and exerciseId")
	}
	we.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	we.CreatedAt = now
	we.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, we)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout exercise ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single prescription by its ID.
func (r *mongoWorkoutExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error) {
	var we domain.WorkoutExercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&we)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &we, nil
}

// GetByWorkoutID retrieves all prescriptions of a workout, sorted by order key
// with insertion order (_id) breaking ties.
func (r *mongoWorkoutExerciseRepository) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	filter := bson.M{"workoutId": workoutID}
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var prescriptions []domain.WorkoutExercise
	if err = cursor.All(ctx, &prescriptions); err != nil {
		return nil, err
	}
	return prescriptions, nil
}

// MaxOrderByWorkoutID returns the highest order key in the workout, or 0 when
// the workout has no prescriptions.
func (r *mongoWorkoutExerciseRepository) MaxOrderByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) (int, error) {
	findOptions := options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}})
	var we domain.WorkoutExercise
	err := r.collection.FindOne(ctx, bson.M{"workoutId": workoutID}, findOptions).Decode(&we)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return we.Order, nil
}

// UpdateOrder sets the order key of a single prescription.
func (r *mongoWorkoutExerciseRepository) UpdateOrder(ctx context.Context, id primitive.ObjectID, order int) error {
	update := bson.M{"$set": bson.M{"order": order, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Update replaces the mutable fields of a prescription.
func (r *mongoWorkoutExerciseRepository) Update(ctx context.Context, we *domain.WorkoutExercise) error {
	update := bson.M{"$set": bson.M{
		"sets":      we.Sets,
		"reps":      we.Reps,
		"note":      we.Note,
		"updatedAt": time.Now().UTC(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": we.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a single prescription.
func (r *mongoWorkoutExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByWorkoutIDs removes every prescription of the given workouts.
func (r *mongoWorkoutExerciseRepository) DeleteByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) error {
	if len(workoutIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"workoutId": bson.M{"$in": workoutIDs}})
	return err
}

// EnsureWorkoutExerciseIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
