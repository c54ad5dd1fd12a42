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

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.ProgramID == primitive.NilObjectID || workout.CreatorID == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("workout requires programId, creatorId, and name")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetByProgramID retrieves all workouts of a program, sorted by order key with
// insertion order (_id) breaking ties.
func (r *mongoWorkoutRepository) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Workout, error) {
	filter := bson.M{"programId": programID}
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []domain.Workout
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// GetIDsByProgramID returns just the IDs of a program's workouts.
func (r *mongoWorkoutRepository) GetIDsByProgramID(ctx context.Context, programID primitive.ObjectID) ([]primitive.ObjectID, error) {
	workouts, err := r.GetByProgramID(ctx, programID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(workouts))
	for i, w := range workouts {
		ids[i] = w.ID
	}
	return ids, nil
}

// MaxOrderByProgramID returns the highest order key in the program, or 0 when
// the program has no workouts.
func (r *mongoWorkoutRepository) MaxOrderByProgramID(ctx context.Context, programID primitive.ObjectID) (int, error) {
	findOptions := options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}})
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"programId": programID}, findOptions).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return workout.Order, nil
}

// UpdateOrder sets the order key of a single workout.
func (r *mongoWorkoutRepository) UpdateOrder(ctx context.Context, id primitive.ObjectID, order int) error {
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

// Update modifies the mutable fields of a workout.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}
	updateDoc := bson.M{
		"$set": bson.M{
			"name":      workout.Name,
			"order":     workout.Order,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": workout.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a single workout document.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByProgramID removes every workout of a program.
func (r *mongoWorkoutRepository) DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"programId": programID})
	return err
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "programId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "creatorId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
