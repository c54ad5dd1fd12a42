package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/api"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/config"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/planner"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/repository/mongo"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/service"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.Info("Starting fitness backend server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.WithError(err).Fatal("Could not load config")
	}
	log.Info("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to MongoDB")
	}
	defer func() {
		log.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.WithError(err).Error("Failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("Database connection established.")

	// --- Ensure Indexes ---
	log.Info("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsureProgramIndexes(ctx, appDB.Collection("programs"))
		mongo.EnsureWorkoutIndexes(ctx, appDB.Collection("workouts"))
		mongo.EnsureWorkoutExerciseIndexes(ctx, appDB.Collection("workout_exercises"))
		mongo.EnsureProgressIndexes(ctx, appDB.Collection("program_progress"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("workout_sessions"))
		mongo.EnsureExerciseLogIndexes(ctx, appDB.Collection("exercise_logs"))
		mongo.EnsureExerciseSetIndexes(ctx, appDB.Collection("exercise_sets"))
		mongo.EnsureUploadIndexes(ctx, appDB.Collection("uploads"))
		log.Info("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Info("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize S3 storage")
	}

	// --- Initialize Repositories ---
	log.Info("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	programRepo := mongo.NewMongoProgramRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	weRepo := mongo.NewMongoWorkoutExerciseRepository(appDB)
	progressRepo := mongo.NewMongoProgressRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	logRepo := mongo.NewMongoExerciseLogRepository(appDB)
	setRepo := mongo.NewMongoExerciseSetRepository(appDB)
	uploadRepo := mongo.NewMongoUploadRepository(appDB)
	txnRunner := mongo.NewMongoTxnRunner(dbClient)

	// --- Initialize Services ---
	log.Info("Initializing services...")
	planGenerator := planner.NewHTTPPlanner(cfg.Planner)

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	userService := service.NewUserService(userRepo, fileStorage, txnRunner)
	catalogService := service.NewCatalogService(programRepo, workoutRepo, weRepo, exerciseRepo, progressRepo, sessionRepo, logRepo, setRepo, txnRunner)
	progressService := service.NewProgressService(progressRepo, programRepo, txnRunner)
	sessionService := service.NewSessionService(progressRepo, workoutRepo, weRepo, sessionRepo, logRepo, setRepo, exerciseRepo, uploadRepo, fileStorage, txnRunner)
	analyticsService := service.NewAnalyticsService(sessionRepo, setRepo, exerciseRepo)
	importService := service.NewImportService(planGenerator, programRepo, workoutRepo, weRepo, exerciseRepo, catalogService, txnRunner)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Info("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, userService, catalogService, progressService, sessionService, analyticsService, importService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.WithField("address", cfg.Server.Address).Info("Server starting")

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("ListenAndServe error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exiting.")
}
