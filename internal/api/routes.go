package api

import (
	"net/http"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	catalogService service.CatalogService,
	progressService service.ProgressService,
	sessionService service.SessionService,
	analyticsService service.AnalyticsService,
	importService service.ImportService,
) {

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	catalogHandler := NewCatalogHandler(catalogService)
	progressHandler := NewProgressHandler(progressService)
	sessionHandler := NewSessionHandler(sessionService)
	analyticsHandler := NewAnalyticsHandler(analyticsService)
	importHandler := NewImportHandler(importService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Account ---
		protected.GET("/me", userHandler.GetMe)
		protected.PUT("/me/public-key", userHandler.SetPublicKey)
		protected.POST("/me/profile-image/upload-url", userHandler.RequestProfileImageUploadURL)
		protected.POST("/me/profile-image/confirm", userHandler.ConfirmProfileImage)
		protected.GET("/me/profile-image", userHandler.GetProfileImageURL)

		// --- Exercise Library ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", catalogHandler.CreateExercise)
			exerciseGroup.GET("", catalogHandler.ListExercises)
			exerciseGroup.PUT("/:exerciseId", catalogHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", catalogHandler.DeleteExercise)
		}

		// --- Programs ---
		programGroup := protected.Group("/programs")
		{
			programGroup.POST("", catalogHandler.CreateProgram)
			programGroup.GET("", catalogHandler.ListPrograms)
			programGroup.GET("/:programId", catalogHandler.GetProgram)
			programGroup.PUT("/:programId", catalogHandler.UpdateProgram)
			programGroup.DELETE("/:programId", catalogHandler.DeleteProgram)

			programGroup.POST("/:programId/workouts", catalogHandler.CreateWorkout)
			programGroup.PUT("/:programId/workouts/order", catalogHandler.ReorderWorkouts)

			// Program engagement
			programGroup.POST("/:programId/activate", progressHandler.Activate)
			programGroup.POST("/:programId/deactivate", progressHandler.Deactivate)

			// Plan generation
			programGroup.POST("/:programId/workouts/generate", importHandler.GenerateWorkout)
			programGroup.POST("/:programId/workouts/import", importHandler.ImportWorkout)
		}
		protected.GET("/active-program", progressHandler.GetActiveProgram)
		protected.POST("/programs/generate", importHandler.GenerateProgram)
		protected.POST("/programs/import", importHandler.ImportProgram)

		// --- Workouts ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.GET("/:workoutId", catalogHandler.GetWorkout)
			workoutGroup.PUT("/:workoutId", catalogHandler.UpdateWorkout)
			workoutGroup.DELETE("/:workoutId", catalogHandler.DeleteWorkout)
			workoutGroup.POST("/:workoutId/exercises", catalogHandler.AddWorkoutExercise)
			workoutGroup.PUT("/:workoutId/exercises/order", catalogHandler.ReorderWorkoutExercises)
		}
		protected.PUT("/workout-exercises/:workoutExerciseId", catalogHandler.UpdateWorkoutExercise)
		protected.DELETE("/workout-exercises/:workoutExerciseId", catalogHandler.RemoveWorkoutExercise)

		// --- Sessions ---
		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("", sessionHandler.Start)
			sessionGroup.GET("/active", sessionHandler.CheckActive)
			sessionGroup.POST("/:sessionId/end", sessionHandler.End)
		}

		// --- Exercise Logs & Sets ---
		logGroup := protected.Group("/logs")
		{
			logGroup.POST("/:logId/sets", sessionHandler.AppendSet)
			logGroup.DELETE("/:logId/sets/last", sessionHandler.DeleteLastSet)
			logGroup.PUT("/:logId/note", sessionHandler.SetLogNote)
		}
		setGroup := protected.Group("/sets")
		{
			setGroup.PUT("/:setId", sessionHandler.LogSet)
			setGroup.POST("/:setId/video/upload-url", sessionHandler.RequestSetVideoUploadURL)
			setGroup.POST("/:setId/video/confirm", sessionHandler.ConfirmSetVideo)
			setGroup.GET("/:setId/video", sessionHandler.GetSetVideoDownloadURL)
			setGroup.DELETE("/:setId/video", sessionHandler.RemoveSetVideo)
		}

		// --- Analytics ---
		analyticsGroup := protected.Group("/analytics")
		{
			analyticsGroup.GET("/sessions/weekly", analyticsHandler.WeeklySessionHistogram)
			analyticsGroup.GET("/exercises", analyticsHandler.ExercisesWithHistory)
			analyticsGroup.GET("/exercises/:exerciseId/one-rep-max", analyticsHandler.Exercise1RMSeries)
			analyticsGroup.GET("/tonnage", analyticsHandler.CumulativeTonnage)
		}

		// --- Trainer Specific Routes ---
		trainerApiGroup := protected.Group("/trainer")
		trainerApiGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerApiGroup.POST("/clients", userHandler.AddClientByEmail)
			trainerApiGroup.GET("/clients", userHandler.GetManagedClients)
		}
	}
}
