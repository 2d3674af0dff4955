package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Dias221467/Veritas_Network/internal/ai"
	"github.com/Dias221467/Veritas_Network/internal/config"
	"github.com/Dias221467/Veritas_Network/internal/database"
	"github.com/Dias221467/Veritas_Network/internal/handlers"
	"github.com/Dias221467/Veritas_Network/internal/jobs"
	"github.com/Dias221467/Veritas_Network/internal/repository"
	cron "github.com/Dias221467/Veritas_Network/internal/scheduler"
	"github.com/Dias221467/Veritas_Network/internal/services"
	"github.com/Dias221467/Veritas_Network/pkg/blob"
	"github.com/Dias221467/Veritas_Network/pkg/logger"
	"github.com/Dias221467/Veritas_Network/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	storyRepo := repository.NewStoryRepository(db)

	// --- Collaborators ---
	var classifier services.Classifier
	if cfg.OpenAIAPIKey != "" {
		classifier, err = ai.NewOpenAIClassifier(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.ClassifierRPS)
		if err != nil {
			log.Fatalf("Classifier init error: %v", err)
		}
	} else {
		logger.Log.Warn("OPENAI_API_KEY not set, credibility analysis disabled")
		classifier = ai.DisabledClassifier{}
	}

	var blobStore blob.Store
	if cfg.GCSBucket != "" {
		blobStore, err = blob.NewGCSStore(context.Background(), cfg.GCSBucket)
		if err != nil {
			log.Fatalf("Blob store init error: %v", err)
		}
	} else {
		blobStore, err = blob.NewLocalStore(cfg.UploadDir, "/uploads")
		if err != nil {
			log.Fatalf("Blob store init error: %v", err)
		}
	}

	runner := jobs.NewRunner(2 * time.Minute)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	friendService := services.NewFriendService(userRepo)
	postService := services.NewPostService(postRepo, classifier, runner, cfg.TrustClientVerdicts)
	storyService := services.NewStoryService(storyRepo, userRepo)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	friendHandler := handlers.NewFriendHandler(friendService)
	postHandler := handlers.NewPostHandler(postService)
	storyHandler := handlers.NewStoryHandler(storyService)
	uploadHandler := handlers.NewUploadHandler(blobStore)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.Use(middleware.UpdateLastActiveMiddleware(userService))
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/me", userHandler.UpdateMeHandler).Methods("PATCH")

	// Friend routes
	protectedFriendRoutes := router.PathPrefix("/friends").Subrouter()
	protectedFriendRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedFriendRoutes.Use(middleware.UpdateLastActiveMiddleware(userService))
	protectedFriendRoutes.HandleFunc("/request", friendHandler.SendFriendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/accept", friendHandler.AcceptFriendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/decline", friendHandler.DeclineFriendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/search", friendHandler.SearchUsersHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests", friendHandler.GetIncomingRequestsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("", friendHandler.GetFriendsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/{id}", friendHandler.RemoveFriendHandler).Methods("DELETE")

	// Post routes
	protectedPostRoutes := router.PathPrefix("/posts").Subrouter()
	protectedPostRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedPostRoutes.Use(middleware.UpdateLastActiveMiddleware(userService))
	protectedPostRoutes.HandleFunc("", postHandler.CreatePostHandler).Methods("POST")
	protectedPostRoutes.HandleFunc("/mine", postHandler.MyPostsHandler).Methods("GET")
	protectedPostRoutes.HandleFunc("/upload", uploadHandler.UploadMediaHandler("posts")).Methods("POST")
	protectedPostRoutes.HandleFunc("/{id}/like", postHandler.LikePostHandler).Methods("POST")
	protectedPostRoutes.HandleFunc("/{id}/unlike", postHandler.UnlikePostHandler).Methods("POST")
	protectedPostRoutes.HandleFunc("/{id}/comment", postHandler.AddCommentHandler).Methods("POST")
	protectedPostRoutes.HandleFunc("/{id}/comment/{commentId}", postHandler.DeleteCommentHandler).Methods("DELETE")

	// Story routes
	protectedStoryRoutes := router.PathPrefix("/stories").Subrouter()
	protectedStoryRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedStoryRoutes.Use(middleware.UpdateLastActiveMiddleware(userService))
	protectedStoryRoutes.HandleFunc("", storyHandler.CreateStoryHandler).Methods("POST")
	protectedStoryRoutes.HandleFunc("/feed", storyHandler.StoryFeedHandler).Methods("GET")
	protectedStoryRoutes.HandleFunc("/upload", uploadHandler.UploadMediaHandler("stories")).Methods("POST")
	protectedStoryRoutes.HandleFunc("/{id}/view", storyHandler.MarkStoryViewHandler).Methods("POST")

	// Locally stored uploads
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/users", userHandler.AdminGetAllUsersHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background sweep for expired stories
	cron.StartStoryCronJobs(storyService)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
