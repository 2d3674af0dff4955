package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dias221467/Veritas_Network/internal/models"
	"github.com/Dias221467/Veritas_Network/internal/services"
	"github.com/Dias221467/Veritas_Network/pkg/logger"
	"github.com/Dias221467/Veritas_Network/pkg/middleware"
	"github.com/gorilla/mux"
)

// PostHandler manages HTTP endpoints for posts, likes and comments.
type PostHandler struct {
	Service *services.PostService
}

// NewPostHandler initializes a new PostHandler.
func NewPostHandler(service *services.PostService) *PostHandler {
	return &PostHandler{Service: service}
}

// CreatePostHandler creates a post and responds immediately; the credibility
// verdict arrives later via the deferred analysis task.
func (h *PostHandler) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Content  string          `json:"content"`
		MediaURL string          `json:"mediaUrl"`
		AI       *models.Verdict `json:"ai,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	post, err := h.Service.CreatePost(r.Context(), claims.UserID, body.Content, body.MediaURL, body.AI)
	if err != nil {
		logger.Log.Warnf("Create post failed for %s: %v", claims.UserID, err)
		http.Error(w, "Failed to create post", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id": post.ID,
		"ai": map[string]string{"tag": post.AI.Tag},
	})
}

// MyPostsHandler returns the caller's posts, re-running analysis for any
// still Pending.
func (h *PostHandler) MyPostsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	posts, err := h.Service.ListUserPosts(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to list posts for %s: %v", claims.UserID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"posts": posts})
}

// LikePostHandler records the caller's like; idempotent.
func (h *PostHandler) LikePostHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	liked, err := h.Service.LikePost(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		logger.Log.Errorf("Like failed for %s: %v", claims.UserID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"liked": liked})
}

// UnlikePostHandler removes the caller's like; idempotent.
func (h *PostHandler) UnlikePostHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	unliked, err := h.Service.UnlikePost(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		logger.Log.Errorf("Unlike failed for %s: %v", claims.UserID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"unliked": unliked})
}

// AddCommentHandler appends a comment to a post.
func (h *PostHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	commentID, err := h.Service.AddComment(r.Context(), mux.Vars(r)["id"], claims.UserID, body.Text)
	if err != nil {
		logger.Log.Warnf("Add comment failed for %s: %v", claims.UserID, err)
		http.Error(w, "Failed to add comment", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{"id": commentID})
}

// DeleteCommentHandler removes a comment. Only the comment's author may
// delete it; anything else reports not found.
func (h *PostHandler) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	deleted, err := h.Service.DeleteComment(r.Context(), vars["id"], vars["commentId"], claims.UserID)
	if err != nil {
		logger.Log.Errorf("Delete comment failed for %s: %v", claims.UserID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Comment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"deleted": true})
}
