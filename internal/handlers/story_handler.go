package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dias221467/Veritas_Network/internal/services"
	"github.com/Dias221467/Veritas_Network/pkg/logger"
	"github.com/Dias221467/Veritas_Network/pkg/middleware"
	"github.com/gorilla/mux"
)

// StoryHandler manages HTTP endpoints for ephemeral stories.
type StoryHandler struct {
	Service *services.StoryService
}

// NewStoryHandler initializes a new StoryHandler.
func NewStoryHandler(service *services.StoryService) *StoryHandler {
	return &StoryHandler{Service: service}
}

// CreateStoryHandler creates a story with a 24h TTL.
func (h *StoryHandler) CreateStoryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Text     string `json:"text"`
		MediaURL string `json:"mediaUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	story, err := h.Service.CreateStory(r.Context(), claims.UserID, body.Text, body.MediaURL)
	if err != nil {
		logger.Log.Warnf("Create story failed for %s: %v", claims.UserID, err)
		http.Error(w, "Failed to create story", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":        story.ID,
		"expiresAt": story.ExpiresAt,
	})
}

// StoryFeedHandler returns all active stories grouped by author.
func (h *StoryHandler) StoryFeedHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groups, err := h.Service.Feed(r.Context())
	if err != nil {
		logger.Log.Errorf("Story feed failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"users": groups})
}

// MarkStoryViewHandler records the caller's view of a story.
func (h *StoryHandler) MarkStoryViewHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.MarkViewed(r.Context(), mux.Vars(r)["id"], claims.UserID); err != nil {
		logger.Log.Warnf("Mark story view failed for %s: %v", claims.UserID, err)
		http.Error(w, "Story not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
}
