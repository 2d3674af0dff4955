package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Dias221467/Veritas_Network/internal/services"
	"github.com/Dias221467/Veritas_Network/pkg/logger"
	"github.com/Dias221467/Veritas_Network/pkg/middleware"
	"github.com/gorilla/mux"
)

// FriendHandler manages HTTP endpoints for the friend state machine.
type FriendHandler struct {
	Service *services.FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

// friendResultStatus maps a business-rule code to an HTTP status.
func friendResultStatus(code string) int {
	switch code {
	case services.CodeInvalidID, services.CodeSelfRequest, services.CodeSelfAccept, services.CodeSelfDecline:
		return http.StatusBadRequest
	case services.CodeTargetNotFound, services.CodeSenderNotFound:
		return http.StatusNotFound
	default:
		return http.StatusConflict
	}
}

func writeFriendResult(w http.ResponseWriter, result services.FriendResult, successStatus int, successMsg string) {
	w.Header().Set("Content-Type", "application/json")
	if !result.OK {
		w.WriteHeader(friendResultStatus(result.Code))
		json.NewEncoder(w).Encode(map[string]string{"error": result.Code})
		return
	}
	w.WriteHeader(successStatus)
	json.NewEncoder(w).Encode(map[string]string{"message": successMsg})
}

// SendFriendRequestHandler sends a friend request to the target user.
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		TargetUserID string `json:"targetUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	result, err := h.Service.SendRequest(r.Context(), claims.UserID, body.TargetUserID)
	if err != nil {
		logger.Log.Errorf("Send friend request failed for %s: %v", claims.UserID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeFriendResult(w, result, http.StatusCreated, "Friend request sent")
}

// AcceptFriendRequestHandler accepts a pending incoming request.
func (h *FriendHandler) AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		SenderUserID string `json:"senderUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	result, err := h.Service.AcceptRequest(r.Context(), claims.UserID, body.SenderUserID)
	if err != nil {
		logger.Log.Errorf("Accept friend request failed for %s: %v", claims.UserID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeFriendResult(w, result, http.StatusOK, "Friend request accepted")
}

// DeclineFriendRequestHandler declines a pending incoming request.
func (h *FriendHandler) DeclineFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		SenderUserID string `json:"senderUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	result, err := h.Service.DeclineRequest(r.Context(), claims.UserID, body.SenderUserID)
	if err != nil {
		logger.Log.Errorf("Decline friend request failed for %s: %v", claims.UserID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeFriendResult(w, result, http.StatusOK, "Friend request declined")
}

// SearchUsersHandler searches users by name or email, annotated with the
// caller's relation to each candidate.
func (h *FriendHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("q")
	if len(query) < 2 {
		http.Error(w, "q must be at least 2 characters", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.Service.SearchUsers(r.Context(), claims.UserID, query, limit)
	if err != nil {
		logger.Log.Errorf("User search failed for %s: %v", claims.UserID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
}

// GetFriendsHandler returns the caller's friends.
func (h *FriendHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	friends, err := h.Service.GetFriends(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch friends for %s: %v", claims.UserID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"results": friends})
}

// GetIncomingRequestsHandler returns the caller's pending incoming requests.
func (h *FriendHandler) GetIncomingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requests, err := h.Service.GetIncomingRequests(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch requests for %s: %v", claims.UserID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"results": requests})
}

// RemoveFriendHandler removes an existing friendship.
func (h *FriendHandler) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	friendID := mux.Vars(r)["id"]

	result, err := h.Service.RemoveFriend(r.Context(), claims.UserID, friendID)
	if err != nil {
		logger.Log.Errorf("Remove friend failed for %s: %v", claims.UserID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeFriendResult(w, result, http.StatusOK, "Friend removed")
}
