package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Dias221467/Veritas_Network/pkg/blob"
	"github.com/Dias221467/Veritas_Network/pkg/logger"
	"github.com/Dias221467/Veritas_Network/pkg/middleware"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// UploadHandler accepts multipart media uploads and stores them via the
// configured blob store.
type UploadHandler struct {
	Store blob.Store
}

// NewUploadHandler initializes a new UploadHandler.
func NewUploadHandler(store blob.Store) *UploadHandler {
	return &UploadHandler{Store: store}
}

// UploadMediaHandler stores the "file" form part under the given path prefix
// and returns its retrievable URL.
func (h *UploadHandler) UploadMediaHandler(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.GetUserFromContext(r.Context())
		if claims == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "File too large or malformed form", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "No file uploaded", http.StatusBadRequest)
			return
		}
		defer file.Close()

		safeName := strings.ReplaceAll(header.Filename, " ", "_")
		pathHint := fmt.Sprintf("%s/%s/%d-%s", prefix, claims.UserID, time.Now().UnixMilli(), safeName)

		url, err := h.Store.Put(r.Context(), pathHint, file, header.Header.Get("Content-Type"))
		if err != nil {
			logger.Log.Errorf("Upload failed for %s: %v", claims.UserID, err)
			http.Error(w, "Upload failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"url": url})
	}
}
