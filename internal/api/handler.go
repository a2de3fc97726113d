// Package api exposes the chatxd HTTP surface: the chat completion endpoint,
// generated-image serving, and a health probe.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Responder produces the assistant reply for a thread.
type Responder interface {
	Respond(ctx context.Context, threadID, message string) (string, error)
}

type Handler struct {
	llm      Responder
	imageDir string
	logger   *zap.Logger
}

func NewHandler(llm Responder, imageDir string, logger *zap.Logger) *Handler {
	return &Handler{
		llm:      llm,
		imageDir: imageDir,
		logger:   logger,
	}
}

type ChatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

type ChatResponse struct {
	Response string `json:"response"`
	ThreadID string `json:"thread_id"`
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}
	if req.ThreadID == "" {
		req.ThreadID = uuid.NewString()
	}

	response, err := h.llm.Respond(r.Context(), req.ThreadID, req.Message)
	if err != nil {
		h.logger.Error("Failed to generate response",
			zap.Error(err),
			zap.String("thread_id", req.ThreadID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Debug("Chat response generated",
		zap.String("thread_id", req.ThreadID),
		zap.Int("response_len", len(response)))

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ChatResponse{
		Response: response,
		ThreadID: req.ThreadID,
	}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// HandleImage serves a generated image by filename. Filenames are reduced to
// their base to block path traversal, and only image extensions are served.
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filename := filepath.Base(strings.TrimPrefix(r.URL.Path, "/api/image/"))
	if filename == "." || filename == "/" || !allowedImageExts[strings.ToLower(filepath.Ext(filename))] {
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	}

	path := filepath.Join(h.imageDir, filename)
	if _, err := os.Stat(path); err != nil {
		h.logger.Debug("Image not found", zap.String("filename", filename))
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, path)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}
