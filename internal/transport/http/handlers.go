package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/19tp01/very-terry-game/internal/app"
	"github.com/19tp01/very-terry-game/internal/blob"
	"github.com/19tp01/very-terry-game/internal/domain"
)

// maxUploadBytes caps photo uploads (phone camera originals)
const maxUploadBytes = 15 << 20

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateRoomResponse is the response for room creation
type CreateRoomResponse struct {
	RoomCode string `json:"roomCode"`
}

// GetRoomResponse is the response for getting room info
type GetRoomResponse struct {
	RoomCode      string `json:"roomCode"`
	Mode          string `json:"mode"`
	Phase         string `json:"phase"`
	OnlinePlayers int    `json:"onlinePlayers"`
}

// RoomExistsResponse is the response for checking if a room is open
type RoomExistsResponse struct {
	Exists bool `json:"exists"`
}

// UploadPhotoResponse is the response for a photo upload
type UploadPhotoResponse struct {
	PhotoURL     string `json:"photoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	SubmissionID string `json:"submissionId,omitempty"`
}

// SlideshowResponse lists slideshow photos with thumbnail preference
type SlideshowResponse struct {
	Photos []SlideshowEntry `json:"photos"`
}

// SlideshowEntry is one slideshow photo; ThumbnailURL is best-effort
// and viewers fall back to PhotoURL when it 404s
type SlideshowEntry struct {
	ID           string `json:"id"`
	PhotoURL     string `json:"photoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	UploadedAt   int64  `json:"uploadedAt"`
}

// HostLoginRequest carries the shared host password
type HostLoginRequest struct {
	Password string `json:"password"`
}

// HostLoginResponse returns the token host connections present
type HostLoginResponse struct {
	Token string `json:"token"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveRooms   int `json:"activeRooms"`
	OnlinePlayers int `json:"onlinePlayers"`
}

// handleCreateRoom handles POST /api/rooms
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	session, err := s.hub.CreateRoom(r.Context())
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create room")
		return
	}

	s.sendSuccess(w, &CreateRoomResponse{
		RoomCode: session.Code(),
	})
}

// handleGetRoom handles GET /api/rooms/{roomCode}
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	session, ok := s.openSession(w, r)
	if !ok {
		return
	}

	snap, err := session.Snapshot(r.Context())
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load room state")
		return
	}

	online := 0
	for _, p := range snap.Players {
		if p.IsOnline {
			online++
		}
	}

	s.sendSuccess(w, &GetRoomResponse{
		RoomCode:      session.Code(),
		Mode:          snap.Game.Mode.String(),
		Phase:         snap.Game.Phase.String(),
		OnlinePlayers: online,
	})
}

// handleRoomExists handles GET /api/rooms/{roomCode}/exists
func (s *Server) handleRoomExists(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.ToUpper(r.PathValue("roomCode"))
	_, err := s.hub.GetSession(roomCode)

	s.sendSuccess(w, &RoomExistsResponse{
		Exists: err == nil,
	})
}

// handleUploadPhoto handles POST /api/rooms/{roomCode}/photos.
// Multipart fields: photo (file, required), playerId, caption,
// category (photo|bonus|selfie|slideshow; default photo).
func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	session, ok := s.openSession(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Photo file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Failed to read photo")
		return
	}

	playerID := r.FormValue("playerId")
	caption := r.FormValue("caption")
	category := r.FormValue("category")
	if category == "" {
		category = "photo"
	}

	contentType := header.Header.Get("Content-Type")
	filename := uuid.New().String() + extensionFor(contentType, header.Filename)
	objectPath := blob.ObjectPath(session.Code(), playerID, category, filename)

	url, err := s.blobs.Save(r.Context(), objectPath, data, contentType)
	if err != nil {
		s.logger.Error("photo upload failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store photo")
		return
	}

	resp := &UploadPhotoResponse{
		PhotoURL:     url,
		ThumbnailURL: blob.ThumbnailURL(url),
	}

	switch category {
	case "photo", "bonus":
		sub, err := session.SubmitPhoto(r.Context(), playerID, url, caption, category == "bonus")
		if err != nil {
			s.sendDomainError(w, err)
			return
		}
		resp.SubmissionID = sub.ID
	case "slideshow":
		if _, err := session.AddSlideshowPhoto(r.Context(), url, playerID); err != nil {
			s.sendDomainError(w, err)
			return
		}
	case "selfie":
		// URL only; the player record is created at join with this URL
	default:
		s.sendError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Unknown category")
		return
	}

	s.sendSuccess(w, resp)
}

// handleListSlideshow handles GET /api/rooms/{roomCode}/slideshow
func (s *Server) handleListSlideshow(w http.ResponseWriter, r *http.Request) {
	session, ok := s.openSession(w, r)
	if !ok {
		return
	}

	photos, err := session.ListSlideshowPhotos(r.Context())
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list slideshow")
		return
	}

	entries := make([]SlideshowEntry, 0, len(photos))
	for _, p := range photos {
		entries = append(entries, SlideshowEntry{
			ID:           p.ID,
			PhotoURL:     p.PhotoURL,
			ThumbnailURL: blob.ThumbnailURL(p.PhotoURL),
			UploadedAt:   p.UploadedAt,
		})
	}
	s.sendSuccess(w, &SlideshowResponse{Photos: entries})
}

// handleDeleteSlideshow handles DELETE /api/rooms/{roomCode}/slideshow/{photoId}
func (s *Server) handleDeleteSlideshow(w http.ResponseWriter, r *http.Request) {
	session, ok := s.openSession(w, r)
	if !ok {
		return
	}

	if err := session.DeleteSlideshowPhoto(r.Context(), r.PathValue("photoId")); err != nil {
		s.logger.Error("slideshow delete failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete photo")
		return
	}
	s.sendSuccess(w, nil)
}

// handleListPrompts handles GET /api/rooms/{roomCode}/prompts
func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	session, ok := s.openSession(w, r)
	if !ok {
		return
	}

	prompts, err := session.ListPrompts(r.Context())
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list prompts")
		return
	}
	s.sendSuccess(w, prompts)
}

// handleHostLogin handles POST /api/host/login: the single shared
// password gate in front of the host console
func (s *Server) handleHostLogin(w http.ResponseWriter, r *http.Request) {
	var req HostLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	password := s.config.Game.HostPassword
	if password == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(password)) != 1 {
		s.sendError(w, http.StatusForbidden, "INVALID_PASSWORD", "Wrong password")
		return
	}

	s.sendSuccess(w, &HostLoginResponse{Token: password})
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{Status: "ok"})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveRooms:   s.hub.SessionCount(),
		OnlinePlayers: s.hub.TotalOnlinePlayers(r.Context()),
	})
}

// openSession resolves the room code path value into a session,
// opening the room if needed
func (s *Server) openSession(w http.ResponseWriter, r *http.Request) (*app.RoomSession, bool) {
	roomCode := strings.ToUpper(r.PathValue("roomCode"))
	if roomCode == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_ROOM_CODE", "Room code is required")
		return nil, false
	}

	session, err := s.hub.GetOrCreate(r.Context(), roomCode)
	if err != nil {
		s.logger.Error("failed to open room", "roomCode", roomCode, "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to open room")
		return nil, false
	}
	return session, true
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}

// sendDomainError maps domain errors to HTTP responses
func (s *Server) sendDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound):
		s.sendError(w, http.StatusNotFound, "PLAYER_NOT_FOUND", "Player not found")
	case errors.Is(err, domain.ErrEmptyName):
		s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// extensionFor picks a file extension from the content type, falling
// back to the uploaded filename
func extensionFor(contentType, filename string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	return ".jpg"
}
