package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/docchat-app/docchat/internal/auth"
	"github.com/docchat-app/docchat/internal/config"
	"github.com/docchat-app/docchat/internal/docapi"
)

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	Username      string `json:"username,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if !s.gateway.IsAuthenticated() {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	user, err := s.gateway.CurrentUser(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		Email:         user.Email,
		Username:      user.Username,
		Phone:         user.Phone,
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, err := s.gateway.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": auth.LoginMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		Email:         user.Email,
		Username:      user.Username,
		Phone:         user.Phone,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, err := s.gateway.SignUp(r.Context(), req.Email, req.Password, req.Username, req.Phone)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": auth.RegisterMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		Email:         user.Email,
		Username:      user.Username,
		Phone:         user.Phone,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.gateway.SignOut(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type personaResponse struct {
	Personas []config.Chatbot `json:"personas"`
	Active   int              `json:"active"`
}

func (s *Server) handlePersonas(w http.ResponseWriter, r *http.Request) {
	active, err := s.store.ChatFaceIndex()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, personaResponse{
		Personas: s.appCfg.Chatbots,
		Active:   active,
	})
}

func (s *Server) handlePersonaSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if _, ok := s.appCfg.PersonaByID(req.ID); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown persona"})
		return
	}
	if err := s.store.SetChatFace(req.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload re-streams a browser upload to the document service.
// The allow-list check runs before the file touches disk or network.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	if !docapi.AllowedFile(header.Filename) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": docapi.UnsupportedFileMessage})
		return
	}

	// The service records the multipart filename, so the spooled copy
	// must keep the browser's base name.
	dir, err := os.MkdirTemp("", "docchat-upload-")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	defer os.RemoveAll(dir)

	spooled := filepath.Join(dir, filepath.Base(header.Filename))
	tmp, err := os.Create(spooled)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	result, err := s.uploader.Upload(r.Context(), spooled, nil)
	if err != nil {
		if errors.Is(err, docapi.ErrBusy) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "upload already in progress"})
			return
		}
		var apiErr *docapi.Error
		if errors.As(err, &apiErr) {
			writeJSON(w, apiErr.Status, map[string]string{"error": apiErr.Detail})
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Lỗi kết nối. Vui lòng thử lại."})
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := s.docs.History(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []docapi.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"history": entries,
		"count":   len(entries),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
