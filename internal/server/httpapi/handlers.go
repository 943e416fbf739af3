package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/dmitrijs2005/schedsync/internal/server/auth"
	"github.com/dmitrijs2005/schedsync/internal/server/blobstore"
	"github.com/dmitrijs2005/schedsync/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const (
	multipartMemory    = 32 << 20
	releaseContentType = "application/vnd.android.package-archive"
)

func (s *HTTPServer) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, protocol.PingResponse{Status: "ok"})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req protocol.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	account, pair, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, protocol.LoginResponse{
		User:         services.AccountSummary(account),
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req protocol.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	pair, err := s.auth.RefreshToken(r.Context(), req.RefreshToken)
	switch {
	case errors.Is(err, common.ErrRefreshTokenExpired):
		writeError(w, http.StatusUnauthorized, "Refresh token expired")
		return
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	case err != nil:
		s.logger.Error(r.Context(), "refresh failed", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, protocol.RefreshResponse{Token: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *HTTPServer) handleSync(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.AccountIDFromContext(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := s.sync.Sync(r.Context(), accountID, body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("backup_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	b, err := s.backups.Upload(r.Context(), file, header.Size, r.FormValue("notes"))
	if err != nil {
		s.logger.Error(r.Context(), "backup upload failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, protocol.UploadResponse{Message: "Backup uploaded successfully", FilePath: b.FilePath})
}

func (s *HTTPServer) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.backups.List(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "backup list failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func backupID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *HTTPServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := backupID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Backup not found")
		return
	}

	body, b, info, err := s.backups.Open(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "Backup not found")
			return
		}
		s.logger.Error(r.Context(), "backup download failed", "id", id, "error", err)
		writeServiceError(w, err)
		return
	}
	defer body.Close()

	s.stream(w, r, body, info, "application/octet-stream", b.FilePath)
}

func (s *HTTPServer) handlePresignedURL(w http.ResponseWriter, r *http.Request) {
	id, ok := backupID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Backup not found")
		return
	}

	url, err := s.backups.PresignedURL(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "Backup not found")
			return
		}
		s.logger.Error(r.Context(), "presign failed", "id", id, "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.PresignedURLResponse{URL: url})
}

func (s *HTTPServer) handleRelease(w http.ResponseWriter, r *http.Request) {
	body, info, err := s.backups.Release(r.Context())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "Release package not found")
			return
		}
		s.logger.Error(r.Context(), "release download failed", "error", err)
		writeServiceError(w, err)
		return
	}
	defer body.Close()

	s.stream(w, r, body, &blobstore.ObjectInfo{Size: info.Size, ETag: info.ETag}, releaseContentType, s.backups.ReleaseName())
}

func (s *HTTPServer) stream(w http.ResponseWriter, r *http.Request, body io.Reader, info *blobstore.ObjectInfo, defaultType, name string) {
	h := w.Header()
	contentType := info.ContentType
	if contentType == "" {
		contentType = defaultType
	}
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if info.ETag != "" {
		h.Set("ETag", info.ETag)
	}
	if info.Size > 0 {
		h.Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		s.logger.Warn(r.Context(), "streaming object interrupted", "name", name, "error", err)
	}
}
