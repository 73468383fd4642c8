package httpapi

import (
	"errors"
	"io"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 10 << 20 // 10 MiB

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "missing file field")
		return
	}
	defer file.Close()

	url, err := s.blobs.Save(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"url":  url,
		"name": header.Filename,
	})
}

func (s *Server) downloadFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rc, err := s.blobs.Open(r.Context(), "/files/"+name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "file not found")
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn().Err(err).Str("name", name).Msg("file download interrupted")
	}
}
