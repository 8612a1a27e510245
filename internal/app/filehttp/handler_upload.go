package filehttp

import (
	"net/http"

	"github.com/go-http-utils/headers"

	"github.com/yourname/notebook_files/internal/models"
	"github.com/yourname/notebook_files/pkg/httperrors"
)

// upload принимает файл из браузера. Клиент узнаёт о неудаче только по статусу 500.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set(headers.Allow, http.MethodPost)
		httperrors.Write(w, models.ErrMethodNotAllowed)
		return
	}

	res, err := s.FilesService.Upload(r.Context(), r.Body, r.Header.Get(headers.ContentType))
	if err != nil {
		s.logger.Error("Error uploading file", "err", err)
		httperrors.Write(w, err)
		return
	}

	s.logger.Debug("upload accepted", "file", res.FilePath, "size", res.Size)
	w.WriteHeader(http.StatusOK)
}
