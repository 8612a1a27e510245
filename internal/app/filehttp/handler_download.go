package filehttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-http-utils/headers"

	"github.com/yourname/notebook_files/internal/models"
	"github.com/yourname/notebook_files/pkg/fileproto"
	"github.com/yourname/notebook_files/pkg/httperrors"
)

const copyBufferSize = 64 << 10

// download отдаёт файл результата как вложение.
func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")

	rc, info, err := s.FilesService.Open(r.Context(), rel)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("open result file", "path", rel, "err", err)
		}
		httperrors.Write(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set(headers.ContentType, fileproto.ContentTypeBin)
	w.Header().Set(headers.ContentDisposition, fmt.Sprintf("attachment; filename=%q", info.Name()))
	w.Header().Set(headers.ContentLength, strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)

	// Заголовки уже ушли, поэтому ошибку посреди потока можно только залогировать.
	if _, err = io.CopyBuffer(w, rc, make([]byte, copyBufferSize)); err != nil {
		s.logger.Error("stream result file", "path", rel, "err", err)
	}
}
