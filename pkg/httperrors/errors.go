package httperrors

import (
	"errors"
	"net/http"

	"github.com/go-http-utils/headers"

	"github.com/yourname/notebook_files/internal/models"
	"github.com/yourname/notebook_files/pkg/fileproto"
)

// Write переводит ошибку в HTTP-ответ. Тело есть только у 404; остальные ошибки
// отдаются одним статусом, подробности остаются в логе.
func Write(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		w.Header().Set(headers.ContentType, "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(fileproto.NotFoundBody))
	case errors.Is(err, models.ErrMethodNotAllowed):
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// Status возвращает код, который Write выставит для err.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
