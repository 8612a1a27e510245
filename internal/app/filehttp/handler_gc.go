package filehttp

import (
	"encoding/json"
	"net/http"

	"github.com/go-http-utils/headers"
)

// gcOnce вручную запускает проход очистки и возвращает его отчёт.
func (s *Server) gcOnce(w http.ResponseWriter, r *http.Request) {
	report := s.FilesService.Evict(r.Context())

	w.Header().Set(headers.ContentType, "application/json")
	_ = json.NewEncoder(w).Encode(report)
}
