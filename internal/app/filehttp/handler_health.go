package filehttp

import (
	"encoding/json"
	"net/http"

	"github.com/go-http-utils/headers"
)

// healthStats — payload ответа /health.
type healthStats struct {
	OK          bool  `json:"ok"`
	UploadFiles int   `json:"upload_files"`
	UploadBytes int64 `json:"upload_bytes"`
	Ceiling     int64 `json:"ceiling"`
}

// health возвращает занятое место в каталоге загрузок.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	st, err := s.FilesService.UploadStats()
	if err != nil {
		s.logger.Error("upload dir stats", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set(headers.ContentType, "application/json")
	_ = json.NewEncoder(w).Encode(healthStats{
		OK:          true,
		UploadFiles: st.Files,
		UploadBytes: st.TotalBytes,
		Ceiling:     int64(s.Cfg.UploadDirMaxSize),
	})
}
