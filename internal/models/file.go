package models

import "time"

// DiskFile описывает один файл каталога загрузок.
type DiskFile struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// EvictionReport — итог одного прохода очистки каталога.
type EvictionReport struct {
	Dir         string     `json:"dir"`
	Ceiling     int64      `json:"ceiling"`
	Scanned     int        `json:"scanned"`
	TotalBefore int64      `json:"total_before"`
	TotalAfter  int64      `json:"total_after"`
	Removed     []DiskFile `json:"removed"`
	Failed      int        `json:"failed"`
}

// DirStats — снимок занятого места в каталоге.
type DirStats struct {
	Files      int   `json:"files"`
	TotalBytes int64 `json:"total_bytes"`
}
