// Package quota держит размер каталога загрузок в пределах потолка,
// удаляя самые старые файлы первыми.
package quota

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/yourname/notebook_files/internal/models"
	"github.com/yourname/notebook_files/internal/usecase/ingest"
)

// Evictor выполняет проходы очистки над одним каталогом.
type Evictor struct {
	fs      afero.Fs
	dir     string
	ceiling int64
	logger  *log.Logger
}

// NewEvictor создаёт Evictor для каталога dir с потолком ceiling байт.
func NewEvictor(fs afero.Fs, dir string, ceiling int64, logger *log.Logger) *Evictor {
	return &Evictor{
		fs:      fs,
		dir:     dir,
		ceiling: ceiling,
		logger:  logger.WithPrefix("quota"),
	}
}

// Snapshot возвращает файлы каталога, отсортированные от старых к новым.
// Подкаталоги и незавершённые загрузки не учитываются.
func (e *Evictor) Snapshot() ([]models.DiskFile, error) {
	infos, err := afero.ReadDir(e.fs, e.dir)
	if err != nil {
		return nil, err
	}

	files := make([]models.DiskFile, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() || ingest.IsTempName(fi.Name()) {
			continue
		}
		files = append(files, models.DiskFile{
			Path:    filepath.Join(e.dir, fi.Name()),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}

// Stats возвращает число файлов и их суммарный размер.
func (e *Evictor) Stats() (models.DirStats, error) {
	files, err := e.Snapshot()
	if err != nil {
		return models.DirStats{}, err
	}
	return models.DirStats{Files: len(files), TotalBytes: totalSize(files)}, nil
}

// Evict выполняет один проход: пока суммарный размер больше потолка, удаляет самый старый файл.
// Ошибки удаления пишутся в лог, проход продолжается со следующего файла.
// Ошибка чтения каталога не фатальна: проход просто ничего не делает.
func (e *Evictor) Evict(ctx context.Context) models.EvictionReport {
	report := models.EvictionReport{Dir: e.dir, Ceiling: e.ceiling}

	files, err := e.Snapshot()
	if err != nil {
		e.logger.Debug("skip eviction: cannot list dir", "dir", e.dir, "err", err)
		return report
	}

	total := totalSize(files)
	report.Scanned = len(files)
	report.TotalBefore = total

	// Самый новый файл не удаляется никогда: если он один больше потолка, он остаётся.
	for i, f := range files {
		if total <= e.ceiling || i == len(files)-1 || ctx.Err() != nil {
			break
		}

		if err := e.fs.Remove(f.Path); err != nil {
			report.Failed++
			e.logger.Warn("failed to delete file", "path", f.Path, "err", err)
			// Файл, который уже кто-то удалил, места больше не занимает.
			if errors.Is(err, fs.ErrNotExist) {
				total -= f.Size
			}
			continue
		}

		total -= f.Size
		report.Removed = append(report.Removed, f)
		e.logger.Info("deleted file", "path", f.Path, "size", humanize.IBytes(uint64(f.Size)))
	}

	report.TotalAfter = total
	if len(report.Removed) > 0 || report.Failed > 0 {
		e.logger.Info("eviction pass finished",
			"removed", len(report.Removed),
			"failed", report.Failed,
			"total", humanize.IBytes(uint64(total)),
			"ceiling", humanize.IBytes(uint64(e.ceiling)),
		)
	}

	return report
}

func totalSize(files []models.DiskFile) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}
