package ingest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/yourname/notebook_files/internal/models"
)

// Временные имена файлов, которые ещё пишутся.
const (
	TempPrefix = ".upload-"
	TempSuffix = ".part"
)

// IsTempName сообщает, принадлежит ли имя незавершённой загрузке.
func IsTempName(name string) bool {
	return strings.HasPrefix(name, TempPrefix) && strings.HasSuffix(name, TempSuffix)
}

// partFile описывает файловую часть, которая пишется во временный файл и
// переименовывается в итоговое имя только после полной записи.
type partFile struct {
	fs       afero.Fs
	f        afero.File
	w        *bufio.Writer
	declared string
	name     string
	tmp      string
	final    string
	n        int64
}

func createPartFile(fs afero.Fs, dir, declared string) (*partFile, error) {
	name := SafeName(declared)
	if name == "" {
		name = "upload-" + uuid.NewString()
	}

	tmp := filepath.Join(dir, TempPrefix+uuid.NewString()+TempSuffix)
	f, err := fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", models.ErrIngest, tmp, err)
	}

	return &partFile{
		fs:       fs,
		f:        f,
		w:        bufio.NewWriterSize(f, readBufferSize),
		declared: declared,
		name:     name,
		tmp:      tmp,
		final:    filepath.Join(dir, name),
	}, nil
}

// write пишет строку тела; eol добавляет перевод строки.
func (p *partFile) write(b []byte, eol bool) error {
	n, err := p.w.Write(b)
	p.n += int64(n)
	if err == nil && eol {
		err = p.w.WriteByte('\n')
		if err == nil {
			p.n++
		}
	}
	if err != nil {
		return fmt.Errorf("%w: write %s: %w", models.ErrIngest, p.final, err)
	}
	return nil
}

func (p *partFile) commit() error {
	if err := p.w.Flush(); err != nil {
		p.discard()
		return fmt.Errorf("%w: flush %s: %w", models.ErrIngest, p.final, err)
	}
	if err := p.f.Sync(); err != nil {
		p.discard()
		return fmt.Errorf("%w: sync %s: %w", models.ErrIngest, p.final, err)
	}
	if err := p.f.Close(); err != nil {
		_ = p.fs.Remove(p.tmp)
		return fmt.Errorf("%w: close %s: %w", models.ErrIngest, p.final, err)
	}
	if err := p.fs.Rename(p.tmp, p.final); err != nil {
		_ = p.fs.Remove(p.tmp)
		return fmt.Errorf("%w: rename %s: %w", models.ErrIngest, p.final, err)
	}
	return nil
}

func (p *partFile) discard() {
	_ = p.f.Close()
	_ = p.fs.Remove(p.tmp)
}

// detectContentType определяет MIME-тип сохранённого файла; ошибки не фатальны.
func detectContentType(fs afero.Fs, path string) string {
	f, err := fs.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return ""
	}
	return mt.String()
}
