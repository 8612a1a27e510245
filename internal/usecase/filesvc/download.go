package filesvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/yourname/notebook_files/internal/models"
)

// Open открывает файл результата по относительному пути.
// Несуществующий путь, каталог и выход за корень дают models.ErrNotFound.
func (s *Files) Open(_ context.Context, relPath string) (io.ReadCloser, os.FileInfo, error) {
	name := path.Clean("/" + relPath)

	f, err := s.Results.Open(name)
	if err != nil {
		return nil, nil, notFoundOr(name, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, notFoundOr(name, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%s is a directory: %w", name, models.ErrNotFound)
	}

	return f, info, nil
}

func notFoundOr(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", name, models.ErrNotFound)
	}
	return err
}
