package filesvc

import (
	"context"
	"fmt"
	"io"

	"github.com/yourname/notebook_files/internal/models"
	"github.com/yourname/notebook_files/internal/usecase/ingest"
	"github.com/yourname/notebook_files/pkg/notebookclient"
)

// Upload принимает тело multipart-запроса, сохраняет файл и уведомляет сервис ноутбуков.
// Очистка каталога ставится в очередь после каждой загрузки, успешной или нет.
func (s *Files) Upload(ctx context.Context, body io.Reader, contentType string) (models.ParsedUpload, error) {
	defer s.Janitor.Trigger()

	res, err := s.Ingestor.Ingest(ctx, body, ingest.MarkerFor(contentType))
	if err != nil {
		return models.ParsedUpload{}, err
	}

	if err := s.notify(context.WithoutCancel(ctx), res); err != nil {
		s.Logger.Error("rerun paragraph", "err", err)
	}

	return res, nil
}

// notify работает по принципу best-effort: ошибка только логируется и не влияет на ответ клиенту.
func (s *Files) notify(ctx context.Context, res models.ParsedUpload) error {
	if res.ZeppelinURL() == "" {
		s.Logger.Warn("zeppelinUrl is empty, skip paragraph rerun")
		return nil
	}

	req := notebookclient.RunParagraphRequest{
		BaseURL:     res.ZeppelinURL(),
		NotebookID:  res.NotebookID(),
		ParagraphID: res.ParagraphID(),
	}
	body, err := s.Notebook.RunParagraph(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", models.ErrNotifyFailed, notebookclient.RunURL(req), err)
	}

	s.Logger.Info("result of rerun paragraph command", "url", notebookclient.RunURL(req), "result", body)
	return nil
}
