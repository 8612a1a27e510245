// Package notebookclient вызывает API сервиса ноутбуков после загрузки файла.
package notebookclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yourname/notebook_files/pkg/fileproto"
)

// maxBodyLog ограничивает размер тела ответа, который возвращается вызывающему.
const maxBodyLog = 4 << 10

// RunParagraphRequest описывает перезапуск параграфа.
type RunParagraphRequest struct {
	BaseURL     string
	NotebookID  string
	ParagraphID string
}

type Client interface {
	// RunParagraph просит сервис ноутбуков перезапустить параграф и возвращает тело ответа
	RunParagraph(ctx context.Context, req RunParagraphRequest) (string, error)
}

type httpClient struct {
	c      *http.Client
	method string
}

// New создаёт HTTP-клиент с заданными методом и таймаутом.
func New(method string, timeout time.Duration) Client {
	if method == "" {
		method = http.MethodGet
	}
	return &httpClient{
		c:      &http.Client{Timeout: timeout},
		method: method,
	}
}

// RunURL собирает адрес перезапуска параграфа.
func RunURL(req RunParagraphRequest) string {
	return fmt.Sprintf(fileproto.RunPathFormat,
		strings.TrimRight(req.BaseURL, "/"),
		url.PathEscape(req.NotebookID),
		url.PathEscape(req.ParagraphID),
	)
}

// RunParagraph отправляет запрос перезапуска.
func (h *httpClient) RunParagraph(ctx context.Context, req RunParagraphRequest) (string, error) {
	if strings.TrimSpace(req.BaseURL) == "" {
		return "", fmt.Errorf("notebook base url is empty")
	}

	httpReq, err := http.NewRequestWithContext(ctx, h.method, RunURL(req), nil)
	if err != nil {
		return "", err
	}

	resp, err := h.c.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyLog))
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return string(body), fmt.Errorf("notebook run failed: %s", resp.Status)
	}

	return string(body), nil
}
