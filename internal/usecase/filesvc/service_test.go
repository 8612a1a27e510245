package filesvc

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/notebook_files/internal/logging"
	"github.com/yourname/notebook_files/internal/models"
	"github.com/yourname/notebook_files/internal/usecase/ingest"
	"github.com/yourname/notebook_files/pkg/notebookclient"
)

type fakeNotebook struct {
	mu    sync.Mutex
	calls []notebookclient.RunParagraphRequest
	err   error
}

func (f *fakeNotebook) RunParagraph(_ context.Context, req notebookclient.RunParagraphRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return "ok", f.err
}

type fakeJanitor struct {
	mu       sync.Mutex
	triggers int
}

func (f *fakeJanitor) Trigger() {
	f.mu.Lock()
	f.triggers++
	f.mu.Unlock()
}

func (f *fakeJanitor) RunNow(context.Context) models.EvictionReport {
	return models.EvictionReport{Scanned: 42}
}

type failingIngestor struct{}

func (failingIngestor) Ingest(context.Context, io.Reader, string) (models.ParsedUpload, error) {
	return models.ParsedUpload{}, models.ErrIngest
}

const contentType = "multipart/form-data; boundary=XYZ"

func body(zeppelinURL string) string {
	parts := []string{
		"--XYZ\r\nContent-Disposition: form-data; name=\"noteBookId\"\r\n\r\nN1\r\n",
		"--XYZ\r\nContent-Disposition: form-data; name=\"paragraphId\"\r\n\r\nP1\r\n",
		"--XYZ\r\nContent-Disposition: form-data; name=\"file\"; filename=\"r.csv\"\r\nContent-Type: text/csv\r\n\r\na\n\r\n",
	}
	if zeppelinURL != "" {
		parts = append(parts, "--XYZ\r\nContent-Disposition: form-data; name=\"zeppelinUrl\"\r\n\r\n"+zeppelinURL+"\r\n")
	}
	return strings.Join(parts, "") + "--XYZ--\r\n"
}

func newService(nb *fakeNotebook, j *fakeJanitor) (*Files, afero.Fs) {
	fs := afero.NewMemMapFs()
	return New(Deps{
		Results:  afero.NewBasePathFs(fs, "/results"),
		Ingestor: ingest.New(fs, "/uploads", logging.Discard()),
		Notebook: nb,
		Janitor:  j,
		Logger:   logging.Discard(),
	}), fs
}

func TestUpload_NotifiesNotebook(t *testing.T) {
	nb, j := &fakeNotebook{}, &fakeJanitor{}
	svc, fs := newService(nb, j)

	res, err := svc.Upload(context.Background(), strings.NewReader(body("http://host:8080")), contentType)
	require.NoError(t, err)

	assert.Equal(t, "/uploads/r.csv", res.FilePath)
	data, err := afero.ReadFile(fs, res.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "a\n", string(data))

	require.Len(t, nb.calls, 1)
	assert.Equal(t, notebookclient.RunParagraphRequest{BaseURL: "http://host:8080", NotebookID: "N1", ParagraphID: "P1"}, nb.calls[0])
	assert.Equal(t, 1, j.triggers)
}

func TestUpload_EmptyZeppelinURLSkipsNotify(t *testing.T) {
	nb, j := &fakeNotebook{}, &fakeJanitor{}
	svc, _ := newService(nb, j)

	_, err := svc.Upload(context.Background(), strings.NewReader(body("")), contentType)
	require.NoError(t, err)
	assert.Empty(t, nb.calls)
}

func TestUpload_NotifyFailureIsNotFatal(t *testing.T) {
	nb, j := &fakeNotebook{err: errors.New("connection refused")}, &fakeJanitor{}
	svc, _ := newService(nb, j)

	res, err := svc.Upload(context.Background(), strings.NewReader(body("http://down:1")), contentType)
	require.NoError(t, err)
	assert.Equal(t, "r.csv", res.FileName)
	assert.Len(t, nb.calls, 1)
}

func TestUpload_IngestErrorStillTriggersEviction(t *testing.T) {
	nb, j := &fakeNotebook{}, &fakeJanitor{}
	svc, _ := newService(nb, j)
	svc.Ingestor = failingIngestor{}

	_, err := svc.Upload(context.Background(), strings.NewReader(""), contentType)
	require.ErrorIs(t, err, models.ErrIngest)
	assert.Empty(t, nb.calls)
	assert.Equal(t, 1, j.triggers)
}

func TestOpen(t *testing.T) {
	svc, fs := newService(&fakeNotebook{}, &fakeJanitor{})
	require.NoError(t, fs.MkdirAll("/results/sub", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/results/sub/out.csv", []byte("1,2\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/secret", []byte("x"), 0o644))

	rc, info, err := svc.Open(context.Background(), "sub/out.csv")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "1,2\n", string(data))
	assert.Equal(t, "out.csv", info.Name())
	assert.EqualValues(t, 4, info.Size())

	for _, rel := range []string{"missing.csv", "sub", "", "../secret", "sub/../../secret"} {
		_, _, err = svc.Open(context.Background(), rel)
		assert.ErrorIs(t, err, models.ErrNotFound, rel)
	}
}

func TestEvictAndStats(t *testing.T) {
	svc, _ := newService(&fakeNotebook{}, &fakeJanitor{})
	svc.Stats = statsFunc(func() (models.DirStats, error) { return models.DirStats{Files: 3}, nil })

	assert.Equal(t, 42, svc.Evict(context.Background()).Scanned)
	st, err := svc.UploadStats()
	require.NoError(t, err)
	assert.Equal(t, 3, st.Files)
}

type statsFunc func() (models.DirStats, error)

func (f statsFunc) Stats() (models.DirStats, error) { return f() }
