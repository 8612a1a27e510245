package notebookclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunParagraph(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	}))
	t.Cleanup(srv.Close)

	cli := New(http.MethodPost, time.Second)
	body, err := cli.RunParagraph(context.Background(), RunParagraphRequest{
		BaseURL:     srv.URL + "/",
		NotebookID:  "2JX4",
		ParagraphID: "p 1",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/notebook/run/2JX4/p%201", gotPath)
	assert.Equal(t, `{"status":"OK"}`, body)
}

func TestRunParagraph_DefaultsToGet(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
	}))
	t.Cleanup(srv.Close)

	_, err := New("", time.Second).RunParagraph(context.Background(), RunParagraphRequest{BaseURL: srv.URL, NotebookID: "n", ParagraphID: "p"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
}

func TestRunParagraph_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such paragraph", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	body, err := New(http.MethodGet, time.Second).RunParagraph(context.Background(), RunParagraphRequest{BaseURL: srv.URL, NotebookID: "n", ParagraphID: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, body, "no such paragraph")
}

func TestRunParagraph_EmptyBaseURL(t *testing.T) {
	_, err := New(http.MethodGet, time.Second).RunParagraph(context.Background(), RunParagraphRequest{})
	require.Error(t, err)
}

func TestRunURL(t *testing.T) {
	assert.Equal(t, "http://host:8080/api/notebook/run/N1/P1",
		RunURL(RunParagraphRequest{BaseURL: "http://host:8080", NotebookID: "N1", ParagraphID: "P1"}))
}
