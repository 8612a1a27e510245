package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/notebook_files/internal/models"
)

func TestEvictCommand(t *testing.T) {
	chdirForTest(t, t.TempDir())
	uploads := t.TempDir()
	now := time.Now()
	for i, name := range []string{"a.csv", "b.csv", "c.csv"} {
		path := filepath.Join(uploads, name)
		require.NoError(t, os.WriteFile(path, make([]byte, 1000), 0o644))
		mt := now.Add(time.Duration(i-3) * time.Hour)
		require.NoError(t, os.Chtimes(path, mt, mt))
	}

	var out bytes.Buffer
	cmd := newRootCommand(context.Background())
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"evict", "--upload-dir", uploads, "--max-size", "1500"})
	require.NoError(t, cmd.Execute())

	var rep models.EvictionReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	require.Len(t, rep.Removed, 2)
	assert.Equal(t, filepath.Join(uploads, "a.csv"), rep.Removed[0].Path)
	assert.Equal(t, filepath.Join(uploads, "b.csv"), rep.Removed[1].Path)
	assert.EqualValues(t, 1000, rep.TotalAfter)

	_, err := os.Stat(filepath.Join(uploads, "c.csv"))
	assert.NoError(t, err)
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("FILES_PORT", "9000")
	t.Setenv("UPLOAD_DIR", "/env/uploads")

	cmd := newRootCommand(context.Background())
	require.NoError(t, cmd.ParseFlags([]string{"--upload-dir", "/flag/uploads", "--max-size", "2GiB"}))

	var f cliFlags
	f.uploadDir, _ = cmd.Flags().GetString("upload-dir")
	f.maxSize, _ = cmd.Flags().GetString("max-size")

	cfg, err := loadConfig(cmd, f)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/flag/uploads", cfg.UploadDir)
	assert.EqualValues(t, 2<<30, cfg.UploadDirMaxSize)
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	chdirForTest(t, t.TempDir())

	cmd := newRootCommand(context.Background())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"evict", "--max-size", "lots"})

	err := cmd.Execute()
	require.ErrorIs(t, err, models.ErrInvalidConfig)
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
