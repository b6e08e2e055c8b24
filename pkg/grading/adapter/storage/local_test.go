package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeloop/gradeloop/pkg/grading/adapter/storage"
	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
)

func payload(format string) *model.ImagePayload {
	return &model.ImagePayload{
		Data:       []byte("raster-bytes"),
		Format:     format,
		CapturedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestStore_WritesUnderDateDirectory(t *testing.T) {
	base := t.TempDir()
	archive, err := storage.NewLocalArchive(base)
	require.NoError(t, err)

	ref, err := archive.Store(context.Background(), "wf-1", payload("png"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "2026-03-14", "wf-1.png"), ref)

	data, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("raster-bytes"), data)
}

func TestStore_UnknownFormatFallsBackToBin(t *testing.T) {
	archive, err := storage.NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	ref, err := archive.Store(context.Background(), "wf-2", payload("unknown"))
	require.NoError(t, err)
	assert.Equal(t, ".bin", filepath.Ext(ref))
}

func TestStore_RejectsPathEscape(t *testing.T) {
	archive, err := storage.NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	_, err = archive.Store(context.Background(), "../../escape", payload("png"))
	assert.Error(t, err)
}

func TestStore_EmptyPayloadFails(t *testing.T) {
	archive, err := storage.NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	_, err = archive.Store(context.Background(), "wf-3", nil)
	assert.Error(t, err)
}

func TestNewLocalArchive_CreatesMissingBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "captures")
	_, err := storage.NewLocalArchive(base)
	require.NoError(t, err)

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewImageArchive_DisabledYieldsNil(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Gradeloop.Archive = config.ArchiveConfig{Enabled: false}

	archive, err := storage.NewImageArchive(cfg)
	require.NoError(t, err)
	assert.Nil(t, archive)
}
