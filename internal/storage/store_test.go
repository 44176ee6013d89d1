package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/altibbe/hedamo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T, maxSize int64) *Store {
	t.Helper()
	store, err := New(config.Config{
		UploadDir:     t.TempDir(),
		MaxUploadSize: maxSize,
	}, zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestSaveImage(t *testing.T) {
	store := newTestStore(t, 1024)
	ctx := context.Background()

	url, err := store.SaveImage(ctx, "photo.PNG", "image/png", bytes.NewReader([]byte("fake png")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/image-"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	path, err := store.Resolve(url)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake png", string(data))
}

func TestSaveImage_RejectsUnsupportedType(t *testing.T) {
	store := newTestStore(t, 1024)
	ctx := context.Background()

	_, err := store.SaveImage(ctx, "report.pdf", "application/pdf", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.SaveImage(ctx, "photo.png", "application/octet-stream", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveImage_RejectsOversizedFile(t *testing.T) {
	store := newTestStore(t, 8)
	ctx := context.Background()

	_, err := store.SaveImage(ctx, "photo.png", "image/png", bytes.NewReader(make([]byte, 9)))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = store.SaveImage(ctx, "photo.png", "image/png", bytes.NewReader(make([]byte, 8)))
	require.NoError(t, err)
}

func TestSaveArtifact_SlugsBaseName(t *testing.T) {
	store := newTestStore(t, 1024)
	ctx := context.Background()

	url, err := store.SaveArtifact(ctx, "Transparency Report #42!", []byte("%PDF"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/transparency-report-42-"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	url, err = store.SaveArtifact(ctx, "!!!", []byte("%PDF"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/artifact-"))
}

func TestResolve_RejectsTraversal(t *testing.T) {
	store := newTestStore(t, 1024)

	secret := filepath.Join(store.Dir(), "..", "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("hidden"), 0o600))

	for _, probe := range []string{
		"/uploads/../secret.txt",
		"/uploads/sub/../../secret.txt",
		"/uploads/",
		"/elsewhere/file.pdf",
		"../secret.txt",
	} {
		_, err := store.Resolve(probe)
		assert.ErrorIs(t, err, ErrNotFound, probe)
	}

	_, err := store.Resolve("/uploads/missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}
