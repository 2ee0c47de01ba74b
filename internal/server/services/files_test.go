package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/auth"
	"github.com/ISTE-SCTCE/Admin/internal/server/blob"
	"github.com/ISTE-SCTCE/Admin/internal/server/metrics"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileService(t *testing.T, blobs blob.Store) (*FileService, repomanager.RepositoryManager) {
	t.Helper()
	rm := repomanager.NewStoreRepositoryManager(store.NewMemoryStore())
	svc := NewFileService(rm, blobs, metrics.New(), logging.Nop())
	svc.newKey = func(ext string) string { return "fixed" + ext }
	return svc, rm
}

func TestUpload_StoresBlobAndMetadata(t *testing.T) {
	dir := t.TempDir()
	disk, err := blob.NewDiskStore(dir)
	require.NoError(t, err)
	svc, _ := newFileService(t, disk)
	ctx := context.Background()

	f, err := svc.Upload(ctx, &auth.Identity{UserID: 1, Name: "Ann"}, Upload{
		Name:        "../Minutes.PDF",
		Size:        5,
		ContentType: "application/pdf",
		Body:        strings.NewReader("hello"),
	})
	require.NoError(t, err)

	assert.Equal(t, "fixed.pdf", f.Filename)
	assert.Equal(t, "Minutes.PDF", f.OriginalName)
	assert.Equal(t, "/uploads/fixed.pdf", f.FilePath)
	assert.Equal(t, "Ann", f.UploadedBy)
	assert.Equal(t, int64(5), f.FileSize)
	assert.False(t, f.UploadedAt.IsZero())

	data, err := os.ReadFile(filepath.Join(disk.Dir(), "fixed.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	got, loc, err := svc.Open(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, filepath.Join(disk.Dir(), "fixed.pdf"), loc.Path)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpload_Defaults(t *testing.T) {
	disk, err := blob.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	svc, _ := newFileService(t, disk)

	f, err := svc.Upload(context.Background(), nil, Upload{Name: "notes", Body: strings.NewReader("")})
	require.NoError(t, err)
	assert.Equal(t, "Admin", f.UploadedBy)
	assert.Equal(t, "application/octet-stream", f.MimeType)
	assert.Equal(t, "fixed", f.Filename)

	_, err = svc.Upload(context.Background(), nil, Upload{Name: "", Body: strings.NewReader("x")})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestDelete_RemovesMetadataEvenWhenBlobIsGone(t *testing.T) {
	disk, err := blob.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	svc, rm := newFileService(t, disk)
	ctx := context.Background()

	f, err := svc.Upload(ctx, nil, Upload{Name: "a.txt", Body: strings.NewReader("a")})
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(disk.Dir(), f.Filename)))

	require.NoError(t, svc.Delete(ctx, f.ID))

	_, err = rm.Files().FindByID(ctx, f.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.ErrorIs(t, svc.Delete(ctx, f.ID), common.ErrorNotFound)
}

type failingBlobs struct {
	blob.Store
	putErr    error
	deleteErr error
	deleted   []string
}

func (f *failingBlobs) Put(ctx context.Context, key string, r io.Reader, size int64, ct string) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Store.Put(ctx, key, r, size, ct)
}

func (f *failingBlobs) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Store.Delete(ctx, key)
}

func TestUpload_BlobFailureStoresNothing(t *testing.T) {
	disk, err := blob.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	blobs := &failingBlobs{Store: disk, putErr: errors.New("bucket gone")}
	svc, rm := newFileService(t, blobs)
	ctx := context.Background()

	_, err = svc.Upload(ctx, nil, Upload{Name: "a.txt", Body: strings.NewReader("a")})
	require.Error(t, err)

	all, err := rm.Files().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDelete_BlobErrorDoesNotBlock(t *testing.T) {
	disk, err := blob.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	blobs := &failingBlobs{Store: disk}
	svc, rm := newFileService(t, blobs)
	ctx := context.Background()

	f, err := svc.Upload(ctx, nil, Upload{Name: "a.txt", Body: strings.NewReader("a")})
	require.NoError(t, err)

	blobs.deleteErr = errors.New("permission denied")
	require.NoError(t, svc.Delete(ctx, f.ID))
	assert.Equal(t, []string{"fixed.txt"}, blobs.deleted)

	all, err := rm.Files().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
