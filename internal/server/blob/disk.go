package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/filex"
)

// DiskStore keeps blobs as files in one directory, named by key.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &DiskStore{dir: abs}, nil
}

func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (err error) {
	if err := validKey(key); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.dir, key), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("create blob: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	if _, err = io.Copy(f, r); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	return nil
}

func (s *DiskStore) Delete(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob %s: %w", key, common.ErrorNotFound)
	}
	return err
}

func (s *DiskStore) Locate(_ context.Context, key string) (Location, error) {
	if err := validKey(key); err != nil {
		return Location{}, err
	}
	path := filepath.Join(s.dir, key)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Location{}, fmt.Errorf("blob %s: %w", key, common.ErrorNotFound)
		}
		return Location{}, err
	}
	return Location{Path: path}, nil
}
