// Package blob stores uploaded file contents on local disk or in an
// S3-compatible bucket.
package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ISTE-SCTCE/Admin/internal/common"
)

// Location says where a stored blob can be read from: a local path to serve,
// or a URL to redirect to.
type Location struct {
	Path string
	URL  string
}

type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Delete removes the blob; a missing blob is common.ErrorNotFound.
	Delete(ctx context.Context, key string) error
	Locate(ctx context.Context, key string) (Location, error)
}

// validKey rejects keys that could escape the storage root.
func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: invalid blob key %q", common.ErrValidation, key)
	}
	return nil
}
